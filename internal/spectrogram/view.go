package spectrogram

import "image"

// View extracts fixed-width slices of a Spectrogram centered on the playback
// position. Each call re-derives the slice from the current position; no
// state persists between calls beyond the engine's computed-column mark.
type View struct {
	spec         *Spectrogram
	displayWidth int
}

// NewView creates a viewport of displayWidth columns. When the spectrogram
// has fewer windows than displayWidth the viewport shrinks to fit. The first
// viewport's columns are computed eagerly so the initial frame renders
// without a stall.
func NewView(s *Spectrogram, displayWidth int) *View {
	if displayWidth > s.nWindows {
		displayWidth = s.nWindows
	}
	if displayWidth < 1 {
		displayWidth = 1
	}
	s.ComputeUpTo(displayWidth)
	return &View{spec: s, displayWidth: displayWidth}
}

// Width returns the viewport width in columns, after any shrink-to-fit.
func (v *View) Width() int { return v.displayWidth }

// Render returns a Width x Height image of the spectrogram around sampleIdx,
// with the column containing the playback position highlighted by inverting
// its intensity. Safe for any sampleIdx ordering: forward, reverse, or
// oscillating playback all see identical pixels for identical positions.
func (v *View) Render(sampleIdx int) *image.RGBA {
	windowIdx := v.spec.WindowFromSample(sampleIdx)
	viewStart := v.viewStart(windowIdx)

	v.spec.ComputeUpTo(viewStart + v.displayWidth)
	img := v.spec.slice(viewStart, viewStart+v.displayWidth)

	x := windowIdx - viewStart
	if x < 0 {
		x = 0
	}
	if x > v.displayWidth-1 {
		x = v.displayWidth - 1
	}
	for y := 0; y < v.spec.height; y++ {
		px := img.RGBAAt(x, y)
		px.R = 255 - px.R
		px.G = 255 - px.G
		px.B = 255 - px.B
		img.SetRGBA(x, y, px)
	}
	return img
}

// viewStart centers the viewport on windowIdx, snapping to the buffer edges
// near the start and end. The half-width comparisons are kept in doubled
// integer form so odd widths behave like true halves.
func (v *View) viewStart(windowIdx int) int {
	n := v.spec.nWindows
	switch {
	case v.displayWidth >= n:
		return 0
	case 2*windowIdx < v.displayWidth:
		return 0
	case 2*windowIdx > 2*n-v.displayWidth:
		start := n - v.displayWidth - 1
		if start < 0 {
			start = 0
		}
		return start
	default:
		return windowIdx - v.displayWidth/2
	}
}
