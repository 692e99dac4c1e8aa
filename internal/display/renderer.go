package display

import (
	"image"
	"strings"
)

// Renderer converts a grayscale-as-RGB pixel buffer into a terminal string.
// It supports two modes:
//   - Color (half-block): uses "▀" with fg/bg shades to pack 2 pixel rows per terminal row.
//   - ASCII (no color): maps each pixel to a brightness character.
type Renderer struct {
	mode colorMode
	sb   strings.Builder // reusable builder to reduce allocations
}

// NewRenderer creates a renderer using the current terminal's color capabilities.
func NewRenderer() *Renderer {
	return &Renderer{mode: detectColorMode()}
}

// RowsPerCell returns how many pixel rows one terminal row carries in the
// active mode.
func (r *Renderer) RowsPerCell() int {
	if r.mode == colorOff {
		return 1
	}
	return 2
}

// Render converts img into a terminal string of outW x outH cells using
// nearest-neighbor sampling. In color mode outH terminal rows represent
// outH*2 pixel rows.
func (r *Renderer) Render(img *image.RGBA, outW, outH int) string {
	if img == nil || outW <= 0 || outH <= 0 {
		return ""
	}
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if w <= 0 || h <= 0 {
		return ""
	}

	r.sb.Reset()
	// Worst case ~20 bytes per cell (color escapes) + newlines.
	r.sb.Grow(outW * outH * 24)

	if r.mode == colorOff {
		r.renderASCII(img, w, h, outW, outH)
	} else {
		r.renderHalfBlock(img, w, h, outW, outH)
	}
	return r.sb.String()
}

// renderHalfBlock uses "▀" (upper half block) with fg = top pixel, bg = bottom pixel.
func (r *Renderer) renderHalfBlock(img *image.RGBA, w, h, outW, outH int) {
	pixelRows := outH * 2
	var lastFg, lastBg string

	for row := 0; row < outH; row++ {
		topPixRow := row * 2
		botPixRow := row*2 + 1

		for col := 0; col < outW; col++ {
			srcX := col * w / outW
			top := grayAt(img, srcX, topPixRow*h/pixelRows)

			var bot uint8
			if botPixRow < pixelRows {
				bot = grayAt(img, srcX, botPixRow*h/pixelRows)
			}

			fg := grayFgSeq(r.mode, top)
			bg := grayBgSeq(r.mode, bot)
			if fg != lastFg {
				r.sb.WriteString(fg)
				lastFg = fg
			}
			if bg != lastBg {
				r.sb.WriteString(bg)
				lastBg = bg
			}
			r.sb.WriteString("▀")
		}

		r.sb.WriteString(ansiReset)
		lastFg = ""
		lastBg = ""
		if row < outH-1 {
			r.sb.WriteByte('\n')
		}
	}
}

// renderASCII maps each pixel to a brightness character.
func (r *Renderer) renderASCII(img *image.RGBA, w, h, outW, outH int) {
	for row := 0; row < outH; row++ {
		for col := 0; col < outW; col++ {
			v := grayAt(img, col*w/outW, row*h/outH)
			r.sb.WriteByte(brightnessChar(v))
		}
		if row < outH-1 {
			r.sb.WriteByte('\n')
		}
	}
}

// grayAt reads a pixel's intensity. The spectrogram stores the same value on
// all three channels, so the red channel is the gray level.
func grayAt(img *image.RGBA, x, y int) uint8 {
	return img.RGBAAt(x, y).R
}
