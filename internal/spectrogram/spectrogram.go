package spectrogram

import (
	"fmt"
	"image"
	"image/color"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/olivier-w/spectro/internal/dsp"
)

// ConfigurationError reports invalid construction parameters. It is returned
// before any column is computed; a Spectrogram is never left half-built.
type ConfigurationError struct {
	msg string
}

func (e *ConfigurationError) Error() string { return e.msg }

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{msg: fmt.Sprintf(format, args...)}
}

type config struct {
	taper     dsp.Taper
	custom    []float64
	hasCustom bool
	kernel    []float64
}

// Option configures a Spectrogram at construction.
type Option func(*config)

// WithTaper selects one of the predefined taper windows.
func WithTaper(t dsp.Taper) Option {
	return func(c *config) { c.taper = t }
}

// WithTaperCoefficients supplies a custom taper. The slice length must equal
// the window width.
func WithTaperCoefficients(coeffs []float64) Option {
	return func(c *config) {
		c.custom = coeffs
		c.hasCustom = true
	}
}

// WithSmoothing convolves each magnitude column with kernel ("same" length)
// before byte scaling. See dsp.Gaussian for a ready-made kernel.
func WithSmoothing(kernel []float64) Option {
	return func(c *config) { c.kernel = kernel }
}

// Spectrogram computes a time-frequency magnitude image over a sample buffer,
// one column per analysis window. Columns are computed lazily, in ascending
// index order, and cached; a column is never recomputed once written.
type Spectrogram struct {
	samples     []int16
	windowWidth int
	windowStep  int
	taper       []float64 // nil means no taper
	kernel      []float64

	nWindows int
	height   int // retained frequency bins per column, windowWidth/2

	// Column cache. Column w occupies spec[w*height:(w+1)*height], bin 0
	// holding the highest retained frequency. Columns at index >= next are
	// uninitialized and must not be read.
	spec []uint8
	next int // high-water mark: columns [0, next) are computed

	fft   *fourier.FFT
	frame []float64    // scratch: windowed samples
	bins  []complex128 // scratch: transform output
	mags  []float64    // scratch: magnitudes, reversed
}

// New builds a Spectrogram over samples. The sample buffer is owned by the
// Spectrogram for the session; callers must not mutate it afterwards.
func New(samples []int16, windowWidth, windowStep int, opts ...Option) (*Spectrogram, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	if windowWidth < 2 {
		return nil, configErrorf("window width must be at least 2 samples, got %d", windowWidth)
	}
	if windowStep < 1 {
		return nil, configErrorf("window step must be at least 1 sample, got %d", windowStep)
	}
	if len(samples) < windowWidth {
		return nil, configErrorf("buffer of %d samples is shorter than one %d-sample window", len(samples), windowWidth)
	}

	var taper []float64
	if cfg.hasCustom {
		if len(cfg.custom) != windowWidth {
			return nil, configErrorf("custom taper has %d coefficients, window width is %d", len(cfg.custom), windowWidth)
		}
		taper = cfg.custom
	} else {
		var err error
		taper, err = dsp.Coefficients(cfg.taper, windowWidth)
		if err != nil {
			return nil, configErrorf("%v", err)
		}
	}

	nWindows := (len(samples)-windowWidth)/windowStep + 1
	height := windowWidth / 2

	return &Spectrogram{
		samples:     samples,
		windowWidth: windowWidth,
		windowStep:  windowStep,
		taper:       taper,
		kernel:      cfg.kernel,
		nWindows:    nWindows,
		height:      height,
		spec:        make([]uint8, nWindows*height),
		fft:         fourier.NewFFT(windowWidth),
		frame:       make([]float64, windowWidth),
		bins:        make([]complex128, windowWidth/2+1),
		mags:        make([]float64, height),
	}, nil
}

// NumWindows returns the number of analysis windows (columns).
func (s *Spectrogram) NumWindows() int { return s.nWindows }

// Height returns the number of retained frequency bins per column.
func (s *Spectrogram) Height() int { return s.height }

// NumSamples returns the length of the owned sample buffer.
func (s *Spectrogram) NumSamples() int { return len(s.samples) }

// WindowFromSample maps a sample offset to a window index. Several windows
// may overlap any one sample, so the mapping is approximate: the nearest
// preceding window start. The result is always in [0, NumWindows), even for
// out-of-range input.
func (s *Spectrogram) WindowFromSample(sampleIdx int) int {
	w := (sampleIdx - s.windowWidth) / s.windowStep
	if w < 0 {
		return 0
	}
	if w >= s.nWindows {
		return s.nWindows - 1
	}
	return w
}

// ComputeUpTo ensures every column with index < end is computed. Already
// computed columns are left untouched; end beyond NumWindows is clamped.
func (s *Spectrogram) ComputeUpTo(end int) {
	if end > s.nWindows {
		end = s.nWindows
	}
	for w := s.next; w < end; w++ {
		s.writeColumn(w)
	}
	if end > s.next {
		s.next = end
	}
}

// writeColumn computes a single magnitude column into the cache.
func (s *Spectrogram) writeColumn(w int) {
	start := w * s.windowStep
	for i := range s.frame {
		s.frame[i] = float64(s.samples[start+i])
	}
	if s.taper != nil {
		for i := range s.frame {
			s.frame[i] *= s.taper[i]
		}
	}

	bins := s.fft.Coefficients(s.bins, s.frame)

	// Keep the first half of the spectrum (the real-input transform is
	// conjugate-symmetric) and reverse it so bin 0 is the highest retained
	// frequency.
	mags := s.mags
	for i := 0; i < s.height; i++ {
		mags[i] = cmplx.Abs(bins[s.height-1-i])
	}
	if s.kernel != nil {
		mags = dsp.ConvolveSame(mags, s.kernel)
	}

	col := s.spec[w*s.height : (w+1)*s.height]
	for i, m := range mags {
		// Empirical scaling carried over from prior output for bit-for-bit
		// parity; not a principled normalization.
		v := int(32 * m / 65535)
		if v > 255 {
			v = 255
		}
		col[i] = uint8(v)
	}
}

// Image computes every remaining column and returns the full spectrogram as
// a grayscale-as-RGB image, one pixel column per window. Intended for static
// export; the interactive path goes through View.
func (s *Spectrogram) Image() *image.RGBA {
	s.ComputeUpTo(s.nWindows)
	return s.slice(0, s.nWindows)
}

// slice copies columns [start, end) into a fresh image. Callers must have
// computed the range first; the returned image shares no memory with the
// cache.
func (s *Spectrogram) slice(start, end int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, end-start, s.height))
	for w := start; w < end; w++ {
		col := s.spec[w*s.height : (w+1)*s.height]
		for y, v := range col {
			img.SetRGBA(w-start, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}
