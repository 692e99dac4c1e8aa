package spectrogram

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/olivier-w/spectro/internal/dsp"
)

func silence(n int) []int16 {
	return make([]int16, n)
}

// cosine returns n samples of a cosine that completes cycles full periods
// over each window of width samples.
func cosine(n, width, cycles int) []int16 {
	s := make([]int16, n)
	for i := range s {
		s[i] = int16(30000 * math.Cos(2*math.Pi*float64(cycles)*float64(i)/float64(width)))
	}
	return s
}

func TestNewValidation(t *testing.T) {
	cases := []struct {
		name    string
		samples []int16
		width   int
		step    int
		opts    []Option
	}{
		{"window too narrow", silence(100), 1, 5, nil},
		{"step too small", silence(100), 10, 0, nil},
		{"buffer shorter than window", silence(9), 10, 5, nil},
		{"unknown taper", silence(100), 10, 5, []Option{WithTaper(dsp.Taper("bogus"))}},
		{"custom taper wrong length", silence(100), 10, 5, []Option{WithTaperCoefficients([]float64{1, 2, 3})}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := New(c.samples, c.width, c.step, c.opts...)
			if err == nil {
				t.Fatal("expected construction to fail")
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %T: %v", err, err)
			}
		})
	}
}

func TestWindowGeometry(t *testing.T) {
	cases := []struct {
		n, width, step       int
		wantWindows, wantRow int
	}{
		{100, 10, 5, 19, 5},
		{100, 10, 10, 10, 5},
		{10, 10, 5, 1, 5},
		{101, 11, 3, 31, 5},
	}
	for _, c := range cases {
		s, err := New(silence(c.n), c.width, c.step)
		if err != nil {
			t.Fatalf("New(%d, %d, %d) error = %v", c.n, c.width, c.step, err)
		}
		if s.NumWindows() != c.wantWindows {
			t.Fatalf("New(%d, %d, %d): NumWindows = %d, want %d", c.n, c.width, c.step, s.NumWindows(), c.wantWindows)
		}
		if s.Height() != c.wantRow {
			t.Fatalf("New(%d, %d, %d): Height = %d, want %d", c.n, c.width, c.step, s.Height(), c.wantRow)
		}
	}
}

func TestWindowFromSampleTotalAndMonotonic(t *testing.T) {
	s, err := New(silence(100), 10, 5)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	prev := 0
	for idx := -50; idx < 150; idx++ {
		w := s.WindowFromSample(idx)
		if w < 0 || w >= s.NumWindows() {
			t.Fatalf("WindowFromSample(%d) = %d, out of [0, %d)", idx, w, s.NumWindows())
		}
		if w < prev {
			t.Fatalf("WindowFromSample not monotonic: f(%d) = %d after %d", idx, w, prev)
		}
		prev = w
	}
}

func TestComputeUpToIdempotent(t *testing.T) {
	s, err := New(cosine(200, 16, 3), 16, 4)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	s.ComputeUpTo(10)
	snapshot := append([]uint8(nil), s.spec[:10*s.height]...)

	// Recompute and compute backwards; neither may change existing columns.
	s.ComputeUpTo(10)
	s.ComputeUpTo(4)
	if !bytes.Equal(snapshot, s.spec[:10*s.height]) {
		t.Fatal("recomputation altered existing columns")
	}

	// Extending keeps the prefix and beyond-range ends are clamped.
	s.ComputeUpTo(s.NumWindows() + 100)
	if s.next != s.NumWindows() {
		t.Fatalf("high-water mark = %d, want %d", s.next, s.NumWindows())
	}
	if !bytes.Equal(snapshot, s.spec[:10*s.height]) {
		t.Fatal("extension altered existing columns")
	}
}

func TestSilenceImageIsBlack(t *testing.T) {
	s, err := New(silence(100), 10, 5)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	img := s.Image()
	b := img.Bounds()
	if b.Dx() != 19 || b.Dy() != 5 {
		t.Fatalf("image is %dx%d, want 19x5", b.Dx(), b.Dy())
	}
	for x := 0; x < b.Dx(); x++ {
		for y := 0; y < b.Dy(); y++ {
			px := img.RGBAAt(x, y)
			if px.R != 0 || px.G != 0 || px.B != 0 || px.A != 255 {
				t.Fatalf("pixel (%d,%d) = %v, want opaque black", x, y, px)
			}
		}
	}
}

func TestColumnPeakAtReversedBin(t *testing.T) {
	const width = 64
	const cycles = 3
	s, err := New(cosine(width, width, cycles), width, width)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	s.ComputeUpTo(1)
	col := s.spec[:s.height]

	// Bin order is reversed: frequency bin k lands at row height-1-k.
	peak := s.height - 1 - cycles
	if col[peak] != 255 {
		t.Fatalf("col[%d] = %d, want saturated peak", peak, col[peak])
	}
	for i, v := range col {
		if i != peak && v != 0 {
			t.Fatalf("col[%d] = %d, want 0 away from the peak", i, v)
		}
	}
}

func TestSmoothingSpreadsPeak(t *testing.T) {
	const width = 64
	const cycles = 3
	s, err := New(cosine(width, width, cycles), width, width, WithSmoothing([]float64{0.5, 1, 0.5}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	s.ComputeUpTo(1)
	col := s.spec[:s.height]
	peak := s.height - 1 - cycles
	if col[peak] == 0 {
		t.Fatal("expected energy at the peak bin")
	}
	if col[peak-1] == 0 || col[peak+1] == 0 {
		t.Fatal("expected smoothing to spread energy into neighboring bins")
	}
}

func TestByteScaling(t *testing.T) {
	// The scaling constant is load-bearing for output parity: floor(32*x/65535).
	cases := []struct {
		mag  float64
		want uint8
	}{
		{0, 0},
		{2047, 0},
		{2048, 1},
		{65535, 32},
		{600000, 255}, // clamped
	}
	for _, c := range cases {
		v := int(32 * c.mag / 65535)
		if v > 255 {
			v = 255
		}
		if uint8(v) != c.want {
			t.Fatalf("scale(%v) = %d, want %d", c.mag, v, c.want)
		}
	}
}
