package dsp

import (
	"fmt"
	"math"
	"strings"
)

// Taper identifies a predefined taper window applied to samples before the
// fourier transform to reduce spectral leakage at the window edges.
type Taper string

const (
	TaperNone     Taper = "none"
	TaperBlackman Taper = "blackman"
	TaperBartlett Taper = "bartlett"
	TaperHamming  Taper = "hamming"
	TaperHann     Taper = "hann"
)

// Tapers returns the accepted taper names for help text.
func Tapers() []string {
	return []string{
		string(TaperNone),
		string(TaperBlackman),
		string(TaperBartlett),
		string(TaperHamming),
		string(TaperHann),
	}
}

// ParseTaper maps a user-supplied name to a Taper. "hanning" is accepted as
// an alias for hann. The empty string means no taper.
func ParseTaper(name string) (Taper, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return TaperNone, nil
	case "blackman":
		return TaperBlackman, nil
	case "bartlett":
		return TaperBartlett, nil
	case "hamming":
		return TaperHamming, nil
	case "hann", "hanning":
		return TaperHann, nil
	default:
		return TaperNone, fmt.Errorf("unknown taper %q (choose one of %s)", name, strings.Join(Tapers(), ", "))
	}
}

// Coefficients returns the width taper values for t, or nil for TaperNone.
// All windows are symmetric: coefficient i uses a denominator of width-1, so
// both endpoints land on the window function's edge value.
func Coefficients(t Taper, width int) ([]float64, error) {
	if t == TaperNone {
		return nil, nil
	}
	if width < 1 {
		return nil, fmt.Errorf("taper width must be positive, got %d", width)
	}
	if width == 1 {
		return []float64{1}, nil
	}

	c := make([]float64, width)
	n := float64(width - 1)
	switch t {
	case TaperBlackman:
		for i := range c {
			arg := 2 * math.Pi * float64(i) / n
			c[i] = 0.42 - 0.5*math.Cos(arg) + 0.08*math.Cos(2*arg)
		}
	case TaperBartlett:
		for i := range c {
			c[i] = 1 - math.Abs(2*float64(i)/n-1)
		}
	case TaperHamming:
		for i := range c {
			c[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/n)
		}
	case TaperHann:
		for i := range c {
			c[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/n)
		}
	default:
		return nil, fmt.Errorf("unknown taper %q", string(t))
	}
	return c, nil
}

// Gaussian returns an n-point gaussian kernel with the given standard
// deviation, centered on (n-1)/2. Useful as a smoothing kernel for
// spectrogram columns.
func Gaussian(n int, sigma float64) []float64 {
	k := make([]float64, n)
	mid := float64(n-1) / 2
	for i := range k {
		d := (float64(i) - mid) / sigma
		k[i] = math.Exp(-0.5 * d * d)
	}
	return k
}

// ConvolveSame convolves x with kernel and returns a result of len(x),
// re-centered so the kernel midpoint aligns with each input element.
func ConvolveSame(x, kernel []float64) []float64 {
	if len(x) == 0 || len(kernel) == 0 {
		out := make([]float64, len(x))
		copy(out, x)
		return out
	}

	full := make([]float64, len(x)+len(kernel)-1)
	for i, xv := range x {
		for j, kv := range kernel {
			full[i+j] += xv * kv
		}
	}

	start := (len(kernel) - 1) / 2
	out := make([]float64, len(x))
	copy(out, full[start:start+len(x)])
	return out
}
