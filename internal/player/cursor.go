package player

import (
	"encoding/binary"
	"math"
	"sync"
)

const (
	minSpeedShift = -2 // 0.25x
	maxSpeedShift = 2  // 4x
)

// cursorReader streams 16-bit little-endian mono PCM out of an in-memory
// sample buffer. It owns the playback cursor: a sample index, a direction
// sign, and a power-of-two speed shift. Reads advance the cursor in the
// current direction, skipping samples at fast speeds and repeating them at
// slow speeds. At either buffer edge the reader emits silence and holds
// position so the output device keeps running while the listener decides
// what to do next.
type cursorReader struct {
	mu        sync.Mutex
	samples   []int16
	cursor    int
	direction int
	shift     int // speed multiplier is 2^shift
	repeat    int // outputs left before the cursor advances (shift < 0)
	ended     chan struct{}
	endedSet  bool
}

func newCursorReader(samples []int16) *cursorReader {
	return &cursorReader{
		samples:   samples,
		direction: 1,
		ended:     make(chan struct{}),
	}
}

func (r *cursorReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(p) / 2
	for i := 0; i < n; i++ {
		var s int16
		if r.atEdge() {
			if r.direction > 0 && !r.endedSet {
				r.endedSet = true
				close(r.ended)
			}
		} else {
			s = r.samples[r.cursor]
			r.advance()
		}
		binary.LittleEndian.PutUint16(p[2*i:], uint16(s))
	}
	return n * 2, nil
}

// atEdge reports whether the cursor has run off the buffer in the current
// direction. Callers hold mu.
func (r *cursorReader) atEdge() bool {
	if r.direction > 0 {
		return r.cursor >= len(r.samples)
	}
	return r.cursor < 0
}

// advance moves the cursor one output frame's worth. Callers hold mu.
func (r *cursorReader) advance() {
	if r.shift < 0 {
		if r.repeat > 0 {
			r.repeat--
			return
		}
		r.repeat = (1 << -r.shift) - 1
	}
	step := 1
	if r.shift > 0 {
		step = 1 << r.shift
	}
	r.cursor += r.direction * step
	if r.cursor > len(r.samples) {
		r.cursor = len(r.samples)
	}
	if r.cursor < -1 {
		r.cursor = -1
	}
}

// Position returns the cursor clamped into [0, len(samples)).
func (r *cursorReader) Position() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.cursor
	if c < 0 {
		c = 0
	}
	if c > len(r.samples)-1 {
		c = len(r.samples) - 1
	}
	return c
}

// Reverse flips the playback direction, snapping the cursor back inside the
// buffer if it had run off an edge.
func (r *cursorReader) Reverse() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.direction = -r.direction
	if r.cursor < 0 {
		r.cursor = 0
	}
	if r.cursor > len(r.samples)-1 {
		r.cursor = len(r.samples) - 1
	}
}

func (r *cursorReader) Direction() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.direction
}

// adjustShift changes the speed shift by delta within the bounded range and
// returns the new value.
func (r *cursorReader) adjustShift(delta int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.setShift(r.shift + delta)
}

// setShift clamps and applies a shift. Callers hold mu.
func (r *cursorReader) setShift(shift int) int {
	if shift > maxSpeedShift {
		shift = maxSpeedShift
	}
	if shift < minSpeedShift {
		shift = minSpeedShift
	}
	r.shift = shift
	r.repeat = 0
	if shift < 0 {
		// Prime the counter so the sample under the cursor is also repeated.
		r.repeat = (1 << -shift) - 1
	}
	return r.shift
}

// setMultiplier applies the nearest power-of-two speed to mult.
func (r *cursorReader) setMultiplier(mult float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mult <= 0 {
		mult = 1
	}
	r.setShift(int(math.Round(math.Log2(mult))))
}

// Speed returns the current multiplier.
func (r *cursorReader) Speed() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return math.Ldexp(1, r.shift)
}

// Ended is closed the first time forward playback reaches the end of the
// buffer.
func (r *cursorReader) Ended() <-chan struct{} {
	return r.ended
}
