package player

import (
	"encoding/binary"
	"testing"
)

func ramp(n int) []int16 {
	s := make([]int16, n)
	for i := range s {
		s[i] = int16(i)
	}
	return s
}

// readFrames pulls n mono frames out of the reader and decodes them.
func readFrames(t *testing.T, r *cursorReader, n int) []int16 {
	t.Helper()
	buf := make([]byte, n*2)
	got, err := r.Read(buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != len(buf) {
		t.Fatalf("Read() = %d bytes, want %d", got, len(buf))
	}
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(buf[i*2:]))
	}
	return out
}

func assertFrames(t *testing.T, got, want []int16) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d frames, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("frame %d = %d, want %d (got %v, want %v)", i, got[i], want[i], got, want)
		}
	}
}

func TestForwardRead(t *testing.T) {
	r := newCursorReader(ramp(10))
	assertFrames(t, readFrames(t, r, 4), []int16{0, 1, 2, 3})
	if r.Position() != 4 {
		t.Fatalf("Position() = %d, want 4", r.Position())
	}
}

func TestReverseReadEmitsSamplesBackwards(t *testing.T) {
	r := newCursorReader(ramp(10))
	readFrames(t, r, 5)
	r.Reverse()
	assertFrames(t, readFrames(t, r, 3), []int16{5, 4, 3})
	if r.Direction() != -1 {
		t.Fatalf("Direction() = %d, want -1", r.Direction())
	}
}

func TestReverseAtStartHoldsWithSilence(t *testing.T) {
	r := newCursorReader(ramp(10))
	r.Reverse()
	assertFrames(t, readFrames(t, r, 4), []int16{0, 0, 0, 0})
	if r.Position() != 0 {
		t.Fatalf("Position() = %d, want 0", r.Position())
	}

	// Reversing again resumes forward playback from the start.
	r.Reverse()
	assertFrames(t, readFrames(t, r, 3), []int16{0, 1, 2})
}

func TestDoubleSpeedSkipsFrames(t *testing.T) {
	r := newCursorReader(ramp(16))
	r.adjustShift(1)
	assertFrames(t, readFrames(t, r, 4), []int16{0, 2, 4, 6})
}

func TestHalfSpeedRepeatsFrames(t *testing.T) {
	r := newCursorReader(ramp(16))
	r.adjustShift(-1)
	assertFrames(t, readFrames(t, r, 6), []int16{0, 0, 1, 1, 2, 2})
}

func TestQuarterSpeedAcrossReads(t *testing.T) {
	r := newCursorReader(ramp(16))
	r.adjustShift(-2)
	// Repeat state carries across Read boundaries.
	assertFrames(t, readFrames(t, r, 3), []int16{0, 0, 0})
	assertFrames(t, readFrames(t, r, 3), []int16{0, 1, 1})
}

func TestSpeedBounds(t *testing.T) {
	r := newCursorReader(ramp(16))
	for i := 0; i < 10; i++ {
		r.adjustShift(1)
	}
	if got := r.Speed(); got != 4 {
		t.Fatalf("Speed() = %v, want 4", got)
	}
	for i := 0; i < 10; i++ {
		r.adjustShift(-1)
	}
	if got := r.Speed(); got != 0.25 {
		t.Fatalf("Speed() = %v, want 0.25", got)
	}
}

func TestSetMultiplierRoundsToPowerOfTwo(t *testing.T) {
	cases := []struct {
		mult float64
		want float64
	}{
		{1, 1},
		{2, 2},
		{0.5, 0.5},
		{3, 4}, // nearest power of two upward
		{0.3, 0.25},
		{100, 4}, // clamped
		{0, 1},   // nonsense resets to 1x
	}
	r := newCursorReader(ramp(16))
	for _, c := range cases {
		r.setMultiplier(c.mult)
		if got := r.Speed(); got != c.want {
			t.Fatalf("setMultiplier(%v): Speed() = %v, want %v", c.mult, got, c.want)
		}
	}
}

func TestEndOfBufferSignalsOnceAndHolds(t *testing.T) {
	r := newCursorReader(ramp(4))
	assertFrames(t, readFrames(t, r, 6), []int16{0, 1, 2, 3, 0, 0})

	select {
	case <-r.Ended():
	default:
		t.Fatal("expected Ended to be closed after forward playback ran out")
	}
	if r.Position() != 3 {
		t.Fatalf("Position() = %d, want 3", r.Position())
	}

	// Reversing plays back into the buffer from the last sample.
	r.Reverse()
	assertFrames(t, readFrames(t, r, 2), []int16{3, 2})
}
