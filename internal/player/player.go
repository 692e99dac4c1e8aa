package player

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/olivier-w/spectro/internal/audio"
)

// Player drives playback of a decoded sample buffer through the audio
// device. It owns the playback cursor (position, direction, speed); the
// spectrogram view reads the cursor through Position to stay in sync with
// what is audible.
type Player struct {
	cr        *cursorReader
	rate      int
	otoCtx    *oto.Context
	otoPlayer *oto.Player
	duration  time.Duration

	mu     sync.Mutex
	paused bool
	closed bool
}

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

// initOto creates the process-wide audio context at the session's sample
// rate. oto allows a single context per process; one file per session means
// the first rate wins.
func initOto(sampleRate int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// New starts playback of dec from the beginning, forward, at 1x.
func New(dec audio.Decoded) (*Player, error) {
	if len(dec.Samples) == 0 {
		return nil, errors.New("no samples to play")
	}
	if dec.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", dec.SampleRate)
	}

	ctx, err := initOto(dec.SampleRate)
	if err != nil {
		return nil, err
	}

	cr := newCursorReader(dec.Samples)
	secs := float64(len(dec.Samples)) / float64(dec.SampleRate)

	p := &Player{
		cr:       cr,
		rate:     dec.SampleRate,
		otoCtx:   ctx,
		duration: time.Duration(secs * float64(time.Second)),
	}
	p.otoPlayer = ctx.NewPlayer(cr)
	p.otoPlayer.Play()
	return p, nil
}

// Position returns the current cursor as a sample index.
func (p *Player) Position() int { return p.cr.Position() }

// Elapsed returns the cursor position as a duration into the track.
func (p *Player) Elapsed() time.Duration {
	secs := float64(p.cr.Position()) / float64(p.rate)
	return time.Duration(secs * float64(time.Second))
}

// Duration returns the total track duration.
func (p *Player) Duration() time.Duration { return p.duration }

// TogglePause toggles between play and pause.
func (p *Player) TogglePause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if p.paused {
		p.otoPlayer.Play()
		p.paused = false
	} else {
		p.otoPlayer.Pause()
		p.paused = true
	}
}

// Paused returns whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Reverse flips the playback direction.
func (p *Player) Reverse() { p.cr.Reverse() }

// Direction returns +1 for forward playback, -1 for reverse.
func (p *Player) Direction() int { return p.cr.Direction() }

// SpeedUp doubles the playback speed, up to 4x.
func (p *Player) SpeedUp() { p.cr.adjustShift(1) }

// SlowDown halves the playback speed, down to 0.25x.
func (p *Player) SlowDown() { p.cr.adjustShift(-1) }

// SetSpeed applies the nearest supported multiplier to mult.
func (p *Player) SetSpeed(mult float64) { p.cr.setMultiplier(mult) }

// Speed returns the current speed multiplier.
func (p *Player) Speed() float64 { return p.cr.Speed() }

// SpeedLabel returns the multiplier formatted for the status line.
func (p *Player) SpeedLabel() string { return fmt.Sprintf("%gx", p.cr.Speed()) }

// Done returns a channel closed the first time forward playback reaches the
// end of the buffer. The device keeps running; the listener may still
// reverse back into the track.
func (p *Player) Done() <-chan struct{} { return p.cr.Ended() }

// Close stops playback and releases the audio device. Safe to call more
// than once and on every exit path.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.otoPlayer.Pause()
	p.otoPlayer.Close()
}
