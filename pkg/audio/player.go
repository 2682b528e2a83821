package audio

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
)

// Player plays finished narrations through the system speaker.
type Player struct {
	mu                 sync.RWMutex
	ctrl               *beep.Ctrl
	volume             float64
	streamer           *effects.Volume
	speakerInitialized bool
	currentSampleRate  beep.SampleRate
}

// NewPlayer creates a new Player instance.
func NewPlayer() *Player {
	return &Player{
		volume: 1.0,
	}
}

// Play starts playback of an audio file. onComplete is called when
// playback finishes (not when stopped manually).
func (p *Player) Play(path string, onComplete func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	streamer, format, err := decode(path)
	if err != nil {
		return err
	}

	if err := p.ensureSpeakerInitialized(streamer); err != nil {
		return err
	}

	resampled := beep.Resample(3, format.SampleRate, p.currentSampleRate, streamer)

	volStreamer := &effects.Volume{
		Streamer: resampled,
		Base:     2,
		Volume:   volumeToPower(p.volume),
		Silent:   p.volume <= 0.01,
	}
	p.streamer = volStreamer
	p.ctrl = &beep.Ctrl{Streamer: volStreamer}

	speaker.Play(beep.Seq(p.ctrl, beep.Callback(func() {
		go func() {
			p.mu.Lock()
			p.ctrl = nil
			p.mu.Unlock()
			streamer.Close()

			if onComplete != nil {
				onComplete()
			}
		}()
	})))

	slog.Debug("Playing audio", "path", path)
	return nil
}

// Stop stops current playback.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.ctrl != nil {
		speaker.Clear()
		p.ctrl = nil
	}
}

// IsPlaying returns true if audio is currently playing.
func (p *Player) IsPlaying() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ctrl != nil
}

// SetVolume sets playback volume (0.0 to 1.0).
func (p *Player) SetVolume(vol float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if vol < 0 {
		vol = 0
	} else if vol > 1 {
		vol = 1
	}
	p.volume = vol

	// Update live streamer if playing
	if p.streamer != nil {
		speaker.Lock()
		p.streamer.Volume = volumeToPower(vol)
		p.streamer.Silent = vol <= 0.01
		speaker.Unlock()
	}
}

// Volume returns current volume level.
func (p *Player) Volume() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.volume
}

func (p *Player) ensureSpeakerInitialized(streamer beep.StreamSeekCloser) error {
	const targetSampleRate = 48000
	if !p.speakerInitialized {
		err := speaker.Init(beep.SampleRate(targetSampleRate), beep.SampleRate(targetSampleRate).N(time.Second/10))
		if err != nil {
			streamer.Close()
			slog.Error("Failed to initialize speaker", "error", err)
			return err
		}
		p.speakerInitialized = true
		p.currentSampleRate = beep.SampleRate(targetSampleRate)
	}
	return nil
}

// volumeToPower maps linear volume (0-1) to beep's base-2 exponent.
func volumeToPower(vol float64) float64 {
	if vol <= 0.01 {
		return -10 // Silent
	}
	return math.Log2(vol)
}
