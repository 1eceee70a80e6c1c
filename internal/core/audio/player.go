package audio

import (
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/zeusync/driftlab/internal/core/observability/log"
	"github.com/zeusync/driftlab/internal/core/systems/physics"
)

const resampleQuality = 4

// Player mixes positional one-shot clips. Without Open it only fills the
// mixer, which keeps it usable headless.
type Player struct {
	rate    beep.SampleRate
	buffer  time.Duration
	rolloff float64
	mixer   *beep.Mixer
	logger  log.Log

	mu       sync.Mutex
	listener physics.Vec3
	opened   bool
	played   uint64
}

func NewPlayer(cfg Config, logger log.Log) *Player {
	if logger == nil {
		logger = log.Nop()
	}
	return &Player{
		rate:    beep.SampleRate(cfg.SampleRate),
		buffer:  time.Duration(cfg.BufferMillis) * time.Millisecond,
		rolloff: cfg.Rolloff,
		mixer:   &beep.Mixer{},
		logger:  logger.Named("audio"),
	}
}

// Open attaches the mixer to the speaker.
func (p *Player) Open() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.opened {
		return nil
	}
	if err := speaker.Init(p.rate, p.rate.N(p.buffer)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.opened = true
	p.logger.Info("speaker opened", log.Int("sample_rate", int(p.rate)))
	return nil
}

func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.opened {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.opened = false
}

// SetListener moves the ear used for attenuation and panning.
func (p *Player) SetListener(pos physics.Vec3) {
	p.mu.Lock()
	p.listener = pos
	p.mu.Unlock()
}

func (p *Player) SampleRate() beep.SampleRate { return p.rate }
func (p *Player) Mixer() *beep.Mixer          { return p.mixer }

// Played counts clips handed to the mixer.
func (p *Player) Played() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played
}

// PlayClipAtPoint starts clip at a world position with the given base volume.
func (p *Player) PlayClipAtPoint(clip *Clip, position physics.Vec3, volume float64) error {
	if clip == nil {
		return ErrNilClip
	}

	p.mu.Lock()
	listener := p.listener
	opened := p.opened
	p.played++
	p.mu.Unlock()

	rel := position.Sub(listener)
	dist := rel.Len()
	gain := volume * p.attenuation(dist)
	pan := 0.0
	if dist > 0 {
		pan = mgl64.Clamp(rel.X()/(dist+1), -1, 1)
	}

	var s beep.Streamer = clip.Streamer()
	if clipRate := clip.Format().SampleRate; clipRate != p.rate {
		s = beep.Resample(resampleQuality, clipRate, p.rate, s)
	}
	s = &effects.Pan{Streamer: &effects.Gain{Streamer: s, Gain: gain - 1}, Pan: pan}

	if opened {
		speaker.Lock()
		p.mixer.Add(s)
		speaker.Unlock()
	} else {
		p.mixer.Add(s)
	}

	p.logger.Debug("clip started",
		log.String("clip", clip.Name),
		log.Float64("gain", gain),
		log.Float64("pan", pan),
		log.Float64("distance", dist),
	)
	return nil
}

func (p *Player) attenuation(dist float64) float64 {
	return 1 / (1 + p.rolloff*math.Max(dist, 0))
}
