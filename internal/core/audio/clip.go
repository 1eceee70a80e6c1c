package audio

import (
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

const synthPrefix = "synth:"

// Clip is a fully buffered sound.
type Clip struct {
	Name   string
	buffer *beep.Buffer
}

// NewClip drains s into memory.
func NewClip(name string, format beep.Format, s beep.Streamer) (*Clip, error) {
	buf := beep.NewBuffer(format)
	buf.Append(s)
	if buf.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyClip, name)
	}
	return &Clip{Name: name, buffer: buf}, nil
}

func (c *Clip) Format() beep.Format { return c.buffer.Format() }

// Len is the clip length in samples.
func (c *Clip) Len() int { return c.buffer.Len() }

func (c *Clip) Duration() time.Duration {
	return c.Format().SampleRate.D(c.Len())
}

// Streamer returns a fresh reader over the whole clip.
func (c *Clip) Streamer() beep.StreamSeeker {
	return c.buffer.Streamer(0, c.buffer.Len())
}

// LoadWAV decodes a wav file into a Clip.
func LoadWAV(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	streamer, format, err := wav.Decode(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer streamer.Close()
	return NewClip(path, format, streamer)
}

// SynthImpact renders a short decaying noise burst over a low thump. The same
// name always yields the same clip.
func SynthImpact(name string, rate beep.SampleRate, d time.Duration) (*Clip, error) {
	seed := xxhash.Sum64String(name)
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))
	total := rate.N(d)
	thump := 55 + float64(seed%40)
	pos := 0

	gen := beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		for i := range samples {
			if pos >= total {
				return i, i > 0
			}
			t := float64(pos) / float64(rate)
			env := math.Exp(-t * 18)
			v := env * (0.6*(rng.Float64()*2-1) + 0.4*math.Sin(2*math.Pi*thump*t))
			samples[i][0], samples[i][1] = v, v
			pos++
		}
		return len(samples), true
	})

	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	return NewClip(name, format, gen)
}

// LoadClips resolves clip specs from config: "synth:<name>" or a wav path.
func LoadClips(specs []string, rate beep.SampleRate) ([]*Clip, error) {
	clips := make([]*Clip, 0, len(specs))
	for _, spec := range specs {
		var (
			clip *Clip
			err  error
		)
		if name, ok := strings.CutPrefix(spec, synthPrefix); ok {
			clip, err = SynthImpact(name, rate, 350*time.Millisecond)
		} else {
			clip, err = LoadWAV(spec)
		}
		if err != nil {
			return nil, fmt.Errorf("load clip %q: %w", spec, err)
		}
		clips = append(clips, clip)
	}
	return clips, nil
}
