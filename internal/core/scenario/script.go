package scenario

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/driftlab/internal/core/systems/physics"
)

// DefaultDT is used by segments that leave dt unset.
const DefaultDT = 1.0 / 60

//go:embed demo.yaml
var demoYAML []byte

// Script is a scripted drive: a body following segments of constant speed,
// heading and slip, with optional impacts along the way.
type Script struct {
	Name     string     `yaml:"name"`
	Target   string     `yaml:"target"`
	Start    [3]float64 `yaml:"start"`
	Segments []Segment  `yaml:"segments"`
}

// Segment holds body motion constant for Duration seconds.
type Segment struct {
	Name       string   `yaml:"name"`
	Duration   float64  `yaml:"duration"`
	DT         float64  `yaml:"dt"`
	Speed      float64  `yaml:"speed"`
	SlipDeg    float64  `yaml:"slip_deg"`
	HeadingDeg float64  `yaml:"heading_deg"`
	Impacts    []Impact `yaml:"collisions"`
}

// Impact is a collision fired At seconds into its segment. Contacts are in
// the body's local space.
type Impact struct {
	At       float64      `yaml:"at"`
	Impulse  [3]float64   `yaml:"impulse"`
	Contacts [][3]float64 `yaml:"contacts"`
}

// Load decodes and validates a yaml script. Unknown keys are rejected.
func Load(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func LoadFile(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Demo is the built-in lap used when no script is given.
func Demo() *Script {
	s, err := Load(bytes.NewReader(demoYAML))
	if err != nil {
		panic(fmt.Sprintf("scenario: embedded demo: %v", err))
	}
	return s
}

func (s *Script) Validate() error {
	if len(s.Segments) == 0 {
		return ErrNoSegments
	}
	for i := range s.Segments {
		seg := &s.Segments[i]
		if seg.DT == 0 {
			seg.DT = DefaultDT
		}
		switch {
		case seg.Duration <= 0:
			return fmt.Errorf("%w %d: duration must be positive", ErrInvalidSegment, i)
		case seg.DT < 0:
			return fmt.Errorf("%w %d: dt must be positive", ErrInvalidSegment, i)
		case seg.Speed < 0:
			return fmt.Errorf("%w %d: speed must not be negative", ErrInvalidSegment, i)
		case seg.SlipDeg < 0 || seg.SlipDeg > 90:
			return fmt.Errorf("%w %d: slip_deg must be within [0, 90]", ErrInvalidSegment, i)
		}
		for j, imp := range seg.Impacts {
			if imp.At < 0 || imp.At > seg.Duration {
				return fmt.Errorf("%w %d/%d: at %.3f outside segment", ErrInvalidImpact, i, j, imp.At)
			}
			if len(imp.Contacts) == 0 {
				return fmt.Errorf("%w %d/%d: no contacts", ErrInvalidImpact, i, j)
			}
		}
	}
	return nil
}

// Duration is the scripted time over all segments.
func (s *Script) Duration() float64 {
	var d float64
	for _, seg := range s.Segments {
		d += seg.Duration
	}
	return d
}

func vec(a [3]float64) physics.Vec3 { return physics.Vec3{a[0], a[1], a[2]} }
