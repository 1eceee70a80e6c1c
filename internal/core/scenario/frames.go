package scenario

import (
	"math"

	"github.com/zeusync/driftlab/internal/core/systems/physics"
)

// Frame is one fixed step of a script.
type Frame struct {
	Index      int
	Segment    string
	Time       float64
	DT         float64
	Body       physics.Body
	Collisions []physics.Collision
}

// BodyFor returns a body moving at speed whose drift reading, the angle
// between forward and normalize(forward+velocity), equals slipDeg. Slips
// that cannot be reached at a low speed saturate at the largest reachable
// reading.
func BodyFor(pose physics.Transform, speed, slipDeg float64) physics.Body {
	phi := slipDeg * math.Pi / 180
	if speed < 1 && math.Sin(phi) > speed {
		phi = math.Asin(speed)
	}
	sin, cos := math.Sincos(phi)

	// forward+velocity must point along phi: solve |k*(sin,0,cos) - fwd| = speed
	k := cos + math.Sqrt(max(speed*speed-sin*sin, 0))
	local := physics.Vec3{k * sin, 0, k*cos - 1}
	return physics.Body{Velocity: pose.Rotate(local), Transform: pose}
}

// Frames expands the script into fixed steps. The body position integrates
// velocity across segment boundaries.
func (s *Script) Frames() []Frame {
	var (
		frames []Frame
		pos    = vec(s.Start)
		clock  float64
	)
	for _, seg := range s.Segments {
		n := int(math.Ceil(seg.Duration/seg.DT - 1e-9))
		fired := make([]bool, len(seg.Impacts))
		for i := 0; i < n; i++ {
			pose := physics.Pose(pos, seg.HeadingDeg)
			body := BodyFor(pose, seg.Speed, seg.SlipDeg)
			elapsed := float64(i+1) * seg.DT

			f := Frame{
				Index:   len(frames),
				Segment: seg.Name,
				Time:    clock,
				DT:      seg.DT,
				Body:    body,
			}
			for j, imp := range seg.Impacts {
				if fired[j] || imp.At > elapsed+1e-9 {
					continue
				}
				fired[j] = true
				f.Collisions = append(f.Collisions, impact(s.Target, pose, imp))
			}
			frames = append(frames, f)

			pos = pos.Add(body.Velocity.Mul(seg.DT))
			clock += seg.DT
		}
	}
	return frames
}

func impact(target string, pose physics.Transform, imp Impact) physics.Collision {
	contacts := make([]physics.Vec3, len(imp.Contacts))
	for i, c := range imp.Contacts {
		contacts[i] = pose.TransformPoint(vec(c))
	}
	return physics.Collision{
		Target:    target,
		Impulse:   pose.Rotate(vec(imp.Impulse)),
		Contacts:  contacts,
		Transform: pose,
	}
}
