package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	normalizeEpsilon = 1e-5
	angleEpsilon     = 1e-15
)

var (
	Forward = Vec3{0, 0, 1}
	Up      = Vec3{0, 1, 0}
	One     = Vec3{1, 1, 1}
)

// Transform places an object in the world: scale, then rotate, then translate.
type Transform struct {
	Position Vec3
	Rotation mgl64.Quat
	Scale    Vec3
}

// Identity is the transform of an object sitting at the origin, unrotated and
// unscaled.
func Identity() Transform {
	return Transform{Rotation: mgl64.QuatIdent(), Scale: One}
}

// Pose builds a unit-scale transform from a position and a yaw in degrees
// around +Y.
func Pose(position Vec3, yawDeg float64) Transform {
	return Transform{
		Position: position,
		Rotation: mgl64.QuatRotate(mgl64.DegToRad(yawDeg), Up),
		Scale:    One,
	}
}

// normalized fills in the zero-value fields so a bare Transform{} behaves
// like Identity.
func (t Transform) normalized() Transform {
	if t.Rotation.W == 0 && t.Rotation.V == (Vec3{}) {
		t.Rotation = mgl64.QuatIdent()
	}
	if t.Scale == (Vec3{}) {
		t.Scale = One
	}
	return t
}

// Matrix returns the local-to-world matrix.
func (t Transform) Matrix() mgl64.Mat4 {
	t = t.normalized()
	translate := mgl64.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	scale := mgl64.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return translate.Mul4(t.Rotation.Normalize().Mat4()).Mul4(scale)
}

// TransformPoint maps a local-space point into world space.
func (t Transform) TransformPoint(local Vec3) Vec3 {
	return t.Matrix().Mul4x1(local.Vec4(1)).Vec3()
}

// InverseTransformPoint maps a world-space point into the object's local
// space.
func (t Transform) InverseTransformPoint(world Vec3) Vec3 {
	return t.Matrix().Inv().Mul4x1(world.Vec4(1)).Vec3()
}

// Rotate turns a local direction into world space, ignoring position and
// scale.
func (t Transform) Rotate(dir Vec3) Vec3 {
	t = t.normalized()
	return t.Rotation.Normalize().Rotate(dir)
}

// Forward is local +Z rotated into world space.
func (t Transform) Forward() Vec3 {
	return t.Rotate(Forward)
}

// Normalize returns v scaled to unit length, or the zero vector when v is too
// short to carry a direction.
func Normalize(v Vec3) Vec3 {
	l := v.Len()
	if l > normalizeEpsilon {
		return v.Mul(1 / l)
	}
	return Vec3{}
}

// Angle is the unsigned angle between a and b in degrees, in [0, 180]. It is
// 0 when either vector is degenerate.
func Angle(a, b Vec3) float64 {
	denom := math.Sqrt(a.LenSqr() * b.LenSqr())
	if denom < angleEpsilon {
		return 0
	}
	dot := mgl64.Clamp(a.Dot(b)/denom, -1, 1)
	return mgl64.RadToDeg(math.Acos(dot))
}

// Distance between two points.
func Distance(a, b Vec3) float64 {
	return a.Sub(b).Len()
}
