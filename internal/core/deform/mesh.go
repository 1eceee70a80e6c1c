package deform

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/driftlab/internal/core/systems/physics"
)

// Mesh keeps the rest snapshot next to the live vertex buffer. Indices are
// stable: vertex i always corresponds to rest vertex i.
type Mesh struct {
	rest    []physics.Vec3
	current []physics.Vec3
}

// NewMesh snapshots vertices as the rest pose.
func NewMesh(vertices []physics.Vec3) (*Mesh, error) {
	if len(vertices) == 0 {
		return nil, ErrEmptyMesh
	}
	rest := make([]physics.Vec3, len(vertices))
	copy(rest, vertices)
	current := make([]physics.Vec3, len(vertices))
	copy(current, vertices)
	return &Mesh{rest: rest, current: current}, nil
}

func (m *Mesh) Len() int { return len(m.current) }

func (m *Mesh) Vertex(i int) physics.Vec3 { return m.current[i] }

func (m *Mesh) RestVertex(i int) physics.Vec3 { return m.rest[i] }

// Vertices returns a copy of the live buffer.
func (m *Mesh) Vertices() []physics.Vec3 {
	out := make([]physics.Vec3, len(m.current))
	copy(out, m.current)
	return out
}

// Displacement is how far vertex i has moved from rest.
func (m *Mesh) Displacement(i int) float64 {
	return physics.Distance(m.current[i], m.rest[i])
}

// MaxDisplacement is the largest displacement over all vertices.
func (m *Mesh) MaxDisplacement() float64 {
	var out float64
	for i := range m.current {
		out = math.Max(out, m.Displacement(i))
	}
	return out
}

// Fingerprint hashes the live buffer. Render and collision geometry carrying
// the same fingerprint hold the same vertices.
func (m *Mesh) Fingerprint() uint64 {
	return Fingerprint(m.current)
}

// Fingerprint hashes a vertex buffer.
func Fingerprint(vertices []physics.Vec3) uint64 {
	d := xxhash.New()
	var buf [24]byte
	for _, v := range vertices {
		binary.LittleEndian.PutUint64(buf[0:], math.Float64bits(v.X()))
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(v.Y()))
		binary.LittleEndian.PutUint64(buf[16:], math.Float64bits(v.Z()))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

// BoxMesh builds an axis-aligned cube of the given edge length centred on the
// origin. Each face is a (subdivisions+1)^2 vertex grid; edge vertices are
// duplicated per face like a split-normal engine cube.
func BoxMesh(size float64, subdivisions int) []physics.Vec3 {
	if subdivisions < 1 {
		subdivisions = 1
	}
	h := size / 2
	step := size / float64(subdivisions)
	n := subdivisions + 1

	// each face: a fixed axis at ±h and two free axes
	type face struct {
		axis int
		sign float64
	}
	faces := []face{{0, 1}, {0, -1}, {1, 1}, {1, -1}, {2, 1}, {2, -1}}

	out := make([]physics.Vec3, 0, len(faces)*n*n)
	for _, f := range faces {
		u, v := (f.axis+1)%3, (f.axis+2)%3
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				var p physics.Vec3
				p[f.axis] = f.sign * h
				p[u] = -h + float64(i)*step
				p[v] = -h + float64(j)*step
				out = append(out, p)
			}
		}
	}
	return out
}
