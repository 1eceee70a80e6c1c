package deform

import (
	"errors"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/driftlab/internal/core/audio"
	"github.com/zeusync/driftlab/internal/core/events/bus"
	"github.com/zeusync/driftlab/internal/core/observability/log"
	"github.com/zeusync/driftlab/internal/core/systems/physics"
)

const (
	eventSource = "deform"

	// capEpsilon absorbs the rounding left by the cap projection, so a
	// projected vertex counts as capped.
	capEpsilon = 1e-9
)

// Result reports what one collision did to the mesh.
type Result struct {
	Applied     bool
	Displaced   int
	Contacts    int
	Fingerprint uint64
	Clip        string
}

// Stats are cumulative counters.
type Stats struct {
	Collisions uint64
	Ignored    uint64
	Displaced  uint64
}

// Deformer dents a mesh where collisions land. Not safe for concurrent use;
// the host calls it from the collision callback thread.
type Deformer struct {
	cfg      Config
	mesh     *Mesh
	render   RenderGeometry
	collider CollisionGeometry

	player    ClipPlayer
	clips     []*audio.Clip
	rng       *rand.Rand
	publisher bus.Publisher
	logger    log.Log

	stats Stats
}

type Option func(*Deformer)

// WithAudio plays one of clips, picked uniformly, on every qualifying impact.
func WithAudio(player ClipPlayer, clips []*audio.Clip) Option {
	return func(d *Deformer) {
		d.player = player
		d.clips = clips
	}
}

// WithRand fixes the clip selection source.
func WithRand(r *rand.Rand) Option {
	return func(d *Deformer) { d.rng = r }
}

func WithPublisher(p bus.Publisher) Option {
	return func(d *Deformer) { d.publisher = p }
}

func WithLogger(l log.Log) Option {
	return func(d *Deformer) { d.logger = l }
}

// New validates the tuning and the geometry sinks and pushes the rest pose to
// both sinks so they start in sync.
func New(cfg Config, mesh *Mesh, render RenderGeometry, collider CollisionGeometry, opts ...Option) (*Deformer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if mesh == nil || mesh.Len() == 0 {
		return nil, ErrEmptyMesh
	}
	if render == nil {
		return nil, ErrMissingRenderGeometry
	}
	if collider == nil {
		return nil, ErrMissingCollisionGeometry
	}

	d := &Deformer{
		cfg:      cfg,
		mesh:     mesh,
		render:   render,
		collider: collider,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:   log.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.Named("deform")
	d.commit()
	return d, nil
}

func (d *Deformer) Mesh() *Mesh  { return d.mesh }
func (d *Deformer) Stats() Stats { return d.stats }

// OnCollision applies one collision event. Events at or below MinDamage are
// ignored entirely. The error only reports audio or event delivery failures;
// the mesh has been updated regardless.
func (d *Deformer) OnCollision(c physics.Collision) (Result, error) {
	d.stats.Collisions++
	power := c.Magnitude()
	if power <= d.cfg.MinDamage {
		d.stats.Ignored++
		d.logger.Debug("impact below damage threshold", log.Float64("impulse", power))
		return Result{}, nil
	}

	var errs error
	res := Result{Applied: true, Contacts: len(c.Contacts)}

	if d.player != nil && len(d.clips) > 0 {
		clip := d.clips[d.rng.IntN(len(d.clips))]
		res.Clip = clip.Name
		if err := d.player.PlayClipAtPoint(clip, c.Transform.Position, d.cfg.ImpactVolume); err != nil {
			errs = errors.Join(errs, err)
		}
	}

	for _, p := range c.Contacts {
		res.Displaced += d.dent(c.Transform.InverseTransformPoint(p))
	}
	res.Fingerprint = d.commit()
	d.stats.Displaced += uint64(res.Displaced)

	d.logger.Debug("mesh deformed",
		log.Float64("impulse", power),
		log.Int("contacts", res.Contacts),
		log.Int("displaced", res.Displaced),
		log.Uint64("fingerprint", res.Fingerprint),
	)
	if d.publisher != nil {
		if err := d.publisher.Publish(bus.NewEvent(bus.TypeDeformApplied, eventSource, res, nil)); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return res, errs
}

// dent pushes the vertices around one local-space contact point and returns
// how many moved.
func (d *Deformer) dent(local physics.Vec3) int {
	radius := d.cfg.DeformRadius
	maxDeform := d.cfg.MaxDeform
	moved := 0

	for i := range d.mesh.current {
		v := d.mesh.current[i]
		rest := d.mesh.rest[i]

		fromCollision := physics.Distance(v, local)
		fromOriginal := physics.Distance(v, rest)
		if fromCollision >= radius || fromOriginal >= maxDeform-capEpsilon {
			continue
		}

		// linear radial falloff, floored so the rim never pulls outward
		falloff := 1 - (fromCollision/radius)*d.cfg.DamageFalloff
		if falloff < 0 {
			falloff = 0
		}

		displacement := physics.Vec3{
			mgl64.Clamp(local.X()*falloff, 0, maxDeform),
			mgl64.Clamp(local.Y()*falloff, 0, maxDeform),
			mgl64.Clamp(local.Z()*falloff, 0, maxDeform),
		}
		next := v.Sub(displacement.Mul(d.cfg.DamageMultiplier))

		// keep the cumulative offset inside the maxDeform sphere
		if offset := next.Sub(rest); offset.Len() > maxDeform {
			next = rest.Add(offset.Mul(maxDeform / offset.Len()))
		}
		if next != v {
			d.mesh.current[i] = next
			moved++
		}
	}
	return moved
}

// commit writes the live buffer to both geometry sinks.
func (d *Deformer) commit() uint64 {
	fp := d.mesh.Fingerprint()
	d.render.SetVertices(d.mesh.current, fp)
	d.collider.SetSharedMesh(d.mesh.current, fp)
	return fp
}
