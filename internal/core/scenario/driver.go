package scenario

import (
	"context"
	"errors"
	"time"

	"github.com/zeusync/driftlab/internal/core/events/bus"
	"github.com/zeusync/driftlab/internal/core/observability/log"
	"github.com/zeusync/driftlab/internal/core/systems"
	"github.com/zeusync/driftlab/internal/core/systems/physics"
)

const eventSource = "scenario"

var _ physics.BodySource = (*Driver)(nil)

// Driver replays frames into a world: it serves as the body source for
// frame-driven systems and publishes each frame's collisions on the topic of
// their target before stepping.
type Driver struct {
	world  *systems.World
	frames []Frame
	next   int
	body   physics.Body
	logger log.Log
}

func NewDriver(world *systems.World, frames []Frame, logger log.Log) *Driver {
	if logger == nil {
		logger = log.Nop()
	}
	d := &Driver{world: world, frames: frames, logger: logger.Named("scenario")}
	if len(frames) > 0 {
		d.body = frames[0].Body
	}
	return d
}

// Body is the state of the frame being stepped.
func (d *Driver) Body() physics.Body { return d.body }

func (d *Driver) Remaining() int { return len(d.frames) - d.next }

// Step plays the next frame. It returns ErrFramesExhausted once every frame
// has been played.
func (d *Driver) Step() error {
	if d.next >= len(d.frames) {
		return ErrFramesExhausted
	}
	f := d.frames[d.next]
	d.next++
	d.body = f.Body

	var errs error
	for _, c := range f.Collisions {
		d.logger.Debug("collision",
			log.Int("frame", f.Index),
			log.String("target", c.Target),
			log.Float64("impulse", c.Magnitude()),
		)
		if err := d.world.PublishToTopic(c.Target, bus.NewEvent(bus.TypeCollision, eventSource, c, nil)); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	if err := d.world.Step(f.DT); err != nil {
		errs = errors.Join(errs, err)
	}
	return errs
}

// Run plays every frame. A positive speed paces frames in real time scaled
// by speed; zero runs as fast as possible. Frame errors are logged and the
// run continues; only context cancellation stops it early.
func (d *Driver) Run(ctx context.Context, speed float64) error {
	d.logger.Info("scenario started", log.Int("frames", d.Remaining()))
	for d.Remaining() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		dt := d.frames[d.next].DT
		if err := d.Step(); err != nil {
			d.logger.Warn("frame failed", log.Int("frame", d.next-1), log.Error(err))
		}
		if speed > 0 {
			wait := time.Duration(dt / speed * float64(time.Second))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	d.logger.Info("scenario finished", log.Int64("frames", d.world.FrameCount()), log.Duration("simulated", d.world.TotalTime()))
	return nil
}
