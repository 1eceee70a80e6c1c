package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/driftlab/internal/config"
	"github.com/zeusync/driftlab/internal/core/audio"
	"github.com/zeusync/driftlab/internal/core/deform"
	"github.com/zeusync/driftlab/internal/core/drift"
	"github.com/zeusync/driftlab/internal/core/hud"
	"github.com/zeusync/driftlab/internal/core/observability/log"
	"github.com/zeusync/driftlab/internal/core/scenario"
	"github.com/zeusync/driftlab/internal/injector"
)

type runOptions struct {
	config   string
	scenario string
	hud      string
	mirror   string
	speed    float64
	hold     time.Duration
}

func newRunCommand() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Drive a scripted lap through the drift and deform components",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts, cmd.Flags().Changed("hud"), cmd.Flags().Changed("mirror"))
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.config, "config", "c", "", "yaml config file")
	f.StringVarP(&opts.scenario, "scenario", "s", "", "yaml scenario file (built-in demo lap when empty)")
	f.StringVar(&opts.hud, "hud", config.HUDTerminal, "hud output: terminal or log")
	f.StringVar(&opts.mirror, "mirror", "", "serve the hud to websocket spectators on this address")
	f.Float64Var(&opts.speed, "speed", 1, "playback speed, 0 runs unpaced")
	f.DurationVar(&opts.hold, "hold", 3*time.Second, "keep the hud up after the lap ends")
	return cmd
}

func run(ctx context.Context, opts runOptions, hudSet, mirrorSet bool) error {
	cfg, err := loadConfig(opts.config)
	if err != nil {
		return err
	}
	if hudSet {
		cfg.HUD.Mode = opts.hud
	}
	if mirrorSet {
		cfg.HUD.Mirror = opts.mirror
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	// the terminal owns stdout and stderr while the hud is up
	if cfg.HUD.Mode == config.HUDTerminal && (cfg.Log.Output == "stderr" || cfg.Log.Output == "stdout") {
		cfg.Log.Output = "driftlab.log"
	}

	script := scenario.Demo()
	if opts.scenario != "" {
		if script, err = scenario.LoadFile(opts.scenario); err != nil {
			return err
		}
	}

	world, err := injector.InitializeWorld(cfg.Log)
	if err != nil {
		return err
	}
	logger := log.Provide()
	defer func() { _ = logger.Sync() }()

	board := hud.NewBoard()
	manager, err := drift.New(cfg.Drift, drift.BoardLabels(board), board.Indicator(),
		drift.WithPublisher(world.Bus()), drift.WithLogger(logger))
	if err != nil {
		return err
	}

	deformOpts := []deform.Option{deform.WithPublisher(world.Bus()), deform.WithLogger(logger)}
	if cfg.Audio.Enabled {
		player := audio.NewPlayer(cfg.Audio, logger)
		if err := player.Open(); err != nil {
			return err
		}
		defer player.Close()
		clips, err := audio.LoadClips(cfg.Audio.Clips, player.SampleRate())
		if err != nil {
			return err
		}
		deformOpts = append(deformOpts, deform.WithAudio(player, clips))
	}
	mesh, err := deform.NewMesh(deform.BoxMesh(cfg.Car.Size, cfg.Car.Subdivisions))
	if err != nil {
		return err
	}
	geometry := deform.NewGeometryBuffer()
	deformer, err := deform.New(cfg.Deform, mesh, geometry, geometry, deformOpts...)
	if err != nil {
		return err
	}

	// the screen must be up before any goroutine touches the world
	var renderer *hud.TerminalRenderer
	if cfg.HUD.Mode == config.HUDTerminal {
		screen, err := tcell.NewScreen()
		if err != nil {
			return err
		}
		if err := screen.Init(); err != nil {
			return err
		}
		defer screen.Fini()
		if renderer, err = hud.NewTerminalRenderer(screen, board, logger); err != nil {
			return err
		}
	}

	observer := &busLogger{logger: logger.Named("bus")}
	world.Bus().AddObserver(observer)
	defer world.Bus().RemoveObserver(observer)

	driver := scenario.NewDriver(world, script.Frames(), logger)
	if err := world.Register(drift.NewSystem(manager, driver)); err != nil {
		return err
	}
	if err := world.Register(deform.NewSystem(cfg.Car.Name, deformer)); err != nil {
		return err
	}
	if err := world.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = world.Stop(context.Background()) }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := driver.Run(ctx, opts.speed); err != nil {
			return err
		}
		s := manager.State()
		fields := []log.Field{
			log.String("scenario", script.Name),
			log.Float64("total", s.TotalScore),
			log.Uint64("displaced", deformer.Stats().Displaced),
			log.Uint64("fingerprint", geometry.Fingerprint()),
		}
		logger.Info("lap finished", append(fields, metricFields(world.Bus().GetMetrics())...)...)
		select {
		case <-ctx.Done():
		case <-time.After(opts.hold):
		}
		cancel()
		return nil
	})

	switch cfg.HUD.Mode {
	case config.HUDTerminal:
		g.Go(func() error { return renderer.Run(ctx, cfg.HUD.Refresh, cancel) })
	case config.HUDLog:
		g.Go(func() error { return logBoard(ctx, board, logger, cfg.HUD.Refresh) })
	}

	if cfg.HUD.Mirror != "" {
		mirror := hud.NewMirror(board, logger)
		srv := &http.Server{Addr: cfg.HUD.Mirror, Handler: mirror, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			logger.Info("hud mirror listening", log.String("addr", cfg.HUD.Mirror))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			err := mirror.Run(ctx, cfg.HUD.Refresh)
			shutdownCtx, done := context.WithTimeout(context.Background(), time.Second)
			defer done()
			return errors.Join(err, srv.Shutdown(shutdownCtx))
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// logBoard writes the hud labels to the log whenever they change.
func logBoard(ctx context.Context, board *hud.Board, logger log.Log, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	var last uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if rev := board.Revision(); rev != last {
				last = rev
				logger.Info("hud",
					log.String("total", board.Text(hud.LabelTotal)),
					log.String("current", board.Text(hud.LabelCurrent)),
					log.String("factor", board.Text(hud.LabelFactor)),
					log.String("angle", board.Text(hud.LabelAngle)),
					log.Bool("drifting", board.IndicatorActive()),
				)
			}
		}
	}
}
