package hud

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/driftlab/internal/core/observability/log"
)

const indicatorText = "[ DRIFT ]"

// TerminalRenderer paints a Board onto a tcell screen.
type TerminalRenderer struct {
	screen tcell.Screen
	board  *Board
	logger log.Log

	originX, originY int
	drawn            uint64
	everDrawn        bool
}

func NewTerminalRenderer(screen tcell.Screen, board *Board, logger log.Log) (*TerminalRenderer, error) {
	if screen == nil {
		return nil, ErrScreenRequired
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &TerminalRenderer{
		screen:  screen,
		board:   board,
		logger:  logger.Named("hud.terminal"),
		originX: 2,
		originY: 1,
	}, nil
}

// Draw paints the current board and flushes the screen.
func (r *TerminalRenderer) Draw() {
	snap := r.board.Snapshot()
	r.screen.Clear()

	y := r.originY
	for _, l := range snap.Labels {
		style := tcell.StyleDefault.Foreground(l.color)
		r.putString(r.originX, y, l.Text, style)
		y++
	}
	if snap.Indicator {
		style := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorOrange).Bold(true)
		r.putString(r.originX, y+1, indicatorText, style)
	}

	r.screen.Show()
	r.drawn = snap.Revision
	r.everDrawn = true
}

// Run redraws at the given interval whenever the board changed, until ctx is
// done or the user presses Esc, q or Ctrl-C. quit is invoked on a key exit.
func (r *TerminalRenderer) Run(ctx context.Context, interval time.Duration, quit func()) error {
	go r.pollKeys(quit)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !r.everDrawn || r.board.Revision() != r.drawn {
				r.Draw()
			}
		}
	}
}

func (r *TerminalRenderer) pollKeys(quit func()) {
	for {
		ev := r.screen.PollEvent()
		if ev == nil {
			return
		}
		switch e := ev.(type) {
		case *tcell.EventKey:
			if e.Key() == tcell.KeyEscape || e.Key() == tcell.KeyCtrlC || e.Rune() == 'q' {
				r.logger.Info("quit requested from terminal")
				if quit != nil {
					quit()
				}
				return
			}
		case *tcell.EventResize:
			r.screen.Sync()
		}
	}
}

func (r *TerminalRenderer) putString(x, y int, s string, style tcell.Style) {
	for _, ch := range s {
		r.screen.SetContent(x, y, ch, nil, style)
		x++
	}
}
