package hud

import (
	"sync"

	"github.com/gdamore/tcell/v2"
)

// LabelID names one of the on-screen text labels.
type LabelID uint8

const (
	LabelTotal LabelID = iota
	LabelCurrent
	LabelFactor
	LabelAngle

	labelCount
)

var labelNames = [labelCount]string{"total", "current", "factor", "angle"}

func (id LabelID) String() string {
	if id >= labelCount {
		return "unknown"
	}
	return labelNames[id]
}

// LabelIDs lists every label in display order.
func LabelIDs() []LabelID {
	return []LabelID{LabelTotal, LabelCurrent, LabelFactor, LabelAngle}
}

type labelState struct {
	text  string
	color Color
}

// Board holds the HUD state written by gameplay components on the frame
// thread and read by renderers on their own goroutines.
type Board struct {
	mu        sync.RWMutex
	labels    [labelCount]labelState
	indicator bool
	revision  uint64
}

func NewBoard() *Board {
	b := &Board{}
	for i := range b.labels {
		b.labels[i].color = tcell.ColorDefault
	}
	return b
}

// Label returns a writable handle on one label.
func (b *Board) Label(id LabelID) (*Label, error) {
	if id >= labelCount {
		return nil, ErrUnknownLabel
	}
	return &Label{board: b, id: id}, nil
}

// MustLabel is Label for the fixed ids declared in this package.
func (b *Board) MustLabel(id LabelID) *Label {
	l, err := b.Label(id)
	if err != nil {
		panic(err)
	}
	return l
}

// Indicator returns the handle on the drift indicator.
func (b *Board) Indicator() *Indicator {
	return &Indicator{board: b}
}

// Revision increases every time something visible changes.
func (b *Board) Revision() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}

// LabelSnapshot is one label as seen by a renderer.
type LabelSnapshot struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Color string `json:"color,omitempty"`

	color Color
}

// Snapshot is a consistent copy of the whole board.
type Snapshot struct {
	Revision  uint64          `json:"revision"`
	Labels    []LabelSnapshot `json:"labels"`
	Indicator bool            `json:"indicator"`
}

func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s := Snapshot{
		Revision:  b.revision,
		Labels:    make([]LabelSnapshot, 0, labelCount),
		Indicator: b.indicator,
	}
	for _, id := range LabelIDs() {
		st := b.labels[id]
		s.Labels = append(s.Labels, LabelSnapshot{
			ID:    id.String(),
			Text:  st.text,
			Color: CSS(st.color),
			color: st.color,
		})
	}
	return s
}

// Text returns the current text of a label.
func (b *Board) Text(id LabelID) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if id >= labelCount {
		return ""
	}
	return b.labels[id].text
}

// Color returns the current colour of a label.
func (b *Board) Color(id LabelID) Color {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if id >= labelCount {
		return tcell.ColorDefault
	}
	return b.labels[id].color
}

// IndicatorActive reports the drift indicator toggle.
func (b *Board) IndicatorActive() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.indicator
}

func (b *Board) setText(id LabelID, text string) {
	b.mu.Lock()
	if b.labels[id].text != text {
		b.labels[id].text = text
		b.revision++
	}
	b.mu.Unlock()
}

func (b *Board) setColor(id LabelID, c Color) {
	b.mu.Lock()
	if b.labels[id].color != c {
		b.labels[id].color = c
		b.revision++
	}
	b.mu.Unlock()
}

func (b *Board) setIndicator(active bool) {
	b.mu.Lock()
	if b.indicator != active {
		b.indicator = active
		b.revision++
	}
	b.mu.Unlock()
}

// Label is a text element on the board.
type Label struct {
	board *Board
	id    LabelID
}

func (l *Label) SetText(text string) { l.board.setText(l.id, text) }
func (l *Label) SetColor(c Color)    { l.board.setColor(l.id, c) }

// Indicator is the on/off drift badge.
type Indicator struct {
	board *Board
}

func (i *Indicator) SetActive(active bool) { i.board.setIndicator(active) }
