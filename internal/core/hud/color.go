package hud

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Color is a terminal colour; config files spell it as a name ("yellow") or
// as "#rrggbb".
type Color = tcell.Color

// ParseColor resolves a config colour string.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "default" {
		return tcell.ColorDefault, nil
	}
	c := tcell.GetColor(s)
	if c == tcell.ColorDefault {
		return tcell.ColorDefault, fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}
	return c, nil
}

// CSS renders a colour as "#rrggbb", or "" for the terminal default.
func CSS(c Color) string {
	hex := c.Hex()
	if hex < 0 {
		return ""
	}
	return fmt.Sprintf("#%06x", hex)
}
