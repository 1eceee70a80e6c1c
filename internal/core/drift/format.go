package drift

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatScore renders a score with thousands grouping, no decimals and at
// least three digits: 7 -> "007", 12345.6 -> "12,346".
func FormatScore(v float64) string {
	n := int64(math.Round(v))
	if n >= 0 && n < 1000 {
		return fmt.Sprintf("%03d", n)
	}
	return printer.Sprintf("%d", n)
}

// FormatTotal is the total-score label text.
func FormatTotal(v float64) string {
	return "Total: " + FormatScore(v)
}

// FormatFactor renders the multiplier with one decimal and an "X" suffix.
func FormatFactor(v float64) string {
	return printer.Sprintf("%.1f", math.Round(v*10)/10) + "X"
}

// FormatAngle renders whole degrees.
func FormatAngle(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(v))) + "°"
}
