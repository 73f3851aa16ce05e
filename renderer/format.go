package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/tradebook"
)

// Currency formats m with its currency symbol and two decimals, e.g. "$1,234.50".
func Currency(m tradebook.Money) string { return m.String() }

// Signed formats m like Currency with an explicit sign, "-" for zero.
func Signed(m tradebook.Money) string { return m.SignedString() }

// Percentage formats a value already expressed in percent, e.g. "12.50%".
func Percentage(v float64) string { return fmt.Sprintf("%.2f%%", v) }

// Sign classifies an amount for display: "positive", "negative" or "neutral".
func Sign(m tradebook.Money) string {
	switch {
	case m.IsPositive():
		return "positive"
	case m.IsNegative():
		return "negative"
	default:
		return "neutral"
	}
}

// cell escapes a user provided value for a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

