package renderer

import (
	"fmt"
	"strings"
	"time"

	"github.com/etnz/tradebook"
)

// TradesMarkdown renders trades as a table, in the given order. Expiration
// status is evaluated at now.
func TradesMarkdown(trades []tradebook.Trade, now time.Time) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Trades\n\n")
	if len(trades) == 0 {
		fmt.Fprintln(&b, "No trades found.")
		return b.String()
	}

	fmt.Fprintln(&b, "| ID | Date | Symbol | Type | Action | Quantity | Price | Total Cost | P&L | Status | Notes |")
	fmt.Fprintln(&b, "|---:|:---|:---|:---|:---|---:|---:|---:|---:|:---|:---|")
	for _, t := range trades {
		pnl := ""
		if t.IsClosed() {
			pnl = Signed(t.RealizedPnL())
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %d | %s | %s | %s | %s | %s |\n",
			t.ID, t.Date, cell(t.Symbol), instrument(t), t.Action.Title(), t.Quantity,
			Currency(t.Price), Signed(t.TotalCost()), pnl, status(t, now), cell(t.Notes))
	}
	return b.String()
}

// TradeMarkdown renders a single trade in detail.
func TradeMarkdown(t tradebook.Trade, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Trade %d: %s %s\n\n", t.ID, t.Action.Title(), cell(t.Symbol))
	fmt.Fprintln(&b, "| Field | Value |")
	fmt.Fprintln(&b, "|:---|:---|")
	fmt.Fprintf(&b, "| Date | %s |\n", t.Date)
	fmt.Fprintf(&b, "| Type | %s |\n", instrument(t))
	fmt.Fprintf(&b, "| Quantity | %d |\n", t.Quantity)
	fmt.Fprintf(&b, "| Price | %s |\n", Currency(t.Price))
	if o := t.Option; o != nil {
		fmt.Fprintf(&b, "| Expiration | %s |\n", o.Expiration)
		fmt.Fprintf(&b, "| Days to Expiration | %d |\n", t.DaysToExpiration(now))
	}
	fmt.Fprintf(&b, "| Fees | %s |\n", Currency(t.Fees))
	fmt.Fprintf(&b, "| Total Cost | %s |\n", Signed(t.TotalCost()))
	if c := t.Close; c != nil {
		fmt.Fprintf(&b, "| Closed | %s |\n", c.Date)
		fmt.Fprintf(&b, "| Close Price | %s |\n", Currency(c.Price))
		fmt.Fprintf(&b, "| Close Quantity | %d |\n", c.Quantity)
		fmt.Fprintf(&b, "| Realized P&L | %s |\n", Signed(t.RealizedPnL()))
	}
	fmt.Fprintf(&b, "| Status | %s |\n", status(t, now))
	if t.Notes != "" {
		fmt.Fprintf(&b, "| Notes | %s |\n", cell(t.Notes))
	}
	return b.String()
}

// instrument describes the instrument, with the strike for options.
func instrument(t tradebook.Trade) string {
	if o := t.Option; o != nil {
		return fmt.Sprintf("%s %s", t.Instrument, Currency(o.Strike))
	}
	return t.Instrument.String()
}

// status describes the state of the trade at now.
func status(t tradebook.Trade, now time.Time) string {
	switch {
	case t.IsClosed():
		return "closed"
	case t.IsExpired(now):
		return "expired"
	case t.IsOption():
		return fmt.Sprintf("open, %dd left", t.DaysToExpiration(now))
	default:
		return "open"
	}
}
