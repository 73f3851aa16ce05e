package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/tradebook"
)

// GroupsMarkdown renders the trades grouped by symbol, with the cost of the
// buys and the proceeds of the sells of each symbol.
func GroupsMarkdown(groups []tradebook.SymbolGroup) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Positions by Symbol\n\n")
	if len(groups) == 0 {
		fmt.Fprintln(&b, "No trades found.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Symbol | Stock Trades | Option Trades | Cost | Proceeds | Net |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|")
	for _, g := range groups {
		fmt.Fprintf(&b, "| %s | %d | %d | %s | %s | %s |\n",
			cell(g.Symbol), len(g.StockTrades), len(g.OptionTrades),
			Currency(g.Cost), Currency(g.Proceeds.Neg()), Signed(g.Net()))
	}

	for _, g := range groups {
		fmt.Fprintf(&b, "\n## %s\n\n", cell(g.Symbol))
		fmt.Fprintln(&b, "| Date | Type | Action | Quantity | Price | Total Cost |")
		fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|---:|")
		for _, list := range [][]tradebook.Trade{g.StockTrades, g.OptionTrades} {
			for _, t := range list {
				fmt.Fprintf(&b, "| %s | %s | %s | %d | %s | %s |\n",
					t.Date, instrument(t), t.Action.Title(), t.Quantity, Currency(t.Price), Signed(t.TotalCost()))
			}
		}
	}
	return b.String()
}
