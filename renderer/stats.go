package renderer

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/etnz/tradebook"
)

// StatsMarkdown renders the portfolio statistics: a summary, the stock and
// option positions, and the best and worst symbols by net cash flow.
func StatsMarkdown(s *tradebook.Stats) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Portfolio Summary\n\n")
	fmt.Fprintln(&b, "| Metric | Value |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Total Trades | %d |\n", s.TotalTrades)
	fmt.Fprintf(&b, "| Stock Trades | %d |\n", s.StockTrades)
	fmt.Fprintf(&b, "| Option Trades | %d |\n", s.OptionTrades)
	fmt.Fprintf(&b, "| Active Options | %d |\n", s.ActiveOptions)
	fmt.Fprintf(&b, "| Expired Options | %d |\n", s.ExpiredOptions)
	fmt.Fprintf(&b, "| Open Positions | %d |\n", s.OpenPositions)
	fmt.Fprintf(&b, "| Closed Positions | %d |\n", s.ClosedPositions)
	fmt.Fprintf(&b, "| Total Invested | %s |\n", Currency(s.TotalInvested))
	fmt.Fprintf(&b, "| Total Proceeds | %s |\n", Currency(s.TotalProceeds))
	fmt.Fprintf(&b, "| Net P&L | %s |\n", Signed(s.NetPnL))
	if s.TotalInvested.IsPositive() {
		fmt.Fprintf(&b, "| Net Return | %s |\n", Percentage(100*s.NetPnL.AsFloat()/s.TotalInvested.AsFloat()))
	}
	fmt.Fprintf(&b, "| Realized P&L | %s |\n", Signed(s.RealizedPnL))
	fmt.Fprintf(&b, "| Premium Paid | %s |\n", Currency(s.PremiumPaid))
	fmt.Fprintf(&b, "| Premium Received | %s |\n", Currency(s.PremiumReceived))
	fmt.Fprintf(&b, "| Total Fees | %s |\n", Currency(s.TotalFees))

	ConditionalBlock(&b, func(w io.Writer) bool {
		positions := s.Positions()
		fmt.Fprint(w, "\n## Stock Positions\n\n")
		fmt.Fprintln(w, "| Symbol | Quantity | Avg Cost | Total Cost |")
		fmt.Fprintln(w, "|:---|---:|---:|---:|")
		for _, p := range positions {
			fmt.Fprintf(w, "| %s | %d | %s | %s |\n", cell(p.Symbol), p.Quantity, Currency(p.AvgCost), Currency(p.TotalCost))
		}
		return len(positions) > 0
	})

	ConditionalBlock(&b, func(w io.Writer) bool {
		symbols := make([]string, 0, len(s.OptionPositions))
		for sym := range s.OptionPositions {
			symbols = append(symbols, sym)
		}
		slices.Sort(symbols)

		fmt.Fprint(w, "\n## Option Positions\n")
		for _, sym := range symbols {
			fmt.Fprintf(w, "\n### %s\n\n", cell(sym))
			fmt.Fprintln(w, "| Date | Type | Action | Contracts | Strike | Expiration | Premium | Total Cost |")
			fmt.Fprintln(w, "|:---|:---|:---|---:|---:|:---|---:|---:|")
			for _, t := range s.OptionPositions[sym] {
				strike, expiration := "", ""
				if o := t.Option; o != nil {
					strike, expiration = Currency(o.Strike), o.Expiration.String()
				}
				fmt.Fprintf(w, "| %s | %s | %s | %d | %s | %s | %s | %s |\n",
					t.Date, t.Instrument, t.Action.Title(), t.Quantity, strike, expiration, Currency(t.Price), Currency(t.TotalCost()))
			}
		}
		return len(symbols) > 0
	})

	renderRanking(&b, "Top Performers", s.TopPerformers)
	renderRanking(&b, "Worst Performers", s.WorstPerformers)
	return b.String()
}

func renderRanking(w io.Writer, title string, ranking []tradebook.SymbolPnL) {
	if len(ranking) == 0 {
		return
	}
	fmt.Fprintf(w, "\n## %s\n\n", title)
	fmt.Fprintln(w, "| Symbol | Net Cash Flow | |")
	fmt.Fprintln(w, "|:---|---:|:---|")
	for _, r := range ranking {
		fmt.Fprintf(w, "| %s | %s | %s |\n", cell(r.Symbol), Signed(r.PnL), Sign(r.PnL))
	}
}
