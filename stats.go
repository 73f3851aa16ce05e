package tradebook

import (
	"cmp"
	"slices"
	"time"
)

// RankingSize is the number of symbols kept in the top and worst rankings.
const RankingSize = 5

// StockPosition is the running position in the shares of one symbol.
//
// Buys add to the cumulative cost and recompute the average cost, sells only
// reduce the quantity: this is not tax lot accounting.
type StockPosition struct {
	Symbol    string `json:"symbol"`
	Quantity  int    `json:"quantity"`
	TotalCost Money  `json:"totalCost"`
	AvgCost   Money  `json:"avgCost"`
}

// SymbolPnL is the net cash flow of one symbol.
type SymbolPnL struct {
	Symbol string `json:"symbol"`
	PnL    Money  `json:"pnl"`
}

// Stats summarizes a sequence of trades. It is recomputed from a snapshot of
// trades and never stored.
type Stats struct {
	Currency string `json:"currency,omitempty"` // Currency is the currency of the first trade.

	TotalTrades     int `json:"totalTrades"`
	StockTrades     int `json:"stockTrades"`
	OptionTrades    int `json:"optionTrades"`
	ExpiredOptions  int `json:"expiredOptions"`
	ActiveOptions   int `json:"activeOptions"`
	OpenPositions   int `json:"openPositions"`
	ClosedPositions int `json:"closedPositions"`

	RealizedPnL     Money `json:"realizedPnl"`
	TotalFees       Money `json:"totalFees"`
	TotalInvested   Money `json:"totalInvested"`
	TotalProceeds   Money `json:"totalProceeds"`
	PremiumPaid     Money `json:"premiumPaid"`
	PremiumReceived Money `json:"premiumReceived"`
	NetPnL          Money `json:"netPnl"` // NetPnL is TotalProceeds - TotalInvested.

	StockPositions  map[string]*StockPosition `json:"stockPositions"`
	OptionPositions map[string][]Trade        `json:"optionPositions"`
	SymbolPnL       map[string]Money          `json:"symbolPnl"`

	TopPerformers   []SymbolPnL `json:"topPerformers"`
	WorstPerformers []SymbolPnL `json:"worstPerformers"`

	symbols []string // in first seen order
}

// NewStats folds trades, in order, into a Stats. Expiration is evaluated at now.
// trades is never modified. Trades must share one currency, as the trades of a
// Repository do.
func NewStats(trades []Trade, now time.Time) *Stats {
	s := &Stats{
		StockPositions:  make(map[string]*StockPosition),
		OptionPositions: make(map[string][]Trade),
		SymbolPnL:       make(map[string]Money),
	}
	for _, t := range trades {
		s.add(t, now)
	}
	s.NetPnL = s.TotalProceeds.Sub(s.TotalInvested)
	s.settleCurrency()
	s.rank()
	return s
}

// settleCurrency gives the stats currency to amounts that never got one.
func (s *Stats) settleCurrency() {
	if s.Currency == "" {
		return
	}
	settle := func(m *Money) {
		if m.cur == "" {
			m.cur = s.Currency
		}
	}
	for _, m := range []*Money{&s.RealizedPnL, &s.TotalFees, &s.TotalInvested, &s.TotalProceeds, &s.PremiumPaid, &s.PremiumReceived, &s.NetPnL} {
		settle(m)
	}
	for _, p := range s.StockPositions {
		settle(&p.TotalCost)
		settle(&p.AvgCost)
	}
	for sym, m := range s.SymbolPnL {
		settle(&m)
		s.SymbolPnL[sym] = m
	}
}

func (s *Stats) add(t Trade, now time.Time) {
	if s.Currency == "" {
		s.Currency = t.Currency()
	}
	s.TotalTrades++
	if t.IsOption() {
		s.OptionTrades++
		if t.IsExpired(now) {
			s.ExpiredOptions++
		} else {
			s.ActiveOptions++
		}
	} else {
		s.StockTrades++
	}

	if t.IsClosed() {
		s.ClosedPositions++
		s.RealizedPnL = s.RealizedPnL.Add(t.RealizedPnL())
	} else {
		s.OpenPositions++
	}
	s.TotalFees = s.TotalFees.Add(t.Fees)

	pnl, seen := s.SymbolPnL[t.Symbol]
	if !seen {
		s.symbols = append(s.symbols, t.Symbol)
	}

	cost := t.TotalCost()
	value := cost.Abs()
	qty := abs(t.Quantity)

	var pos *StockPosition
	if !t.IsOption() {
		pos = s.position(t.Symbol)
	}
	if cost.IsPositive() {
		s.TotalInvested = s.TotalInvested.Add(value)
		pnl = pnl.Sub(value)
		if t.IsOption() {
			s.PremiumPaid = s.PremiumPaid.Add(value)
		} else {
			pos.TotalCost = pos.TotalCost.Add(value)
			pos.Quantity += qty
			if pos.Quantity > 0 {
				pos.AvgCost = pos.TotalCost.DivInt(pos.Quantity)
			}
		}
	} else {
		// A zero cost is booked as a credit.
		s.TotalProceeds = s.TotalProceeds.Add(value)
		pnl = pnl.Add(value)
		if t.IsOption() {
			s.PremiumReceived = s.PremiumReceived.Add(value)
		} else {
			pos.Quantity -= qty
		}
	}
	s.SymbolPnL[t.Symbol] = pnl

	if t.IsOption() {
		s.OptionPositions[t.Symbol] = append(s.OptionPositions[t.Symbol], t)
	}
}

func (s *Stats) position(symbol string) *StockPosition {
	pos, ok := s.StockPositions[symbol]
	if !ok {
		pos = &StockPosition{Symbol: symbol}
		s.StockPositions[symbol] = pos
	}
	return pos
}

// rank sorts symbols by net cash flow, descending. Ties keep the first seen order.
func (s *Stats) rank() {
	ranking := make([]SymbolPnL, 0, len(s.symbols))
	for _, sym := range s.symbols {
		ranking = append(ranking, SymbolPnL{Symbol: sym, PnL: s.SymbolPnL[sym]})
	}
	slices.SortStableFunc(ranking, func(a, b SymbolPnL) int { return b.PnL.Cmp(a.PnL) })

	n := min(RankingSize, len(ranking))
	s.TopPerformers = slices.Clone(ranking[:n])
	s.WorstPerformers = slices.Clone(ranking[len(ranking)-n:])
	if s.TopPerformers == nil {
		s.TopPerformers = []SymbolPnL{}
		s.WorstPerformers = []SymbolPnL{}
	}
}

// Symbols returns every symbol traded, in first seen order.
func (s *Stats) Symbols() []string { return slices.Clone(s.symbols) }

// Positions returns the stock positions sorted by symbol.
func (s *Stats) Positions() []StockPosition {
	list := make([]StockPosition, 0, len(s.StockPositions))
	for _, p := range s.StockPositions {
		list = append(list, *p)
	}
	slices.SortFunc(list, func(a, b StockPosition) int { return cmp.Compare(a.Symbol, b.Symbol) })
	return list
}
