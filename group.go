package tradebook

// SymbolGroup gathers the trades of one symbol.
type SymbolGroup struct {
	Symbol       string
	StockTrades  []Trade
	OptionTrades []Trade
	Cost         Money // Cost is the sum of the total cost of buy trades.
	Proceeds     Money // Proceeds is the sum of the total cost of sell trades, a negative amount.
}

// Net returns the net cash flow of the group, positive when more was received than paid.
func (g SymbolGroup) Net() Money { return g.Proceeds.Add(g.Cost).Neg() }

// GroupBySymbol groups trades by symbol, in first seen order.
func GroupBySymbol(trades []Trade) []SymbolGroup {
	var groups []SymbolGroup
	index := make(map[string]int)
	for _, t := range trades {
		i, ok := index[t.Symbol]
		if !ok {
			i = len(groups)
			index[t.Symbol] = i
			zero := M(0, t.Currency())
			groups = append(groups, SymbolGroup{Symbol: t.Symbol, Cost: zero, Proceeds: zero})
		}
		g := &groups[i]
		if t.IsOption() {
			g.OptionTrades = append(g.OptionTrades, t)
		} else {
			g.StockTrades = append(g.StockTrades, t)
		}
		switch {
		case t.Action.IsBuy():
			g.Cost = g.Cost.Add(t.TotalCost())
		case t.Action.IsSell():
			g.Proceeds = g.Proceeds.Add(t.TotalCost())
		}
	}
	return groups
}
