package tradebook

import (
	"cmp"
	"slices"
	"strings"

	"github.com/etnz/tradebook/date"
)

// Filter selects trades. Zero fields match everything.
type Filter struct {
	Instrument Instrument
	Action     Action
	Symbol     string     // Symbol matches symbols containing it, ignoring case.
	Dates      date.Range // Dates is inclusive on both ends.
}

// ParseFilter builds a Filter from its textual form. Empty strings leave the
// matching field open; dates use the date.Parse format.
func ParseFilter(instrument, action, symbol, from, to string) (Filter, error) {
	f := Filter{Symbol: strings.TrimSpace(symbol)}
	var err error
	if s := strings.ToLower(strings.TrimSpace(instrument)); s != "" {
		if f.Instrument, err = ParseInstrument(s); err != nil {
			return Filter{}, err
		}
	}
	if s := strings.ToLower(strings.TrimSpace(action)); s != "" {
		if f.Action, err = ParseAction(s); err != nil {
			return Filter{}, err
		}
	}
	if from != "" {
		if f.Dates.From, err = date.Parse(from); err != nil {
			return Filter{}, err
		}
	}
	if to != "" {
		if f.Dates.To, err = date.Parse(to); err != nil {
			return Filter{}, err
		}
	}
	return f, f.Validate()
}

// Validate reports an inverted date range.
func (f Filter) Validate() error {
	return f.Dates.Validate()
}

// Match reports whether t passes the filter.
func (f Filter) Match(t Trade) bool {
	if f.Instrument != 0 && t.Instrument != f.Instrument {
		return false
	}
	if f.Action != 0 && t.Action != f.Action {
		return false
	}
	if f.Symbol != "" && !strings.Contains(strings.ToUpper(t.Symbol), strings.ToUpper(strings.TrimSpace(f.Symbol))) {
		return false
	}
	return f.Dates.Contains(t.Date)
}

// Apply returns the trades matching f, most recent first. Trades on the same
// day are ordered by id.
func (f Filter) Apply(trades []Trade) []Trade {
	out := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	SortByDate(out)
	return out
}

// SortByDate sorts trades by date, most recent first, then by id.
func SortByDate(trades []Trade) {
	slices.SortStableFunc(trades, func(a, b Trade) int {
		switch {
		case a.Date.After(b.Date):
			return -1
		case a.Date.Before(b.Date):
			return 1
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
