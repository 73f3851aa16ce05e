package tradebook

import "github.com/rs/zerolog"

// Repository stores trades.
//
// Add assigns an id to trades without one. Update replaces the trade with the
// same id. Get, Update and Delete return an error wrapping ErrNotFound for an
// unknown id, and Add and Update an error wrapping ErrInvalidTrade for a trade
// failing Validate.
type Repository interface {
	Add(t Trade) (Trade, error)
	Get(id int64) (Trade, error)
	Update(t Trade) (Trade, error)
	Delete(id int64) error
	List(f Filter) ([]Trade, error)
	// All returns every trade in insertion order, the snapshot to aggregate.
	All() ([]Trade, error)
}

var logger = zerolog.Nop()

// SetLogger sets the logger used by the repositories of this package.
// Logging is disabled by default.
func SetLogger(l zerolog.Logger) { logger = l }

// LogWarnings logs the warnings of t, if any.
func LogWarnings(log zerolog.Logger, t Trade) {
	for _, w := range t.Warnings() {
		log.Warn().Int64("id", t.ID).Str("symbol", t.Symbol).Msg(w)
	}
}

// clone returns a copy of t not sharing its option terms or closing.
func (t Trade) clone() Trade {
	if t.Option != nil {
		o := *t.Option
		t.Option = &o
	}
	if t.Close != nil {
		c := *t.Close
		t.Close = &c
	}
	return t
}

// Clone returns a deep copy of trades.
func Clone(trades []Trade) []Trade {
	out := make([]Trade, len(trades))
	for i, t := range trades {
		out[i] = t.clone()
	}
	return out
}
