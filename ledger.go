package tradebook

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Ledger is an in-memory Repository. It is safe for concurrent use.
//
// Trades are kept in insertion order.
type Ledger struct {
	mu     sync.RWMutex
	trades []Trade
	nextID int64
	now    func() time.Time
	log    zerolog.Logger
}

var _ Repository = (*Ledger)(nil)

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		trades: make([]Trade, 0),
		nextID: 1,
		now:    time.Now,
		log:    logger.With().Str("repo", "ledger").Logger(),
	}
}

func (l *Ledger) index(id int64) int {
	return slices.IndexFunc(l.trades, func(t Trade) bool { return t.ID == id })
}

// Add validates t and appends it. A trade without id gets the next free one,
// a trade with an id keeps it if it is not already used. Every trade must be
// in the book currency.
func (l *Ledger) Add(t Trade) (Trade, error) {
	if err := t.Validate(); err != nil {
		return Trade{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case t.ID == 0:
		t.ID = l.nextID
	case t.ID < 0:
		return Trade{}, fmt.Errorf("%w: negative id %d", ErrInvalidTrade, t.ID)
	case l.index(t.ID) >= 0:
		return Trade{}, fmt.Errorf("%w: id %d is already used", ErrInvalidTrade, t.ID)
	}
	if err := CheckBookCurrency(l.currency(t.ID), t); err != nil {
		return Trade{}, err
	}
	l.nextID = max(l.nextID, t.ID+1)
	if t.CreatedAt.IsZero() {
		t.CreatedAt = l.now().UTC().Truncate(time.Second)
	}
	t = t.clone()
	l.trades = append(l.trades, t)

	l.log.Info().Int64("id", t.ID).Str("symbol", t.Symbol).Str("action", t.Action.String()).Msg("trade added")
	LogWarnings(l.log, t)
	return t.clone(), nil
}

// currency returns the currency of the first trade other than except, or
// "" if there is none. The caller holds the lock.
func (l *Ledger) currency(except int64) string {
	for _, t := range l.trades {
		if t.ID != except {
			return t.Currency()
		}
	}
	return ""
}

// Currency returns the book currency: the currency of its trades, or "" for
// an empty ledger.
func (l *Ledger) Currency() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.currency(0)
}

// Get returns the trade with id.
func (l *Ledger) Get(id int64) (Trade, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i := l.index(id)
	if i < 0 {
		return Trade{}, fmt.Errorf("trade %d: %w", id, ErrNotFound)
	}
	return l.trades[i].clone(), nil
}

// Update replaces the trade with the same id as t. The creation time is kept.
func (l *Ledger) Update(t Trade) (Trade, error) {
	if err := t.Validate(); err != nil {
		return Trade{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.index(t.ID)
	if i < 0 {
		return Trade{}, fmt.Errorf("trade %d: %w", t.ID, ErrNotFound)
	}
	if err := CheckBookCurrency(l.currency(t.ID), t); err != nil {
		return Trade{}, err
	}
	t.CreatedAt = l.trades[i].CreatedAt
	l.trades[i] = t.clone()

	l.log.Info().Int64("id", t.ID).Str("symbol", t.Symbol).Msg("trade updated")
	LogWarnings(l.log, t)
	return t.clone(), nil
}

// Delete removes the trade with id.
func (l *Ledger) Delete(id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.index(id)
	if i < 0 {
		return fmt.Errorf("trade %d: %w", id, ErrNotFound)
	}
	l.trades = slices.Delete(l.trades, i, i+1)
	l.log.Info().Int64("id", id).Msg("trade deleted")
	return nil
}

// List returns the trades matching f, most recent first.
func (l *Ledger) List(f Filter) ([]Trade, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f.Apply(l.Snapshot()), nil
}

// Snapshot returns a copy of all trades, in insertion order.
func (l *Ledger) Snapshot() []Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Clone(l.trades)
}

// All returns the Snapshot.
func (l *Ledger) All() ([]Trade, error) { return l.Snapshot(), nil }

// Len returns the number of trades.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.trades)
}
