// Package sqlite implements a tradebook.Repository persisted in a SQLite
// database.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	symbol          TEXT    NOT NULL,
	type            TEXT    NOT NULL,
	action          TEXT    NOT NULL,
	quantity        INTEGER NOT NULL,
	price           TEXT    NOT NULL,
	currency        TEXT    NOT NULL,
	date            TEXT    NOT NULL,
	strike_price    TEXT,
	expiration_date TEXT,
	fees            TEXT    NOT NULL DEFAULT '0',
	is_closed       INTEGER NOT NULL DEFAULT 0,
	closed_date     TEXT,
	close_price     TEXT,
	close_quantity  INTEGER,
	notes           TEXT    NOT NULL DEFAULT '',
	created_at      TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trades_date ON trades(date);
CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
`

// tradesColumns is the column list used by every SELECT, in scan order.
const tradesColumns = `id, symbol, type, action, quantity, price, currency, date,
	strike_price, expiration_date, fees, is_closed, closed_date, close_price,
	close_quantity, notes, created_at`

// Store is a tradebook.Repository backed by a SQLite database.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
	now func() time.Time
}

var _ tradebook.Repository = (*Store)(nil)

// Open opens, and creates if needed, the database at path. ":memory:" opens
// a private in-memory database.
func Open(path string, log zerolog.Logger) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		// Use WAL mode for better concurrency
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if path == ":memory:" {
		// Every connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}
	s, err := New(db, log)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New returns a Store using db, creating the trades table if needed.
func New(db *sql.DB, log zerolog.Logger) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{
		db:  db,
		log: log.With().Str("repo", "sqlite").Logger(),
		now: time.Now,
	}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Add validates and inserts t. A trade without id gets one from the database.
// Every trade must be in the book currency.
func (s *Store) Add(t tradebook.Trade) (tradebook.Trade, error) {
	if err := t.Validate(); err != nil {
		return tradebook.Trade{}, err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return tradebook.Trade{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	if err := checkCurrency(tx, t); err != nil {
		return tradebook.Trade{}, err
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now().UTC().Truncate(time.Second)
	}
	r := toRow(t)

	query := `
		INSERT INTO trades
		(symbol, type, action, quantity, price, currency, date, strike_price,
		 expiration_date, fees, is_closed, closed_date, close_price, close_quantity,
		 notes, created_at, id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	var id any // NULL lets SQLite pick the next id
	if t.ID != 0 {
		id = t.ID
	}
	res, err := tx.Exec(query, append(r.values(), id)...)
	if err != nil {
		return tradebook.Trade{}, fmt.Errorf("failed to insert trade: %w", err)
	}
	if t.ID == 0 {
		if t.ID, err = res.LastInsertId(); err != nil {
			return tradebook.Trade{}, fmt.Errorf("failed to read trade id: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return tradebook.Trade{}, fmt.Errorf("failed to insert trade: %w", err)
	}

	s.log.Info().
		Int64("id", t.ID).
		Str("symbol", t.Symbol).
		Str("action", t.Action.String()).
		Int("quantity", t.Quantity).
		Msg("Trade created")
	tradebook.LogWarnings(s.log, t)
	return t, nil
}

// Get returns the trade with id.
func (s *Store) Get(id int64) (tradebook.Trade, error) {
	row := s.db.QueryRow("SELECT "+tradesColumns+" FROM trades WHERE id = ?", id)
	t, err := scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return tradebook.Trade{}, fmt.Errorf("trade %d: %w", id, tradebook.ErrNotFound)
	}
	if err != nil {
		return tradebook.Trade{}, fmt.Errorf("failed to get trade %d: %w", id, err)
	}
	return t, nil
}

// Update replaces the trade with the same id as t. The creation time is kept.
func (s *Store) Update(t tradebook.Trade) (tradebook.Trade, error) {
	if err := t.Validate(); err != nil {
		return tradebook.Trade{}, err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return tradebook.Trade{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	if err := checkCurrency(tx, t); err != nil {
		return tradebook.Trade{}, err
	}
	r := toRow(t)
	query := `
		UPDATE trades SET
		symbol = ?, type = ?, action = ?, quantity = ?, price = ?, currency = ?,
		date = ?, strike_price = ?, expiration_date = ?, fees = ?, is_closed = ?,
		closed_date = ?, close_price = ?, close_quantity = ?, notes = ?
		WHERE id = ?
	`
	// created_at is the last value, it is not updated.
	values := r.values()
	values = append(values[:len(values)-1], t.ID)
	res, err := tx.Exec(query, values...)
	if err != nil {
		return tradebook.Trade{}, fmt.Errorf("failed to update trade %d: %w", t.ID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return tradebook.Trade{}, fmt.Errorf("failed to update trade %d: %w", t.ID, err)
	} else if n == 0 {
		return tradebook.Trade{}, fmt.Errorf("trade %d: %w", t.ID, tradebook.ErrNotFound)
	}
	if err := tx.Commit(); err != nil {
		return tradebook.Trade{}, fmt.Errorf("failed to update trade %d: %w", t.ID, err)
	}

	s.log.Info().Int64("id", t.ID).Str("symbol", t.Symbol).Msg("Trade updated")
	tradebook.LogWarnings(s.log, t)
	return s.Get(t.ID)
}

// checkCurrency rejects t if another trade of the book is in a different
// currency.
func checkCurrency(tx *sql.Tx, t tradebook.Trade) error {
	var book string
	err := tx.QueryRow("SELECT currency FROM trades WHERE id != ? ORDER BY id LIMIT 1", t.ID).Scan(&book)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to read book currency: %w", err)
	}
	return tradebook.CheckBookCurrency(book, t)
}

// Currency returns the book currency: the currency of its trades, or "" for
// an empty store.
func (s *Store) Currency() (string, error) {
	var book string
	err := s.db.QueryRow("SELECT currency FROM trades ORDER BY id LIMIT 1").Scan(&book)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("failed to read book currency: %w", err)
	}
	return book, nil
}

// Delete removes the trade with id.
func (s *Store) Delete(id int64) error {
	res, err := s.db.Exec("DELETE FROM trades WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete trade %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete trade %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("trade %d: %w", id, tradebook.ErrNotFound)
	}
	s.log.Info().Int64("id", id).Msg("Trade deleted")
	return nil
}

// List returns the trades matching f, most recent first.
func (s *Store) List(f tradebook.Filter) ([]tradebook.Trade, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var where []string
	var args []any
	if f.Instrument != 0 {
		where = append(where, "type = ?")
		args = append(args, f.Instrument.String())
	}
	if f.Action != 0 {
		where = append(where, "action = ?")
		args = append(args, f.Action.String())
	}
	if sym := strings.TrimSpace(f.Symbol); sym != "" {
		where = append(where, "UPPER(symbol) LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(strings.ToUpper(sym))+"%")
	}
	if !f.Dates.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, f.Dates.From.String())
	}
	if !f.Dates.To.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, f.Dates.To.String())
	}

	query := "SELECT " + tradesColumns + " FROM trades"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, id ASC"
	return s.query(query, args...)
}

// All returns every trade in id order.
func (s *Store) All() ([]tradebook.Trade, error) {
	return s.query("SELECT " + tradesColumns + " FROM trades ORDER BY id ASC")
}

func (s *Store) query(query string, args ...any) ([]tradebook.Trade, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	trades := make([]tradebook.Trade, 0)
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}
	return trades, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// row is the column representation of a trade.
type row struct {
	symbol, typ, action string
	quantity            int
	price               decimal.Decimal
	currency, date      string
	strike              decimal.NullDecimal
	expiration          sql.NullString
	fees                decimal.Decimal
	closed              bool
	closedDate          sql.NullString
	closePrice          decimal.NullDecimal
	closeQuantity       sql.NullInt64
	notes, createdAt    string
}

func toRow(t tradebook.Trade) row {
	r := row{
		symbol:    t.Symbol,
		typ:       t.Instrument.String(),
		action:    t.Action.String(),
		quantity:  t.Quantity,
		price:     t.Price.Decimal(),
		currency:  t.Currency(),
		date:      t.Date.String(),
		fees:      t.Fees.Decimal(),
		notes:     t.Notes,
		createdAt: t.CreatedAt.UTC().Format(time.RFC3339),
	}
	if o := t.Option; o != nil {
		r.strike = decimal.NewNullDecimal(o.Strike.Decimal())
		r.expiration = sql.NullString{String: o.Expiration.String(), Valid: true}
	}
	if c := t.Close; c != nil {
		r.closed = true
		r.closedDate = sql.NullString{String: c.Date.String(), Valid: true}
		r.closePrice = decimal.NewNullDecimal(c.Price.Decimal())
		r.closeQuantity = sql.NullInt64{Int64: int64(c.Quantity), Valid: true}
	}
	return r
}

// values returns the column values in INSERT order, created_at last.
func (r row) values() []any {
	return []any{
		r.symbol, r.typ, r.action, r.quantity, r.price, r.currency, r.date,
		r.strike, r.expiration, r.fees, r.closed, r.closedDate, r.closePrice,
		r.closeQuantity, r.notes, r.createdAt,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(sc scanner) (tradebook.Trade, error) {
	var (
		id int64
		r  row
	)
	err := sc.Scan(&id, &r.symbol, &r.typ, &r.action, &r.quantity, &r.price, &r.currency, &r.date,
		&r.strike, &r.expiration, &r.fees, &r.closed, &r.closedDate, &r.closePrice,
		&r.closeQuantity, &r.notes, &r.createdAt)
	if err != nil {
		return tradebook.Trade{}, err
	}

	in := tradebook.TradeInput{
		ID:            id,
		Symbol:        r.symbol,
		Type:          r.typ,
		Action:        r.action,
		Quantity:      r.quantity,
		Price:         r.price,
		StrikePrice:   r.strike.Decimal,
		Fees:          r.fees,
		IsClosed:      r.closed,
		ClosePrice:    r.closePrice.Decimal,
		CloseQuantity: int(r.closeQuantity.Int64),
		Notes:         r.notes,
	}
	if in.Date, err = date.Parse(r.date); err != nil {
		return tradebook.Trade{}, err
	}
	if r.expiration.Valid {
		if in.ExpirationDate, err = date.Parse(r.expiration.String); err != nil {
			return tradebook.Trade{}, err
		}
	}
	if r.closedDate.Valid {
		if in.ClosedDate, err = date.Parse(r.closedDate.String); err != nil {
			return tradebook.Trade{}, err
		}
	}
	if in.CreatedAt, err = time.Parse(time.RFC3339, r.createdAt); err != nil {
		return tradebook.Trade{}, fmt.Errorf("invalid created_at %q: %w", r.createdAt, err)
	}
	return in.Trade(r.currency)
}
