package tradebook

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrInvalidTrade is wrapped by every error reporting a malformed trade.
	ErrInvalidTrade = errors.New("invalid trade")
	// ErrNotFound is returned by repositories for an unknown trade id.
	ErrNotFound = errors.New("trade not found")
)

const (
	maxSymbolLength = 10
	maxNotesLength  = 500
)

// FieldError is a single rule broken by a trade.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) String() string { return e.Field + ": " + e.Reason }

// ValidationError lists every rule a trade breaks. It wraps ErrInvalidTrade.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.String()
	}
	return ErrInvalidTrade.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidTrade }

func (e *ValidationError) add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: fmt.Sprintf(format, args...)})
}

// err returns e as an error, or nil if no rule was broken.
func (e *ValidationError) err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Trade builds and validates the trade described by in. Amounts are in
// currency. Symbol is upper cased, quantities are taken as magnitudes, option
// terms are dropped for stock and close fields are dropped unless IsClosed.
func (in TradeInput) Trade(currency string) (Trade, error) {
	verr := &ValidationError{}
	if err := ValidateCurrency(currency); err != nil {
		verr.add("currency", "unknown currency %q", currency)
	}
	instrument, err := ParseInstrument(strings.ToLower(strings.TrimSpace(in.Type)))
	if err != nil {
		verr.add("type", "unknown instrument %q", in.Type)
	}
	action, err := ParseAction(strings.ToLower(strings.TrimSpace(in.Action)))
	if err != nil {
		verr.add("action", "unknown action %q", in.Action)
	}

	t := Trade{
		ID:         in.ID,
		Symbol:     normalizeSymbol(in.Symbol),
		Instrument: instrument,
		Action:     action,
		Quantity:   abs(in.Quantity),
		Price:      M(in.Price, currency),
		Date:       in.Date,
		Fees:       M(in.Fees, currency),
		Notes:      strings.TrimSpace(in.Notes),
		CreatedAt:  in.CreatedAt,
	}
	if instrument.IsOption() {
		t.Option = &OptionTerms{
			Strike:     M(in.StrikePrice, currency),
			Expiration: in.ExpirationDate,
			Premium:    t.Price,
		}
	}
	if in.IsClosed {
		t.Close = &Closing{
			Date:     in.ClosedDate,
			Price:    M(in.ClosePrice, currency),
			Quantity: abs(in.CloseQuantity),
		}
	}

	t.check(verr)
	if err := verr.err(); err != nil {
		return Trade{}, err
	}
	return t, nil
}

// CheckBookCurrency returns an error wrapping ErrInvalidTrade if t is not in
// book, the currency shared by every trade of a repository. An empty book
// accepts any currency.
func CheckBookCurrency(book string, t Trade) error {
	if book == "" || t.Currency() == book {
		return nil
	}
	verr := &ValidationError{}
	verr.add("currency", "%q differs from the book currency %q", t.Currency(), book)
	return verr.err()
}

// Validate checks the structural rules of a trade record.
func (t Trade) Validate() error {
	verr := &ValidationError{}
	if t.Instrument.String() == "unknown" {
		verr.add("type", "unknown instrument %d", int(t.Instrument))
	}
	if t.Action.String() == "unknown" {
		verr.add("action", "unknown action %d", int(t.Action))
	}
	t.check(verr)
	return verr.err()
}

// check appends to verr the rules t breaks, except enum validity.
func (t Trade) check(verr *ValidationError) {
	switch n := utf8.RuneCountInString(t.Symbol); {
	case n == 0:
		verr.add("symbol", "is required")
	case n > maxSymbolLength:
		verr.add("symbol", "must be at most %d characters, got %d", maxSymbolLength, n)
	}
	if t.Date.IsZero() {
		verr.add("date", "is required")
	}
	if t.Quantity <= 0 {
		verr.add("quantity", "must be positive, got %d", t.Quantity)
	}
	if !t.Price.IsPositive() {
		verr.add("price", "must be positive, got %s", t.Price.Decimal())
	}
	if t.Fees.IsNegative() {
		verr.add("fees", "cannot be negative, got %s", t.Fees.Decimal())
	}

	cur := t.Currency()
	sameCurrency := func(field string, m Money) {
		if m.Currency() != cur {
			verr.add(field, "currency %q differs from price currency %q", m.Currency(), cur)
		}
	}
	sameCurrency("fees", t.Fees)

	switch {
	case t.IsOption() && t.Option == nil:
		verr.add("strikePrice", "is required for %s options", t.Instrument)
		verr.add("expirationDate", "is required for %s options", t.Instrument)
	case !t.IsOption() && t.Option != nil:
		verr.add("strikePrice", "must be empty for %s trades", t.Instrument)
	}
	if o := t.Option; o != nil {
		if !o.Strike.IsPositive() {
			verr.add("strikePrice", "must be positive, got %s", o.Strike.Decimal())
		}
		sameCurrency("strikePrice", o.Strike)
		switch {
		case o.Expiration.IsZero():
			verr.add("expirationDate", "is required for options")
		case !o.Expiration.After(t.Date):
			verr.add("expirationDate", "must be after the trade date %s, got %s", t.Date, o.Expiration)
		}
		if !o.Premium.Equal(t.Price) {
			verr.add("premium", "must equal the price %s, got %s", t.Price.Decimal(), o.Premium.Decimal())
		}
	}

	if c := t.Close; c != nil {
		if c.Date.IsZero() {
			verr.add("closedDate", "is required for closed trades")
		}
		if !c.Price.IsPositive() {
			verr.add("closePrice", "must be positive, got %s", c.Price.Decimal())
		}
		sameCurrency("closePrice", c.Price)
		if c.Quantity <= 0 {
			verr.add("closeQuantity", "must be positive, got %d", c.Quantity)
		}
	}

	if n := utf8.RuneCountInString(t.Notes); n > maxNotesLength {
		verr.add("notes", "must be at most %d characters, got %d", maxNotesLength, n)
	}
}

// Warnings reports valid but suspicious combinations. Realized P&L is still
// computed for such trades as if the closing leg was the counter action.
func (t Trade) Warnings() []string {
	c := t.Close
	if c == nil {
		return nil
	}
	var w []string
	if !t.Action.IsOpen() {
		w = append(w, fmt.Sprintf("closing leg recorded on a %s trade", t.Action))
	}
	if c.Quantity > t.Quantity {
		w = append(w, fmt.Sprintf("close quantity %d exceeds trade quantity %d", c.Quantity, t.Quantity))
	}
	if !c.Date.IsZero() && c.Date.Before(t.Date) {
		w = append(w, fmt.Sprintf("closed on %s before the trade date %s", c.Date, t.Date))
	}
	return w
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
