package tradebook

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/etnz/tradebook/date"
	"github.com/shopspring/decimal"
)

// OptionTerms holds the contract terms of an option trade.
type OptionTerms struct {
	Strike     Money     // Strike is the exercise price per share.
	Expiration date.Date // Expiration is the last day of the contract.
	Premium    Money     // Premium is the per share premium at entry, it mirrors the trade price.
}

// Closing holds the closing leg recorded on a trade.
type Closing struct {
	Date     date.Date
	Price    Money
	Quantity int // Quantity is the magnitude of the closing transaction.
}

// Trade is a single stock or option trade.
//
// A trade carries option terms if and only if it is an option trade, and a
// closing if and only if the position was closed.
type Trade struct {
	ID         int64
	Symbol     string
	Instrument Instrument
	Action     Action
	Quantity   int // Quantity is a magnitude, the direction comes from Action.
	Price      Money
	Date       date.Date
	Option     *OptionTerms
	Fees       Money
	Close      *Closing
	Notes      string
	CreatedAt  time.Time
}

// NewStockTrade creates a stock trade.
func NewStockTrade(day date.Date, symbol string, action Action, quantity int, price, fees Money) Trade {
	return Trade{
		Symbol:     normalizeSymbol(symbol),
		Instrument: Stock,
		Action:     action,
		Quantity:   quantity,
		Price:      price,
		Date:       day,
		Fees:       fees,
	}
}

// NewOptionTrade creates a call or put trade. The premium mirrors the price.
func NewOptionTrade(day date.Date, symbol string, instrument Instrument, action Action, quantity int, price, strike Money, expiration date.Date, fees Money) Trade {
	return Trade{
		Symbol:     normalizeSymbol(symbol),
		Instrument: instrument,
		Action:     action,
		Quantity:   quantity,
		Price:      price,
		Date:       day,
		Option:     &OptionTerms{Strike: strike, Expiration: expiration, Premium: price},
		Fees:       fees,
	}
}

// WithClose returns a copy of t closed on day at price for quantity.
func (t Trade) WithClose(day date.Date, price Money, quantity int) Trade {
	t.Close = &Closing{Date: day, Price: price, Quantity: quantity}
	return t
}

// WithNotes returns a copy of t with notes.
func (t Trade) WithNotes(notes string) Trade {
	t.Notes = notes
	return t
}

func normalizeSymbol(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// IsOption reports whether t is a call or put trade.
func (t Trade) IsOption() bool { return t.Instrument.IsOption() }

// IsClosed reports whether a closing leg was recorded.
func (t Trade) IsClosed() bool { return t.Close != nil }

// Currency returns the currency of the trade amounts.
func (t Trade) Currency() string { return t.Price.Currency() }

// Equal reports whether t and o hold the same values.
func (t Trade) Equal(o Trade) bool {
	if t.ID != o.ID || t.Symbol != o.Symbol || t.Instrument != o.Instrument || t.Action != o.Action ||
		t.Quantity != o.Quantity || !t.Price.Equal(o.Price) || t.Date != o.Date ||
		!t.Fees.Equal(o.Fees) || t.Notes != o.Notes || !t.CreatedAt.Equal(o.CreatedAt) {
		return false
	}
	if (t.Option == nil) != (o.Option == nil) || (t.Close == nil) != (o.Close == nil) {
		return false
	}
	if t.Option != nil {
		a, b := t.Option, o.Option
		if !a.Strike.Equal(b.Strike) || a.Expiration != b.Expiration || !a.Premium.Equal(b.Premium) {
			return false
		}
	}
	if t.Close != nil {
		a, b := t.Close, o.Close
		if a.Date != b.Date || !a.Price.Equal(b.Price) || a.Quantity != b.Quantity {
			return false
		}
	}
	return true
}

// MarshalJSON writes the trade as a flat object, amounts as plain decimals.
func (t Trade) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("id", t.ID)
	w.Append("date", t.Date)
	w.Append("symbol", t.Symbol)
	w.Append("type", t.Instrument)
	w.Append("action", t.Action)
	w.Append("quantity", t.Quantity)
	w.Append("price", t.Price.value)
	w.Optional("currency", t.Currency())
	if o := t.Option; o != nil {
		w.Append("strikePrice", o.Strike.value)
		w.Append("expirationDate", o.Expiration)
		w.Append("premium", o.Premium.value)
	}
	w.When(!t.Fees.IsZero(), "fees", t.Fees.value)
	if c := t.Close; c != nil {
		w.Append("isClosed", true)
		w.Append("closedDate", c.Date)
		w.Append("closePrice", c.Price.value)
		w.Append("closeQuantity", c.Quantity)
	}
	w.Optional("notes", t.Notes)
	w.When(!t.CreatedAt.IsZero(), "createdAt", t.CreatedAt.UTC().Format(time.RFC3339))
	return w.MarshalJSON()
}

// UnmarshalJSON reads a trade in the format written by MarshalJSON. The
// decoded trade is validated, a line missing its currency gets DefaultCurrency.
func (t *Trade) UnmarshalJSON(data []byte) error {
	var in TradeInput
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	cur := in.Currency
	if cur == "" {
		cur = DefaultCurrency
	}
	tx, err := in.Trade(cur)
	if err != nil {
		return err
	}
	*t = tx
	return nil
}

// TradeInput is the untyped shape of a trade, as entered by a user or read
// from a ledger line. Zero values stand for missing fields. There is no
// premium field, the premium of an option is its price.
type TradeInput struct {
	ID             int64           `json:"id,omitempty"`
	Symbol         string          `json:"symbol"`
	Type           string          `json:"type"`
	Action         string          `json:"action"`
	Quantity       int             `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
	Currency       string          `json:"currency,omitempty"`
	Date           date.Date       `json:"date"`
	StrikePrice    decimal.Decimal `json:"strikePrice"`
	ExpirationDate date.Date       `json:"expirationDate"`
	Fees           decimal.Decimal `json:"fees"`
	IsClosed       bool            `json:"isClosed"`
	ClosedDate     date.Date       `json:"closedDate"`
	ClosePrice     decimal.Decimal `json:"closePrice"`
	CloseQuantity  int             `json:"closeQuantity"`
	Notes          string          `json:"notes"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Input returns the untyped form of t, the inverse of TradeInput.Trade.
func (t Trade) Input() TradeInput {
	in := TradeInput{
		ID:        t.ID,
		Symbol:    t.Symbol,
		Type:      t.Instrument.String(),
		Action:    t.Action.String(),
		Quantity:  t.Quantity,
		Price:     t.Price.value,
		Currency:  t.Currency(),
		Date:      t.Date,
		Fees:      t.Fees.value,
		Notes:     t.Notes,
		CreatedAt: t.CreatedAt,
	}
	if o := t.Option; o != nil {
		in.StrikePrice = o.Strike.value
		in.ExpirationDate = o.Expiration
	}
	if c := t.Close; c != nil {
		in.IsClosed = true
		in.ClosedDate = c.Date
		in.ClosePrice = c.Price.value
		in.CloseQuantity = c.Quantity
	}
	return in
}
