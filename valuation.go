package tradebook

import "time"

// Multiplier returns the number of underlying units per quantity unit.
func (t Trade) Multiplier() int { return t.Instrument.Multiplier() }

// TotalCost returns the signed cash flow of the trade, fees included.
// Positive is a debit (cash paid), negative is a credit (cash received).
// Fees always add to the amount.
func (t Trade) TotalCost() Money {
	base := t.Price.MulInt(abs(t.Quantity) * t.Multiplier())
	if t.Action.IsSell() {
		base = base.Neg()
	}
	return base.Add(t.Fees)
}

// RealizedPnL returns the profit or loss locked in by the closing leg, or zero
// for an open trade.
//
// A trade opened with BuyToOpen is long: the close brings proceeds and the
// profit is closing minus opening. Any other trade is treated as short.
// Fees of the closing leg are not known.
func (t Trade) RealizedPnL() Money {
	c := t.Close
	if c == nil {
		return Money{cur: t.Currency()}
	}
	opening := t.TotalCost().Abs()
	closing := c.Price.MulInt(abs(c.Quantity) * t.Multiplier())
	if t.Action == BuyToOpen {
		return closing.Sub(opening)
	}
	return opening.Sub(closing)
}

// IsExpired reports whether the option expired before now: now is strictly
// after the start of the expiration day, in now's location. Stock never expires.
func (t Trade) IsExpired(now time.Time) bool {
	if !t.IsOption() || t.Option == nil || t.Option.Expiration.IsZero() {
		return false
	}
	return now.After(t.Option.Expiration.Midnight(now.Location()))
}

// DaysToExpiration returns the number of whole days left from now to the
// start of the expiration day, in now's location, never negative. It is zero
// for stock, and zero during the last day before expiration.
func (t Trade) DaysToExpiration(now time.Time) int {
	if !t.IsOption() || t.Option == nil || t.Option.Expiration.IsZero() {
		return 0
	}
	left := t.Option.Expiration.Midnight(now.Location()).Sub(now)
	return max(0, int(left/(24*time.Hour)))
}
