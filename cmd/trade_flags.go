package cmd

import (
	"flag"
	"fmt"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/date"
	"github.com/shopspring/decimal"
)

// tradeFlags are the flags describing a trade, shared by add and update.
type tradeFlags struct {
	date          string
	symbol        string
	instrument    string
	action        string
	quantity      int
	price         string
	currency      string
	strike        string
	expiration    string
	fees          string
	closeDate     string
	closePrice    string
	closeQuantity int
	notes         string
}

func (p *tradeFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.date, "d", date.Today().String(), "Trade date (YYYY-MM-DD)")
	f.StringVar(&p.symbol, "s", "", "Ticker symbol")
	f.StringVar(&p.instrument, "t", "stock", "Instrument: stock, call or put")
	f.StringVar(&p.action, "a", "buy_to_open", "Action: buy_to_open, buy_to_close, sell_to_open or sell_to_close")
	f.IntVar(&p.quantity, "q", 0, "Number of shares, or of contracts for options")
	f.StringVar(&p.price, "p", "", "Price per share, the premium per share for options")
	f.StringVar(&p.currency, "c", "", "Currency of the amounts. Defaults to the configured currency.")
	f.StringVar(&p.strike, "strike", "", "Strike price of the option")
	f.StringVar(&p.expiration, "exp", "", "Expiration date of the option (YYYY-MM-DD)")
	f.StringVar(&p.fees, "fees", "0", "Fees and commissions of the trade")
	f.StringVar(&p.closeDate, "close-date", "", "Date the position was closed. Marks the trade as closed.")
	f.StringVar(&p.closePrice, "close-price", "", "Price per share at close")
	f.IntVar(&p.closeQuantity, "close-qty", 0, "Quantity closed. Defaults to the trade quantity.")
	f.StringVar(&p.notes, "m", "", "Notes on the trade")
}

// apply writes the flags selected by set onto in.
func (p *tradeFlags) apply(in *tradebook.TradeInput, set func(name string) bool) error {
	var err error
	if set("d") {
		if in.Date, err = parseDate("d", p.date); err != nil {
			return err
		}
	}
	if set("s") {
		in.Symbol = p.symbol
	}
	if set("t") {
		in.Type = p.instrument
	}
	if set("a") {
		in.Action = p.action
	}
	if set("q") {
		in.Quantity = p.quantity
	}
	if set("p") {
		if in.Price, err = parseDecimal("p", p.price); err != nil {
			return err
		}
	}
	if set("c") {
		in.Currency = p.currency
	}
	if set("strike") {
		if in.StrikePrice, err = parseDecimal("strike", p.strike); err != nil {
			return err
		}
	}
	if set("exp") {
		if in.ExpirationDate, err = parseDate("exp", p.expiration); err != nil {
			return err
		}
	}
	if set("fees") {
		if in.Fees, err = parseDecimal("fees", p.fees); err != nil {
			return err
		}
	}
	if set("close-date") {
		if in.ClosedDate, err = parseDate("close-date", p.closeDate); err != nil {
			return err
		}
		in.IsClosed = !in.ClosedDate.IsZero()
	}
	if set("close-price") {
		if in.ClosePrice, err = parseDecimal("close-price", p.closePrice); err != nil {
			return err
		}
	}
	if set("close-qty") {
		in.CloseQuantity = p.closeQuantity
	}
	if set("m") {
		in.Notes = p.notes
	}
	if in.IsClosed && in.CloseQuantity == 0 {
		in.CloseQuantity = in.Quantity
	}
	return nil
}

// parseDecimal parses the value of flag name. An empty value is zero, the
// missing amount.
func parseDecimal(name, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid -%s %q: %w", name, value, err)
	}
	return d, nil
}

// parseDate parses the value of flag name. An empty value is the zero date.
func parseDate(name, value string) (date.Date, error) {
	if value == "" {
		return date.Date{}, nil
	}
	d, err := date.Parse(value)
	if err != nil {
		return date.Date{}, fmt.Errorf("invalid -%s: %w", name, err)
	}
	return d, nil
}
