package tradebook

import "fmt"

// Instrument is the kind of security a trade is about.
type Instrument int

const (
	// Stock is a trade in shares of the underlying.
	Stock Instrument = iota + 1
	// Call is a call option contract on the underlying.
	Call
	// Put is a put option contract on the underlying.
	Put
)

// OptionMultiplier is the number of underlying units one option contract stands for.
const OptionMultiplier = 100

func (i Instrument) String() string {
	switch i {
	case Stock:
		return "stock"
	case Call:
		return "call"
	case Put:
		return "put"
	default:
		return "unknown"
	}
}

// IsOption reports whether i is a call or a put.
func (i Instrument) IsOption() bool { return i == Call || i == Put }

// Multiplier returns the contract size of i: 100 for options, 1 for stock.
func (i Instrument) Multiplier() int {
	if i.IsOption() {
		return OptionMultiplier
	}
	return 1
}

// ParseInstrument parses a string into an Instrument.
func ParseInstrument(s string) (Instrument, error) {
	switch s {
	case "stock":
		return Stock, nil
	case "call":
		return Call, nil
	case "put":
		return Put, nil
	default:
		return 0, fmt.Errorf("%w: unknown instrument %q (use stock|call|put)", ErrInvalidTrade, s)
	}
}

func (i Instrument) MarshalText() ([]byte, error) {
	if i.String() == "unknown" {
		return nil, fmt.Errorf("cannot marshal instrument %d", int(i))
	}
	return []byte(i.String()), nil
}

func (i *Instrument) UnmarshalText(text []byte) error {
	v, err := ParseInstrument(string(text))
	if err != nil {
		return err
	}
	*i = v
	return nil
}
