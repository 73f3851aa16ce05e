package tradebook

import "fmt"

// Action is what a trade does to a position: the direction (buy or sell) and
// whether it opens or closes the position.
type Action int

const (
	BuyToOpen Action = iota + 1
	BuyToClose
	SellToOpen
	SellToClose
)

func (a Action) String() string {
	switch a {
	case BuyToOpen:
		return "buy_to_open"
	case BuyToClose:
		return "buy_to_close"
	case SellToOpen:
		return "sell_to_open"
	case SellToClose:
		return "sell_to_close"
	default:
		return "unknown"
	}
}

// Title returns a human readable form, e.g. "Buy to Open".
func (a Action) Title() string {
	switch a {
	case BuyToOpen:
		return "Buy to Open"
	case BuyToClose:
		return "Buy to Close"
	case SellToOpen:
		return "Sell to Open"
	case SellToClose:
		return "Sell to Close"
	default:
		return "Unknown"
	}
}

// IsSell reports whether the action sells, i.e. receives cash.
func (a Action) IsSell() bool { return a == SellToOpen || a == SellToClose }

// IsBuy reports whether the action buys, i.e. pays cash.
func (a Action) IsBuy() bool { return a == BuyToOpen || a == BuyToClose }

// IsOpen reports whether the action opens a position.
func (a Action) IsOpen() bool { return a == BuyToOpen || a == SellToOpen }

// ParseAction parses a string into an Action.
func ParseAction(s string) (Action, error) {
	switch s {
	case "buy_to_open":
		return BuyToOpen, nil
	case "buy_to_close":
		return BuyToClose, nil
	case "sell_to_open":
		return SellToOpen, nil
	case "sell_to_close":
		return SellToClose, nil
	default:
		return 0, fmt.Errorf("%w: unknown action %q (use buy_to_open|buy_to_close|sell_to_open|sell_to_close)", ErrInvalidTrade, s)
	}
}

func (a Action) MarshalText() ([]byte, error) {
	if a.String() == "unknown" {
		return nil, fmt.Errorf("cannot marshal action %d", int(a))
	}
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(text []byte) error {
	v, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
