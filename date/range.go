package date

import "fmt"

// Range represents a range of dates. A zero boundary leaves that side open.
type Range struct{ From, To Date }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool {
	if !r.From.IsZero() && date.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && date.After(r.To) {
		return false
	}
	return true
}

// Validate rejects a range whose From is after its To.
func (r Range) Validate() error {
	if !r.From.IsZero() && !r.To.IsZero() && r.From.After(r.To) {
		return fmt.Errorf("from date %s must be before to date %s", r.From, r.To)
	}
	return nil
}

func (r Range) String() string {
	switch {
	case r.From.IsZero() && r.To.IsZero():
		return "all dates"
	case r.From.IsZero():
		return fmt.Sprintf("until %s", r.To)
	case r.To.IsZero():
		return fmt.Sprintf("since %s", r.From)
	default:
		return fmt.Sprintf("%s to %s", r.From, r.To)
	}
}
