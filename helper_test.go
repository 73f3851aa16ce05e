package tradebook

import (
	"time"

	"github.com/etnz/tradebook/date"
)

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// day is a helper for test to create a date in 2025.
func day(month time.Month, d int) date.Date { return date.New(2025, month, d) }

// noon returns the instant at noon UTC on d.
func noon(d date.Date) time.Time { return d.Midnight(time.UTC).Add(12 * time.Hour) }
