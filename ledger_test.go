package tradebook

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/etnz/tradebook/date"
	"github.com/google/go-cmp/cmp"
)

func fixedLedger() *Ledger {
	l := NewLedger()
	l.now = func() time.Time { return time.Date(2025, time.May, 1, 9, 30, 0, 0, time.UTC) }
	return l
}

func TestLedger_CRUD(t *testing.T) {
	l := fixedLedger()

	buy, err := l.Add(NewStockTrade(day(time.March, 3), "XYZ", BuyToOpen, 10, USD(50), USD(1)))
	if err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}
	if buy.ID != 1 {
		t.Errorf("Add().ID = %d, want 1", buy.ID)
	}
	if want := l.now(); !buy.CreatedAt.Equal(want) {
		t.Errorf("Add().CreatedAt = %v, want %v", buy.CreatedAt, want)
	}
	put, err := l.Add(NewOptionTrade(day(time.March, 4), "ABC", Put, SellToOpen, 1, USD(2), USD(45), day(time.April, 17), USD(0)))
	if err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}
	if put.ID != 2 {
		t.Errorf("Add().ID = %d, want 2", put.ID)
	}

	got, err := l.Get(1)
	if err != nil || !got.Equal(buy) {
		t.Errorf("Get(1) = %v, %v, want %v", got, err, buy)
	}

	closed := buy.WithClose(day(time.April, 1), USD(55), 10)
	closed.CreatedAt = time.Time{}
	updated, err := l.Update(closed)
	if err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	if !updated.IsClosed() || !updated.CreatedAt.Equal(buy.CreatedAt) {
		t.Errorf("Update() = %+v, want closed with creation time %v", updated, buy.CreatedAt)
	}

	if err := l.Delete(2); err != nil {
		t.Fatalf("Delete(2) unexpected error: %v", err)
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}
	if _, err := l.Get(2); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(2) error = %v, want ErrNotFound", err)
	}

	// Ids are never reused.
	again, err := l.Add(NewStockTrade(day(time.March, 5), "XYZ", SellToClose, 5, USD(60), USD(0)))
	if err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}
	if again.ID != 3 {
		t.Errorf("Add().ID = %d, want 3", again.ID)
	}
}

func TestLedger_Errors(t *testing.T) {
	l := fixedLedger()
	if _, err := l.Add(Trade{Symbol: "XYZ"}); !errors.Is(err, ErrInvalidTrade) {
		t.Errorf("Add(invalid) error = %v, want ErrInvalidTrade", err)
	}
	if _, err := l.Update(NewStockTrade(day(time.March, 3), "XYZ", BuyToOpen, 1, USD(1), USD(0))); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(unknown) error = %v, want ErrNotFound", err)
	}
	if err := l.Delete(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(42) error = %v, want ErrNotFound", err)
	}

	tx := NewStockTrade(day(time.March, 3), "XYZ", BuyToOpen, 1, USD(1), USD(0))
	tx.ID = 7
	if _, err := l.Add(tx); err != nil {
		t.Fatalf("Add(id 7) unexpected error: %v", err)
	}
	if _, err := l.Add(tx); !errors.Is(err, ErrInvalidTrade) {
		t.Errorf("Add(duplicate id) error = %v, want ErrInvalidTrade", err)
	}
	next, _ := l.Add(NewStockTrade(day(time.March, 3), "XYZ", BuyToOpen, 1, USD(1), USD(0)))
	if next.ID != 8 {
		t.Errorf("Add() after id 7 got id %d, want 8", next.ID)
	}
}

func TestLedger_BookCurrency(t *testing.T) {
	l := fixedLedger()
	if got := l.Currency(); got != "" {
		t.Errorf("Currency() of an empty ledger = %q, want \"\"", got)
	}
	buy, err := l.Add(NewStockTrade(day(time.March, 3), "XYZ", BuyToOpen, 10, USD(50), USD(1)))
	if err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}
	if got := l.Currency(); got != "USD" {
		t.Errorf("Currency() = %q, want USD", got)
	}

	eur := NewStockTrade(day(time.March, 4), "SAP", BuyToOpen, 1, M(200, "EUR"), M(0, "EUR"))
	if _, err := l.Add(eur); !errors.Is(err, ErrInvalidTrade) {
		t.Errorf("Add(EUR trade) error = %v, want ErrInvalidTrade", err)
	}
	moved := NewStockTrade(buy.Date, buy.Symbol, BuyToOpen, 10, M(50, "EUR"), M(1, "EUR"))
	moved.ID = buy.ID
	if _, err := l.Update(moved); err != nil {
		t.Errorf("Update() of the only trade to EUR unexpected error: %v", err)
	}
	if _, err := l.Add(NewStockTrade(day(time.March, 5), "XYZ", BuyToOpen, 1, USD(50), USD(0))); !errors.Is(err, ErrInvalidTrade) {
		t.Errorf("Add(USD trade) to an EUR book error = %v, want ErrInvalidTrade", err)
	}
	if _, err := l.Add(eur); err != nil {
		t.Fatalf("Add(EUR trade) unexpected error: %v", err)
	}
	moved.Price = USD(50)
	moved.Fees = USD(1)
	if _, err := l.Update(moved); !errors.Is(err, ErrInvalidTrade) {
		t.Errorf("Update() back to USD error = %v, want ErrInvalidTrade", err)
	}

	// Every trade shares one currency, so the aggregations can sum them.
	stats := NewStats(l.Snapshot(), noon(day(time.March, 6)))
	if stats.Currency != "EUR" || stats.TotalTrades != 2 {
		t.Errorf("NewStats() = %s %d trades, want EUR 2 trades", stats.Currency, stats.TotalTrades)
	}
	if groups := GroupBySymbol(l.Snapshot()); len(groups) != 2 {
		t.Errorf("GroupBySymbol() = %d groups, want 2", len(groups))
	}
}

func TestLedger_SnapshotIsIndependent(t *testing.T) {
	l := fixedLedger()
	if _, err := l.Add(NewOptionTrade(day(time.March, 4), "ABC", Call, BuyToOpen, 1, USD(2), USD(45), day(time.April, 17), USD(0))); err != nil {
		t.Fatal(err)
	}
	snap := l.Snapshot()
	snap[0].Symbol = "HACK"
	snap[0].Option.Strike = USD(1)

	got, _ := l.Get(1)
	if got.Symbol != "ABC" || !got.Option.Strike.Equal(USD(45)) {
		t.Errorf("Snapshot() shares state with the ledger: %+v", got)
	}
}

func TestLedger_List(t *testing.T) {
	l := fixedLedger()
	for _, tx := range []Trade{
		NewStockTrade(day(time.January, 5), "AAPL", BuyToOpen, 10, USD(150), USD(0)),
		NewOptionTrade(day(time.February, 1), "AAPL", Call, SellToOpen, 1, USD(3), USD(170), day(time.March, 21), USD(0)),
		NewStockTrade(day(time.February, 1), "MSFT", BuyToOpen, 5, USD(300), USD(0)),
		NewOptionTrade(day(time.March, 1), "SPY", Put, BuyToOpen, 2, USD(4), USD(400), day(time.April, 17), USD(0)),
		NewStockTrade(day(time.April, 1), "AAPL", SellToClose, 10, USD(170), USD(0)),
	} {
		if _, err := l.Add(tx); err != nil {
			t.Fatal(err)
		}
	}

	testCases := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"no filter, most recent first", Filter{}, []int64{5, 4, 2, 3, 1}},
		{"by instrument", Filter{Instrument: Stock}, []int64{5, 3, 1}},
		{"by action", Filter{Action: BuyToOpen}, []int64{4, 3, 1}},
		{"by symbol substring ignoring case", Filter{Symbol: "ap"}, []int64{5, 2, 1}},
		{"from date inclusive", Filter{Dates: date.Range{From: day(time.February, 1)}}, []int64{5, 4, 2, 3}},
		{"to date inclusive", Filter{Dates: date.Range{To: day(time.February, 1)}}, []int64{2, 3, 1}},
		{"combined", Filter{Instrument: Call, Symbol: "AAPL", Dates: date.Range{From: day(time.January, 1), To: day(time.December, 31)}}, []int64{2}},
		{"no match", Filter{Symbol: "TSLA"}, []int64{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			trades, err := l.List(tc.filter)
			if err != nil {
				t.Fatalf("List() unexpected error: %v", err)
			}
			got := make([]int64, 0, len(trades))
			for _, tx := range trades {
				got = append(got, tx.ID)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("List() ids mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := l.List(Filter{Dates: date.Range{From: day(time.May, 1), To: day(time.April, 1)}}); err == nil {
		t.Errorf("List() with an inverted range returned no error")
	}
}

func TestLedger_Concurrent(t *testing.T) {
	l := fixedLedger()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Add(NewStockTrade(day(time.March, 3), "XYZ", BuyToOpen, 1, USD(10), USD(0))); err != nil {
				t.Error(err)
			}
			NewStats(l.Snapshot(), noon(day(time.March, 3)))
		}()
	}
	wg.Wait()

	s := NewStats(l.Snapshot(), noon(day(time.March, 3)))
	if s.TotalTrades != 20 || s.StockPositions["XYZ"].Quantity != 20 {
		t.Errorf("after concurrent adds: %d trades, %d shares, want 20, 20", s.TotalTrades, s.StockPositions["XYZ"].Quantity)
	}
}
