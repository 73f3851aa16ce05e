package tradebook

import (
	"testing"
	"time"
)

func TestTrade_TotalCost(t *testing.T) {
	d := day(time.March, 3)
	exp := day(time.June, 20)
	testCases := []struct {
		name  string
		trade Trade
		want  Money
	}{
		{
			name:  "stock buy is a debit with fees",
			trade: NewStockTrade(d, "XYZ", BuyToOpen, 10, USD(50), USD(1)),
			want:  USD(501),
		},
		{
			name:  "stock sell is a credit reduced by fees",
			trade: NewStockTrade(d, "XYZ", SellToOpen, 10, USD(50), USD(1)),
			want:  USD(-499),
		},
		{
			name:  "sell to close is a credit",
			trade: NewStockTrade(d, "XYZ", SellToClose, 4, USD(25), USD(0)),
			want:  USD(-100),
		},
		{
			name:  "call uses the contract multiplier",
			trade: NewOptionTrade(d, "XYZ", Call, BuyToOpen, 2, USD(3.5), USD(55), exp, USD(0)),
			want:  USD(700),
		},
		{
			name:  "sold put with fees",
			trade: NewOptionTrade(d, "XYZ", Put, SellToOpen, 1, USD(1.25), USD(45), exp, USD(0.65)),
			want:  USD(-124.35),
		},
		{
			name:  "negative quantity is used as a magnitude",
			trade: Trade{Symbol: "XYZ", Instrument: Stock, Action: BuyToClose, Quantity: -3, Price: USD(10), Fees: USD(0)},
			want:  USD(30),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.trade.TotalCost(); !got.Equal(tc.want) {
				t.Errorf("TotalCost() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTrade_TotalCost_Properties(t *testing.T) {
	d := day(time.March, 3)
	for _, qty := range []int{1, 7, 100} {
		for _, price := range []float64{0.01, 12.5, 900} {
			buy := NewStockTrade(d, "ABC", BuyToOpen, qty, USD(price), USD(2))
			want := USD(price).MulInt(qty).Add(USD(2))
			if got := buy.TotalCost(); !got.Equal(want) || !got.IsPositive() {
				t.Errorf("buy %d@%v TotalCost() = %v, want %v", qty, price, got, want)
			}
			sell := NewStockTrade(d, "ABC", SellToOpen, qty, USD(price), USD(2))
			want = USD(price).MulInt(qty).Neg().Add(USD(2))
			if got := sell.TotalCost(); !got.Equal(want) {
				t.Errorf("sell %d@%v TotalCost() = %v, want %v", qty, price, got, want)
			}
			opt := NewOptionTrade(d, "ABC", Put, SellToOpen, qty, USD(price), USD(10), d.Add(30), USD(0))
			want = USD(price).MulInt(qty * 100)
			if got := opt.TotalCost().Abs(); !got.Equal(want) {
				t.Errorf("option %d@%v |TotalCost()| = %v, want %v", qty, price, got, want)
			}
		}
	}
}

func TestTrade_RealizedPnL(t *testing.T) {
	d := day(time.March, 3)
	exp := day(time.June, 20)
	testCases := []struct {
		name  string
		trade Trade
		want  Money
	}{
		{
			name:  "open trade",
			trade: NewStockTrade(d, "XYZ", BuyToOpen, 10, USD(50), USD(1)),
			want:  USD(0),
		},
		{
			name:  "long call closed with a profit",
			trade: NewOptionTrade(d, "XYZ", Call, BuyToOpen, 2, USD(3.5), USD(55), exp, USD(0)).WithClose(day(time.April, 1), USD(5), 2),
			want:  USD(300),
		},
		{
			name:  "long stock closed with a loss, fees in the opening",
			trade: NewStockTrade(d, "XYZ", BuyToOpen, 10, USD(50), USD(1)).WithClose(day(time.April, 1), USD(45), 10),
			want:  USD(-51),
		},
		{
			name:  "short put bought back cheaper",
			trade: NewOptionTrade(d, "XYZ", Put, SellToOpen, 1, USD(2), USD(45), exp, USD(0)).WithClose(day(time.April, 1), USD(0.5), 1),
			want:  USD(150),
		},
		{
			name:  "short trade with fees reduces the credit",
			trade: NewStockTrade(d, "XYZ", SellToOpen, 10, USD(20), USD(5)).WithClose(day(time.April, 1), USD(18), 10),
			want:  USD(15),
		},
		{
			name:  "partial close",
			trade: NewStockTrade(d, "XYZ", BuyToOpen, 10, USD(10), USD(0)).WithClose(day(time.April, 1), USD(12), 5),
			want:  USD(-40),
		},
		{
			name:  "closing actions are treated as short",
			trade: NewStockTrade(d, "XYZ", SellToClose, 10, USD(10), USD(0)).WithClose(day(time.April, 1), USD(8), 10),
			want:  USD(20),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.trade.RealizedPnL(); !got.Decimal().Equal(tc.want.Decimal()) {
				t.Errorf("RealizedPnL() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTrade_IsExpired(t *testing.T) {
	exp := day(time.June, 20)
	call := NewOptionTrade(day(time.March, 3), "XYZ", Call, BuyToOpen, 1, USD(1), USD(50), exp, USD(0))
	stock := NewStockTrade(day(time.March, 3), "XYZ", BuyToOpen, 1, USD(1), USD(0))
	paris := time.FixedZone("CEST", 2*60*60)

	testCases := []struct {
		name  string
		trade Trade
		now   time.Time
		want  bool
	}{
		{"day before expiration", call, noon(day(time.June, 19)), false},
		{"exactly at midnight of expiration", call, exp.Midnight(time.UTC), false},
		{"during the expiration day", call, noon(exp), true},
		{"after expiration", call, noon(day(time.July, 1)), true},
		{"midnight in now's location", call, exp.Midnight(paris).Add(time.Second), true},
		{"stock never expires", stock, noon(day(time.December, 31)).AddDate(10, 0, 0), false},
		{"option without terms", Trade{Instrument: Put}, noon(exp), false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.trade.IsExpired(tc.now); got != tc.want {
				t.Errorf("IsExpired(%v) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}

func TestTrade_DaysToExpiration(t *testing.T) {
	exp := day(time.June, 20)
	call := NewOptionTrade(day(time.March, 3), "XYZ", Call, BuyToOpen, 1, USD(1), USD(50), exp, USD(0))

	paris := time.FixedZone("CEST", 2*60*60)
	testCases := []struct {
		name string
		now  time.Time
		want int
	}{
		{"midnight ten days before", day(time.June, 10).Midnight(time.UTC), 10},
		{"noon ten days before", noon(day(time.June, 10)), 9},
		{"second before the last day", day(time.June, 19).Midnight(time.UTC).Add(-time.Second), 1},
		{"midnight the day before", day(time.June, 19).Midnight(time.UTC), 1},
		{"noon the day before", noon(day(time.June, 19)), 0},
		{"expiration midnight", exp.Midnight(time.UTC), 0},
		{"after expiration", noon(day(time.July, 1)), 0},
		{"midnight in now's location", day(time.June, 10).Midnight(paris), 10},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := call.DaysToExpiration(tc.now); got != tc.want {
				t.Errorf("DaysToExpiration(%v) = %d, want %d", tc.now, got, tc.want)
			}
		})
	}
	stock := NewStockTrade(day(time.March, 3), "XYZ", BuyToOpen, 1, USD(1), USD(0))
	if got := stock.DaysToExpiration(noon(day(time.March, 3))); got != 0 {
		t.Errorf("stock DaysToExpiration() = %d, want 0", got)
	}
}
