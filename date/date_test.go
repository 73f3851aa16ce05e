package date

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestNew_Normalizes(t *testing.T) {
	if got, want := New(2025, time.February, 30), New(2025, time.March, 2); got != want {
		t.Errorf("New(2025, 2, 30) = %v, want %v", got, want)
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2025-07-01", want: New(2025, time.July, 1)},
		{in: "2025-7-1", want: New(2025, time.July, 1)},
		{in: "2025/07/01", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestSub(t *testing.T) {
	a, b := MustParse("2025-03-01"), MustParse("2025-02-27")
	if got := a.Sub(b); got != 2 {
		t.Errorf("%v.Sub(%v) = %d, want 2", a, b, got)
	}
	if got := b.Sub(a); got != -2 {
		t.Errorf("%v.Sub(%v) = %d, want -2", b, a, got)
	}
}

func TestJSON(t *testing.T) {
	var v struct {
		A Date `json:"a"`
		B Date `json:"b"`
		C Date `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":"2025-01-02","b":"","c":null}`), &v); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if v.A != New(2025, time.January, 2) {
		t.Errorf("a = %v, want 2025-01-02", v.A)
	}
	if !v.B.IsZero() || !v.C.IsZero() {
		t.Errorf("empty and null dates should decode as zero, got %v and %v", v.B, v.C)
	}
	b, err := json.Marshal(v.A)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(b) != `"2025-01-02"` {
		t.Errorf("Marshal() = %s, want \"2025-01-02\"", b)
	}
}

func TestRange(t *testing.T) {
	r := Range{From: MustParse("2025-01-10"), To: MustParse("2025-01-20")}
	testCases := []struct {
		day  string
		want bool
	}{
		{"2025-01-09", false},
		{"2025-01-10", true},
		{"2025-01-15", true},
		{"2025-01-20", true},
		{"2025-01-21", false},
	}
	for _, tc := range testCases {
		if got := r.Contains(MustParse(tc.day)); got != tc.want {
			t.Errorf("Contains(%s) = %v, want %v", tc.day, got, tc.want)
		}
	}
	open := Range{}
	if !open.Contains(MustParse("1999-12-31")) {
		t.Error("an open range should contain every date")
	}
	if err := (Range{From: MustParse("2025-02-01"), To: MustParse("2025-01-01")}).Validate(); err == nil {
		t.Error("Validate() on an inverted range should fail")
	}
}
