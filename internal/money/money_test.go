package money

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Money
	}{
		{"12.50", 1250},
		{"12", 1200},
		{" 7.5 ", 750},
		{"0.005", 1},
		{"0.004", 0},
		{"-3.25", -325},
		{".5", 50},
		{"25.", 2500},
		{"abc", 0},
		{"", 0},
		{"12,50", 0},
		{"1.2.3", 0},
		// integer parts too large for minor units fall back to zero
		{"92233720368547758.08", 0},
		{"99999999999999999999", 0},
		{"92233720368547757.99", 9223372036854775799},
	}
	for _, tc := range cases {
		if got := Parse(tc.in); got != tc.want {
			t.Fatalf("Parse(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		in   Money
		want string
	}{
		{1250, "12.50"},
		{5, "0.05"},
		{0, "0.00"},
		{-325, "-3.25"},
		{100000, "1000.00"},
	}
	for _, tc := range cases {
		if got := Format(tc.in); got != tc.want {
			t.Fatalf("Format(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, amount := range []Money{0, 1, 99, 100, 1250, 999999} {
		if got := Parse(Format(amount)); got != amount {
			t.Fatalf("round trip %d -> %q -> %d", amount, Format(amount), got)
		}
	}
}
