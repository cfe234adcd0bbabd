package parser

import (
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"50", 50, true},
		{"50.00", 50, true},
		{"S/ 1,234.50", 1234.5, true},
		{"1.234,50", 1234.5, true},
		{"12,5", 12.5, true},
		{"1,234", 1234, true},
		{"1.234.567", 1234567, true},
		{"1.234", 1234, true},
		{"S/ 2.500", 2500, true},
		{"0.125", 0.125, true},
		{"0,125", 0.125, true},
		{"12.5", 12.5, true},
		{"1e3", 0, false},
		{"0x1p3", 0, false},
		{"Inf", 0, false},
		{"NaN", 0, false},
		{"(20.00)", -20, true},
		{"-15", -15, true},
		{"$ 30", 30, true},
		{"N/A", 0, false},
		{"", 0, false},
		{"   ", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseAmount(tc.in)
		if ok != tc.ok || math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("ParseAmount(%q)=(%v,%v), want (%v,%v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
