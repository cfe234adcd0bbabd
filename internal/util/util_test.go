package util

import "testing"

func TestFoldUpper(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"  Comisión   general ": "COMISION GENERAL",
		"PEÑA":                  "PENA",
		"producto / servicio":   "PRODUCTO / SERVICIO",
		"":                      "",
	}
	for in, want := range cases {
		if got := FoldUpper(in); got != want {
			t.Fatalf("FoldUpper(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	t.Parallel()

	cases := map[float64]string{
		0:           "S/ 0.00",
		5:           "S/ 5.00",
		1234.5:      "S/ 1,234.50",
		1234567.891: "S/ 1,234,567.89",
		-40:         "-S/ 40.00",
	}
	for in, want := range cases {
		if got := FormatCurrency(in); got != want {
			t.Fatalf("FormatCurrency(%v)=%q, want %q", in, got, want)
		}
	}
}
