package parser

import "testing"

func TestNormalizeColumnName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"  producto /  servicio ": "PRODUCTO / SERVICIO",
		"Descripción\nItem":       "DESCRIPCION ITEM",
		"\tTotal\r":               "TOTAL",
		"":                        "",
	}
	for in, want := range cases {
		if got := NormalizeColumnName(in); got != want {
			t.Fatalf("NormalizeColumnName(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestCompilePatterns(t *testing.T) {
	t.Parallel()

	res, err := CompilePatterns([]string{"producto|servicio", "DESCRIPCIÓN"})
	if err != nil {
		t.Fatalf("CompilePatterns: %v", err)
	}
	if !res[0].MatchString("PRODUCTO / SERVICIO") {
		t.Fatalf("lowercase keyword should match upper-cased header text")
	}
	if !res[1].MatchString(NormalizeColumnName("Descripción")) {
		t.Fatalf("accented keyword should match folded header text")
	}

	for _, bad := range [][]string{{"("}, {"TOTAL", "  "}} {
		if _, err := CompilePatterns(bad); err == nil {
			t.Fatalf("CompilePatterns(%q) should fail", bad)
		}
	}
}
