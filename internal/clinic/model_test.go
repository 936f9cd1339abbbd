package clinic

import "testing"

// TestCentsBRL verifies the Brazilian-format rendering of amounts,
// including grouping and negative values.
func TestCentsBRL(t *testing.T) {
	cases := []struct {
		cents Cents
		want  string
	}{
		{0, "R$ 0,00"},
		{5, "R$ 0,05"},
		{100, "R$ 1,00"},
		{15000, "R$ 150,00"},
		{123456, "R$ 1.234,56"},
		{100000000, "R$ 1.000.000,00"},
		{-123456, "-R$ 1.234,56"},
	}
	for _, tc := range cases {
		if got := tc.cents.BRL(); got != tc.want {
			t.Errorf("Cents(%d).BRL() = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

// TestParseDate verifies valid ISO dates parse and everything else is
// rejected without error.
func TestParseDate(t *testing.T) {
	if _, ok := ParseDate("2025-06-15"); !ok {
		t.Error("ParseDate(2025-06-15) = false, want true")
	}
	for _, s := range []string{"", "15/06/2025", "2025-13-01", "not-a-date"} {
		if _, ok := ParseDate(s); ok {
			t.Errorf("ParseDate(%q) = true, want false", s)
		}
	}
}

// TestDisplayName verifies unnamed animals get the placeholder label.
func TestDisplayName(t *testing.T) {
	if got := (Animal{Name: "Mimosa"}).DisplayName(); got != "Mimosa" {
		t.Errorf("DisplayName = %q, want Mimosa", got)
	}
	if got := (Animal{}).DisplayName(); got != "Sem nome" {
		t.Errorf("DisplayName of unnamed animal = %q, want Sem nome", got)
	}
}
