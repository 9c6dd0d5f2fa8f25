package services

import "testing"

func TestCleanNumber(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		present bool
	}{
		{"23 000zł", 23000, true},
		{"1,5", 1.5, true},
		{"12 350 zł/m²", 12350, true},
		{"58.5 m²", 58.5, true},
		{"1 234 567 zł", 1234567, true},
		{"+500 zł", 500, true},
		{"", 0, false},
		{"brak danych", 0, false},
		{"zł/m²", 0, false},
		{"1.234.567", 0, false},
	}

	for _, tt := range tests {
		got, ok := CleanNumber(tt.raw)
		if ok != tt.present {
			t.Errorf("CleanNumber(%q) present = %v; want %v", tt.raw, ok, tt.present)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("CleanNumber(%q) = %v; want %v", tt.raw, got, tt.want)
		}
	}
}

func TestToASCIIKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Gdańsk", "gdansk"},
		{"Łódź", "lodz"},
		{"Kraków", "krakow"},
		{"WARSZAWA", "warszawa"},
		{"  Świętochłowice ", "swietochlowice"},
		{"poznan", "poznan"},
	}

	for _, tt := range tests {
		if got := ToASCIIKey(tt.in); got != tt.want {
			t.Errorf("ToASCIIKey(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
