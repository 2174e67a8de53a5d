package validate

import "testing"

func TestDate(t *testing.T) {
	tests := []struct {
		name       string
		date       string
		valid      bool
		normalized string
	}{
		{"slash format", "01/03/2024", true, "01/03/2024"},
		{"dash format", "01-03-2024", true, "01/03/2024"},
		{"iso format", "2024-03-01", true, "01/03/2024"},
		{"surrounding spaces", " 15/06/1988 ", true, "15/06/1988"},
		{"empty", "", false, ""},
		{"nonsense", "yesterday", false, ""},
		{"impossible day", "32/01/2024", false, ""},
		{"us order rejected", "03/25/2024", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, msg := Date(tt.date)
			if ok != tt.valid {
				t.Fatalf("Date(%q) = %v (%s), want %v", tt.date, ok, msg, tt.valid)
			}
			if ok && msg != tt.normalized {
				t.Errorf("Date(%q) normalized to %s, want %s", tt.date, msg, tt.normalized)
			}
		})
	}
}

func TestDatesCoherent(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		coherent bool
	}{
		{"ordered", "01/01/2020", "01/01/2025", true},
		{"mixed formats", "2020-01-01", "01-01-2025", true},
		{"equal", "01/01/2020", "01/01/2020", false},
		{"reversed", "01/01/2025", "01/01/2020", false},
		{"bad start", "not-a-date", "01/01/2020", false},
		{"bad end", "01/01/2020", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, msg := DatesCoherent(tt.start, tt.end)
			if ok != tt.coherent {
				t.Errorf("DatesCoherent(%q, %q) = %v (%s), want %v", tt.start, tt.end, ok, msg, tt.coherent)
			}
		})
	}
}
