package money

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

func TestRupiahFormat(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"150000", "Rp 150.000"},
		{"0", "Rp 0"},
		{"999", "Rp 999"},
		{"1500000", "Rp 1.500.000"},
		{"50000.00", "Rp 50.000"},
		{"12500.6", "Rp 12.501"},
		{"-2500", "-Rp 2.500"},
	}

	f := Rupiah()
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got := f.Format(decimal.RequireFromString(tt.amount))
			if got != tt.want {
				t.Errorf("Format(%s) = %q, want %q", tt.amount, got, tt.want)
			}
			if strings.Contains(got, ",") {
				t.Errorf("Format(%s) = %q contains a fractional separator", tt.amount, got)
			}
		})
	}
}

func TestFormatterUsesSymbolAndLocale(t *testing.T) {
	f := NewFormatter("IDR", language.English)
	if got := f.Format(decimal.NewFromInt(1234567)); got != "IDR 1,234,567" {
		t.Errorf("Format = %q, want %q", got, "IDR 1,234,567")
	}
}

func TestNewFormatterFromLocale(t *testing.T) {
	f, err := NewFormatterFromLocale("Rp", "id")
	if err != nil {
		t.Fatalf("NewFormatterFromLocale failed: %v", err)
	}
	if got := f.Format(decimal.NewFromInt(35000)); got != "Rp 35.000" {
		t.Errorf("Format = %q, want %q", got, "Rp 35.000")
	}

	if _, err := NewFormatterFromLocale("Rp", "not a locale!"); err == nil {
		t.Error("expected error for invalid locale")
	}
}
