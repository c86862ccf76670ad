package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseCurrency(t *testing.T) {
	cases := []struct {
		in   string
		out  Currency
		ok   bool
	}{
		{"USD", USD, true},
		{"usd", USD, true},
		{" euro ", EURO, true},
		{"ILS", ILS, true},
		{"GBP", GBP, true},
		{"EUR", "", false}, // the legacy EURO code is the only accepted spelling
		{"JPY", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseCurrency(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if !errors.Is(err, ErrInvalidCurrency) {
				t.Fatalf("%q expected ErrInvalidCurrency, got %v", tc.in, err)
			}
		}
	}
}

func TestCostInput_Validate(t *testing.T) {
	valid := CostInput{
		Sum:         decimal.RequireFromString("12.50"),
		Currency:    USD,
		Category:    "food",
		Description: "lunch",
	}

	cases := []struct {
		name    string
		mutate  func(*CostInput)
		wantErr error
	}{
		{"valid", func(in *CostInput) {}, nil},
		{"zero sum", func(in *CostInput) { in.Sum = decimal.Zero }, ErrInvalidSum},
		{"negative sum", func(in *CostInput) { in.Sum = decimal.RequireFromString("-1") }, ErrInvalidSum},
		{"unknown currency", func(in *CostInput) { in.Currency = "EUR" }, ErrInvalidCurrency},
		{"empty description", func(in *CostInput) { in.Description = "  " }, ErrEmptyDescription},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			err := in.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}
