package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	USD  Currency = "USD"
	ILS  Currency = "ILS"
	GBP  Currency = "GBP"
	EURO Currency = "EURO"
)

type (
	// Currency is one of the fixed set of supported currency codes.
	// Note the legacy EURO code, not ISO EUR.
	Currency string

	// CostInput is the caller-supplied payload for a new cost record.
	// The store assigns the ID and the recording timestamp.
	CostInput struct {
		Sum         decimal.Decimal
		Currency    Currency
		Category    string
		Description string
	}

	// CostRecord is one persisted expense entry. Records are immutable
	// after insertion; RecordedAt is stamped by the store in UTC and is
	// the authoritative date for all period filtering.
	CostRecord struct {
		ID          int64
		Sum         decimal.Decimal
		Currency    Currency
		Category    string
		Description string
		RecordedAt  time.Time
	}
)

var (
	ErrInvalidSum       = errors.New("invalid sum")
	ErrInvalidCurrency  = errors.New("invalid currency")
	ErrEmptyDescription = errors.New("empty description")
)

// Currencies lists every supported currency code.
var Currencies = []Currency{USD, ILS, GBP, EURO}

// ParseCurrency normalizes and validates a currency code.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ErrInvalidCurrency
	}
	return c, nil
}

func (c Currency) Valid() bool {
	switch c {
	case USD, ILS, GBP, EURO:
		return true
	}
	return false
}

func (in CostInput) Validate() error {
	if in.Sum.Sign() <= 0 {
		return ErrInvalidSum
	}
	if !in.Currency.Valid() {
		return ErrInvalidCurrency
	}
	if len(strings.TrimSpace(in.Description)) == 0 {
		return ErrEmptyDescription
	}
	return nil
}
