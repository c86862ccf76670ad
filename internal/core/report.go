package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RateTable maps a currency code to its exchange rate relative to the base
// currency (USD). Converting between two arbitrary currencies goes through
// the base: divide by the source rate, multiply by the target rate.
type RateTable map[Currency]decimal.Decimal

var one = decimal.NewFromInt(1)

// Rate returns the rate for c, or 1 when the table has no entry for it.
// The fallback keeps reports usable when a rate feed is momentarily
// incomplete; feed-level validation is a separate concern (see rates).
func (t RateTable) Rate(c Currency) decimal.Decimal {
	if r, ok := t[c]; ok {
		return r
	}
	return one
}

type (
	// LineItem is one record of a monthly report, carrying the original
	// unconverted sum and the UTC day-of-month it was recorded on.
	LineItem struct {
		Day         int
		Sum         decimal.Decimal
		Currency    Currency
		Category    string
		Description string
	}

	// ReportTotal is the single converted sum of a report, rounded to
	// 2 decimal places.
	ReportTotal struct {
		Currency Currency
		Amount   decimal.Decimal
	}

	// Report is a derived, non-persisted monthly summary. Identical
	// inputs always reproduce an identical report.
	Report struct {
		Year      int
		Month     int // 1-12
		LineItems []LineItem
		Total     ReportTotal
	}
)

// BuildReport filters records to the given UTC calendar year and month,
// orders them by recording time, and computes the total in the target
// currency: each sum is divided by its currency's rate, the base-currency
// values are summed, and the sum is multiplied by the target currency's
// rate. Only the aggregate total is rounded (half-up, 2 decimal places);
// line-item sums are carried through unrounded.
func BuildReport(records []CostRecord, year, month int, target Currency, rates RateTable) Report {
	matched := make([]CostRecord, 0, len(records))
	for _, r := range records {
		at := r.RecordedAt.UTC()
		if at.Year() == year && int(at.Month()) == month {
			matched = append(matched, r)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].RecordedAt.Equal(matched[j].RecordedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].RecordedAt.Before(matched[j].RecordedAt)
	})

	items := make([]LineItem, len(matched))
	base := decimal.Zero
	for i, r := range matched {
		items[i] = LineItem{
			Day:         r.RecordedAt.UTC().Day(),
			Sum:         r.Sum,
			Currency:    r.Currency,
			Category:    r.Category,
			Description: r.Description,
		}
		base = base.Add(r.Sum.Div(rates.Rate(r.Currency)))
	}

	return Report{
		Year:      year,
		Month:     month,
		LineItems: items,
		Total: ReportTotal{
			Currency: target,
			Amount:   base.Mul(rates.Rate(target)).Round(2),
		},
	}
}
