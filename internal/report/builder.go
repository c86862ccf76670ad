// Package report orchestrates the monthly report pipeline: stored records
// plus a validated rate table in, a converted report out.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"costbook/internal/core"

	"golang.org/x/sync/errgroup"
)

var ErrInvalidPeriod = errors.New("invalid report period")

// RecordSource yields every stored cost record.
type RecordSource interface {
	FetchAll(ctx context.Context) ([]core.CostRecord, error)
}

// RateSource yields a validated exchange rate table.
type RateSource interface {
	Fetch(ctx context.Context) (core.RateTable, error)
}

// Builder produces monthly reports on demand. Reports are computed per call
// and never cached: identical stored records and rate table always
// reproduce an identical report.
type Builder struct {
	store RecordSource
	rates RateSource
}

func NewBuilder(store RecordSource, rates RateSource) *Builder {
	return &Builder{
		store: store,
		rates: rates,
	}
}

// Monthly builds the report for the given UTC year and month in the target
// currency. The rate table and the record set are fetched concurrently; a
// failed or invalid rate fetch rejects the report before any aggregation.
func (b *Builder) Monthly(ctx context.Context, year, month int, target core.Currency) (core.Report, error) {
	if month < 1 || month > 12 {
		return core.Report{}, fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}
	if !target.Valid() {
		return core.Report{}, core.ErrInvalidCurrency
	}

	var (
		records []core.CostRecord
		table   core.RateTable
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		table, err = b.rates.Fetch(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = b.store.FetchAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Report{}, fmt.Errorf("build monthly report: %w", err)
	}

	rep := core.BuildReport(records, year, month, target, table)
	slog.InfoContext(ctx, "Report built",
		"year", year,
		"month", month,
		"currency", target,
		"line_items", len(rep.LineItems),
		"total", rep.Total.Amount)
	return rep, nil
}
