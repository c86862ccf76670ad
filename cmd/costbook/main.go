package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"costbook/internal/cli"
	"costbook/internal/config"
	"costbook/internal/core"
	"costbook/internal/rates"
	"costbook/internal/report"
	"costbook/internal/storage"
)

const usage = `Usage: costbook <command> [flags]

Commands:
  add      -sum <amount> -currency <code> -category <name> -description <text>
  report   -year <yyyy> -month <1-12> [-currency <code>]
  clear    delete every stored record
  destroy  delete the whole database (all handles must be closed)
`

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx := context.Background()

	var err error
	switch os.Args[1] {
	case "add":
		err = runAdd(ctx, cfg, os.Args[2:])
	case "report":
		err = runReport(ctx, cfg, os.Args[2:])
	case "clear":
		err = runClear(ctx, cfg)
	case "destroy":
		err = storage.Destroy(cfg.DataDir, cfg.DBName)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("Command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func runAdd(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	sum := fs.String("sum", "", "positive decimal amount")
	currency := fs.String("currency", string(core.USD), "currency code (USD, ILS, GBP, EURO)")
	category := fs.String("category", "", "expense category")
	description := fs.String("description", "", "expense description")
	if err := fs.Parse(args); err != nil {
		return err
	}

	amount, err := core.ParseAmount(*sum)
	if err != nil {
		return fmt.Errorf("parse sum %q: %w", *sum, err)
	}
	cur, err := core.ParseCurrency(*currency)
	if err != nil {
		return fmt.Errorf("parse currency %q: %w", *currency, err)
	}

	db, err := storage.Connect(ctx, cfg.DataDir, cfg.DBName, cfg.DBVersion)
	if err != nil {
		return err
	}
	defer db.Close()

	rec, err := db.Insert(ctx, core.CostInput{
		Sum:         amount,
		Currency:    cur,
		Category:    *category,
		Description: *description,
	})
	if err != nil {
		return err
	}

	fmt.Printf("saved cost #%d: %s %s (%s)\n", rec.ID, rec.Sum, rec.Currency, rec.RecordedAt.Format("2006-01-02"))
	return nil
}

func runReport(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	year := fs.Int("year", 0, "report year")
	month := fs.Int("month", 0, "report month (1-12)")
	currency := fs.String("currency", cfg.ReportCurrency, "target currency code")
	if err := fs.Parse(args); err != nil {
		return err
	}

	target, err := core.ParseCurrency(*currency)
	if err != nil {
		return fmt.Errorf("parse currency %q: %w", *currency, err)
	}

	db, err := storage.Connect(ctx, cfg.DataDir, cfg.DBName, cfg.DBVersion)
	if err != nil {
		return err
	}
	defer db.Close()

	builder := report.NewBuilder(db, rates.NewClient(cfg.RatesURL, cfg.FetchTimeout))
	rep, err := builder.Monthly(ctx, *year, *month, target)
	if err != nil {
		return err
	}

	for _, item := range rep.LineItems {
		fmt.Printf("%02d  %10s %-5s %-15s %s\n",
			item.Day, item.Sum, item.Currency, item.Category, item.Description)
	}
	fmt.Printf("total for %d-%02d: %s %s\n",
		rep.Year, rep.Month, rep.Total.Amount.StringFixed(2), rep.Total.Currency)
	return nil
}

func runClear(ctx context.Context, cfg *config.Config) error {
	db, err := storage.Connect(ctx, cfg.DataDir, cfg.DBName, cfg.DBVersion)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Clear(ctx)
}
