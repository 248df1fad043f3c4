package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"unite-stats/internal/constants"
	"unite-stats/internal/domain"
	fxmodules "unite-stats/internal/fx"
	"unite-stats/internal/report"
	"unite-stats/internal/repository"
	"unite-stats/internal/service"

	"go.uber.org/fx"
)

const usage = `usage: statsctl <command> [flags]

commands:
  import <file.json>          load raw match records into the table store
  aggregate [-date YYYY-MM-DD] run the daily aggregation once
  stats [-start D] [-end D]   print merged stats for a date range
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "import":
		err = runImport(os.Args[2:])
	case "aggregate":
		err = runAggregate(os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "statsctl %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

// withApp builds the core graph, fills targets and runs fn between start and stop.
func withApp(fn func(ctx context.Context) error, targets ...any) error {
	app := fx.New(fxmodules.Core, fx.NopLogger, fx.Populate(targets...))

	ctx, cancel := context.WithTimeout(context.Background(), constants.AggregationTimeout)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return err
	}
	defer app.Stop(context.Background())

	return fn(ctx)
}

func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("expected exactly one input file")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	var records []domain.MatchRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse %s: %w", fs.Arg(0), err)
	}

	var repo *repository.MatchRecordRepository
	return withApp(func(ctx context.Context) error {
		if err := repo.UpsertBatch(ctx, records); err != nil {
			return err
		}
		total, err := repo.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d records (%d stored)\n", len(records), total)
		return nil
	}, &repo)
}

func runAggregate(args []string) error {
	fs := flag.NewFlagSet("aggregate", flag.ExitOnError)
	date := fs.String("date", "", "target day (YYYY-MM-DD), defaults to yesterday in UTC+9")
	fs.Parse(args)

	var job *service.AggregatorService
	return withApp(func(ctx context.Context) error {
		resp := job.Run(ctx, *date)
		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp.Body); err != nil {
			return err
		}
		if resp.Body.Error != "" {
			return errors.New(resp.Body.Error)
		}
		return nil
	}, &job)
}

func runStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	start := fs.String("start", "", "first day (YYYY-MM-DD), defaults to 7 days ago")
	end := fs.String("end", "", "last day (YYYY-MM-DD), defaults to yesterday")
	fs.Parse(args)

	var stats *service.StatsService
	return withApp(func(ctx context.Context) error {
		result, err := stats.GetStats(ctx, *start, *end)
		if err != nil {
			return err
		}
		return report.WriteRange(os.Stdout, result)
	}, &stats)
}
