package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"unite-stats/internal/config"
	"unite-stats/internal/constants"
	fxmodules "unite-stats/internal/fx"
	"unite-stats/internal/service"

	"go.uber.org/fx"
)

// The daily job: aggregates TARGET_DATE (or yesterday in UTC+9) once and exits.
func main() {
	var (
		job *service.AggregatorService
		cfg *config.Config
	)

	app := fx.New(
		fxmodules.Core,
		fx.NopLogger,
		fx.Populate(&job, &cfg),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		writeResult(service.AggregationResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       service.AggregationReport{Error: err.Error()},
		})
		os.Exit(1)
	}

	ctx, cancelRun := context.WithTimeout(context.Background(), constants.AggregationTimeout)
	resp := job.Run(ctx, cfg.TargetDate)
	cancelRun()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancelStop()
	app.Stop(stopCtx)

	writeResult(resp)
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}

func writeResult(resp service.AggregationResponse) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.Encode(map[string]any{
		"statusCode": resp.StatusCode,
		"body":       resp.Body,
	})
}
