package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"unite-stats/internal/config"
	"unite-stats/internal/constants"
	fxmodules "unite-stats/internal/fx"
	"unite-stats/internal/server"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(registerHTTP),
	).Run()
}

// registerHTTP binds the stats API to SERVER_PORT for the lifetime of the app.
// A bind failure aborts startup; a serve failure shuts the app down.
func registerHTTP(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	statsServer *server.StatsServer,
	cfg *config.Config,
	logger zerolog.Logger,
) {
	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.ServerPort),
		Handler:           statsServer.Handler(),
		ReadHeaderTimeout: constants.RequestTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info().Str("addr", ln.Addr().String()).Msg("stats api listening")

			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error().Err(err).Msg("stats api stopped unexpectedly")
					shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("stats api shutdown failed")
				return err
			}
			logger.Info().Msg("stats api stopped")
			return nil
		},
	})
}
