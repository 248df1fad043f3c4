package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"unite-stats/internal/constants"
	"unite-stats/internal/middleware"
	"unite-stats/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Probe is one dependency checked by /healthz.
type Probe struct {
	Name string
	Ping func(ctx context.Context) error
}

type StatsServer struct {
	statsSvc      *service.StatsService
	aggregatorSvc *service.AggregatorService
	pokemonSvc    *service.PokemonService
	probes        []Probe
	logger        zerolog.Logger
}

func NewStatsServer(statsSvc *service.StatsService, aggregatorSvc *service.AggregatorService, pokemonSvc *service.PokemonService, probes []Probe, logger zerolog.Logger) *StatsServer {
	return &StatsServer{
		statsSvc:      statsSvc,
		aggregatorSvc: aggregatorSvc,
		pokemonSvc:    pokemonSvc,
		probes:        probes,
		logger:        logger,
	}
}

func (s *StatsServer) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.Recovery)

	routes := []struct {
		path    string
		method  string
		handler http.HandlerFunc
	}{
		{"/stats", http.MethodGet, s.GetStats},
		{"/pokemons", http.MethodGet, s.GetPokemons},
		{"/aggregate", http.MethodPost, s.TriggerAggregation},
		{"/healthz", http.MethodGet, s.Health},
	}
	for _, rt := range routes {
		router.HandleFunc(rt.path, rt.handler).Methods(rt.method)
		router.HandleFunc(rt.path, s.Preflight).Methods(http.MethodOptions)
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, fmt.Errorf("no route for %s", r.URL.Path))
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed on %s", r.Method, r.URL.Path))
	})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	return middleware.RequestID(s.logger)(c.Handler(router))
}

func (s *StatsServer) GetStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := s.statsSvc.GetStats(r.Context(), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			zerolog.Ctx(r.Context()).Info().Str("kind", verr.Kind.String()).Str("field", verr.Field).Msg("rejected stats query")
			respondError(w, http.StatusBadRequest, err)
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("stats query failed")
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *StatsServer) GetPokemons(w http.ResponseWriter, r *http.Request) {
	pokemons, err := s.pokemonSvc.GetPokemons(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("master data unavailable")
		respondError(w, http.StatusBadGateway, err)
		return
	}
	respondJSON(w, http.StatusOK, pokemons)
}

type aggregateRequest struct {
	TargetDate string `json:"target_date"`
}

// TriggerAggregation runs the daily job for the event payload's target_date (optional).
func (s *StatsServer) TriggerAggregation(w http.ResponseWriter, r *http.Request) {
	var req aggregateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, fmt.Errorf("invalid event payload: %w", err))
		return
	}

	// The job runs to completion even if the caller goes away.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), constants.AggregationTimeout)
	defer cancel()

	resp := s.aggregatorSvc.Run(ctx, req.TargetDate)
	respondJSON(w, resp.StatusCode, resp.Body)
}

func (s *StatsServer) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.HealthCheckTimeout)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)
	for _, p := range s.probes {
		g.Go(func() error {
			if err := p.Ping(gCtx); err != nil {
				return fmt.Errorf("%s: %w", p.Name, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("health check failed")
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *StatsServer) Preflight(w http.ResponseWriter, r *http.Request) {
	middleware.AllowAnyOrigin(w)
	w.WriteHeader(http.StatusNoContent)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	middleware.AllowAnyOrigin(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(data)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
