package service

import (
	"context"
	"fmt"
	"iter"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
	"unite-stats/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type RecordSource interface {
	Page(ctx context.Context, from, to int64, cursor string) (domain.RecordPage, error)
}

type SummaryWriter interface {
	Put(ctx context.Context, summary *domain.DailySummary) (string, error)
}

// AggregateOutcome is either a written summary or NoData for a day without records.
type AggregateOutcome struct {
	Summary  *domain.DailySummary
	Location string
	NoData   bool
}

// AggregationReport is the JSON body returned to whatever triggered the job.
type AggregationReport struct {
	Message        string `json:"message,omitempty"`
	RunID          string `json:"run_id,omitempty"`
	AggregatedDate string `json:"aggregated_date,omitempty"`
	TotalGames     int    `json:"total_games,omitempty"`
	PokemonCount   int    `json:"pokemon_count,omitempty"`
	Location       string `json:"location,omitempty"`
	Error          string `json:"error,omitempty"`
}

type AggregationResponse struct {
	StatusCode int
	Body       AggregationReport
}

type AggregatorService struct {
	source RecordSource
	sink   SummaryWriter
	now    Clock
	logger zerolog.Logger
}

func NewAggregatorService(source RecordSource, sink SummaryWriter, now Clock, logger zerolog.Logger) *AggregatorService {
	return &AggregatorService{source: source, sink: sink, now: now, logger: logger}
}

// Run executes one aggregation and converts every failure, panics included, into a 500 response.
func (s *AggregatorService) Run(ctx context.Context, targetDate string) (resp AggregationResponse) {
	runID, err := gonanoid.New()
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to generate run id")
	}
	logger := s.logger.With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("aggregation panicked")
			resp = AggregationResponse{
				StatusCode: http.StatusInternalServerError,
				Body:       AggregationReport{RunID: runID, Error: fmt.Sprint(r)},
			}
		}
	}()

	outcome, err := s.AggregateDaily(ctx, targetDate)
	if err != nil {
		logger.Error().Err(err).Str("target_date", targetDate).Msg("aggregation failed")
		return AggregationResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       AggregationReport{RunID: runID, Error: err.Error()},
		}
	}

	if outcome.NoData {
		return AggregationResponse{
			StatusCode: http.StatusOK,
			Body:       AggregationReport{Message: "No data found for aggregation", RunID: runID},
		}
	}

	return AggregationResponse{
		StatusCode: http.StatusOK,
		Body: AggregationReport{
			Message:        "Aggregation completed successfully",
			RunID:          runID,
			AggregatedDate: outcome.Summary.AggregatedDate,
			TotalGames:     outcome.Summary.NumberOfGames,
			PokemonCount:   len(outcome.Summary.ResultPerPokemon),
			Location:       outcome.Location,
		},
	}
}

// AggregateDaily recomputes the summary for targetDate, or yesterday when targetDate is empty.
func (s *AggregatorService) AggregateDaily(ctx context.Context, targetDate string) (*AggregateOutcome, error) {
	logger := loggerFrom(ctx, s.logger)

	day, source, err := s.resolveTarget(targetDate)
	if err != nil {
		return nil, err
	}
	date := formatDate(day)
	from, to := DayWindow(day)

	logger.Info().Str("aggregated_date", date).Str("date_source", source).
		Int64("from", from).Int64("to", to).Msg("aggregation started")

	records, err := DrainRecords(ctx, s.source, from, to)
	if err != nil {
		return nil, err
	}

	logger.Info().Int("record_count", len(records)).Msg("match records fetched")

	if len(records) == 0 {
		logger.Info().Str("aggregated_date", date).Msg("no match records for target date")
		return &AggregateOutcome{NoData: true}, nil
	}

	summary := Aggregate(date, records)

	location, err := s.sink.Put(ctx, summary)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("location", location).
		Int("total_games", summary.NumberOfGames).
		Int("pokemon_count", len(summary.ResultPerPokemon)).
		Msg("aggregation completed")

	return &AggregateOutcome{Summary: summary, Location: location}, nil
}

func (s *AggregatorService) resolveTarget(targetDate string) (time.Time, string, error) {
	if targetDate != "" {
		day, err := parseDate(targetDate)
		if err != nil {
			return time.Time{}, "", newValidationError(InvalidDateFormat, "target_date",
				"target date must be in YYYY-MM-DD format: %s", targetDate)
		}
		return day, "override", nil
	}
	return startOfDay(s.now()).AddDate(0, 0, -1), "yesterday", nil
}

// Pages lazily walks the record source one page at a time until the cursor is exhausted.
func Pages(ctx context.Context, src RecordSource, from, to int64) iter.Seq2[[]domain.MatchRecord, error] {
	return func(yield func([]domain.MatchRecord, error) bool) {
		cursor := ""
		for {
			page, err := src.Page(ctx, from, to, cursor)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(page.Records, nil) {
				return
			}
			if page.Cursor == "" {
				return
			}
			if page.Cursor == cursor {
				yield(nil, fmt.Errorf("pagination cursor %q did not advance", cursor))
				return
			}
			cursor = page.Cursor
		}
	}
}

// DrainRecords collects every page; nothing is returned unless all pages were read.
func DrainRecords(ctx context.Context, src RecordSource, from, to int64) ([]domain.MatchRecord, error) {
	var records []domain.MatchRecord
	for page, err := range Pages(ctx, src, from, to) {
		if err != nil {
			return nil, fmt.Errorf("failed to fetch match records: %w", err)
		}
		records = append(records, page...)
	}
	return records, nil
}

// Aggregate groups records by pokemon. Top-level NumberOfGames counts distinct matches,
// per-pokemon NumberOfGames counts appearances. Rows are ordered by pokemon name.
func Aggregate(date string, records []domain.MatchRecord) *domain.DailySummary {
	matches := make(map[domain.MatchID]struct{}, len(records))
	byPokemon := make(map[string]*domain.PokemonResult)

	for _, rec := range records {
		matches[rec.MatchID] = struct{}{}

		row, ok := byPokemon[rec.Pokemon]
		if !ok {
			row = &domain.PokemonResult{Pokemon: rec.Pokemon}
			byPokemon[rec.Pokemon] = row
		}
		row.NumberOfGames++
		row.NumberOfWins += CoerceOutcome(rec.WinLose)
	}

	results := make([]domain.PokemonResult, 0, len(byPokemon))
	for _, row := range byPokemon {
		results = append(results, *row)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Pokemon < results[j].Pokemon
	})

	return &domain.DailySummary{
		NumberOfGames:    len(matches),
		AggregatedDate:   date,
		ResultPerPokemon: results,
	}
}

// CoerceOutcome converts a raw winlose value to an integer. Missing, null,
// non-numeric and non-finite values become 0; fractional values truncate.
func CoerceOutcome(raw *domain.RawOutcome) int {
	if raw == nil {
		return 0
	}
	s := strings.TrimSpace(string(*raw))
	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		return int(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0
	}
	return int(f)
}
