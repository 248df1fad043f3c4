package service

import (
	"context"
	"slices"
	"time"
	"unite-stats/internal/constants"
	"unite-stats/internal/domain"

	"github.com/rs/zerolog"
)

type SummaryReader interface {
	Get(ctx context.Context, date string) (*domain.DailySummary, bool, error)
}

type StatsService struct {
	store  SummaryReader
	now    Clock
	logger zerolog.Logger
}

func NewStatsService(store SummaryReader, now Clock, logger zerolog.Logger) *StatsService {
	return &StatsService{store: store, now: now, logger: logger}
}

// DateRange is a validated inclusive span of reference-zone days.
type DateRange struct {
	Start     time.Time
	End       time.Time
	StartDate string
	EndDate   string
}

// Days returns every day in the range, oldest first.
func (r DateRange) Days() []time.Time {
	var days []time.Time
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// GetStats merges the stored daily summaries for the requested span.
// Empty dates fall back to the default window ending yesterday.
func (s *StatsService) GetStats(ctx context.Context, startDate, endDate string) (*domain.RangeResult, error) {
	logger := loggerFrom(ctx, s.logger)

	r, err := ResolveRange(s.now(), startDate, endDate)
	if err != nil {
		return nil, err
	}

	acc := NewAccumulator()
	for _, day := range r.Days() {
		date := formatDate(day)
		summary, found, err := s.store.Get(ctx, date)
		if err != nil {
			logger.Warn().Err(err).Str("date", date).Msg("skipping day, summary unavailable")
			continue
		}
		if !found {
			logger.Debug().Str("date", date).Msg("no summary stored for day")
			continue
		}
		acc.Add(summary)
	}

	result := acc.Result(r.StartDate, r.EndDate)
	logger.Info().
		Str("start_date", r.StartDate).
		Str("end_date", r.EndDate).
		Int("number_of_games", result.NumberOfGames).
		Int("pokemon_count", len(result.ResultPerPokemon)).
		Msg("stats resolved")

	return result, nil
}

// ResolveRange applies defaults and validates format, freshness and ordering, in that order.
func ResolveRange(now time.Time, startDate, endDate string) (DateRange, error) {
	today := startOfDay(now)
	yesterday := today.AddDate(0, 0, -1)

	if startDate == "" {
		startDate = formatDate(today.AddDate(0, 0, -constants.DefaultRangeDays))
	}
	if endDate == "" {
		endDate = formatDate(yesterday)
	}

	start, err := parseDate(startDate)
	if err != nil {
		return DateRange{}, newValidationError(InvalidDateFormat, "start_date", "dates must be in YYYY-MM-DD format")
	}
	end, err := parseDate(endDate)
	if err != nil {
		return DateRange{}, newValidationError(InvalidDateFormat, "end_date", "dates must be in YYYY-MM-DD format")
	}

	floor := today.AddDate(0, 0, -constants.FreshnessDays)
	for _, f := range []struct {
		name string
		day  time.Time
	}{{"start_date", start}, {"end_date", end}} {
		if f.day.Before(floor) {
			return DateRange{}, newValidationError(DateTooOld, f.name,
				"%s is too old: must be on or after %s (%d days ago)", f.name, formatDate(floor), constants.FreshnessDays)
		}
		if f.day.After(yesterday) {
			return DateRange{}, newValidationError(DateInFuture, f.name,
				"%s is in the future: must be on or before %s (yesterday)", f.name, formatDate(yesterday))
		}
	}

	if end.Before(start) {
		return DateRange{}, newValidationError(DateOrder, "end_date", "end_date must be the same as or after start_date")
	}

	return DateRange{Start: start, End: end, StartDate: startDate, EndDate: endDate}, nil
}

// Accumulator merges daily summaries, remembering the order pokemon were first seen.
type Accumulator struct {
	total int
	index map[string]int
	rows  []domain.PokemonResult
}

func NewAccumulator() *Accumulator {
	return &Accumulator{index: make(map[string]int)}
}

func (a *Accumulator) Add(summary *domain.DailySummary) {
	a.total += summary.NumberOfGames
	for _, p := range summary.ResultPerPokemon {
		i, ok := a.index[p.Pokemon]
		if !ok {
			i = len(a.rows)
			a.index[p.Pokemon] = i
			a.rows = append(a.rows, domain.PokemonResult{Pokemon: p.Pokemon})
		}
		a.rows[i].NumberOfGames += p.NumberOfGames
		a.rows[i].NumberOfWins += p.NumberOfWins
	}
}

// Result sorts by appearances, most first; ties keep first-seen order.
func (a *Accumulator) Result(startDate, endDate string) *domain.RangeResult {
	rows := slices.Clone(a.rows)
	if rows == nil {
		rows = []domain.PokemonResult{}
	}
	slices.SortStableFunc(rows, func(x, y domain.PokemonResult) int {
		return y.NumberOfGames - x.NumberOfGames
	})

	return &domain.RangeResult{
		NumberOfGames:    a.total,
		StartDate:        startDate,
		EndDate:          endDate,
		ResultPerPokemon: rows,
	}
}
