package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"unite-stats/internal/cache"
	"unite-stats/internal/config"
	"unite-stats/internal/constants"
	"unite-stats/internal/domain"

	"github.com/rs/zerolog"
)

// SummaryRepository stores one DailySummary document per day under "{date}/result.json".
type SummaryRepository struct {
	cache  *cache.RedisCache
	prefix string
	logger zerolog.Logger
}

func NewSummaryRepository(rc *cache.RedisCache, cfg *config.Config, logger zerolog.Logger) *SummaryRepository {
	return &SummaryRepository{cache: rc, prefix: cfg.SummaryPrefix, logger: logger}
}

func (r *SummaryRepository) Key(date string) string {
	key := fmt.Sprintf(constants.SummaryKeyFormat, date)
	if r.prefix == "" {
		return key
	}
	return r.prefix + "/" + key
}

// Put overwrites the document for summary.AggregatedDate and returns its location.
func (r *SummaryRepository) Put(ctx context.Context, summary *domain.DailySummary) (string, error) {
	body, err := EncodeSummary(summary)
	if err != nil {
		return "", err
	}

	key := r.Key(summary.AggregatedDate)
	if err := r.cache.Set(ctx, key, body, 0); err != nil {
		return "", fmt.Errorf("failed to write summary %s: %w", key, err)
	}

	r.logger.Debug().Str("key", key).Int("bytes", len(body)).Msg("summary written")
	return "redis://" + key, nil
}

// Get returns found=false when no document exists for date.
func (r *SummaryRepository) Get(ctx context.Context, date string) (*domain.DailySummary, bool, error) {
	key := r.Key(date)
	body, found, err := r.cache.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read summary %s: %w", key, err)
	}
	if !found {
		return nil, false, nil
	}

	var summary domain.DailySummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, false, fmt.Errorf("failed to decode summary %s: %w", key, err)
	}
	return &summary, true, nil
}

// EncodeSummary renders summary as UTF-8 JSON without escaping non-ASCII or HTML characters.
func EncodeSummary(summary *domain.DailySummary) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(summary); err != nil {
		return nil, fmt.Errorf("failed to encode summary: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
