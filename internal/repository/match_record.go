package repository

import (
	"context"
	"database/sql"
	"fmt"
	"unite-stats/internal/config"
	"unite-stats/internal/constants"
	"unite-stats/internal/db"
	"unite-stats/internal/domain"

	"github.com/rs/zerolog"
)

type MatchRecordRepository struct {
	queries  *db.Queries
	db       *sql.DB
	pageSize int
	logger   zerolog.Logger
}

func NewMatchRecordRepository(sqlDB *sql.DB, queries *db.Queries, cfg *config.Config, logger zerolog.Logger) *MatchRecordRepository {
	pageSize := cfg.ScanPageSize
	if pageSize <= 0 {
		pageSize = constants.DefaultScanPageSize
	}
	return &MatchRecordRepository{
		queries:  queries,
		db:       sqlDB,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Page returns records with from <= started_date < to, continuing after cursor.
func (r *MatchRecordRepository) Page(ctx context.Context, from, to int64, cursor string) (domain.RecordPage, error) {
	rows, err := r.queries.ListMatchRecordsInWindow(ctx, db.ListMatchRecordsInWindowParams{
		From:    from,
		To:      to,
		AfterID: cursor,
		Limit:   int64(r.pageSize),
	})
	if err != nil {
		return domain.RecordPage{}, fmt.Errorf("failed to scan match records: %w", err)
	}

	page := domain.RecordPage{Records: make([]domain.MatchRecord, len(rows))}
	for i, row := range rows {
		record := domain.MatchRecord{
			ID:          row.ID,
			MatchID:     domain.MatchID(row.MatchID),
			Pokemon:     row.Pokemon,
			StartedDate: row.StartedDate,
		}
		if row.Winlose.Valid {
			v := domain.RawOutcome(row.Winlose.String)
			record.WinLose = &v
		}
		page.Records[i] = record
	}

	if len(rows) == r.pageSize {
		page.Cursor = rows[len(rows)-1].ID
	}

	r.logger.Debug().
		Int64("from", from).
		Int64("to", to).
		Str("after", cursor).
		Int("count", len(rows)).
		Bool("more", page.Cursor != "").
		Msg("scanned match record page")

	return page, nil
}

// UpsertBatch writes records in one transaction. Records without an id are keyed
// by (match_id, pokemon), so importing the same data twice leaves one row each.
func (r *MatchRecordRepository) UpsertBatch(ctx context.Context, records []domain.MatchRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	for i := 0; i < len(records); i += constants.DBBatchSize {
		end := i + constants.DBBatchSize
		if end > len(records) {
			end = len(records)
		}

		for _, record := range records[i:end] {
			id := record.ID
			if id == "" {
				id = domain.RecordID(record.MatchID, record.Pokemon)
			}

			var winlose sql.NullString
			if record.WinLose != nil {
				winlose = sql.NullString{String: string(*record.WinLose), Valid: true}
			}

			err := qtx.UpsertMatchRecord(ctx, db.UpsertMatchRecordParams{
				ID:          id,
				MatchID:     string(record.MatchID),
				Pokemon:     record.Pokemon,
				Winlose:     winlose,
				StartedDate: record.StartedDate,
			})
			if err != nil {
				return fmt.Errorf("failed to upsert match record %s/%s: %w", record.MatchID, record.Pokemon, err)
			}
		}
	}

	return tx.Commit()
}

func (r *MatchRecordRepository) Count(ctx context.Context) (int64, error) {
	return r.queries.CountMatchRecords(ctx)
}
