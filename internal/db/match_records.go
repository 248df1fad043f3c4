package db

import (
	"context"
	"database/sql"
)

// Placeholders are numbered so the same statements run on sqlite3 and postgres.

const listMatchRecordsInWindow = `
SELECT id, match_id, pokemon, winlose, started_date
FROM match_records
WHERE started_date >= $1 AND started_date < $2 AND id > $3
ORDER BY id
LIMIT $4
`

type ListMatchRecordsInWindowParams struct {
	From    int64
	To      int64
	AfterID string
	Limit   int64
}

type MatchRecord struct {
	ID          string
	MatchID     string
	Pokemon     string
	Winlose     sql.NullString
	StartedDate int64
}

func (q *Queries) ListMatchRecordsInWindow(ctx context.Context, arg ListMatchRecordsInWindowParams) ([]MatchRecord, error) {
	rows, err := q.db.QueryContext(ctx, listMatchRecordsInWindow, arg.From, arg.To, arg.AfterID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MatchRecord
	for rows.Next() {
		var i MatchRecord
		if err := rows.Scan(&i.ID, &i.MatchID, &i.Pokemon, &i.Winlose, &i.StartedDate); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertMatchRecord = `
INSERT INTO match_records (id, match_id, pokemon, winlose, started_date)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
    match_id = excluded.match_id,
    pokemon = excluded.pokemon,
    winlose = excluded.winlose,
    started_date = excluded.started_date
`

type UpsertMatchRecordParams struct {
	ID          string
	MatchID     string
	Pokemon     string
	Winlose     sql.NullString
	StartedDate int64
}

func (q *Queries) UpsertMatchRecord(ctx context.Context, arg UpsertMatchRecordParams) error {
	_, err := q.db.ExecContext(ctx, upsertMatchRecord, arg.ID, arg.MatchID, arg.Pokemon, arg.Winlose, arg.StartedDate)
	return err
}

const countMatchRecords = `SELECT COUNT(*) FROM match_records`

func (q *Queries) CountMatchRecords(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countMatchRecords)
	var count int64
	err := row.Scan(&count)
	return count, err
}
