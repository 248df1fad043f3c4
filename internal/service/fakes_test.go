package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"
	"unite-stats/internal/constants"
	"unite-stats/internal/domain"
	"unite-stats/internal/repository"
)

// fixedNow is 2024-06-10 12:00 in the reference zone.
func fixedNow() time.Time {
	return time.Date(2024, 6, 10, 12, 0, 0, 0, constants.ReferenceZone)
}

func outcome(s string) *domain.RawOutcome {
	o := domain.RawOutcome(s)
	return &o
}

func rec(matchID, pokemon string, winlose *domain.RawOutcome) domain.MatchRecord {
	return domain.MatchRecord{MatchID: domain.MatchID(matchID), Pokemon: pokemon, WinLose: winlose, StartedDate: 1717945200}
}

// pagedSource serves fixed pages; the cursor is the index of the next page.
type pagedSource struct {
	pages   [][]domain.MatchRecord
	failAt  int
	panics  bool
	cursors []string
	from    int64
	to      int64
}

func (p *pagedSource) Page(_ context.Context, from, to int64, cursor string) (domain.RecordPage, error) {
	if p.panics {
		panic("source exploded")
	}
	p.cursors = append(p.cursors, cursor)
	p.from, p.to = from, to

	i := 0
	if cursor != "" {
		i, _ = strconv.Atoi(cursor)
	}
	if p.failAt > 0 && i == p.failAt {
		return domain.RecordPage{}, errors.New("table store unreachable")
	}
	if i >= len(p.pages) {
		return domain.RecordPage{}, nil
	}

	page := domain.RecordPage{Records: p.pages[i]}
	if i+1 < len(p.pages) {
		page.Cursor = strconv.Itoa(i + 1)
	}
	return page, nil
}

// memoryStore is a summary store keyed by date.
type memoryStore struct {
	docs    map[string][]byte
	broken  map[string]error
	putErr  error
	puts    int
	fetched []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{docs: map[string][]byte{}, broken: map[string]error{}}
}

func (m *memoryStore) Put(_ context.Context, summary *domain.DailySummary) (string, error) {
	if m.putErr != nil {
		return "", m.putErr
	}
	body, err := repository.EncodeSummary(summary)
	if err != nil {
		return "", err
	}
	m.puts++
	m.docs[summary.AggregatedDate] = body
	return "memory://" + summary.AggregatedDate + "/result.json", nil
}

func (m *memoryStore) Get(_ context.Context, date string) (*domain.DailySummary, bool, error) {
	m.fetched = append(m.fetched, date)
	if err, ok := m.broken[date]; ok {
		return nil, false, err
	}
	body, ok := m.docs[date]
	if !ok {
		return nil, false, nil
	}
	var s domain.DailySummary
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, false, err
	}
	return &s, true, nil
}

func (m *memoryStore) seed(s domain.DailySummary) {
	body, _ := repository.EncodeSummary(&s)
	m.docs[s.AggregatedDate] = body
}
