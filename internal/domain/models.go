package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// MatchRecord is one character appearance in one match, as stored in the raw table.
type MatchRecord struct {
	ID      string `json:"id,omitempty"`
	MatchID MatchID `json:"match_id"`
	Pokemon string  `json:"pokemon"`

	// WinLose is kept raw; it may be missing or non-numeric in the source.
	WinLose *RawOutcome `json:"winlose"`

	StartedDate int64 `json:"started_date"` // epoch seconds
}

type PokemonResult struct {
	Pokemon       string `json:"pokemon"`
	NumberOfGames int    `json:"number_of_games"` // appearances, not matches
	NumberOfWins  int    `json:"number_of_wins"`
}

type DailySummary struct {
	NumberOfGames    int             `json:"number_of_games"` // distinct match_id
	AggregatedDate   string          `json:"aggregated_date"`
	ResultPerPokemon []PokemonResult `json:"result_per_pokemon"`
}

type RangeResult struct {
	NumberOfGames    int             `json:"number_of_games"`
	StartDate        string          `json:"start_date"`
	EndDate          string          `json:"end_date"`
	ResultPerPokemon []PokemonResult `json:"result_per_pokemon"`
}

type Pokemon struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	ImageURL string `json:"imageUrl"`
}

// RecordPage is one page of a windowed scan. An empty Cursor means the scan is exhausted.
type RecordPage struct {
	Records []MatchRecord
	Cursor  string
}

// RawOutcome is the textual form of a winlose value, whatever JSON type it arrived as.
type RawOutcome string

func (o *RawOutcome) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*o = RawOutcome(s)
		return nil
	}
	*o = RawOutcome(strings.TrimSpace(string(b)))
	return nil
}

// MatchID is an opaque match identifier. Sources send it as a JSON string or number;
// numbers keep their literal text.
type MatchID string

func (m *MatchID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*m = MatchID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("match_id must be a string or a number, got %s", b)
	}
	*m = MatchID(n)
	return nil
}

// RecordID is the stored id of a record imported without one: one row per
// pokemon per match, so re-importing the same data overwrites instead of duplicating.
func RecordID(matchID MatchID, pokemon string) string {
	return string(matchID) + ":" + pokemon
}
