package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// SeasonDocument is the JSON file produced per (year, season)
type SeasonDocument struct {
	AnimeList   []AnimeEntry `json:"anime_list"`
	GeneratedAt Timestamp    `json:"generated_at,omitempty"`
}

// Timestamp accepts ISO-8601 strings or epoch numbers (seconds or milliseconds).
// It is display-only: a missing or unrecognised value decodes to zero instead
// of failing the document.
type Timestamp struct {
	time.Time
}

// epoch values above this are treated as milliseconds
const millisThreshold = 1e11

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return errors.Wrap(err, "invalid timestamp string")
		}
		if s == "" {
			return nil
		}
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				t.Time = parsed
				return nil
			}
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			t.Time = fromEpoch(n)
			return nil
		}
		return nil
	}

	if n, err := strconv.ParseFloat(string(b), 64); err == nil {
		t.Time = fromEpoch(n)
	}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Format("2006-01-02T15:04:05.999999"))
}

func fromEpoch(n float64) time.Time {
	if n > millisThreshold {
		return time.UnixMilli(int64(n)).UTC()
	}
	return time.Unix(int64(n), 0).UTC()
}
