package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mohammed-shakir/vakuf-map/internal/core/model"
)

// entry is the cached form of a record set: the write time in Unix
// milliseconds and the records.
type entry struct {
	Timestamp int64          `json:"timestamp"`
	Data      []model.Record `json:"data"`
}

func encodeEntry(recs []model.Record, at time.Time) ([]byte, error) {
	b, err := json.Marshal(entry{Timestamp: at.UnixMilli(), Data: recs})
	if err != nil {
		return nil, fmt.Errorf("encode cache entry: %w", err)
	}
	return b, nil
}

func decodeEntry(b []byte) (entry, error) {
	var e entry
	if err := json.Unmarshal(b, &e); err != nil {
		return entry{}, fmt.Errorf("decode cache entry: %w", err)
	}
	if e.Timestamp <= 0 {
		return entry{}, fmt.Errorf("decode cache entry: missing timestamp")
	}
	return e, nil
}

// fresh reports whether the entry is younger than validity at now.
func (e entry) fresh(now time.Time, validity time.Duration) bool {
	return now.Sub(time.UnixMilli(e.Timestamp)) < validity
}
