// Package invalidation describes record-change events published by the
// document store and applies them to the record cache.
package invalidation

import (
	"fmt"
	"strings"
	"time"
)

const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Event announces that one record of a collection changed.
type Event struct {
	Version    int       `json:"version"`
	Op         string    `json:"op"`
	Collection string    `json:"collection"`
	RecordID   string    `json:"record_id"`
	TS         time.Time `json:"ts"`
	// monotonically increasing per record; 0 when the producer has none
	RecordVersion uint64 `json:"record_version,omitempty"`
	Source        string `json:"source,omitempty"`
}

func (e Event) Validate() error {
	if e.Version != 1 {
		return fmt.Errorf("version must be 1")
	}
	switch e.Op {
	case OpInsert, OpUpdate, OpDelete:
	default:
		return fmt.Errorf("op must be insert|update|delete")
	}
	if strings.TrimSpace(e.Collection) == "" {
		return fmt.Errorf("collection is required")
	}
	if strings.TrimSpace(e.RecordID) == "" {
		return fmt.Errorf("record_id is required")
	}
	if e.TS.IsZero() {
		return fmt.Errorf("ts is required")
	}
	return nil
}

// Key identifies the changed record across collections.
func (e Event) Key() string { return e.Collection + "/" + e.RecordID }
