package invalidation

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultDedupeSize = 4096

// Dedupe remembers the last applied version per record so redelivered or
// reordered events are skipped. Only the most recently seen records are
// tracked.
type Dedupe struct {
	mu  sync.Mutex
	lru *lru.Cache[string, uint64]
}

func NewDedupe(size int) *Dedupe {
	if size <= 0 {
		size = DefaultDedupeSize
	}
	c, _ := lru.New[string, uint64](size)
	return &Dedupe{lru: c}
}

// Fresh reports whether ev is newer than the last committed event for its
// record. Unversioned events are always fresh. It records nothing, so an
// event whose apply fails stays fresh for its redelivery.
func (d *Dedupe) Fresh(ev Event) bool {
	if ev.RecordVersion == 0 {
		return true
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	last, ok := d.lru.Peek(ev.Key())
	return !ok || ev.RecordVersion > last
}

// Commit records ev as applied. An older version never replaces a newer one.
func (d *Dedupe) Commit(ev Event) {
	if ev.RecordVersion == 0 {
		return
	}
	key := ev.Key()
	d.mu.Lock()
	defer d.mu.Unlock()
	if last, ok := d.lru.Get(key); ok && last >= ev.RecordVersion {
		return
	}
	d.lru.Add(key, ev.RecordVersion)
}
