package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mohammed-shakir/vakuf-map/internal/core/model"
	"github.com/mohammed-shakir/vakuf-map/internal/mapview"
)

type staticSource []model.Record

func (s staticSource) Records() []model.Record { return s }

type fakeNow struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeNow) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeNow) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

// swapSource publishes a new slice on each set, the way the store reloads.
type swapSource struct {
	mu   sync.Mutex
	recs []model.Record
}

func (s *swapSource) Records() []model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recs
}

func (s *swapSource) set(recs []model.Record) {
	s.mu.Lock()
	s.recs = recs
	s.mu.Unlock()
}

func newManager(now *fakeNow, ttl time.Duration) *Manager {
	return NewManager(staticSource(testRecords()), ManagerOptions{
		Session:    Options{Now: now.Now},
		Center:     home.Center,
		Zoom:       9,
		MobileZoom: 8.1,
		IdleTTL:    ttl,
	})
}

func TestManager_CreateStartsAtInitialViewport(t *testing.T) {
	m := newManager(&fakeNow{t: time.Unix(0, 0)}, 0)
	t.Cleanup(m.CloseAll)

	for _, tc := range []struct {
		mobile bool
		zoom   float64
	}{{false, 9}, {true, 8.1}} {
		s := m.Create(tc.mobile)
		cmds := s.Commands.Drain()
		if len(cmds) != 2 || cmds[0].Op != mapview.OpSetCenter || cmds[1].Op != mapview.OpSetZoom {
			t.Fatalf("initial commands=%+v", cmds)
		}
		if *cmds[1].Zoom != tc.zoom {
			t.Fatalf("mobile=%v zoom=%v want %v", tc.mobile, *cmds[1].Zoom, tc.zoom)
		}
		if s.Snapshot().VisibleCount != 3 {
			t.Fatal("new session must show every record")
		}
	}
	if m.Len() != 2 {
		t.Fatalf("len=%d", m.Len())
	}
}

func TestManager_GetDelete(t *testing.T) {
	m := newManager(&fakeNow{t: time.Unix(0, 0)}, 0)
	s := m.Create(false)

	got, err := m.Get(s.ID())
	if err != nil || got != s {
		t.Fatalf("get: %v", err)
	}
	if err := m.Delete(s.ID()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := m.Get(s.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v want ErrNotFound", err)
	}
	if err := m.Delete(s.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err=%v", err)
	}
}

func TestManager_SweepEvictsIdle(t *testing.T) {
	now := &fakeNow{t: time.Unix(1000, 0)}
	m := newManager(now, time.Minute)
	t.Cleanup(m.CloseAll)

	idle := m.Create(false)
	busy := m.Create(false)

	now.Advance(45 * time.Second)
	busy.OnInputChanged("arap")
	now.Advance(30 * time.Second)

	if n := m.Sweep(); n != 1 {
		t.Fatalf("evicted=%d want 1", n)
	}
	if _, err := m.Get(idle.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatal("idle session still registered")
	}
	if _, err := m.Get(busy.ID()); err != nil {
		t.Fatalf("busy session evicted: %v", err)
	}
	// closed sessions ignore events
	idle.OnInputChanged("zgrada")
	if idle.Query() != "" {
		t.Fatal("evicted session still handles input")
	}
}

func TestManager_ReadsCountAsActivity(t *testing.T) {
	now := &fakeNow{t: time.Unix(1000, 0)}
	m := newManager(now, time.Minute)
	t.Cleanup(m.CloseAll)

	polled := m.Create(false)
	now.Advance(45 * time.Second)
	if _, err := m.Get(polled.ID()); err != nil {
		t.Fatalf("get: %v", err)
	}
	now.Advance(30 * time.Second)

	if n := m.Sweep(); n != 0 {
		t.Fatalf("evicted=%d want 0 for a polled session", n)
	}
}

func TestManager_GetMovesSessionToReloadedRecords(t *testing.T) {
	src := &swapSource{recs: testRecords()}
	m := NewManager(src, ManagerOptions{Center: home.Center, Zoom: 9})
	t.Cleanup(m.CloseAll)

	s := m.Create(false)
	s.OnCitySelected("Novi Pazar")
	if got := s.Snapshot().VisibleCount; got != 2 {
		t.Fatalf("visible=%d want 2", got)
	}

	// same slice: nothing to rebuild
	if s.ReplaceRecords(src.Records()) {
		t.Fatal("unchanged record set was replaced")
	}

	reloaded := append(testRecords(), model.Record{
		Name: "Džamija Sjenica", ParcelID: "9", City: "Novi Pazar", Type: model.TypeMosque,
		Position: model.LatLng{Lat: 43.13, Lng: 20.51},
	})
	src.set(reloaded)

	got, err := m.Get(s.ID())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	snap := got.Snapshot()
	if snap.VisibleCount != 3 || snap.Criteria.City != "Novi Pazar" {
		t.Fatalf("after reload: visible=%d criteria=%+v", snap.VisibleCount, snap.Criteria)
	}
	if len(snap.NameOptions) != 3 {
		t.Fatalf("name options=%v", snap.NameOptions)
	}
}

func TestManager_RunClosesOnCancel(t *testing.T) {
	m := newManager(&fakeNow{t: time.Unix(0, 0)}, 0)
	m.Create(false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	if m.Len() != 0 {
		t.Fatalf("len=%d after shutdown", m.Len())
	}
}
