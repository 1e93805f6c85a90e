package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tissage-sgq/shiftconsole/internal/data/repos/snapshot"
	"github.com/tissage-sgq/shiftconsole/internal/data/repos/testutil"
	"github.com/tissage-sgq/shiftconsole/internal/modules/order"
)

type saveCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (s *saveCounter) ObserveSave(area, state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts == nil {
		s.counts = map[string]int{}
	}
	s.counts[area+":"+state]++
}

func (s *saveCounter) get(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[key]
}

func newTestRegistry(t *testing.T, api *fakeAPI, repo snapshot.ConsoleSnapshotRepo, obs SaveObserver) ConsoleRegistry {
	t.Helper()
	log := testutil.Logger(t)
	reg, err := NewConsoleRegistry(log, ConsoleRegistryDeps{
		API:       api,
		Loader:    NewDataLoader(log, DefaultPlantDefaults(), time.Minute),
		Snapshots: repo,
		SaveDelay: time.Hour,
		Observer:  obs,
	})
	if err != nil {
		t.Fatalf("NewConsoleRegistry: %v", err)
	}
	return reg
}

func TestRegistryRestoresConsoleFromSnapshot(t *testing.T) {
	db := testutil.SQLite(t)
	repo := snapshot.NewConsoleSnapshotRepo(db, testutil.Logger(t))
	api := &fakeAPI{session: json.RawMessage(`{"of_en_cours":"OF7","target_length":40}`)}
	obs := &saveCounter{}
	ctx := context.Background()

	reg := newTestRegistry(t, api, repo, obs)
	c, err := reg.Create(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if reg.Len() != 1 {
		t.Fatalf("Len: want=1 got=%d", reg.Len())
	}
	if got := c.State().Order; got.Current != "OF7" || got.TargetLength != 40 {
		t.Fatalf("loaded order: got %+v", got)
	}

	var p order.Patch
	if err := json.Unmarshal([]byte(`{"of_decoupe":"OFD9"}`), &p); err != nil {
		t.Fatalf("decode patch: %v", err)
	}
	if _, err := c.PatchOrder(ctx, p); err != nil {
		t.Fatalf("PatchOrder: %v", err)
	}
	if err := reg.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if reg.Len() != 0 {
		t.Fatalf("Len after shutdown: want=0 got=%d", reg.Len())
	}
	if obs.get("order:saved") != 1 {
		t.Fatalf("save metrics: got %v", obs.counts)
	}
	if api.patchCount() == 0 {
		t.Fatalf("shutdown must flush upstream")
	}

	reg2 := newTestRegistry(t, api, repo, nil)
	restored, err := reg2.Get(ctx, c.ID())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := restored.State().Order; got.Current != "OF7" || got.Cutting != "OFD9" || got.TargetLength != 40 {
		t.Fatalf("restored order: got %+v", got)
	}
	if restored.SessionKey() != "sess-1" {
		t.Fatalf("session key: want=sess-1 got=%s", restored.SessionKey())
	}
	again, err := reg2.Get(ctx, c.ID())
	if err != nil || again != restored {
		t.Fatalf("second Get must return the open console: err=%v", err)
	}

	if err := reg2.Close(ctx, c.ID()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := reg2.Get(ctx, c.ID()); !errors.Is(err, ErrConsoleNotFound) {
		t.Fatalf("after close: want ErrConsoleNotFound got=%v", err)
	}
}

func TestRegistryStartsFreshWhenSessionUnavailable(t *testing.T) {
	api := &fakeAPI{sessionErr: errUpstream}
	reg := newTestRegistry(t, api, nil, nil)
	t.Cleanup(func() { _ = reg.Shutdown(context.Background()) })

	c, err := reg.Create(context.Background(), "sess-2")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := c.State().Order; got.Current != "" || got.TargetLength != 0 {
		t.Fatalf("fresh order: got %+v", got)
	}
	if _, err := reg.Get(context.Background(), uuid.New()); !errors.Is(err, ErrConsoleNotFound) {
		t.Fatalf("unknown console: want ErrConsoleNotFound got=%v", err)
	}
}
