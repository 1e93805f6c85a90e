package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/tissage-sgq/shiftconsole/internal/data/repos/snapshot"
	"github.com/tissage-sgq/shiftconsole/internal/data/repos/testutil"
	"github.com/tissage-sgq/shiftconsole/internal/domain"
	"github.com/tissage-sgq/shiftconsole/internal/platform/dbctx"
	"github.com/tissage-sgq/shiftconsole/internal/savetask"
	"github.com/tissage-sgq/shiftconsole/internal/session"
)

type statusLog struct {
	mu     sync.Mutex
	states []string
}

func (s *statusLog) record(area session.Area, state savetask.State, _ error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = append(s.states, string(area)+":"+string(state))
}

func (s *statusLog) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.states) == 0 {
		return ""
	}
	return s.states[len(s.states)-1]
}

func TestPersisterFlushSavesLocalAndUpstream(t *testing.T) {
	db := testutil.SQLite(t)
	repo := snapshot.NewConsoleSnapshotRepo(db, testutil.Logger(t))
	api := &fakeAPI{}
	store := session.NewStore(session.Defaults())
	statuses := &statusLog{}
	id := uuid.New()

	p, err := NewSessionPersister(testutil.Logger(t), SessionPersisterDeps{
		ConsoleID: id,
		Store:     store,
		API:       api,
		Snapshots: repo,
		OnStatus:  statuses.record,
	})
	if err != nil {
		t.Fatalf("NewSessionPersister: %v", err)
	}
	defer p.Close()

	store.Order().Set(domain.OrderFields{Current: "OF1234", TargetLength: 120})
	if err := p.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if store.Dirty(session.AreaOrder) {
		t.Fatalf("order must be clean after a successful save")
	}
	if api.patchCount() != 1 || !strings.Contains(string(api.patches[0]), `"of_en_cours":"OF1234"`) {
		t.Fatalf("upstream patch: got %s", api.patches)
	}
	if got := statuses.last(); got != "order:saved" {
		t.Fatalf("last status: want=order:saved got=%s", got)
	}

	row, err := repo.Get(dbctx.New(context.Background()), id)
	if err != nil || row == nil {
		t.Fatalf("snapshot row: row=%v err=%v", row, err)
	}
	var data map[string]any
	if err := json.Unmarshal(row.Data, &data); err != nil {
		t.Fatalf("decode row: %v", err)
	}
	if data["of_en_cours"] != "OF1234" || data["target_length"] != float64(120) {
		t.Fatalf("snapshot data: got %v", data)
	}

	// Nothing dirty: no further call.
	if err := p.Flush(context.Background()); err != nil {
		t.Fatalf("idle Flush: %v", err)
	}
	if api.patchCount() != 1 {
		t.Fatalf("idle flush must not patch: got %d", api.patchCount())
	}
}

func TestPersisterKeepsAreaDirtyOnFailure(t *testing.T) {
	api := &fakeAPI{patchErr: errUpstream}
	store := session.NewStore(session.Defaults())
	statuses := &statusLog{}

	p, err := NewSessionPersister(testutil.Logger(t), SessionPersisterDeps{
		ConsoleID: uuid.New(),
		Store:     store,
		API:       api,
		OnStatus:  statuses.record,
	})
	if err != nil {
		t.Fatalf("NewSessionPersister: %v", err)
	}
	defer p.Close()

	store.Summary().Update(func(f *domain.SummaryFields) {
		n := 3
		f.RollNumber = &n
	})
	if err := p.Flush(context.Background(), session.AreaSummary); err == nil {
		t.Fatalf("Flush: want error")
	}
	if !store.Dirty(session.AreaSummary) {
		t.Fatalf("failed save must leave the area dirty")
	}
	if got := statuses.last(); got != "summary:failed" {
		t.Fatalf("last status: want=summary:failed got=%s", got)
	}

	api.mu.Lock()
	api.patchErr = nil
	api.mu.Unlock()
	if err := p.Flush(context.Background(), session.AreaSummary); err != nil {
		t.Fatalf("retry Flush: %v", err)
	}
	if store.Dirty(session.AreaSummary) {
		t.Fatalf("retried save must clean the area")
	}
}

func TestPersisterRequiresDeps(t *testing.T) {
	if _, err := NewSessionPersister(nil, SessionPersisterDeps{}); err == nil {
		t.Fatalf("nil logger: want error")
	}
	if _, err := NewSessionPersister(testutil.Logger(t), SessionPersisterDeps{Store: session.NewStore(session.Defaults())}); err == nil {
		t.Fatalf("no sink: want error")
	}
}
