package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tissage-sgq/shiftconsole/internal/clients/shiftapi"
	"github.com/tissage-sgq/shiftconsole/internal/data/repos/snapshot"
	"github.com/tissage-sgq/shiftconsole/internal/platform/dbctx"
	"github.com/tissage-sgq/shiftconsole/internal/platform/logger"
	"github.com/tissage-sgq/shiftconsole/internal/savetask"
	"github.com/tissage-sgq/shiftconsole/internal/session"
)

// SaveStatusFunc observes every area save of a console.
type SaveStatusFunc func(area session.Area, state savetask.State, err error)

type SessionPersisterDeps struct {
	ConsoleID uuid.UUID
	Store     *session.Store
	API       shiftapi.Client
	Snapshots snapshot.ConsoleSnapshotRepo
	Delay     time.Duration
	OnStatus  SaveStatusFunc
}

// SessionPersister saves the dirty areas of one console: the local snapshot row
// first, then the session server. An area is marked clean only for the
// generation the server accepted.
type SessionPersister struct {
	log  *logger.Logger
	deps SessionPersisterDeps

	mu     sync.Mutex
	tasks  map[session.Area]*savetask.Task
	closed bool
}

func NewSessionPersister(log *logger.Logger, deps SessionPersisterDeps) (*SessionPersister, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("session store required")
	}
	if deps.API == nil && deps.Snapshots == nil {
		return nil, fmt.Errorf("session api or snapshot repo required")
	}
	p := &SessionPersister{
		log:   log.With("service", "SessionPersister", "console_id", deps.ConsoleID.String()),
		deps:  deps,
		tasks: make(map[session.Area]*savetask.Task, len(session.Areas)),
	}
	for _, a := range session.Areas {
		area := a
		p.tasks[area] = savetask.New(log, string(area), deps.Delay,
			func(ctx context.Context) error { return p.save(ctx, area) },
			p.status,
		)
	}
	return p, nil
}

func (p *SessionPersister) status(name string, state savetask.State, err error) {
	if p.deps.OnStatus != nil {
		p.deps.OnStatus(session.Area(name), state, err)
	}
}

// Schedule queues a debounced save of area.
func (p *SessionPersister) Schedule(area session.Area) {
	p.mu.Lock()
	t, ok := p.tasks[area]
	closed := p.closed
	p.mu.Unlock()
	if !ok || closed {
		return
	}
	t.Schedule()
}

// Flush saves the given areas now, or every dirty area when none is given.
func (p *SessionPersister) Flush(ctx context.Context, areas ...session.Area) error {
	if len(areas) == 0 {
		areas = p.deps.Store.DirtyAreas()
	}
	var errs []error
	for _, a := range areas {
		p.mu.Lock()
		t, ok := p.tasks[a]
		p.mu.Unlock()
		if !ok {
			continue
		}
		if err := t.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a, err))
		}
	}
	return errors.Join(errs...)
}

// Close stops every task; saves still in flight are cancelled.
func (p *SessionPersister) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	tasks := make([]*savetask.Task, 0, len(p.tasks))
	for _, t := range p.tasks {
		tasks = append(tasks, t)
	}
	p.mu.Unlock()
	for _, t := range tasks {
		t.Close()
	}
}

func (p *SessionPersister) save(ctx context.Context, area session.Area) error {
	st := p.deps.Store
	if !st.Dirty(area) {
		return nil
	}
	raw, gens, err := st.Patch(area)
	if err != nil {
		return fmt.Errorf("encode %s: %w", area, err)
	}

	if p.deps.Snapshots != nil {
		if err := p.deps.Snapshots.MergePatch(dbctx.New(ctx), p.deps.ConsoleID, raw); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// The local copy is a cache; the server save still decides the outcome.
			p.log.Warn("snapshot merge failed", "area", area, "error", err)
		}
	}
	if p.deps.API != nil {
		if _, err := p.deps.API.PatchSession(ctx, raw); err != nil {
			return err
		}
	}
	st.MarkSaved(area, gens[area])
	return nil
}
