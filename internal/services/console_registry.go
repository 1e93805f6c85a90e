package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/tissage-sgq/shiftconsole/internal/clients/shiftapi"
	"github.com/tissage-sgq/shiftconsole/internal/console"
	"github.com/tissage-sgq/shiftconsole/internal/data/repos/snapshot"
	"github.com/tissage-sgq/shiftconsole/internal/platform/dbctx"
	"github.com/tissage-sgq/shiftconsole/internal/platform/logger"
	"github.com/tissage-sgq/shiftconsole/internal/realtime/bus"
	"github.com/tissage-sgq/shiftconsole/internal/savetask"
	"github.com/tissage-sgq/shiftconsole/internal/session"
)

var ErrConsoleNotFound = errors.New("console not found")

// SaveObserver is told about every save status change, for metrics.
type SaveObserver interface {
	ObserveSave(area string, state string)
}

type ConsoleRegistryDeps struct {
	API       shiftapi.Client
	Loader    DataLoader
	Snapshots snapshot.ConsoleSnapshotRepo
	Emitter   SSEEmitter
	SaveDelay time.Duration
	Observer  SaveObserver
	Now       func() time.Time
}

// ConsoleRegistry owns the open consoles of this process. A console unknown
// to the process is restored from its local snapshot.
type ConsoleRegistry interface {
	Create(ctx context.Context, sessionKey string) (*console.Console, error)
	Get(ctx context.Context, id uuid.UUID) (*console.Console, error)
	Close(ctx context.Context, id uuid.UUID) error
	Flush(ctx context.Context, id uuid.UUID) error
	Shutdown(ctx context.Context) error
	Len() int
}

type openConsole struct {
	console   *console.Console
	persister *SessionPersister
}

type consoleRegistry struct {
	log  *logger.Logger
	deps ConsoleRegistryDeps

	mu       sync.RWMutex
	consoles map[uuid.UUID]*openConsole
	restore  singleflight.Group
}

func NewConsoleRegistry(log *logger.Logger, deps ConsoleRegistryDeps) (ConsoleRegistry, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if deps.API == nil {
		return nil, fmt.Errorf("session api required")
	}
	if deps.Loader == nil {
		return nil, fmt.Errorf("data loader required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &consoleRegistry{
		log:      log.With("service", "ConsoleRegistry"),
		deps:     deps,
		consoles: map[uuid.UUID]*openConsole{},
	}, nil
}

func (r *consoleRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.consoles)
}

// Create opens a console on the server session sessionKey. An unreachable or
// unreadable session starts the console from a fresh state.
func (r *consoleRegistry) Create(ctx context.Context, sessionKey string) (*console.Console, error) {
	api := r.deps.API.WithSession(sessionKey)
	snap := session.Defaults()
	raw, err := api.GetSession(ctx)
	switch {
	case err != nil:
		r.log.Warn("session load failed, starting fresh", "session_key", sessionKey, "error", err)
	case len(raw) > 0:
		decoded, derr := session.Decode(raw)
		if derr != nil {
			r.log.Warn("session decode failed, starting fresh", "session_key", sessionKey, "error", derr)
		} else {
			snap = decoded
		}
	}

	id := uuid.New()
	if r.deps.Snapshots != nil {
		dbc := dbctx.New(ctx)
		if err := r.deps.Snapshots.Ensure(dbc, id, sessionKey); err != nil {
			r.log.Warn("snapshot row not created", "console_id", id.String(), "error", err)
		} else if full, err := session.Encode(snap); err == nil {
			if err := r.deps.Snapshots.MergePatch(dbc, id, full); err != nil {
				r.log.Warn("initial snapshot not written", "console_id", id.String(), "error", err)
			}
		}
	}

	oc, err := r.open(ctx, id, api, snap)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.consoles[id] = oc
	r.mu.Unlock()
	r.log.Info("console opened", "console_id", id.String(), "session_key", sessionKey)
	return oc.console, nil
}

func (r *consoleRegistry) Get(ctx context.Context, id uuid.UUID) (*console.Console, error) {
	r.mu.RLock()
	oc, ok := r.consoles[id]
	r.mu.RUnlock()
	if ok {
		return oc.console, nil
	}
	if r.deps.Snapshots == nil {
		return nil, fmt.Errorf("%w: %s", ErrConsoleNotFound, id)
	}

	v, err, _ := r.restore.Do(id.String(), func() (any, error) {
		r.mu.RLock()
		oc, ok := r.consoles[id]
		r.mu.RUnlock()
		if ok {
			return oc, nil
		}
		row, err := r.deps.Snapshots.Get(dbctx.New(ctx), id)
		if err != nil {
			return nil, err
		}
		if row == nil {
			return nil, fmt.Errorf("%w: %s", ErrConsoleNotFound, id)
		}
		snap, err := session.Decode(row.Data)
		if err != nil {
			return nil, fmt.Errorf("decode snapshot %s: %w", id, err)
		}
		oc, err = r.open(ctx, id, r.deps.API.WithSession(row.SessionKey), snap)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.consoles[id] = oc
		r.mu.Unlock()
		r.log.Info("console restored", "console_id", id.String())
		return oc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*openConsole).console, nil
}

func (r *consoleRegistry) open(ctx context.Context, id uuid.UUID, api shiftapi.Client, snap session.Snapshot) (*openConsole, error) {
	store := session.NewStore(snap)
	b := bus.New()
	catalogs := r.deps.Loader.Catalogs(ctx, api)
	shiftData := r.deps.Loader.ShiftData(ctx, api, snap.Shift.ShiftID)

	persister, err := NewSessionPersister(r.log, SessionPersisterDeps{
		ConsoleID: id,
		Store:     store,
		API:       api,
		Snapshots: r.deps.Snapshots,
		Delay:     r.deps.SaveDelay,
		OnStatus: func(area session.Area, state savetask.State, err error) {
			ev := bus.SaveStatus{Area: string(area), State: bus.SaveState(state)}
			if err != nil {
				ev.Error = err.Error()
			}
			bus.Publish(b, bus.TopicSaveStatus, ev)
			if r.deps.Observer != nil {
				r.deps.Observer.ObserveSave(string(area), string(state))
			}
		},
	})
	if err != nil {
		return nil, err
	}

	c, err := console.New(r.log, console.Deps{
		ID:        id,
		API:       api,
		Store:     store,
		Saver:     persister,
		Bus:       b,
		Emitter:   r.deps.Emitter,
		Catalogs:  catalogs,
		ShiftData: shiftData,
		Defaults:  r.deps.Loader.Defaults(),
		Now:       r.deps.Now,
	})
	if err != nil {
		persister.Close()
		return nil, err
	}
	c.Init(ctx)
	return &openConsole{console: c, persister: persister}, nil
}

// Flush saves every dirty area of a console now.
func (r *consoleRegistry) Flush(ctx context.Context, id uuid.UUID) error {
	r.mu.RLock()
	oc, ok := r.consoles[id]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrConsoleNotFound, id)
	}
	return oc.persister.Flush(ctx)
}

// Close flushes a console and forgets it, local snapshot included.
func (r *consoleRegistry) Close(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	oc, ok := r.consoles[id]
	delete(r.consoles, id)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrConsoleNotFound, id)
	}
	err := r.shut(ctx, oc)
	if r.deps.Snapshots != nil {
		if derr := r.deps.Snapshots.Delete(dbctx.New(ctx), id); derr != nil {
			r.log.Warn("snapshot delete failed", "console_id", id.String(), "error", derr)
		}
	}
	r.log.Info("console closed", "console_id", id.String())
	return err
}

// Shutdown flushes and closes every console. Snapshots stay for the next start.
func (r *consoleRegistry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	all := r.consoles
	r.consoles = map[uuid.UUID]*openConsole{}
	r.mu.Unlock()

	var errs []error
	for id, oc := range all {
		if err := r.shut(ctx, oc); err != nil {
			errs = append(errs, fmt.Errorf("console %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (r *consoleRegistry) shut(ctx context.Context, oc *openConsole) error {
	err := oc.persister.Flush(ctx)
	oc.persister.Close()
	oc.console.Close()
	return err
}
