// Package savetask runs debounced background saves. Each new run cancels the
// save still in flight for the same task, so the last edit always wins.
package savetask

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tissage-sgq/shiftconsole/internal/platform/logger"
)

const DefaultDelay = 500 * time.Millisecond

var ErrClosed = errors.New("save task closed")

type State string

const (
	StateQueued    State = "queued"
	StateSaving    State = "saving"
	StateSaved     State = "saved"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// SaveFunc persists the current state. It must honour ctx cancellation.
type SaveFunc func(ctx context.Context) error

// StatusFunc observes the lifecycle of each run. err is set for StateFailed.
type StatusFunc func(name string, state State, err error)

type Task struct {
	log      *logger.Logger
	name     string
	delay    time.Duration
	save     SaveFunc
	onStatus StatusFunc

	base       context.Context
	stop       context.CancelFunc
	mu         sync.Mutex
	timer      *time.Timer
	cancelLast context.CancelFunc
	seq        uint64
	closed     bool
	wg         sync.WaitGroup
}

func New(log *logger.Logger, name string, delay time.Duration, save SaveFunc, onStatus StatusFunc) *Task {
	if delay <= 0 {
		delay = DefaultDelay
	}
	base, stop := context.WithCancel(context.Background())
	return &Task{
		log:      log.With("service", "SaveTask", "area", name),
		name:     name,
		delay:    delay,
		save:     save,
		onStatus: onStatus,
		base:     base,
		stop:     stop,
	}
}

func (t *Task) Name() string { return t.name }

// Schedule (re)arms the debounce timer.
func (t *Task) Schedule() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	t.seq++
	seq := t.seq
	t.timer = time.AfterFunc(t.delay, func() { t.fire(seq) })
	t.mu.Unlock()
	t.status(StateQueued, nil)
}

func (t *Task) fire(seq uint64) {
	t.mu.Lock()
	if t.closed || seq != t.seq {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	ctx, _ := t.startLocked()
	t.wg.Add(1)
	t.mu.Unlock()

	go func() {
		defer t.wg.Done()
		_ = t.run(ctx)
	}()
}

// Flush saves now, cancelling any pending or in-flight run, and waits for the
// result.
func (t *Task) Flush(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.seq++
	runCtx, cancel := t.startLocked()
	t.wg.Add(1)
	t.mu.Unlock()
	defer t.wg.Done()

	if ctx != nil {
		stop := context.AfterFunc(ctx, cancel)
		defer stop()
	}
	return t.run(runCtx)
}

// startLocked cancels the previous run and derives the context of a new one.
func (t *Task) startLocked() (context.Context, context.CancelFunc) {
	if t.cancelLast != nil {
		t.cancelLast()
	}
	ctx, cancel := context.WithCancel(t.base)
	t.cancelLast = cancel
	return ctx, cancel
}

func (t *Task) run(ctx context.Context) error {
	t.status(StateSaving, nil)
	err := t.save(ctx)
	switch {
	case err == nil:
		t.status(StateSaved, nil)
	case ctx.Err() != nil:
		t.log.Debug("save superseded", "error", err)
		t.status(StateCancelled, nil)
	default:
		t.log.Warn("save failed", "error", err)
		t.status(StateFailed, err)
	}
	return err
}

func (t *Task) status(s State, err error) {
	if t.onStatus != nil {
		t.onStatus(t.name, s, err)
	}
}

// Pending reports whether a debounced run is waiting to fire.
func (t *Task) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

// Close drops the pending run, cancels the in-flight one and waits for it.
func (t *Task) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
	t.stop()
	t.wg.Wait()
}
