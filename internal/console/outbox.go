package console

import (
	"context"
	"sync"

	"github.com/tissage-sgq/shiftconsole/internal/realtime"
)

// outbox hands mirrored bus events to the Emitter from its own goroutine, so
// an emitter that publishes over the network never runs under the console
// lock. Messages keep their publication order.
type outbox struct {
	emitter Emitter

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []realtime.SSEMessage
	busy   bool
	closed bool
	done   chan struct{}
}

func newOutbox(emitter Emitter) *outbox {
	o := &outbox{emitter: emitter, done: make(chan struct{})}
	o.cond = sync.NewCond(&o.mu)
	go o.run()
	return o
}

// push never blocks. Messages pushed after close are dropped.
func (o *outbox) push(msg realtime.SSEMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.queue = append(o.queue, msg)
	o.cond.Broadcast()
}

func (o *outbox) run() {
	defer close(o.done)
	for {
		o.mu.Lock()
		for len(o.queue) == 0 && !o.closed {
			o.cond.Wait()
		}
		if len(o.queue) == 0 {
			o.mu.Unlock()
			return
		}
		batch := o.queue
		o.queue = nil
		o.busy = true
		o.mu.Unlock()

		for _, msg := range batch {
			o.emitter.Emit(context.Background(), msg)
		}

		o.mu.Lock()
		o.busy = false
		o.cond.Broadcast()
		o.mu.Unlock()
	}
}

// drain waits until every pushed message has been emitted.
func (o *outbox) drain() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for len(o.queue) > 0 || o.busy {
		o.cond.Wait()
	}
}

// close emits what is queued, then stops the goroutine.
func (o *outbox) close() {
	o.mu.Lock()
	o.closed = true
	o.cond.Broadcast()
	o.mu.Unlock()
	<-o.done
}
