package bus

import (
	"context"
	"fmt"

	"github.com/tissage-sgq/shiftconsole/internal/realtime"
)

// Bridge fans SSE messages out across service instances, so a view connected
// to one instance sees events raised by another.
type Bridge interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}

type nopBridge struct{}

// NewNopBridge is the single-instance bridge: the local hub already delivered
// every message, so there is nothing to forward.
func NewNopBridge() Bridge { return nopBridge{} }

func (nopBridge) Publish(context.Context, realtime.SSEMessage) error { return nil }

func (nopBridge) StartForwarder(_ context.Context, onMsg func(m realtime.SSEMessage)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	return nil
}

func (nopBridge) Close() error { return nil }
