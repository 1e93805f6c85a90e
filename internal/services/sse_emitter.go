package services

import (
	"context"

	"github.com/tissage-sgq/shiftconsole/internal/platform/logger"
	"github.com/tissage-sgq/shiftconsole/internal/realtime"
	"github.com/tissage-sgq/shiftconsole/internal/realtime/bus"
)

type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage)
}

type HubEmitter struct{ Hub *realtime.SSEHub }

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	e.Hub.Broadcast(msg)
}

// BridgeEmitter delivers locally and publishes for the other instances.
type BridgeEmitter struct {
	Hub    *realtime.SSEHub
	Bridge bus.Bridge
	Log    *logger.Logger
}

func (e *BridgeEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if e.Hub != nil {
		e.Hub.Broadcast(msg)
	}
	if e.Bridge == nil {
		return
	}
	if err := e.Bridge.Publish(ctx, msg); err != nil && e.Log != nil {
		e.Log.Warn("SSE bridge publish failed", "channel", msg.Channel, "event", msg.Event, "error", err)
	}
}
