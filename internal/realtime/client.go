package realtime

import (
	"github.com/google/uuid"

	"github.com/tissage-sgq/shiftconsole/internal/platform/logger"
)

// SSEClient is one open event stream, subscribed to a console channel and
// optionally to the management channel.
type SSEClient struct {
	ID       uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage
	Logger   *logger.Logger

	done chan struct{}
}

// Prime queues msg ahead of any broadcast, typically the full state the view
// renders before applying events. It reports false when the buffer is full.
func (c *SSEClient) Prime(msg SSEMessage) bool {
	select {
	case c.Outbound <- msg:
		return true
	default:
		return false
	}
}
