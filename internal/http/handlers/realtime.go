package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tissage-sgq/shiftconsole/internal/modules/management"
	"github.com/tissage-sgq/shiftconsole/internal/platform/logger"
	"github.com/tissage-sgq/shiftconsole/internal/realtime"
)

type RealtimeHandler struct {
	log       *logger.Logger
	hub       *realtime.SSEHub
	consoles  *ConsoleHandler
	dashboard *management.Dashboard
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub, consoles *ConsoleHandler, dashboard *management.Dashboard) *RealtimeHandler {
	return &RealtimeHandler{
		log:       log.With("handler", "RealtimeHandler"),
		hub:       hub,
		consoles:  consoles,
		dashboard: dashboard,
	}
}

// ConsoleStream streams the events of one console, starting with its full
// state. ?management=1 also subscribes to the manager dashboard.
func (h *RealtimeHandler) ConsoleStream(c *gin.Context) {
	con, ok := h.consoles.console(c)
	if !ok {
		return
	}
	channel := con.ID().String()
	client := h.hub.NewSSEClient()
	client.Prime(realtime.SSEMessage{
		Channel: channel,
		Event:   realtime.SSEEventConsoleState,
		Data:    con.State(),
	})
	h.hub.AddChannel(client, channel)
	if c.Query("management") == "1" {
		h.hub.AddChannel(client, realtime.ManagementChannel)
	}
	h.log.Info("SSE stream open", "console_id", channel, "client_id", client.ID.String())

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
	h.log.Info("SSE stream closed", "console_id", channel, "client_id", client.ID.String())
}

// ManagementStream streams the manager dashboard, starting with its last view.
func (h *RealtimeHandler) ManagementStream(c *gin.Context) {
	client := h.hub.NewSSEClient()
	if h.dashboard != nil {
		client.Prime(realtime.SSEMessage{
			Channel: realtime.ManagementChannel,
			Event:   realtime.SSEEventDashboardUpdated,
			Data:    h.dashboard.View(),
		})
	}
	h.hub.AddChannel(client, realtime.ManagementChannel)

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
}
