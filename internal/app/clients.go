package app

import (
	"fmt"

	"github.com/tissage-sgq/shiftconsole/internal/clients/shiftapi"
	"github.com/tissage-sgq/shiftconsole/internal/observability"
	"github.com/tissage-sgq/shiftconsole/internal/platform/logger"
	"github.com/tissage-sgq/shiftconsole/internal/realtime/bus"
)

type Clients struct {
	ShiftAPI shiftapi.Client
	Bridge   bus.Bridge
}

func wireClients(log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	// Session server
	api, err := shiftapi.New(log, cfg.ShiftAPI, metrics)
	if err != nil {
		return Clients{}, fmt.Errorf("init shift api client: %w", err)
	}

	// Redis
	bridge := bus.NewNopBridge()
	if cfg.Redis.Addr != "" {
		b, err := bus.NewRedisBridge(log, cfg.Redis)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis SSE bridge: %w", err)
		}
		bridge = b
	}

	return Clients{ShiftAPI: api, Bridge: bridge}, nil
}
