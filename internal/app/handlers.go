package app

import (
	"github.com/tissage-sgq/shiftconsole/internal/http"
	httpH "github.com/tissage-sgq/shiftconsole/internal/http/handlers"
	"github.com/tissage-sgq/shiftconsole/internal/observability"
	"github.com/tissage-sgq/shiftconsole/internal/platform/logger"
	"github.com/tissage-sgq/shiftconsole/internal/realtime"
)

type Handlers struct {
	Health     *httpH.HealthHandler
	Console    *httpH.ConsoleHandler
	Management *httpH.ManagementHandler
	Realtime   *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, svc Services, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	consoles := httpH.NewConsoleHandler(log, svc.Registry)
	return Handlers{
		Health:     httpH.NewHealthHandler(svc.Registry.Len),
		Console:    consoles,
		Management: httpH.NewManagementHandler(log, svc.Dashboard, svc.Review),
		Realtime:   httpH.NewRealtimeHandler(log, hub, consoles, svc.Dashboard),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *http.Server {
	return http.NewServer(":"+cfg.Port, http.RouterConfig{
		Log:               log,
		Metrics:           metrics,
		ServiceName:       serviceName,
		CORSOrigins:       cfg.CORSOrigins,
		ConsoleHandler:    handlers.Console,
		ManagementHandler: handlers.Management,
		RealtimeHandler:   handlers.Realtime,
		HealthHandler:     handlers.Health,
	})
}
