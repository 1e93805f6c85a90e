package app

import (
	"context"
	"fmt"

	"github.com/tissage-sgq/shiftconsole/internal/modules/checklist"
	"github.com/tissage-sgq/shiftconsole/internal/modules/management"
	"github.com/tissage-sgq/shiftconsole/internal/observability"
	"github.com/tissage-sgq/shiftconsole/internal/platform/logger"
	"github.com/tissage-sgq/shiftconsole/internal/realtime"
	"github.com/tissage-sgq/shiftconsole/internal/services"
)

type Services struct {
	Emitter   services.SSEEmitter
	Loader    services.DataLoader
	Registry  services.ConsoleRegistry
	Dashboard *management.Dashboard
	Review    *checklist.Review
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, repos Repos, hub *realtime.SSEHub, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	emitter := &services.BridgeEmitter{Hub: hub, Bridge: clients.Bridge, Log: log}
	loader := services.NewDataLoader(log, cfg.Plant, cfg.CatalogTTL)

	registry, err := services.NewConsoleRegistry(log, services.ConsoleRegistryDeps{
		API:       clients.ShiftAPI,
		Loader:    loader,
		Snapshots: repos.Snapshots,
		Emitter:   emitter,
		SaveDelay: cfg.SaveDelay,
		Observer:  metrics,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init console registry: %w", err)
	}

	dashboard := management.NewDashboard(log, clients.ShiftAPI, cfg.DashboardPoll, func(v management.View) {
		metrics.ObserveDashboardPoll(!v.Stale)
		emitter.Emit(context.Background(), realtime.SSEMessage{
			Channel: realtime.ManagementChannel,
			Event:   realtime.SSEEventDashboardUpdated,
			Data:    v,
		})
	})

	return Services{
		Emitter:   emitter,
		Loader:    loader,
		Registry:  registry,
		Dashboard: dashboard,
		Review:    checklist.NewReview(clients.ShiftAPI),
	}, nil
}
