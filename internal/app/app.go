package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/tissage-sgq/shiftconsole/internal/data/db"
	"github.com/tissage-sgq/shiftconsole/internal/http"
	"github.com/tissage-sgq/shiftconsole/internal/observability"
	"github.com/tissage-sgq/shiftconsole/internal/platform/logger"
	"github.com/tissage-sgq/shiftconsole/internal/realtime"
	"github.com/tissage-sgq/shiftconsole/internal/realtime/bus"
)

const serviceName = "shiftconsole"

const shutdownTimeout = 15 * time.Second

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *db.Service
	Metrics  *observability.Metrics
	Clients  Clients
	Repos    Repos
	Services Services
	SSEHub   *realtime.SSEHub
	Server   *http.Server

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})
	metrics := observability.Init(log)

	store, err := db.Open(log, cfg.DB)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init snapshot db: %w", err)
	}
	if err := db.AutoMigrateAll(store.DB()); err != nil {
		_ = store.Close()
		log.Sync()
		return nil, fmt.Errorf("snapshot db automigrate: %w", err)
	}

	hub := realtime.NewSSEHub(log)
	hub.OnDrop(func(channel string) {
		if channel == realtime.ManagementChannel {
			metrics.IncSSEDrop("management")
			return
		}
		metrics.IncSSEDrop("console")
	})

	clients, err := wireClients(log, cfg, metrics)
	if err != nil {
		_ = store.Close()
		log.Sync()
		return nil, err
	}
	reposet := wireRepos(store.DB(), log)
	serviceset, err := wireServices(log, cfg, clients, reposet, hub, metrics)
	if err != nil {
		_ = clients.Bridge.Close()
		_ = store.Close()
		log.Sync()
		return nil, err
	}
	handlers := wireHandlers(log, serviceset, hub)

	return &App{
		Log:          log,
		Cfg:          cfg,
		DB:           store,
		Metrics:      metrics,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		SSEHub:       hub,
		Server:       wireServer(log, cfg, handlers, metrics),
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches the background loops: the cross-instance forwarder, the
// manager dashboard poller and the metrics collectors.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if err := a.Clients.Bridge.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
		return fmt.Errorf("start SSE forwarder: %w", err)
	}
	go a.Services.Dashboard.Run(ctx)
	a.Metrics.StartDBCollector(ctx, a.Log, a.DB.DB())
	if rdb := bus.RedisClient(a.Clients.Bridge); rdb != nil {
		a.Metrics.StartRedisCollector(ctx, a.Log, rdb)
	}
	return nil
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("HTTP server listening", "port", a.Cfg.Port)
	return a.Server.Run()
}

// Close stops the HTTP server, flushes every open console and releases the
// stores. Consoles keep their snapshot for the next start.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if a.Services.Registry != nil {
		if err := a.Services.Registry.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("console flush: %w", err))
		}
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Clients.Bridge != nil {
		if err := a.Clients.Bridge.Close(); err != nil {
			errs = append(errs, fmt.Errorf("bridge close: %w", err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("db close: %w", err))
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("otel shutdown: %w", err))
		}
	}
	a.Log.Sync()
	return errors.Join(errs...)
}
