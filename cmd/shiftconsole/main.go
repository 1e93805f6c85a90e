package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tissage-sgq/shiftconsole/internal/app"
	"github.com/tissage-sgq/shiftconsole/internal/platform/shutdown"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	if err := a.Start(); err != nil {
		a.Log.Error("failed to start background loops", "error", err)
		_ = a.Close()
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- a.Run() }()

	code := 0
	select {
	case <-ctx.Done():
		a.Log.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			a.Log.Error("server exited", "error", err)
			code = 1
		}
	}
	if err := a.Close(); err != nil {
		a.Log.Warn("shutdown finished with errors", "error", err)
	}
	if code != 0 {
		os.Exit(code)
	}
}
