package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/careerbridge/careerbridge-go/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

// run bootstraps the session core against the configured backend and prints
// the gate verdict for the requested path. It is a diagnostic surface for the
// session flow, not a UI.
func run(ctx context.Context, logger *slog.Logger) error {
	path := flag.String("path", "/", "path to evaluate the gates against")
	settle := flag.Duration("settle", 2*time.Second, "how long to wait for the session bootstrap to settle")
	flag.Parse()

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting careerbridge session core",
		"backend", cfg.Backend.BaseURL,
		"storage", cfg.Storage.Backend,
		"dev", cfg.IsDev,
	)

	nav := newLoggingNavigator(*path, logger)
	app, err := bootstrap.NewApp(cfg, logger, nav)
	if err != nil {
		return err
	}

	app.Start(ctx)
	defer app.Stop()

	// Give the async bootstrap a moment to resolve the stored session.
	time.Sleep(*settle)

	snap := app.Manager.Snapshot()
	decision := app.Dispatcher.Evaluate(ctx, nav.CurrentPath(), snap)

	who := "anonymous"
	if snap.User != nil {
		who = fmt.Sprintf("%s (%s)", snap.User.UserName, snap.User.Role)
	}
	logger.InfoContext(ctx, "gate verdict",
		"path", nav.CurrentPath(),
		"phase", app.Manager.Phase(),
		"user", who,
		"mode", decision.Mode,
		"overlay", decision.Overlay,
	)
	return nil
}
