package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/orgdir/internal/app"
	"github.com/alexanderramin/orgdir/internal/cli"
	"github.com/alexanderramin/orgdir/internal/config"
	"github.com/alexanderramin/orgdir/internal/db"
	"github.com/alexanderramin/orgdir/internal/httpapi"
	"github.com/alexanderramin/orgdir/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	observers := []service.UseCaseObserver{service.NewMetricsUseCaseObserver(prometheus.DefaultRegisterer)}
	if cfg.LogUseCases {
		// Text lines on a terminal, JSON through the shared logger otherwise.
		if isatty.IsTerminal(os.Stderr.Fd()) {
			observers = append(observers, service.NewLogUseCaseObserver(os.Stderr))
		} else {
			observers = append(observers, service.NewSlogUseCaseObserver(logger))
		}
	}
	dir := app.New(database, observers...)

	a := &cli.App{
		Activities:    dir.Activities,
		Buildings:     dir.Buildings,
		Organizations: dir.Organizations,
		Import:        dir.Import,
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}
	a.Serve = func(ctx context.Context) error {
		handler := httpapi.NewRouter(cfg, httpapi.Services{
			Activities:    dir.Activities,
			Buildings:     dir.Buildings,
			Organizations: dir.Organizations,
		}, prometheus.DefaultGatherer, logger)
		return httpapi.Serve(ctx, cfg, handler, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return cli.NewRootCmd(a).ExecuteContext(ctx)
}
