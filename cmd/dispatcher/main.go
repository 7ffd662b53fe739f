package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dmitrijs2005/minauth/internal/buildinfo"
	"github.com/dmitrijs2005/minauth/internal/logging"
	"github.com/dmitrijs2005/minauth/internal/server/config"
	"github.com/dmitrijs2005/minauth/internal/server/dispatcher"
	"github.com/dmitrijs2005/minauth/internal/server/workspace"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("%v", err)
	}
}

func run(cfg *config.Config, logger logging.Logger) error {

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sigs
		cancel()
	}()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	ws, err := workspace.New(cfg.WorkspaceDir)
	if err != nil {
		return err
	}

	d, err := dispatcher.New(db, ws, cfg.WorkerCount, logger)
	if err != nil {
		return err
	}

	if err := d.Recover(ctx); err != nil {
		return err
	}

	// A positional request id dispatches once; otherwise poll until stopped.
	if id := requestIDArg(os.Args[1:]); id != "" {
		worker, err := d.Dispatch(ctx, id)
		if err != nil {
			return err
		}
		logger.Info(ctx, "dispatched", "request_id", id, "worker", worker)
		return nil
	}

	return d.Run(ctx, cfg.DispatchInterval)
}

// requestIDArg returns the first leading argument that is not a flag.
func requestIDArg(args []string) string {
	for _, a := range args {
		if strings.HasPrefix(a, "-") {
			return ""
		}
		return a
	}
	return ""
}
