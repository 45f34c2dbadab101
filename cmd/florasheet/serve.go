package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/JonMunkholm/florasheet/internal/config"
	"github.com/JonMunkholm/florasheet/internal/store"
	"github.com/JonMunkholm/florasheet/internal/web"
)

func serveCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	schemaPath := fs.String("schema", "", "default schema document; empty uses the built-in species schema")
	port := fs.Int("port", cfg.Server.Port, "port to listen on")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.Server.Port = *port

	sch, err := loadSchema(*schemaPath)
	if err != nil {
		return err
	}

	var history web.RunStore
	if cfg.Database.Enabled() {
		st, err := store.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer st.Close()
		history = st
		slog.Info("run history enabled")
	}

	server, err := web.NewServer(cfg, pipelineOptions(cfg, sch), history)
	if err != nil {
		return err
	}

	slog.Info("configuration loaded",
		"addr", cfg.Server.Addr(),
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"schema_fields", len(sch.Fields),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}
