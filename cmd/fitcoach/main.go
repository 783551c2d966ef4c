package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/fitcoach/internal/coach"
	"github.com/claude/fitcoach/internal/config"
	"github.com/claude/fitcoach/internal/mcp"
	"github.com/claude/fitcoach/internal/server"
	"github.com/claude/fitcoach/internal/storage"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var _ mcp.DataSource = (*storage.DB)(nil)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	migrationsDir := flag.String("migrations", "migrations", "path to migrations directory")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("fitcoach starting", "version", Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, *migrationsDir); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	retention, err := storage.StartRetention("@daily", &storage.RetentionJob{
		Pruner:    db,
		Retention: cfg.Coach.ConversationRetention,
		Log:       log,
	})
	if err != nil {
		log.Error("failed to schedule conversation retention", "error", err)
		os.Exit(1)
	}
	defer retention.Stop()

	chat, stt, err := coach.NewProviders(cfg.Coach)
	if err != nil {
		log.Error("failed to create coach provider", "error", err)
		os.Exit(1)
	}
	if chat == nil {
		log.Warn("no coach provider configured, conversations will return 503 and generation will use built-in workouts")
	} else {
		log.Info("coach provider ready", "provider", cfg.Coach.Provider, "transcription", stt != nil)
	}
	coachSvc := coach.New(db, chat, stt, log)

	opts := server.Options{APIKey: cfg.Auth.APIKey, PublicURL: cfg.Server.PublicURL}
	if cfg.Auth.Issuer != "" {
		verifier, err := server.NewJWKSVerifier(ctx, cfg.Auth.Issuer, cfg.Auth.Audience)
		if err != nil {
			log.Error("failed to set up ID token verification", "error", err)
			os.Exit(1)
		}
		opts.Verifier = verifier
		log.Info("ID token verification enabled", "issuer", cfg.Auth.Issuer)
	}
	srv := server.New(db, coachSvc, opts, log)

	srv.SetMCP(mcpserver.NewStreamableHTTPServer(
		mcp.New(db, Version, log),
		mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return mcp.WithAuth0ID(ctx, r.Header.Get("X-Auth0-ID"))
		}),
	))

	if cfg.Server.WebDir != "" {
		srv.SetFrontend(os.DirFS(cfg.Server.WebDir))
		log.Info("serving frontend", "dir", cfg.Server.WebDir)
	}

	// Start server: tsnet or plain HTTP
	var listener net.Listener

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "public_url", cfg.Server.PublicURL)
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
