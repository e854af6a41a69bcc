package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eve-pathfinder/internal/api"
	"eve-pathfinder/internal/config"
	"eve-pathfinder/internal/db"
	"eve-pathfinder/internal/logger"
	"eve-pathfinder/internal/sde"
	"eve-pathfinder/internal/zkillboard"
)

var version = "dev"

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		logger.Error("Config", err.Error())
		os.Exit(1)
	}

	// Flags override PATHFINDER_* environment variables.
	addr := flag.String("addr", cfg.ListenAddr, "HTTP listen address")
	dataDir := flag.String("data", cfg.DataDir, "directory holding universe.json and risk_config.json")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path (empty picks the default)")
	noZkill := flag.Bool("no-zkill", !cfg.ZKillEnabled, "disable Zkillboard kill activity polling")
	flag.Parse()
	cfg.ListenAddr = *addr
	cfg.DataDir = *dataDir
	cfg.DBPath = *dbPath
	cfg.ZKillEnabled = !*noZkill

	logger.Banner(version)

	os.MkdirAll(cfg.DataDir, 0755)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	// Without Zkillboard the planner scores on static security weights.
	var stats *zkillboard.Service
	if cfg.ZKillEnabled {
		client := zkillboard.NewClient(cfg.ZKillUserAgent)
		stats = zkillboard.NewService(client, database, cfg.ZKillWindow, cfg.ZKillTTL)
	} else {
		logger.Info("Zkillboard", "Kill activity polling disabled")
	}

	srv := api.NewServer(cfg, database, stats)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load SDE in background so the server answers /api/status while
	// the universe parses.
	go func() {
		data, err := sde.Load(cfg.DataDir)
		if err != nil {
			logger.Error("SDE", fmt.Sprintf("Load failed: %v", err))
			return
		}
		srv.SetSDE(data)
		logger.Success("SDE", "Routing ready")
	}()

	if stats != nil {
		go stats.RunPreloader(ctx)
	}

	httpSrv := &http.Server{Addr: cfg.ListenAddr, Handler: srv.Handler()}
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()
	logger.Server(cfg.ListenAddr)

	select {
	case err := <-errCh:
		logger.Error("Server", fmt.Sprintf("Failed: %v", err))
		os.Exit(1)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
		logger.Info("Server", "Shut down")
	}
}
