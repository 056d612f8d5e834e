package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sysdash/api"
	"sysdash/config"
	"sysdash/db"
	"sysdash/metrics"
	"sysdash/monitoring"
	"sysdash/websockets"
)

func setupLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	level := zerolog.InfoLevel
	if raw := os.Getenv("SYSDASH_LOG_LEVEL"); raw != "" {
		if parsed, err := zerolog.ParseLevel(raw); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func main() {
	setupLogging()

	cfg, err := config.LoadWithEnv("config.json")
	if err != nil {
		log.Fatal().Err(err).Msg("configuration failed")
	}

	database, err := db.EnsureDB(cfg.Database.Filename)
	if err != nil {
		log.Fatal().Err(err).Msg("database setup failed")
	}
	defer database.Close()

	settings, err := db.LoadSettings(database)
	if err != nil {
		log.Warn().Err(err).Msg("falling back to default settings")
		settings = db.DefaultSettings()
	}

	// Persisted settings win over the config file for the sampling cadence;
	// the settings API mutates them at runtime.
	interval := time.Duration(cfg.Monitoring.IntervalSeconds) * time.Second
	if settings.RefreshIntervalSeconds > 0 {
		interval = time.Duration(settings.RefreshIntervalSeconds) * time.Second
	}

	monitor := monitoring.NewMonitor(monitoring.NewSystemSource(), monitoring.Options{
		CPUSampleInterval:   time.Duration(cfg.Monitoring.CPUSampleMillis) * time.Millisecond,
		DiskRefreshInterval: time.Duration(cfg.Monitoring.DiskRefreshSeconds) * time.Second,
		DisableMemory:       !cfg.Monitoring.EnableMemoryMonitoring,
		DisableDisks:        !cfg.Monitoring.EnableDiskMonitoring,
		DisableNetworks:     !cfg.Monitoring.EnableNetworkMonitoring,
		DisableProcesses:    !cfg.Monitoring.EnableProcessMonitoring,
	})

	instruments := metrics.New()
	collector := monitoring.NewCollector(monitor, interval)
	lastDisk := monitor.LastDiskRefresh()
	collector.OnCycle = func(elapsed time.Duration) {
		instruments.ObserveCycle(elapsed)
		current := monitor.LastDiskRefresh()
		instruments.ObserveDiskRefresh(!current.Equal(lastDisk))
		lastDisk = current
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := websockets.NewHub()
	snapshots := make(chan monitoring.Snapshot, 1)
	go hub.Run(ctx, snapshots)
	go collector.Run(ctx, snapshots)

	r := mux.NewRouter()
	handler := api.NewHandler(monitor, database)
	handler.Metrics = instruments
	api.RegisterRoutes(r, handler)
	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		websockets.ServeWs(hub, w, req)
	})
	r.Handle("/metrics", instruments.Handler()).Methods("GET")

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // websocket connections stay open
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Dur("interval", interval).Msg("sysdash server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
}
