package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/decred/slog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/mattn/go-sqlite3" // SQLite3 driver
	"github.com/robfig/cron/v3"

	"blackjackd/pkg/config"
	"blackjackd/pkg/logging"
	"blackjackd/pkg/server"
	"blackjackd/pkg/utils"
)

var (
	listenAddr = flag.String("listen", "", "Address to listen on")
	redisURL   = flag.String("redisurl", "", "Redis connection URL")
	dataDir    = flag.String("datadir", "", "Data directory for database and logs")
	debugLevel = flag.String("debuglevel", "", "Logging level: trace, debug, info, warn, error")
	seed       = flag.Int64("seed", 0, "Deterministic RNG seed for decks (0 = random)")
)

func realMain() error {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %v", err)
	}

	// Override config with flags if provided
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *redisURL != "" {
		cfg.RedisURL = *redisURL
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
		cfg.LogFile = filepath.Join(cfg.DataDir, "logs", "blackjackd.log")
	}
	if *debugLevel != "" {
		cfg.DebugLevel = *debugLevel
	}

	if err := utils.EnsureDataDirExists(cfg.DataDir); err != nil {
		return err
	}

	logBackend, err := logging.NewLogBackend(logging.LogConfig{
		LogFile:     cfg.LogFile,
		DebugLevel:  cfg.DebugLevel,
		MaxLogFiles: cfg.MaxLogFiles,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %v", err)
	}
	defer logBackend.Close()
	log := logBackend.Logger("MAIN")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Accounts database
	accounts, err := server.NewAccounts(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}
	defer accounts.Close()

	// Session store; fails fast when redis is unreachable.
	store, err := server.NewRedisSessionStore(ctx, cfg.RedisURL, cfg.SessionTTL, logBackend.Logger("STOR"))
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %v", err)
	}
	defer store.Close()

	srv, err := server.NewServer(&server.Config{
		Store:           store,
		Accounts:        accounts,
		LogBackend:      logBackend,
		StartingBalance: cfg.StartingBalance,
		TurnDelay:       cfg.TurnDelay,
		QueueSize:       cfg.QueueSize,
		Workers:         cfg.Workers,
		Seed:            *seed,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %v", err)
	}
	defer srv.Stop()

	gateway := server.NewGateway(srv, logBackend)
	defer gateway.Close()

	// Nightly audit prune keeps the balance log from growing forever.
	cronScheduler := cron.New()
	_, err = cronScheduler.AddFunc("0 4 * * *", func() {
		removed, err := accounts.PruneBalanceLog(cfg.AuditRetention)
		if err != nil {
			log.Errorf("Balance log prune failed: %v", err)
			return
		}
		log.Infof("Pruned %d balance log entries", removed)
	})
	if err != nil {
		return fmt.Errorf("failed to add prune job: %v", err)
	}
	cronScheduler.Start()
	defer cronScheduler.Stop()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  chiSlogLogger{log: logBackend.Logger("HTTP")},
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	r.Get("/ws", gateway.ServeHTTP)
	r.Get("/health", srv.HealthHandler)
	r.Get("/debug/stats", gateway.StatsHandler)

	// No write timeout; websocket connections are long-lived.
	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infof("Blackjack server listening on %s", cfg.ListenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infof("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP shutdown error: %v", err)
	}
	return nil
}

// chiSlogLogger adapts the chi request logger to the slog backend.
type chiSlogLogger struct {
	log slog.Logger
}

func (l chiSlogLogger) Print(v ...interface{}) {
	l.log.Debugf("%s", fmt.Sprint(v...))
}

func main() {
	if err := realMain(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
