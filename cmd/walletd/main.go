package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/getlipa/lipa-lightning-lib-go/config"
	"github.com/getlipa/lipa-lightning-lib-go/internal/exchange"
	"github.com/getlipa/lipa-lightning-lib-go/internal/notify"
	"github.com/getlipa/lipa-lightning-lib-go/internal/ratefeed"
	"github.com/getlipa/lipa-lightning-lib-go/internal/sdkadapter"
	"github.com/getlipa/lipa-lightning-lib-go/internal/store"
	"github.com/getlipa/lipa-lightning-lib-go/internal/taskmanager"
	"github.com/getlipa/lipa-lightning-lib-go/pkg/logger"

	"go.uber.org/zap"
)

var Cfg config.WalletConfig

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := logger.Init(logger.GetEnv()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	_, filename, _, _ := runtime.Caller(0)
	root := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
	configPath := config.Path(root).Join("config.toml")

	if err := config.Load(configPath, &Cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := store.Open(Cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to open wallet store: %w", err)
	}
	defer db.Close()

	logger.Info("wallet store ready", zap.String("path", Cfg.Store.Path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tasks := taskmanager.New()
	defer tasks.ShutdownAll()

	if err := startRateFeed(ctx, tasks, db); err != nil {
		return err
	}

	server := newNotificationServer()
	go func() {
		logger.Info("notification handler listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("notification server stopped unexpectedly", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("notification server shutdown error", zap.Error(err))
	}

	cancel()
	logger.Info("walletd shut down gracefully")
	return nil
}

// startRateFeed wires the teacher's own price providers
// (internal/exchange) into internal/ratefeed and schedules it on the
// task manager, mirroring spawn_repeating_task's periodic-refresh shape
// (async_runtime.rs) for the fiat rates data_store.rs's
// update_exchange_rate expects to be kept current.
func startRateFeed(ctx context.Context, tasks *taskmanager.TaskManager, db *store.Store) error {
	provider, err := exchange.NewProvider(Cfg.ExchangeRates.Provider, "", nil)
	if err != nil {
		return fmt.Errorf("failed to initialize exchange rate provider: %w", err)
	}
	feed := &ratefeed.Feed{
		Provider:   provider,
		Store:      db,
		Currencies: Cfg.ExchangeRates.Currencies,
	}
	tasks.SpawnRepeatingTask(ctx, Cfg.ExchangeRates.PollInterval, feed.Refresh)
	return nil
}

// notificationSDK is the concrete sdkadapter.SDK backing the
// notification HTTP handler. Constructing and running the real
// Lightning SDK is the mobile integration layer's responsibility (out
// of scope per spec.md's Non-goals on the concrete SDK dependency,
// mirrored by sdkadapter.SDK's own doc comment); this daemon exposes
// the wiring point the embedding app plugs its running SDK instance
// into.
var notificationSDK sdkadapter.SDK

func newNotificationServer() *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/notifications", handleNotification)
	return &http.Server{Addr: ":8081", Handler: mux}
}

type notificationRequest struct {
	Payload        string `json:"payload"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// handleNotification exposes notify.HandleNotification over HTTP,
// mirroring the mobile notification service extension's entry point
// into notification_handling.rs's handle_notification.
func handleNotification(w http.ResponseWriter, r *http.Request) {
	if notificationSDK == nil {
		http.Error(w, "sdk not configured", http.StatusServiceUnavailable)
		return
	}

	var req notificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	timeout := time.Duration(req.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	action, err := notify.HandleNotification(r.Context(), notificationSDK, req.Payload, timeout)
	if err != nil {
		logger.Error("failed to handle notification", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(action); err != nil {
		logger.Error("failed to encode notification response", zap.Error(err))
	}
}
