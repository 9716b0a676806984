// Package main boots the StockSentry inventory service.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/stocksentry/stocksentry/internal/advisor"
	"github.com/stocksentry/stocksentry/internal/config"
	httpapi "github.com/stocksentry/stocksentry/internal/http"
	"github.com/stocksentry/stocksentry/internal/monitor"
	"github.com/stocksentry/stocksentry/internal/notify"
	"github.com/stocksentry/stocksentry/internal/obs"
	"github.com/stocksentry/stocksentry/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	obs.InitLogger(cfg.LogLevel)
	obs.Logger.Info("service_starting",
		"inventory_file", cfg.InventoryFile,
		"low_stock_threshold", cfg.LowStockThreshold,
		"monitor_interval", cfg.MonitorInterval.String(),
	)

	st, err := store.Open(cfg.InventoryFile, cfg.ActivityLogFile, cfg.LowStockThreshold)
	if err != nil {
		obs.Logger.Error("store_open_failed", "error", err)
		os.Exit(1)
	}
	obs.Logger.Info("store_loaded", "products", len(st.Snapshot()))

	var messengers notify.Fanout
	var reporter notify.Reporter = notify.NoopReporter{}
	if cfg.WhatsApp.Enabled {
		messengers = append(messengers, notify.NewTwilioMessenger(cfg.WhatsApp))
		obs.Logger.Info("whatsapp_channel_enabled")
	}
	if cfg.Email.Enabled {
		mr := notify.NewMailReporter(cfg.Email)
		messengers = append(messengers, mr)
		reporter = mr
		obs.Logger.Info("email_channel_enabled")
	}
	var msg notify.Messenger = messengers
	if len(messengers) == 0 {
		msg = notify.NoopMessenger{}
	}

	var adv advisor.Advisor
	if cfg.Advisor.Enabled {
		g, err := advisor.NewGemini(context.Background(), cfg.Advisor.APIKey, cfg.Advisor.Model)
		if err != nil {
			obs.Logger.Error("advisor_init_failed", "error", err)
			os.Exit(1)
		}
		defer g.Close()
		adv = g
		obs.Logger.Info("advisor_enabled", "model", cfg.Advisor.Model)
	}

	mon := monitor.New(cfg, st, msg, reporter)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mon.Start(ctx)

	app := httpapi.NewApp(cfg, st, msg, adv)
	mux := httpapi.NewRouter(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}
	mon.Stop()
	if err := st.Flush(); err != nil {
		obs.Logger.Error("final_flush_error", "error", err)
	}
	obs.Logger.Info("service_stopped")
}
