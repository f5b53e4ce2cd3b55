// Binary web serves the browser order form for the Binance USDT-M futures
// testnet. It shares the CLI's order pipeline; the UI only adds mark-price
// display conveniences.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/ashishbot120/trading-bot/internal/audit"
	"github.com/ashishbot120/trading-bot/internal/config"
	"github.com/ashishbot120/trading-bot/internal/exchange"
	"github.com/ashishbot120/trading-bot/internal/metrics"
	"github.com/ashishbot120/trading-bot/internal/order"
	"github.com/ashishbot120/trading-bot/internal/util"
	"github.com/ashishbot120/trading-bot/internal/webui"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback := util.NewLogger("info")
		fallback.Fatal().Err(err).Msg("load config")
	}

	log, closer, err := util.NewFileLogger(cfg.App.LogLevel, cfg.App.LogFile, cfg.App.LogMaxSize, cfg.App.LogBackups)
	if err != nil {
		fallback := util.NewLogger("info")
		fallback.Fatal().Err(err).Msg("open log file")
	}
	defer closer.Close()

	if err := cfg.RequireCredentials(); err != nil {
		log.Fatal().Err(err).Msg("missing credentials")
	}

	journal, err := audit.NewJournal(cfg.App.JournalPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open journal")
	}
	defer journal.Close()

	if cfg.App.MetricsAddr != "" {
		_ = metrics.Serve(cfg.App.MetricsAddr)
		log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
	}

	client := exchange.NewClient(
		cfg.Exchange.BaseURL,
		cfg.Exchange.APIKey,
		cfg.Exchange.APISecret,
		exchange.WithTimeout(time.Duration(cfg.Exchange.TimeoutSec)*time.Second),
		exchange.WithLogger(log),
	)
	cache, err := exchange.NewFilterCache(cfg.Exchange.FilterCacheSize)
	if err != nil {
		log.Fatal().Err(err).Msg("build filter cache")
	}

	placer := &order.Placer{
		Client:     client,
		Cache:      cache,
		Journal:    journal,
		Log:        log,
		RecvWindow: cfg.Exchange.RecvWindowMs,
	}
	server := webui.NewServer(placer, client, log)

	srv := &http.Server{
		Addr:    cfg.Web.ListenAddr,
		Handler: server.Routes(),
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		log.Info().Str("addr", cfg.Web.ListenAddr).Msg("web form up")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("web server stopped")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
