// Binary trade places a single MARKET or LIMIT order on the Binance USDT-M
// futures testnet from the command line.
package main

import (
	"context"
	"flag"
	"fmt"
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
)

func main() {
	var (
		configPath = flag.String("config", "", "optional YAML config file")
		symbol     = flag.String("symbol", "", "trading symbol, e.g. BTCUSDT")
		side       = flag.String("side", "", "order side: BUY or SELL")
		orderType  = flag.String("type", "", "order type: MARKET or LIMIT")
		quantity   = flag.Float64("quantity", 0, "order quantity (positive number)")
		price      = flag.Float64("price", 0, "order price, required for LIMIT")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAILED: %v\n", err)
		os.Exit(1)
	}

	log, closer, err := util.NewFileLogger(cfg.App.LogLevel, cfg.App.LogFile, cfg.App.LogMaxSize, cfg.App.LogBackups)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAILED: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := cfg.RequireCredentials(); err != nil {
		log.Error().Err(err).Msg("missing credentials")
		fmt.Fprintf(os.Stderr, "FAILED: %v\n", err)
		os.Exit(1)
	}

	journal, err := audit.NewJournal(cfg.App.JournalPath)
	if err != nil {
		log.Error().Err(err).Msg("open journal")
		fmt.Fprintf(os.Stderr, "FAILED: %v\n", err)
		os.Exit(1)
	}
	defer journal.Close()

	if cfg.App.MetricsAddr != "" {
		_ = metrics.Serve(cfg.App.MetricsAddr)
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
		log.Error().Err(err).Msg("build filter cache")
		fmt.Fprintf(os.Stderr, "FAILED: %v\n", err)
		os.Exit(1)
	}

	placer := &order.Placer{
		Client:     client,
		Cache:      cache,
		Journal:    journal,
		Log:        log,
		RecvWindow: cfg.Exchange.RecvWindowMs,
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	res, err := placer.Place(ctx, order.Request{
		Symbol:   *symbol,
		Side:     *side,
		Type:     *orderType,
		Quantity: *quantity,
		Price:    *price,
	})
	if err != nil {
		// Full detail already went to the log and journal.
		fmt.Fprintf(os.Stderr, "FAILED: %v\nCheck %s for details.\n", err, cfg.App.LogFile)
		os.Exit(1)
	}

	printResult(res)
}

func printResult(res *order.Result) {
	limit := res.Input.Type == order.Limit

	fmt.Println("=== ORDER REQUEST (NORMALIZED) ===")
	fmt.Printf("Symbol     : %s\n", res.Input.Symbol)
	fmt.Printf("Side       : %s\n", res.Input.Side)
	fmt.Printf("Type       : %s\n", res.Input.Type)
	fmt.Printf("Quantity   : %s\n", res.Quantity)
	if limit {
		fmt.Printf("Price      : %s\n", res.Price)
	}

	resp := res.Response
	fmt.Println("=== ORDER RESPONSE ===")
	fmt.Printf("orderId    : %d\n", resp.OrderID)
	fmt.Printf("status     : %s\n", resp.Status)
	if resp.ExecutedQty != "" {
		fmt.Printf("executedQty: %s\n", resp.ExecutedQty)
	}
	if resp.AvgPrice != "" {
		fmt.Printf("avgPrice   : %s\n", resp.AvgPrice)
	}
	if limit && resp.Price != "" {
		fmt.Printf("price      : %s\n", resp.Price)
	}
	if resp.UpdateTime != 0 {
		fmt.Printf("updateTime : %d\n", resp.UpdateTime)
	}
	fmt.Println("SUCCESS: order placed.")
}
