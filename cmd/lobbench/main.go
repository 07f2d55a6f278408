// Command lobbench is the harness around the orderbook core: the
// event-source loop, the synthetic workload generator, stdout
// reporting and configuration the spec explicitly keeps out of the
// core (§1). It replaces the teacher's flat main.go with a
// cobra/viper CLI, the way VictorVVedtion-perp-dex's cmd/perpdexd does.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/WataHata/OrderTradeBook/internal/feed"
	"github.com/WataHata/OrderTradeBook/internal/latency"
	"github.com/WataHata/OrderTradeBook/internal/replay"
	"github.com/WataHata/OrderTradeBook/orderbook"
	bookmetrics "github.com/WataHata/OrderTradeBook/orderbook/metrics"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "lobbench",
		Short: "Replay a synthetic order stream against the limit order book core",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd.Context(), v)
		},
	}

	flags := root.Flags()
	flags.Int("capacity", 1_000_000, "order pool capacity")
	flags.Int("orders", 100_000, "number of events to generate")
	flags.Int("batch-size", 10, "events processed per latency sample")
	flags.Int64("seed", 42, "PRNG seed for the workload generator")
	flags.Float64("cancel-chance", 0.05, "probability a generated event cancels a previously generated, not yet cancelled order")
	flags.Float64("fak-chance", 0.1, "probability a generated new order is Fill-And-Kill")
	flags.Int32("min-price", 1, "minimum generated price")
	flags.Int32("max-price", 5000, "maximum generated price")
	flags.Uint32("max-qty", 1000, "maximum generated order quantity")
	flags.String("dsn", "", "optional Postgres DSN; when set, the run's events and trades are persisted")
	flags.Int("metrics-port", 0, "optional port to serve Prometheus metrics on (0 disables)")

	_ = v.BindPFlags(flags)
	v.SetEnvPrefix("LOBBENCH")
	v.AutomaticEnv()

	return root
}

func runBench(ctx context.Context, v *viper.Viper) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("lobbench: build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	reg := prometheus.NewRegistry()
	collector := bookmetrics.NewCollector(reg, "SYM")

	if port := v.GetInt("metrics-port"); port > 0 {
		go serveMetrics(logger, reg, port)
	}

	book := orderbook.NewBook(v.GetInt("capacity"),
		orderbook.WithLogger(logger),
		orderbook.WithMetrics(collector),
	)

	gen := feed.NewGenerator(feed.Config{
		Seed:         v.GetInt64("seed"),
		MinPrice:     orderbook.Price(v.GetInt32("min-price")),
		MaxPrice:     orderbook.Price(v.GetInt32("max-price")),
		MaxQty:       orderbook.Quantity(v.GetUint32("max-qty")),
		CancelChance: v.GetFloat64("cancel-chance"),
		FAKChance:    v.GetFloat64("fak-chance"),
	})

	orderCount := v.GetInt("orders")
	batchSize := v.GetInt("batch-size")

	events := make([]feed.Event, orderCount)
	for i := range events {
		events[i] = gen.Next()
	}

	var allTrades []orderbook.Trade
	samples := make(latency.Samples, 0, orderCount/max(batchSize, 1))

	totalStart := time.Now()
	for i := 0; i < len(events); i += batchSize {
		end := min(i+batchSize, len(events))
		begin := time.Now()
		for _, e := range events[i:end] {
			switch e.Kind {
			case feed.New:
				trades, err := book.Add(e.OrderType, e.ID, e.Side, e.Price, e.Qty)
				if err != nil {
					logger.Error("add failed", zap.Error(err))
					continue
				}
				allTrades = append(allTrades, trades...)
			case feed.Cancel:
				book.Cancel(e.ID)
			}
		}
		samples = append(samples, time.Since(begin))
	}
	totalElapsed := time.Since(totalStart)

	summary := latency.Summarize(samples)
	fmt.Printf("[engine] mean(latency) = %1.6fs, sd(latency) = %1.6fs over %d batches\n",
		summary.MeanSeconds(), summary.StdDevSeconds(), len(samples))
	fmt.Printf("[book] resting=%d trades=%d\n", book.Size(), len(allTrades))
	fmt.Printf("[total] %.1f events/sec\n", float64(len(events))/totalElapsed.Seconds())

	if dsn := v.GetString("dsn"); dsn != "" {
		if err := persistRun(dsn, events, allTrades); err != nil {
			logger.Error("persist run failed", zap.Error(err))
			return err
		}
	}

	_ = ctx
	return nil
}

func persistRun(dsn string, events []feed.Event, trades []orderbook.Trade) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("lobbench: open db: %w", err)
	}
	defer db.Close()

	if err := replay.ResetSchema(db); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("lobbench: begin tx: %w", err)
	}

	if err := replay.PersistEvents(tx, events); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := replay.PersistTrades(tx, trades); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	return tx.Commit()
}

func serveMetrics(logger *zap.Logger, reg *prometheus.Registry, port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	addr := fmt.Sprintf(":%d", port)
	logger.Info("serving metrics", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", zap.Error(err))
	}
}
