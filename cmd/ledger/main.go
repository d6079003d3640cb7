// Command ledger reads a CSV of deposits, withdrawals, disputes, resolves,
// and chargebacks and writes the resulting per-client account states back
// out as CSV, following the teacher's single-binary CLI shape.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ledger-engine/internal/config"
	"ledger-engine/internal/csvfeed"
	"ledger-engine/internal/domain/ledger"
	"ledger-engine/internal/eventstream"
	eventskafka "ledger-engine/internal/eventstream/kafka"
	"ledger-engine/internal/ingest"
	"ledger-engine/internal/logging"
	"ledger-engine/internal/runid"
	snapshotpostgres "ledger-engine/internal/snapshot/postgres"
	"ledger-engine/internal/telemetry/metrics"
)

var (
	flagWorkers     int
	flagDense       bool
	flagExpectedTxs int
	flagKafka       bool
	flagPostgres    bool
	flagMetricsOut  string
	flagOutput      string
	flagLogLevel    string
	flagLogFormat   string
)

var rootCmd = &cobra.Command{
	Use:   "ledger [input.csv]",
	Short: "Process a CSV transaction stream into final account states.",
	Long: `ledger replays a stream of deposit, withdrawal, dispute, resolve, and
chargeback records against an in-process transaction engine and prints the
final balance of every client account as CSV.`,
	Args: cobra.ExactArgs(1),
	RunE: runLedger,
}

func init() {
	rootCmd.Flags().IntVar(&flagWorkers, "workers", 0, "number of producer goroutines feeding the engine (0 processes inline, single-threaded)")
	rootCmd.Flags().BoolVar(&flagDense, "dense", false, "use the dense, slice-backed storage layout instead of the sparse map-backed default")
	rootCmd.Flags().IntVar(&flagExpectedTxs, "expected-transactions", 1<<16, "transaction slice size hint when --dense is set")
	rootCmd.Flags().BoolVar(&flagKafka, "kafka", false, "publish transaction and lock events to Kafka instead of discarding them")
	rootCmd.Flags().BoolVar(&flagPostgres, "postgres", false, "export final account states to PostgreSQL in addition to stdout")
	rootCmd.Flags().StringVar(&flagMetricsOut, "metrics-out", "", "file to write a Prometheus text-exposition snapshot to (default: none)")
	rootCmd.Flags().StringVar(&flagOutput, "output", "", "file to write the resulting CSV to (default: stdout)")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "overrides LEDGER_LOG_LEVEL")
	rootCmd.Flags().StringVar(&flagLogFormat, "log-format", "", "overrides LEDGER_LOG_FORMAT")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runLedger(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	if flagLogFormat != "" {
		cfg.Logging.Format = flagLogFormat
	}
	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format, nil)

	run := runid.New()
	logger.Info("starting run", logging.Fields{"run_id": run, "input": args[0]})

	in, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("ledger: failed to open input: %w", err)
	}
	defer in.Close()

	var opts []ledger.Option
	if flagDense {
		opts = append(opts, ledger.WithDenseStorage(flagExpectedTxs))
	}
	engine := ledger.Init(opts...)

	reg := metrics.NewRegistry()
	publisher := buildPublisher(cfg, flagKafka, logger)
	defer publisher.Close()

	ctx := context.Background()
	if flagWorkers > 0 {
		runConcurrent(ctx, engine, in, flagWorkers, reg, publisher, run, logger)
	} else {
		runInline(engine, in, reg, publisher, run, logger)
	}

	total, locked := 0, 0
	engine.Accounts(func(_ ledger.ClientID, acc ledger.Account) bool {
		total++
		if acc.IsLocked() {
			locked++
		}
		return true
	})
	reg.SetAccountStats(total, locked)

	rows := csvfeed.CollectRows(engine)
	out := os.Stdout
	if flagOutput != "" {
		f, err := os.Create(flagOutput)
		if err != nil {
			return fmt.Errorf("ledger: failed to create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := csvfeed.WriteRows(out, rows); err != nil {
		return fmt.Errorf("ledger: failed to write output: %w", err)
	}

	if flagMetricsOut != "" {
		if err := writeMetricsSnapshot(reg, flagMetricsOut); err != nil {
			logger.Warn("failed to write metrics snapshot", logging.Fields{"error": err.Error()})
		}
	}

	if flagPostgres {
		if err := exportSnapshot(ctx, cfg, run, rows, logger); err != nil {
			logger.Warn("failed to export snapshot to postgres", logging.Fields{"error": err.Error()})
		}
	}

	logger.Info("run complete", logging.Fields{"run_id": run, "accounts": total, "locked": locked})
	return nil
}

func runInline(e *ledger.Engine, in *os.File, reg *metrics.Registry, pub eventstream.Publisher, run string, logger *logging.Logger) {
	_ = csvfeed.ReadRows(in,
		func(row csvfeed.InputRow) {
			reg.RowsParsed.Inc()
			recordRow(e, reg, pub, run, row, logger)
		},
		func(perr *csvfeed.ParseError) {
			reg.RowsRejected.Inc()
			logger.Warn("failed to parse row", logging.Fields{"line": perr.Line, "error": perr.Err.Error()})
		},
	)
}

func runConcurrent(ctx context.Context, e *ledger.Engine, in *os.File, workers int, reg *metrics.Registry, pub eventstream.Publisher, run string, logger *logging.Logger) {
	worker := ingest.NewWorker(e, logger, workers*4)
	rowsCh := make(chan csvfeed.InputRow)

	go func() {
		defer close(rowsCh)
		_ = csvfeed.ReadRows(in,
			func(row csvfeed.InputRow) {
				reg.RowsParsed.Inc()
				rowsCh <- row
			},
			func(perr *csvfeed.ParseError) {
				reg.RowsRejected.Inc()
				logger.Warn("failed to parse row", logging.Fields{"line": perr.Line, "error": perr.Err.Error()})
			},
		)
	}()

	ingest.RunProducers(ctx, worker, rowsCh, workers, func(res ingest.Result) {
		publishResult(reg, pub, run, res.Row, res.Err, logger)
	})
}

func recordRow(e *ledger.Engine, reg *metrics.Registry, pub eventstream.Publisher, run string, row csvfeed.InputRow, logger *logging.Logger) {
	err := csvfeed.Apply(e, row)
	if err != nil {
		logger.Warn("transaction rejected", logging.Fields{"type": row.Kind.String(), "client": row.Client, "tx": row.Tx, "error": err.Error()})
	}
	publishResult(reg, pub, run, row, err, logger)
}

func publishResult(reg *metrics.Registry, pub eventstream.Publisher, run string, row csvfeed.InputRow, err error, logger *logging.Logger) {
	result := "accepted"
	reason := ""
	if err != nil {
		result = "rejected"
		reason = err.Error()
	}
	reg.RecordOperation(row.Kind.String(), result)

	now := time.Now().UTC()
	event := eventstream.TransactionEvent{
		RunID:     run,
		Type:      row.Kind.String(),
		Client:    row.Client,
		Tx:        row.Tx,
		Amount:    row.Amount,
		Accepted:  err == nil,
		Reason:    reason,
		Timestamp: now,
	}
	if perr := pub.PublishTransaction(event); perr != nil {
		logger.Warn("failed to publish transaction event", logging.Fields{"error": perr.Error()})
	}

	if err == nil && row.Kind == csvfeed.RowChargeback {
		if perr := pub.PublishAccountLocked(eventstream.AccountLockedEvent{RunID: run, Client: row.Client, Tx: row.Tx, Timestamp: now}); perr != nil {
			logger.Warn("failed to publish account locked event", logging.Fields{"error": perr.Error()})
		}
	}
}

func buildPublisher(cfg *config.Config, enableFlag bool, logger *logging.Logger) eventstream.Publisher {
	if !enableFlag && !cfg.Kafka.Enabled {
		return eventstream.NoOpPublisher{}
	}
	kcfg := eventskafka.DefaultConfig(cfg.Kafka.Brokers, cfg.Kafka.ClientID)
	pub, err := eventskafka.NewPublisher(kcfg)
	if err != nil {
		logger.Warn("failed to connect to kafka, falling back to no-op publisher", logging.Fields{"error": err.Error()})
		return eventstream.NoOpPublisher{}
	}
	return pub
}

func writeMetricsSnapshot(reg *metrics.Registry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return reg.WriteSnapshot(f)
}

func exportSnapshot(ctx context.Context, cfg *config.Config, run string, rows []csvfeed.OutputRow, logger *logging.Logger) error {
	exp, err := snapshotpostgres.Connect(ctx, &snapshotpostgres.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
	})
	if err != nil {
		return err
	}
	defer exp.Close()

	if err := exp.EnsureSchema(ctx); err != nil {
		return err
	}
	logger.Info("exporting snapshot to postgres", logging.Fields{"run_id": run, "accounts": len(rows)})
	return exp.Export(ctx, run, rows)
}
