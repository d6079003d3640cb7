// Package metrics exposes the run's Prometheus metrics. Unlike the teacher
// repository it never serves them over HTTP: the spec this module
// implements has no network surface, so a Registry is rendered to the
// Prometheus text exposition format and written wherever the caller likes
// (a file, stdout, a log sink).
package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Registry bundles the counters and gauges tracked for a single run. Each
// Registry owns a private prometheus.Registry so that concurrent runs (as
// in tests) never collide on the default global one.
type Registry struct {
	reg *prometheus.Registry

	OperationsTotal *prometheus.CounterVec
	AccountsGauge   prometheus.Gauge
	LockedGauge     prometheus.Gauge
	RowsParsed      prometheus.Counter
	RowsRejected    prometheus.Counter
}

// NewRegistry constructs a Registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_operations_total",
				Help: "Total number of transaction operations processed, by type and result.",
			},
			[]string{"operation", "result"},
		),
		AccountsGauge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_accounts_gauge",
			Help: "Current number of distinct client accounts known to the engine.",
		}),
		LockedGauge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_locked_accounts_gauge",
			Help: "Current number of locked client accounts.",
		}),
		RowsParsed: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledger_csv_rows_parsed_total",
			Help: "Total number of CSV rows successfully parsed.",
		}),
		RowsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledger_csv_rows_rejected_total",
			Help: "Total number of CSV rows that failed to parse.",
		}),
	}
}

// RecordOperation increments the operation counter for the given kind and
// outcome ("accepted" or "rejected").
func (r *Registry) RecordOperation(operation, result string) {
	r.OperationsTotal.WithLabelValues(operation, result).Inc()
}

// SetAccountStats sets the account count gauges to a fresh snapshot.
func (r *Registry) SetAccountStats(total, locked int) {
	r.AccountsGauge.Set(float64(total))
	r.LockedGauge.Set(float64(locked))
}

// WriteSnapshot renders every registered metric in Prometheus text
// exposition format to w.
func (r *Registry) WriteSnapshot(w io.Writer) error {
	families, err := r.reg.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
