package logreader

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsSubsystem = "logreader"

type metrics struct {
	polls      prometheus.Counter
	emitted    *prometheus.CounterVec
	duplicates prometheus.Counter
	parseErrs  prometheus.Counter
}

func newMetrics(reg prometheus.Registerer, batchID int) *metrics {
	labels := prometheus.Labels{"batch_id": strconv.Itoa(batchID)}

	m := &metrics{
		polls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "livy",
			Subsystem:   metricsSubsystem,
			Name:        "polls_total",
			Help:        "total number of batch log fetches",
			ConstLabels: labels,
		}),
		emitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "livy",
			Subsystem:   metricsSubsystem,
			Name:        "records_emitted_total",
			Help:        "total number of log records handed to the sink",
			ConstLabels: labels,
		}, []string{"level"}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "livy",
			Subsystem:   metricsSubsystem,
			Name:        "records_duplicate_total",
			Help:        "total number of records dropped because they were emitted before",
			ConstLabels: labels,
		}),
		parseErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "livy",
			Subsystem:   metricsSubsystem,
			Name:        "parse_errors_total",
			Help:        "total number of spans dropped because their parser failed",
			ConstLabels: labels,
		}),
	}

	if reg != nil {
		m.polls = register(reg, m.polls)
		m.emitted = register(reg, m.emitted)
		m.duplicates = register(reg, m.duplicates)
		m.parseErrs = register(reg, m.parseErrs)
	}
	return m
}

// register adds c to reg, reusing the collector already registered under the
// same descriptor so two readers for one batch share counters.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	err := reg.Register(c)
	if err == nil {
		return c
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}
	slog.Warn("failed to register logreader metric", "error", err)
	return c
}

func (m *metrics) recordEmitted(level slog.Level) {
	m.emitted.WithLabelValues(LevelName(level)).Inc()
}
