package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github/chapool/chainsig-relay/internal/config"
)

const (
	namespace = "chainsig_relay"

	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Service owns the prometheus registry of a server instance.
type Service struct {
	Registry *prometheus.Registry

	evmTransactions        *prometheus.CounterVec
	evmTransactionDuration *prometheus.HistogramVec
	buildInfo              *prometheus.GaugeVec
}

func New(_ config.Server) (*Service, error) {
	registry := prometheus.NewRegistry()

	s := &Service{
		Registry: registry,
		evmTransactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evm_transactions_total",
			Help:      "Number of EVM transaction executions by result.",
		}, []string{"result"}),
		evmTransactionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evm_transaction_duration_seconds",
			Help:      "Duration of EVM transaction executions including MPC signing.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		}, []string{"result"}),
		buildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information of the running binary.",
		}, []string{"module", "commit", "build_date"}),
	}

	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		s.evmTransactions,
		s.evmTransactionDuration,
		s.buildInfo,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	s.buildInfo.WithLabelValues(config.ModuleName, config.Commit, config.BuildDate).Set(1)

	return s, nil
}

// ObserveEVMTransaction records one execution attempt.
func (s *Service) ObserveEVMTransaction(err error, duration time.Duration) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}

	s.evmTransactions.WithLabelValues(result).Inc()
	s.evmTransactionDuration.WithLabelValues(result).Observe(duration.Seconds())
}
