package account

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry metrics, exported on the daemon's /metrics endpoint
var (
	registryAccounts = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ioaccount",
		Subsystem: "registry",
		Name:      "accounts",
		Help:      "Number of accounts currently held by registries in this process",
	})

	registryOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ioaccount",
		Subsystem: "registry",
		Name:      "ops_total",
		Help:      "Registry operations by kind and result",
	}, []string{"op", "result"})
)

func observeOp(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	registryOps.WithLabelValues(op, result).Inc()
}
