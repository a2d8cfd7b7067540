package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ledgerOps counts ledger mutations by operation and outcome.
var ledgerOps = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "classtrack_ledger_operations_total",
	Help: "Attendance ledger mutations by operation and outcome.",
}, []string{"op", "outcome"})

func countOp(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ledgerOps.WithLabelValues(op, outcome).Inc()
}
