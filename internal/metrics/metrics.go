package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ActiveConnections counts currently open websocket sessions.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chatrelay_active_connections",
		Help: "Number of currently open chat connections.",
	})

	// RelayedMessages counts chat messages relayed to room members.
	RelayedMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatrelay_relayed_messages_total",
		Help: "Total number of chat messages relayed.",
	})

	// PersistFailures counts message store writes that failed and were
	// dropped.
	PersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatrelay_persist_failures_total",
		Help: "Total number of failed message store writes.",
	})
)

// Handler exposes Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
