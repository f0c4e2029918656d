// internal/pkg/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// AuthRejections counts requests refused by the token guard or the
	// permission gate, labelled by failure reason.
	AuthRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookly_auth_rejections_total",
			Help: "Number of requests rejected by authentication or authorization.",
		},
		[]string{"reason"},
	)

	TokensRevoked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bookly_tokens_revoked_total",
			Help: "Number of token identifiers added to the blocklist.",
		},
	)

	TokensIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookly_tokens_issued_total",
			Help: "Number of tokens issued by kind.",
		},
		[]string{"kind"},
	)

	WebsocketConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookly_websocket_connections",
			Help: "Number of live websocket connections.",
		},
	)
)

// Register is called once from the server with the registry backing /metrics.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(AuthRejections, TokensRevoked, TokensIssued, WebsocketConnections)
}
