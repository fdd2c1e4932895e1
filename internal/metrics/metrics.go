// Package metrics defines the Prometheus collectors exported by the tracker.
//
// Collectors register with the default registry at init via promauto;
// cmd/server exposes them with promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tracker"

// RPCRequestsTotal counts finished RPCs.
// Labels:
//   - method: full gRPC method name
//   - code: gRPC status code string
var RPCRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rpc_requests_total",
		Help:      "Total number of RPCs handled, by method and status code.",
	},
	[]string{"method", "code"},
)

// RPCDuration measures handler latency.
var RPCDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rpc_duration_seconds",
		Help:      "Duration of RPC handling.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// AuthEventsTotal counts authentication outcomes.
// Labels:
//   - event: register, login, refresh, authenticate
//   - result: ok, conflict, unauthorized, rate_limited, invalid, error
var AuthEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Total number of authentication events, by event and result.",
	},
	[]string{"event", "result"},
)
