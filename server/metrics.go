package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	openSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "social",
		Name:      "open_sessions",
		Help:      "Number of currently connected clients.",
	})

	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "social",
		Name:      "requests_total",
		Help:      "Requests processed, by action and status.",
	}, []string{"action", "status"})

	transportErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "social",
		Name:      "transport_errors_total",
		Help:      "Sessions terminated by a transport error.",
	})
)
