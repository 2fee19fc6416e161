package httpx

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeOK           = "ok"
	outcomeHTTPError    = "http_error"
	outcomeNetworkError = "network_error"
)

var (
	requestAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portfolio",
		Subsystem: "upstream",
		Name:      "request_attempts_total",
		Help:      "Upstream request attempts by outcome.",
	}, []string{"outcome"})
	requestRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "portfolio",
		Subsystem: "upstream",
		Name:      "request_retries_total",
		Help:      "Retries issued after transient upstream failures.",
	})
)

func init() {
	prometheus.MustRegister(requestAttempts, requestRetries)
}
