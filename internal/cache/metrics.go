package cache

import "github.com/prometheus/client_golang/prometheus"

var cacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "portfolio",
	Subsystem: "cache",
	Name:      "requests_total",
	Help:      "Cache lookups by cache name and outcome.",
}, []string{"cache", "outcome"})

func init() {
	prometheus.MustRegister(cacheRequests)
}
