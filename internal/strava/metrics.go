package strava

import "github.com/prometheus/client_golang/prometheus"

var (
	tokenRefreshes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portfolio",
		Subsystem: "strava",
		Name:      "token_refreshes_total",
		Help:      "Token refresh exchanges by result.",
	}, []string{"result"})
	pagesFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "portfolio",
		Subsystem: "strava",
		Name:      "activity_pages_fetched_total",
		Help:      "Activity pages successfully fetched and parsed.",
	})
	aggregationRuns = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "portfolio",
		Subsystem: "strava",
		Name:      "last_aggregation_run_count",
		Help:      "Run activities accumulated by the most recent aggregation.",
	})
)

func init() {
	prometheus.MustRegister(tokenRefreshes, pagesFetched, aggregationRuns)
}
