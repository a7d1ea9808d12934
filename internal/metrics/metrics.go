package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// UpstreamRequests counts metadata API calls by request kind and outcome.
	UpstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trivia_upstream_requests_total",
		Help: "Metadata API requests by kind and outcome.",
	}, []string{"kind", "outcome"})

	RoundsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trivia_rounds_started_total",
		Help: "Rounds generated.",
	})

	RoundsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trivia_rounds_submitted_total",
		Help: "Rounds scored.",
	})

	// DecoyShortfall counts rounds whose recommendation pool ran dry before the decoy quota was met.
	DecoyShortfall = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trivia_decoy_shortfall_total",
		Help: "Rounds generated with fewer decoys than requested.",
	})
)

// Register adds the trivia collectors to reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{UpstreamRequests, RoundsStarted, RoundsSubmitted, DecoyShortfall} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Handler exposes the registry in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
