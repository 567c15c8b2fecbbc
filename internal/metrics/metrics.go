package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ThresholdEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signal_threshold_events_total", Help: "Threshold events booked, by level"},
		[]string{"level"},
	)
	PriceFetchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "price_fetch_errors_total", Help: "Failed price fetches, by source"},
		[]string{"source"},
	)
	DroppedUpdates = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "signal_updates_dropped_total", Help: "Non-final persistence updates dropped after retry exhaustion"},
	)
	ActiveSignals = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "active_signals", Help: "Signals currently monitored"},
	)
)

func init() {
	prometheus.MustRegister(ThresholdEvents, PriceFetchErrors, DroppedUpdates, ActiveSignals)
}

// Serve exposes /metrics on addr in the background.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
