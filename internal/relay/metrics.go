package relay

import "github.com/prometheus/client_golang/prometheus"

var (
	ConnectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "relay_connected_clients",
		Help: "Number of currently admitted clients",
	})

	EventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_events_total",
		Help: "Total dispatcher events processed by type",
	}, []string{"type"})

	EventProcessingDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "relay_event_processing_seconds",
		Help:    "Time to process each event type",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})

	BroadcastDrops = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "relay_broadcast_drops_total",
		Help: "Broadcast deliveries dropped because the recipient was too slow",
	})
)

func init() {
	prometheus.MustRegister(ConnectedClients)
	prometheus.MustRegister(EventsTotal)
	prometheus.MustRegister(EventProcessingDuration)
	prometheus.MustRegister(BroadcastDrops)
}
