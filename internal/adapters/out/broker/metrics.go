package broker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	subscribersGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dispatch_broker_subscribers",
			Help: "Active subscriptions per topic",
		},
		[]string{"topic"},
	)

	eventsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_broker_events_delivered_total",
			Help: "Snapshots delivered to subscribers per topic",
		},
		[]string{"topic"},
	)
)
