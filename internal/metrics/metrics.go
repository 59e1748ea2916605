package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ListingRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "joeevents_listing_requests_total",
		Help: "Event listing requests by surface (site, dashboard, api).",
	}, []string{"surface"})

	ListingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "joeevents_listing_duration_seconds",
		Help:    "Time spent querying one page of events.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
	})

	FilterDecodeErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "joeevents_filter_decode_errors_total",
		Help: "Malformed filters parameters that fell back to no filter.",
	}, []string{"surface"})

	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "joeevents_orders_created_total",
		Help: "Orders successfully placed.",
	})

	CheckoutRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "joeevents_checkout_rejected_total",
		Help: "Checkout attempts rejected, by reason.",
	}, []string{"reason"})

	ViewsRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "joeevents_views_recorded_total",
		Help: "Event view rows successfully written to the database.",
	})

	ViewsRecordErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "joeevents_views_record_errors_total",
		Help: "Event view insert failures.",
	})

	ViewsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "joeevents_views_dropped_total",
		Help: "Event views dropped because the write buffer was full.",
	})

	EventsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "joeevents_events_total",
		Help: "Total number of events in the database.",
	})
)
