package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TransfersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transfers_total",
			Help: "Transfers by terminal status",
		},
		[]string{"status"}, // completed|failed
	)
	TransfersRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transfers_rejected_total",
			Help: "Transfers rejected before commit",
		},
		[]string{"reason"}, // validation|auth_unavailable|declined
	)
	RecipientsImported = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recipients_imported_total",
			Help: "Recipients created through contacts import",
		},
	)
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(TransfersTotal)
	prometheus.MustRegister(TransfersRejected)
	prometheus.MustRegister(RecipientsImported)
	prometheus.MustRegister(WorkerQueueDepth)
}
