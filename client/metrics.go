package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "referral_client",
			Name:      "requests_total",
			Help:      "Requests sent to the admin API by operation and status code (0 = no response).",
		},
		[]string{"op", "code"},
	)

	unauthorizedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "referral_client",
			Name:      "unauthorized_total",
			Help:      "Responses that rejected the session with 401.",
		},
	)

	bulkDeletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "referral_client",
			Name:      "bulk_deletes_total",
			Help:      "Profiles processed by DeleteProfiles by result.",
		},
		[]string{"result"},
	)
)
