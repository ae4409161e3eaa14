package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MeetingMetrics struct {
	MeetingsCreatedTotal  *prometheus.CounterVec
	ComposeFailuresTotal  prometheus.Counter
	CallTokensIssuedTotal *prometheus.CounterVec
	MeetingsSettledTotal  prometheus.Counter
}

// Metrics is registered on the default registerer and served on /metrics.
var Metrics = NewMeetingMetrics(prometheus.DefaultRegisterer)

func NewMeetingMetrics(reg prometheus.Registerer) *MeetingMetrics {
	factory := promauto.With(reg)

	return &MeetingMetrics{
		MeetingsCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "meeting",
				Name:      "meetings_created_total",
				Help:      "Total meetings created, by kind",
			},
			[]string{"kind"},
		),
		ComposeFailuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "meeting",
				Name:      "compose_failures_total",
				Help:      "Total meeting creations that failed",
			},
		),
		CallTokensIssuedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "meeting",
				Name:      "call_tokens_issued_total",
				Help:      "Total room access tokens issued",
			},
			[]string{"guest"},
		),
		MeetingsSettledTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "meeting",
				Name:      "meetings_settled_total",
				Help:      "Total meetings marked ended after their room closed",
			},
		),
	}
}
