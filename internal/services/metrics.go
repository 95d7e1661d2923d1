package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sectionSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_section_submissions_total",
			Help: "Profile section submissions by section and result",
		},
		[]string{"section", "result"},
	)

	completionPercentage = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "profile_completion_percentage",
			Help:    "Completion percentage reported after each successful section submission",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	moderationDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_moderation_decisions_total",
			Help: "Pending field updates approved or rejected, by field",
		},
		[]string{"decision", "field"},
	)

	notificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Owner notifications by channel and result",
		},
		[]string{"channel", "result"},
	)
)
