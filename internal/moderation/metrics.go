package moderation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var decisionCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "comment_moderation_decisions_total",
	Help: "Number of moderated comments, by decision and reason",
}, []string{"decision", "reason"})

var spamCheckCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "comment_spam_checks_total",
	Help: "Number of spam checks, by verdict",
}, []string{"status"})

var spamCheckDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "comment_spam_check_duration_sec",
	Help: "Duration of spam check calls",
})
