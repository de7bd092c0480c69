// Package metrics holds the prometheus collectors for the sync pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SyncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobtracker_sync_runs_total",
		Help: "Mailbox sync runs by outcome",
	}, []string{"outcome"})

	SyncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jobtracker_sync_duration_seconds",
		Help:    "Wall time of a mailbox sync run",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
	})

	StageMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobtracker_sync_stage_messages_total",
		Help: "Messages leaving each pipeline stage",
	}, []string{"stage"})

	ProviderFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobtracker_provider_failures_total",
		Help: "Provider call failures by stage",
	}, []string{"stage"})

	SuggestionActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobtracker_suggestion_actions_total",
		Help: "Suggestion lifecycle actions",
	}, []string{"action"})
)

// Outcome labels for SyncRunsTotal.
const (
	OutcomeSuccess      = "success"
	OutcomeDisconnected = "disconnected"
	OutcomeEmpty        = "empty"
	OutcomeFailed       = "failed"
)

// Stage labels for StageMessages and ProviderFailures.
const (
	StageListed     = "listed"
	StageFetched    = "fetched"
	StageKeyword    = "keyword"
	StageClassified = "classified"
	StageSummarized = "summarized"
	StageFinal      = "final"
)

// Action labels for SuggestionActions.
const (
	ActionAccept    = "accept"
	ActionDismiss   = "dismiss"
	ActionDiscard   = "discard"
	ActionReconcile = "reconcile"
)
