// Package metrics provides Prometheus exporters for engine operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the incentive engines.
var (
	// Counters.
	BonusesAwardedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bonuses_awarded_total",
			Help: "Total number of streak bonuses awarded",
		},
	)

	BonusesTransferredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bonuses_transferred_total",
			Help: "Total number of bonus transfer attempts by outcome",
		},
		[]string{"outcome"},
	)

	PunishmentsAppliedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "punishments_applied_total",
			Help: "Total number of punishments applied by type",
		},
		[]string{"type"},
	)

	PunishmentsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "punishments_expired_total",
			Help: "Total number of punishments deactivated by the expiry sweep",
		},
	)

	AchievementsUnlockedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "achievements_unlocked_total",
			Help: "Total number of achievements unlocked by actor type",
		},
		[]string{"actor"},
	)

	RankingRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ranking_runs_total",
			Help: "Total number of monthly ranking recalculations",
		},
	)

	// Histograms.
	AgilityScoreComputed = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agility_score_computed",
			Help:    "Distribution of computed agility scores",
			Buckets: prometheus.LinearBuckets(0, 1, 11), // 0 to 10
		},
	)
)
