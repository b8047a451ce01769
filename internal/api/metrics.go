package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Progression counters exposed on /metrics.

var taskCompletions = promauto.NewCounter(prometheus.CounterOpts{
	Name: "realmquest_task_completions_total",
	Help: "Number of tasks completed.",
})

var taskReversals = promauto.NewCounter(prometheus.CounterOpts{
	Name: "realmquest_task_reversals_total",
	Help: "Number of task completions reversed.",
})

var xpGranted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "realmquest_xp_granted_total",
	Help: "Total XP granted across all sources.",
})

var badgesEarned = promauto.NewCounter(prometheus.CounterOpts{
	Name: "realmquest_badges_earned_total",
	Help: "Number of badges earned.",
})

var levelUps = promauto.NewCounter(prometheus.CounterOpts{
	Name: "realmquest_level_ups_total",
	Help: "Number of level transitions.",
})

var questClaims = promauto.NewCounter(prometheus.CounterOpts{
	Name: "realmquest_quest_claims_total",
	Help: "Number of daily quest rewards claimed.",
})
