package matching

import (
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
)

var (
    matchingRunsTotal = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "matching_runs_total",
            Help: "Total number of matching runs by trigger and outcome",
        },
        []string{"trigger", "status"},
    )

    groupsFormedTotal = promauto.NewCounter(
        prometheus.CounterOpts{
            Name: "matching_groups_formed_total",
            Help: "Total number of match groups formed",
        },
    )

    unmatchedUsersTotal = promauto.NewCounter(
        prometheus.CounterOpts{
            Name: "matching_unmatched_users_total",
            Help: "Total number of users left unmatched across runs",
        },
    )

    groupScores = promauto.NewHistogram(
        prometheus.HistogramOpts{
            Name:    "matching_group_scores",
            Help:    "Distribution of per-group average compatibility scores",
            Buckets: prometheus.LinearBuckets(0, 0.1, 11),
        },
    )

    runDuration = promauto.NewHistogram(
        prometheus.HistogramOpts{
            Name:    "matching_run_duration_seconds",
            Help:    "Wall-clock duration of matching runs",
            Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
        },
    )
)

func RecordRun(trigger, status string) {
    matchingRunsTotal.WithLabelValues(trigger, status).Inc()
}

func RecordRunOutcome(results *MatchingResults) {
    groupsFormedTotal.Add(float64(results.Stats.GroupsFormed))
    unmatchedUsersTotal.Add(float64(results.Stats.UsersUnmatched))
    for _, group := range results.Groups {
        groupScores.Observe(group.AverageScore)
    }
    runDuration.Observe(results.Stats.Duration.Seconds())
}
