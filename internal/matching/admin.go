package matching

import (
    "context"
    "time"
)

// AdminService aggregates matching statistics for the operator dashboard.
type AdminService struct {
    repo Repository
}

type MatchingStats struct {
    TotalRuns          int64      `json:"total_runs"`
    TotalGroups        int64      `json:"total_groups"`
    ActiveGroups       int64      `json:"active_groups"`
    AverageGroupScore  float64    `json:"average_group_score"`
    AverageUnmatched   float64    `json:"average_unmatched_per_run"`
    UsersMatchedTotal  int64      `json:"users_matched_total"`
    LastRunAt          *time.Time `json:"last_run_at,omitempty"`
    LastRunWeek        string     `json:"last_run_week,omitempty"`
    LastRunGroupsCount int64      `json:"last_run_groups,omitempty"`
    LastUpdated        time.Time  `json:"last_updated"`
}

func NewAdminService(repo Repository) *AdminService {
    return &AdminService{repo: repo}
}

func (a *AdminService) GetMatchingStats(ctx context.Context) (*MatchingStats, error) {
    stats := &MatchingStats{
        LastUpdated: time.Now(),
    }

    runQuery := `
        SELECT
            COUNT(*) AS total,
            COALESCE(AVG(users_unmatched), 0) AS avg_unmatched,
            COALESCE(SUM(users_matched), 0) AS matched_total
        FROM matching_runs
    `
    err := a.repo.GetDB().QueryRowContext(ctx, runQuery).Scan(
        &stats.TotalRuns,
        &stats.AverageUnmatched,
        &stats.UsersMatchedTotal,
    )
    if err != nil {
        return nil, err
    }

    groupQuery := `
        SELECT
            COUNT(*) AS total,
            COUNT(CASE WHEN is_active = TRUE AND (expires_at IS NULL OR expires_at > NOW()) THEN 1 END) AS active,
            COALESCE(AVG(average_score), 0) AS avg_score
        FROM match_groups
    `
    err = a.repo.GetDB().QueryRowContext(ctx, groupQuery).Scan(
        &stats.TotalGroups,
        &stats.ActiveGroups,
        &stats.AverageGroupScore,
    )
    if err != nil {
        return nil, err
    }

    lastRunQuery := `
        SELECT created_at, week, groups_formed
        FROM matching_runs
        ORDER BY created_at DESC
        LIMIT 1
    `
    var lastRunAt time.Time
    err = a.repo.GetDB().QueryRowContext(ctx, lastRunQuery).Scan(
        &lastRunAt, &stats.LastRunWeek, &stats.LastRunGroupsCount,
    )
    if err == nil {
        stats.LastRunAt = &lastRunAt
    }

    return stats, nil
}
