package matching

import (
    "time"

    "github.com/google/uuid"
)

// assembleResults converts a raw partition into the MatchingResults envelope.
// Pure transformation: group ids are synthesized here, the stored average is
// the arithmetic mean of all intra-group raw pairwise scores, and member
// order is preserved as discovered. Persistence is the caller's concern, so
// nothing in here can partially fail.
func assembleResults(m *ScoreMatrix, groups [][]int, unmatched []int, excluded []ExclusionReason, poolSize int, started time.Time, now time.Time) *MatchingResults {
    results := &MatchingResults{
        RunID:     uuid.NewString(),
        Week:      WeekOf(now),
        Groups:    make([]*MatchGroup, 0, len(groups)),
        Unmatched: make([]*EligibleUser, 0, len(unmatched)),
        Excluded:  excluded,
    }

    scoreTotal := 0.0
    matched := 0
    for _, group := range groups {
        members := make([]*EligibleUser, len(group))
        for i, idx := range group {
            members[i] = m.User(idx)
        }

        avg := rawGroupAverage(m, group)
        results.Groups = append(results.Groups, &MatchGroup{
            ID:           uuid.NewString(),
            Members:      members,
            AverageScore: avg,
        })
        scoreTotal += avg
        matched += len(group)
    }

    for _, idx := range unmatched {
        results.Unmatched = append(results.Unmatched, m.User(idx))
    }

    results.Stats = RunStats{
        PoolSize:       poolSize,
        EligibleUsers:  m.Len(),
        GroupsFormed:   len(results.Groups),
        UsersMatched:   matched,
        UsersUnmatched: len(results.Unmatched),
        Duration:       time.Since(started),
    }
    if len(results.Groups) > 0 {
        results.Stats.AverageScore = scoreTotal / float64(len(results.Groups))
    }

    return results
}

func rawGroupAverage(m *ScoreMatrix, group []int) float64 {
    total := 0.0
    pairs := 0
    for i := 0; i < len(group); i++ {
        for j := i + 1; j < len(group); j++ {
            total += m.Score(group[i], group[j])
            pairs++
        }
    }
    if pairs == 0 {
        return 0
    }
    return total / float64(pairs)
}
