package matching

import (
    "sort"
    "sync"
)

// ScoreMatrix is the fully-materialized symmetric pair-score table the
// partitioner consumes. Users are indexed in ascending id order so every
// downstream tie-break is stable. Cells on the diagonal are never read.
type ScoreMatrix struct {
    users  []*EligibleUser
    index  map[int64]int
    scores [][]float64
}

// BuildScoreMatrix scores every unordered pair of the pool. Scoring is
// embarrassingly parallel, so rows are split across cfg.ScoreWorkers
// goroutines; each worker owns disjoint rows, and the result is independent
// of scheduling order.
func BuildScoreMatrix(pool []*EligibleUser, scorer *Scorer, workers int) (*ScoreMatrix, error) {
    users := make([]*EligibleUser, len(pool))
    copy(users, pool)
    sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

    n := len(users)
    m := &ScoreMatrix{
        users:  users,
        index:  make(map[int64]int, n),
        scores: make([][]float64, n),
    }
    for i, u := range users {
        m.index[u.ID] = i
        m.scores[i] = make([]float64, n)
    }

    if n < 2 {
        return m, nil
    }
    if workers < 1 {
        workers = 1
    }
    if workers > n {
        workers = n
    }

    var wg sync.WaitGroup
    errs := make([]error, workers)

    for w := 0; w < workers; w++ {
        wg.Add(1)
        go func(worker int) {
            defer wg.Done()
            for i := worker; i < n; i += workers {
                for j := i + 1; j < n; j++ {
                    pair, err := scorer.Score(users[i], users[j])
                    if err != nil {
                        errs[worker] = err
                        return
                    }
                    m.scores[i][j] = pair.Score
                }
            }
        }(w)
    }
    wg.Wait()

    for _, err := range errs {
        if err != nil {
            return nil, err
        }
    }

    // Mirror the upper triangle so lookups never care about ordering.
    for i := 0; i < n; i++ {
        for j := i + 1; j < n; j++ {
            m.scores[j][i] = m.scores[i][j]
        }
    }

    return m, nil
}

// Len returns the pool size.
func (m *ScoreMatrix) Len() int {
    return len(m.users)
}

// User returns the user at matrix index i.
func (m *ScoreMatrix) User(i int) *EligibleUser {
    return m.users[i]
}

// Score returns the pairwise score for matrix indices i and j.
func (m *ScoreMatrix) Score(i, j int) float64 {
    return m.scores[i][j]
}

// Excluded reports whether the pair at indices i and j is hard-excluded.
func (m *ScoreMatrix) Excluded(i, j int) bool {
    return m.scores[i][j] == ExcludedPairScore
}

// ScoreByID returns the pairwise score for two user ids.
func (m *ScoreMatrix) ScoreByID(a, b int64) (float64, bool) {
    i, okA := m.index[a]
    j, okB := m.index[b]
    if !okA || !okB || i == j {
        return 0, false
    }
    return m.scores[i][j], true
}
