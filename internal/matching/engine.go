package matching

import (
    "context"
    "log"
    "time"
)

// Engine is the weekly group-matching pipeline: eligibility filter, pairwise
// scoring, group formation, result assembly. It holds no state between runs
// and performs no I/O; collaborators feed it a profile snapshot and a pair
// history, and the caller persists whatever it returns. Given identical
// input, repeated runs produce identical partitions.
type Engine interface {
    Run(ctx context.Context, profiles []*EligibleUser, history *PairHistory) (*MatchingResults, error)
}

type engine struct {
    cfg         Config
    scorer      *Scorer
    partitioner Partitioner
    now         func() time.Time
}

// NewEngine validates the config and constructs the engine with the greedy
// partitioner. Configuration errors fail here, before any scoring work.
func NewEngine(cfg Config) (Engine, error) {
    return NewEngineWithPartitioner(cfg, NewGreedyPartitioner(cfg))
}

// NewEngineWithPartitioner allows swapping in an alternative group-formation
// strategy, e.g. an exact solver for small pools.
func NewEngineWithPartitioner(cfg Config, partitioner Partitioner) (Engine, error) {
    if err := cfg.Validate(); err != nil {
        return nil, err
    }
    return &engine{
        cfg:         cfg,
        scorer:      NewScorer(cfg),
        partitioner: partitioner,
        now:         time.Now,
    }, nil
}

func (e *engine) Run(ctx context.Context, profiles []*EligibleUser, history *PairHistory) (*MatchingResults, error) {
    started := time.Now()
    now := e.now()

    pool, excluded := FilterEligible(profiles)
    for _, ex := range excluded {
        log.Printf("matching: excluding user %d from pool: %s", ex.UserID, ex.Reason)
    }

    // Zero eligible users is a common, valid outcome. Short-circuit before
    // scoring, which is the expensive step.
    if len(pool) == 0 {
        empty := &ScoreMatrix{index: map[int64]int{}}
        return assembleResults(empty, nil, nil, excluded, len(profiles), started, now), nil
    }

    matrix, err := BuildScoreMatrix(pool, e.scorer, e.cfg.ScoreWorkers)
    if err != nil {
        return nil, err
    }

    groups, unmatched := e.partitioner.Partition(matrix, history, now)

    return assembleResults(matrix, groups, unmatched, excluded, len(profiles), started, now), nil
}
