package matching

import (
    "sort"
    "time"
)

// Partitioner splits a scored pool into disjoint groups plus an unmatched
// remainder. It is an interface so the greedy heuristic can be swapped for an
// exact small-N solver without touching any other component. Groups and
// unmatched users are returned as matrix indices.
type Partitioner interface {
    Partition(m *ScoreMatrix, history *PairHistory, now time.Time) (groups [][]int, unmatched []int)
}

// greedyPartitioner seeds groups from the best-scoring available pair,
// extends each seed greedily, then runs a bounded pairwise-swap refinement.
// Optimal partitioning is NP-hard; this heuristic trades optimality for
// predictable runtime and full determinism.
type greedyPartitioner struct {
    cfg Config
}

func NewGreedyPartitioner(cfg Config) Partitioner {
    return &greedyPartitioner{cfg: cfg}
}

type candidatePair struct {
    i, j  int
    score float64
}

func (p *greedyPartitioner) Partition(m *ScoreMatrix, history *PairHistory, now time.Time) ([][]int, []int) {
    n := m.Len()
    if n < p.cfg.MinGroupSize {
        unmatched := make([]int, n)
        for i := range unmatched {
            unmatched[i] = i
        }
        return nil, unmatched
    }

    // Candidate pairs sorted by descending score. Hard-excluded pairs and,
    // under hard cooldown, recently grouped pairs never seed or join a group.
    pairs := make([]candidatePair, 0, n*(n-1)/2)
    for i := 0; i < n; i++ {
        for j := i + 1; j < n; j++ {
            if p.blocked(m, history, now, i, j) {
                continue
            }
            pairs = append(pairs, candidatePair{i: i, j: j, score: p.effectiveScore(m, history, now, i, j)})
        }
    }
    // Ties broken by ascending indices (ascending user id) so repeated runs
    // over the same input produce the same partition.
    sort.Slice(pairs, func(a, b int) bool {
        if pairs[a].score != pairs[b].score {
            return pairs[a].score > pairs[b].score
        }
        if pairs[a].i != pairs[b].i {
            return pairs[a].i < pairs[b].i
        }
        return pairs[a].j < pairs[b].j
    })

    used := make([]bool, n)
    var groups [][]int

    for _, cp := range pairs {
        if used[cp.i] || used[cp.j] {
            continue
        }
        group := p.buildGroup(m, history, now, used, cp.i, cp.j)
        if group == nil {
            continue
        }
        for _, idx := range group {
            used[idx] = true
        }
        groups = append(groups, group)
    }

    if p.cfg.AllowOversizeGroups {
        p.placeRemainder(m, history, now, used, groups)
    }

    if p.cfg.MaxSwapPasses > 0 && len(groups) > 1 {
        p.refine(m, history, now, groups)
    }

    var unmatched []int
    for i := 0; i < n; i++ {
        if !used[i] {
            unmatched = append(unmatched, i)
        }
    }
    return groups, unmatched
}

// buildGroup extends a two-person seed toward the target size, always taking
// the free member with the best average score against the current group. A
// seed that cannot reach the minimum size is abandoned without consuming its
// members.
func (p *greedyPartitioner) buildGroup(m *ScoreMatrix, history *PairHistory, now time.Time, used []bool, i, j int) []int {
    group := []int{i, j}

    for len(group) < p.cfg.TargetGroupSize {
        best := -1
        bestScore := 0.0
        for k := 0; k < m.Len(); k++ {
            if used[k] || containsIndex(group, k) {
                continue
            }
            avg, ok := p.candidateFit(m, history, now, group, k)
            if !ok {
                continue
            }
            if best == -1 || avg > bestScore {
                best = k
                bestScore = avg
            }
        }
        if best == -1 {
            break
        }
        group = append(group, best)
    }

    if len(group) < p.cfg.MinGroupSize {
        return nil
    }
    return group
}

// placeRemainder folds leftover users into existing groups up to the maximum
// size, an overflow accommodation for pools not divisible by the target size.
func (p *greedyPartitioner) placeRemainder(m *ScoreMatrix, history *PairHistory, now time.Time, used []bool, groups [][]int) {
    for k := 0; k < m.Len(); k++ {
        if used[k] {
            continue
        }
        bestGroup := -1
        bestScore := 0.0
        for gi, group := range groups {
            if len(group) >= p.cfg.MaxGroupSize {
                continue
            }
            avg, ok := p.candidateFit(m, history, now, group, k)
            if !ok {
                continue
            }
            if bestGroup == -1 || avg > bestScore {
                bestGroup = gi
                bestScore = avg
            }
        }
        if bestGroup >= 0 {
            groups[bestGroup] = append(groups[bestGroup], k)
            used[k] = true
        }
    }
}

// candidateFit returns the average effective score between candidate k and
// every group member, or false if any pairing is blocked.
func (p *greedyPartitioner) candidateFit(m *ScoreMatrix, history *PairHistory, now time.Time, group []int, k int) (float64, bool) {
    total := 0.0
    for _, member := range group {
        if p.blocked(m, history, now, member, k) {
            return 0, false
        }
        total += p.effectiveScore(m, history, now, member, k)
    }
    return total / float64(len(group)), true
}

const improvementEpsilon = 1e-9

// refine runs the classic pairwise-swap local search: a single-member swap
// between two groups is applied only when it raises both groups' average
// score. Pass count is capped so termination never depends on convergence.
func (p *greedyPartitioner) refine(m *ScoreMatrix, history *PairHistory, now time.Time, groups [][]int) {
    for pass := 0; pass < p.cfg.MaxSwapPasses; pass++ {
        improved := false

        for gi := 0; gi < len(groups); gi++ {
            for gj := gi + 1; gj < len(groups); gj++ {
                if p.trySwap(m, history, now, groups, gi, gj) {
                    improved = true
                }
            }
        }

        if !improved {
            return
        }
    }
}

func (p *greedyPartitioner) trySwap(m *ScoreMatrix, history *PairHistory, now time.Time, groups [][]int, gi, gj int) bool {
    swapped := false

    for ai := 0; ai < len(groups[gi]); ai++ {
        for bi := 0; bi < len(groups[gj]); bi++ {
            a := groups[gi][ai]
            b := groups[gj][bi]

            if !p.swapFeasible(m, history, now, groups[gi], ai, b) ||
                !p.swapFeasible(m, history, now, groups[gj], bi, a) {
                continue
            }

            oldI := p.groupAverage(m, history, now, groups[gi])
            oldJ := p.groupAverage(m, history, now, groups[gj])
            newI := p.groupAverageWithSwap(m, history, now, groups[gi], ai, b)
            newJ := p.groupAverageWithSwap(m, history, now, groups[gj], bi, a)

            if newI > oldI+improvementEpsilon && newJ > oldJ+improvementEpsilon {
                groups[gi][ai], groups[gj][bi] = b, a
                swapped = true
            }
        }
    }
    return swapped
}

// swapFeasible checks that replacement member k is not blocked against any
// remaining member of the group once position skip is vacated.
func (p *greedyPartitioner) swapFeasible(m *ScoreMatrix, history *PairHistory, now time.Time, group []int, skip int, k int) bool {
    for idx, member := range group {
        if idx == skip {
            continue
        }
        if p.blocked(m, history, now, member, k) {
            return false
        }
    }
    return true
}

func (p *greedyPartitioner) groupAverage(m *ScoreMatrix, history *PairHistory, now time.Time, group []int) float64 {
    total := 0.0
    pairs := 0
    for x := 0; x < len(group); x++ {
        for y := x + 1; y < len(group); y++ {
            total += p.effectiveScore(m, history, now, group[x], group[y])
            pairs++
        }
    }
    if pairs == 0 {
        return 0
    }
    return total / float64(pairs)
}

func (p *greedyPartitioner) groupAverageWithSwap(m *ScoreMatrix, history *PairHistory, now time.Time, group []int, replaceAt int, k int) float64 {
    total := 0.0
    pairs := 0
    for x := 0; x < len(group); x++ {
        mx := group[x]
        if x == replaceAt {
            mx = k
        }
        for y := x + 1; y < len(group); y++ {
            my := group[y]
            if y == replaceAt {
                my = k
            }
            total += p.effectiveScore(m, history, now, mx, my)
            pairs++
        }
    }
    if pairs == 0 {
        return 0
    }
    return total / float64(pairs)
}

// blocked reports whether two pool members may never share a group this run.
func (p *greedyPartitioner) blocked(m *ScoreMatrix, history *PairHistory, now time.Time, i, j int) bool {
    if m.Excluded(i, j) {
        return true
    }
    if p.cfg.CooldownMode == CooldownModeHard && p.inCooldown(m, history, now, i, j) {
        return true
    }
    return false
}

// effectiveScore is the raw pair score, discounted under soft cooldown when
// the pair met recently.
func (p *greedyPartitioner) effectiveScore(m *ScoreMatrix, history *PairHistory, now time.Time, i, j int) float64 {
    score := m.Score(i, j)
    if p.cfg.CooldownMode == CooldownModeSoft && p.inCooldown(m, history, now, i, j) {
        score *= 1 - p.cfg.CooldownPenalty
    }
    return score
}

func (p *greedyPartitioner) inCooldown(m *ScoreMatrix, history *PairHistory, now time.Time, i, j int) bool {
    if p.cfg.CooldownWeeks <= 0 || history == nil {
        return false
    }
    return history.GroupedWithin(m.User(i).ID, m.User(j).ID, p.cfg.CooldownWindow(), now)
}

func containsIndex(group []int, k int) bool {
    for _, idx := range group {
        if idx == k {
            return true
        }
    }
    return false
}
