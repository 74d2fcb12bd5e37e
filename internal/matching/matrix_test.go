package matching

import (
    "testing"
)

func TestBuildScoreMatrixSortsByID(t *testing.T) {
    cfg := DefaultConfig()
    users := []*EligibleUser{
        poolUser(30, "cardiology", "Lagos", nil, nil),
        poolUser(10, "cardiology", "Lagos", nil, nil),
        poolUser(20, "cardiology", "Lagos", nil, nil),
    }

    m := buildMatrix(t, cfg, users)
    if m.Len() != 3 {
        t.Fatalf("Len() = %d, want 3", m.Len())
    }
    for i, want := range []int64{10, 20, 30} {
        if got := m.User(i).ID; got != want {
            t.Errorf("index %d holds user %d, want %d", i, got, want)
        }
    }
}

func TestBuildScoreMatrixParallelMatchesSequential(t *testing.T) {
    cfg := DefaultConfig()
    users := []*EligibleUser{
        poolUser(1, "cardiology", "Lagos", []string{"jazz"}, []string{"saturday-morning"}),
        poolUser(2, "pediatrics", "Abuja", []string{"jazz", "rock"}, []string{"sunday-evening"}),
        poolUser(3, "cardiology", "Abuja", []string{"chess"}, []string{"saturday-morning"}),
        poolUser(4, "surgery", "Lagos", []string{"rock"}, []string{"sunday-evening"}),
        poolUser(5, "pediatrics", "Lagos", []string{"tennis", "jazz"}, []string{"saturday-morning"}),
    }

    sequential, err := BuildScoreMatrix(users, NewScorer(cfg), 1)
    if err != nil {
        t.Fatalf("sequential build failed: %v", err)
    }
    parallel, err := BuildScoreMatrix(users, NewScorer(cfg), 4)
    if err != nil {
        t.Fatalf("parallel build failed: %v", err)
    }

    for i := 0; i < sequential.Len(); i++ {
        for j := 0; j < sequential.Len(); j++ {
            if i == j {
                continue
            }
            if !almostEqual(sequential.Score(i, j), parallel.Score(i, j)) {
                t.Errorf("cell (%d, %d) differs: %f vs %f", i, j, sequential.Score(i, j), parallel.Score(i, j))
            }
        }
    }
}

func TestScoreMatrixIsSymmetric(t *testing.T) {
    cfg := DefaultConfig()
    users := []*EligibleUser{
        poolUser(1, "cardiology", "Lagos", []string{"jazz"}, nil),
        poolUser(2, "pediatrics", "Abuja", []string{"rock"}, nil),
        poolUser(3, "cardiology", "Abuja", nil, []string{"saturday-morning"}),
    }

    m := buildMatrix(t, cfg, users)
    for i := 0; i < m.Len(); i++ {
        for j := i + 1; j < m.Len(); j++ {
            if m.Score(i, j) != m.Score(j, i) {
                t.Errorf("matrix not mirrored at (%d, %d)", i, j)
            }
        }
    }
}

func TestScoreMatrixScoreByID(t *testing.T) {
    cfg := DefaultConfig()
    users := []*EligibleUser{
        poolUser(7, "cardiology", "Lagos", nil, nil),
        poolUser(8, "cardiology", "Lagos", nil, nil),
    }

    m := buildMatrix(t, cfg, users)
    score, ok := m.ScoreByID(8, 7)
    if !ok {
        t.Fatal("known pair not found by id")
    }
    if !almostEqual(score, m.Score(0, 1)) {
        t.Errorf("ScoreByID = %f, want %f", score, m.Score(0, 1))
    }

    if _, ok := m.ScoreByID(7, 99); ok {
        t.Error("unknown id should not resolve")
    }
    if _, ok := m.ScoreByID(7, 7); ok {
        t.Error("diagonal lookup should not resolve")
    }
}
