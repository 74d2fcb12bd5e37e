package matching

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/jmoiron/sqlx"
)

type fakeRepo struct {
    pool         []*EligibleUser
    history      []PastGroupMembership
    historyCalls int
    saved        []*MatchingResults
    savedTrigger string
}

func (f *fakeRepo) GetMatchingPool(ctx context.Context) ([]*EligibleUser, error) {
    return f.pool, nil
}

func (f *fakeRepo) GetPairHistory(ctx context.Context, since time.Time) (*PairHistory, error) {
    f.historyCalls++
    return NewPairHistory(f.history), nil
}

func (f *fakeRepo) SaveRun(ctx context.Context, trigger string, results *MatchingResults) error {
    f.saved = append(f.saved, results)
    f.savedTrigger = trigger
    return nil
}

func (f *fakeRepo) GetGroupsByWeek(ctx context.Context, week string) ([]*GroupRecord, error) {
    return nil, nil
}

func (f *fakeRepo) GetActiveGroupForUser(ctx context.Context, userID int64) (*GroupRecord, error) {
    return nil, ErrGroupNotFound
}

func (f *fakeRepo) GetLatestRun(ctx context.Context) (*RunRecord, error) {
    return nil, ErrNoRunsRecorded
}

func (f *fakeRepo) GetDB() *sqlx.DB {
    return nil
}

type recordingNotifier struct {
    notified []string
    err      error
}

func (n *recordingNotifier) NotifyGroupFormed(ctx context.Context, week string, group *MatchGroup) error {
    n.notified = append(n.notified, group.ID)
    return n.err
}

type recordingArchiver struct {
    archived []*MatchingResults
}

func (a *recordingArchiver) ArchiveRun(ctx context.Context, results *MatchingResults) error {
    a.archived = append(a.archived, results)
    return nil
}

func TestRunWeeklyMatchingPersistsAndNotifies(t *testing.T) {
    repo := &fakeRepo{pool: identicalPool(6)}
    notifier := &recordingNotifier{}
    archiver := &recordingArchiver{}
    eng := newTestEngine(t, DefaultConfig())
    svc := NewService(repo, eng, DefaultConfig(), nil, notifier, archiver, nil)

    results, err := svc.RunWeeklyMatching(context.Background(), TriggerAdmin)
    if err != nil {
        t.Fatalf("RunWeeklyMatching returned error: %v", err)
    }
    if results.Stats.GroupsFormed != 2 {
        t.Fatalf("groups formed = %d, want 2", results.Stats.GroupsFormed)
    }

    if len(repo.saved) != 1 {
        t.Fatalf("run persisted %d times, want 1", len(repo.saved))
    }
    if repo.savedTrigger != TriggerAdmin {
        t.Errorf("persisted trigger = %q, want %q", repo.savedTrigger, TriggerAdmin)
    }
    if len(notifier.notified) != 2 {
        t.Errorf("notified %d groups, want 2", len(notifier.notified))
    }
    if len(archiver.archived) != 1 {
        t.Errorf("archived %d runs, want 1", len(archiver.archived))
    }
}

func TestRunWeeklyMatchingLoadsHistoryOnlyWhenCooldownActive(t *testing.T) {
    cfg := DefaultConfig()
    repo := &fakeRepo{pool: identicalPool(3)}
    eng := newTestEngine(t, cfg)
    svc := NewService(repo, eng, cfg, nil, nil, nil, nil)

    if _, err := svc.RunWeeklyMatching(context.Background(), TriggerScheduled); err != nil {
        t.Fatalf("RunWeeklyMatching returned error: %v", err)
    }
    if repo.historyCalls != 1 {
        t.Errorf("history loaded %d times, want 1", repo.historyCalls)
    }

    cfg.CooldownWeeks = 0
    repo2 := &fakeRepo{pool: identicalPool(3)}
    svc2 := NewService(repo2, newTestEngine(t, cfg), cfg, nil, nil, nil, nil)
    if _, err := svc2.RunWeeklyMatching(context.Background(), TriggerScheduled); err != nil {
        t.Fatalf("RunWeeklyMatching returned error: %v", err)
    }
    if repo2.historyCalls != 0 {
        t.Errorf("history should not be loaded with cooldown disabled, loaded %d times", repo2.historyCalls)
    }
}

func TestRunWeeklyMatchingAppliesStoredHistory(t *testing.T) {
    met := time.Now().Add(-7 * 24 * time.Hour)
    repo := &fakeRepo{
        pool: identicalPool(3),
        history: []PastGroupMembership{
            {GroupID: "g1", UserID: 1, MatchedAt: met},
            {GroupID: "g1", UserID: 2, MatchedAt: met},
        },
    }
    eng := newTestEngine(t, DefaultConfig())
    svc := NewService(repo, eng, DefaultConfig(), nil, nil, nil, nil)

    results, err := svc.RunWeeklyMatching(context.Background(), TriggerAdmin)
    if err != nil {
        t.Fatalf("RunWeeklyMatching returned error: %v", err)
    }
    if results.Stats.GroupsFormed != 0 {
        t.Errorf("hard cooldown pair should prevent the only possible group, formed %d", results.Stats.GroupsFormed)
    }
}

func TestRunWeeklyMatchingNotifierFailureIsNotFatal(t *testing.T) {
    repo := &fakeRepo{pool: identicalPool(3)}
    notifier := &recordingNotifier{err: errors.New("provider down")}
    svc := NewService(repo, newTestEngine(t, DefaultConfig()), DefaultConfig(), nil, notifier, nil, nil)

    if _, err := svc.RunWeeklyMatching(context.Background(), TriggerAdmin); err != nil {
        t.Errorf("notification failure must not fail the run: %v", err)
    }
    if len(repo.saved) != 1 {
        t.Error("run must still be persisted")
    }
}

func TestPreviewMatchingDoesNotPersist(t *testing.T) {
    repo := &fakeRepo{pool: identicalPool(6)}
    notifier := &recordingNotifier{}
    svc := NewService(repo, newTestEngine(t, DefaultConfig()), DefaultConfig(), nil, notifier, nil, nil)

    results, err := svc.PreviewMatching(context.Background())
    if err != nil {
        t.Fatalf("PreviewMatching returned error: %v", err)
    }
    if results.Stats.GroupsFormed != 2 {
        t.Errorf("preview formed %d groups, want 2", results.Stats.GroupsFormed)
    }
    if len(repo.saved) != 0 {
        t.Error("preview must not persist anything")
    }
    if len(notifier.notified) != 0 {
        t.Error("preview must not notify anyone")
    }
}

func TestRunWeeklyMatchingZeroGroupsIsSuccess(t *testing.T) {
    repo := &fakeRepo{pool: identicalPool(2)} // below min group size
    svc := NewService(repo, newTestEngine(t, DefaultConfig()), DefaultConfig(), nil, nil, nil, nil)

    results, err := svc.RunWeeklyMatching(context.Background(), TriggerScheduled)
    if err != nil {
        t.Fatalf("zero-group run must succeed: %v", err)
    }
    if results.Stats.GroupsFormed != 0 || results.Stats.UsersUnmatched != 2 {
        t.Errorf("stats = %+v, want 0 groups and 2 unmatched", results.Stats)
    }
    if len(repo.saved) != 1 {
        t.Error("zero-group run must still be logged")
    }
}
