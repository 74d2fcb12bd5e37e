package matching

import (
    "context"
    "encoding/json"
    "errors"
    "log"
    "time"

    "github.com/go-redis/redis/v8"
)

var (
    ErrRunInProgress  = errors.New("a matching run is already in progress")
    ErrGroupNotFound  = errors.New("match group not found")
    ErrNoRunsRecorded = errors.New("no matching runs recorded yet")
)

const (
    runLockKey     = "matching:run:lock"
    runLockTTL     = 15 * time.Minute
    lastRunKey     = "matching:last_run"
    lastRunKeepFor = 30 * 24 * time.Hour
)

// Triggers recorded with each run.
const (
    TriggerAdmin     = "admin"
    TriggerScheduled = "scheduled"
)

// GroupNotifier tells the members of a freshly persisted group that their
// circle is ready. Implemented by the notification package.
type GroupNotifier interface {
    NotifyGroupFormed(ctx context.Context, week string, group *MatchGroup) error
}

// RunArchiver stores the immutable run envelope for audit.
type RunArchiver interface {
    ArchiveRun(ctx context.Context, results *MatchingResults) error
}

type Service interface {
    // RunWeeklyMatching executes the engine and persists the outcome: group
    // rows, chat rooms, run log. Zero groups formed is a success, reported
    // distinctly from a failure.
    RunWeeklyMatching(ctx context.Context, trigger string) (*MatchingResults, error)

    // PreviewMatching runs the engine without persisting anything, for
    // inspecting candidate groupings.
    PreviewMatching(ctx context.Context) (*MatchingResults, error)

    GetGroupsByWeek(ctx context.Context, week string) ([]*GroupRecord, error)
    GetMyGroup(ctx context.Context, userID int64) (*GroupRecord, error)
    GetLatestRun(ctx context.Context) (*RunRecord, error)
}

type service struct {
    repo     Repository
    engine   Engine
    cfg      Config
    redis    *redis.Client
    notifier GroupNotifier
    archiver RunArchiver
    hub      *Hub
}

// NewService wires the engine to its collaborators. redis, notifier,
// archiver and hub are all optional; a nil collaborator simply skips that
// step.
func NewService(repo Repository, engine Engine, cfg Config, redisClient *redis.Client, notifier GroupNotifier, archiver RunArchiver, hub *Hub) Service {
    return &service{
        repo:     repo,
        engine:   engine,
        cfg:      cfg,
        redis:    redisClient,
        notifier: notifier,
        archiver: archiver,
        hub:      hub,
    }
}

func (s *service) RunWeeklyMatching(ctx context.Context, trigger string) (*MatchingResults, error) {
    // "At most one concurrent production run" is a caller-level invariant;
    // the lock enforces it at this boundary, not inside the engine.
    release, err := s.acquireRunLock(ctx)
    if err != nil {
        return nil, err
    }
    defer release()

    results, err := s.compute(ctx)
    if err != nil {
        RecordRun(trigger, "error")
        return nil, err
    }

    if err := s.repo.SaveRun(ctx, trigger, results); err != nil {
        RecordRun(trigger, "persist_error")
        return nil, err
    }

    RecordRun(trigger, "success")
    RecordRunOutcome(results)

    s.cacheLastRun(ctx, results)
    s.notifyGroups(ctx, results)
    s.archiveRun(ctx, results)

    if results.Stats.GroupsFormed == 0 {
        log.Printf("matching: run %s completed with 0 groups (pool=%d eligible=%d)",
            results.RunID, results.Stats.PoolSize, results.Stats.EligibleUsers)
    } else {
        log.Printf("matching: run %s formed %d groups, %d unmatched, avg score %.3f",
            results.RunID, results.Stats.GroupsFormed, results.Stats.UsersUnmatched, results.Stats.AverageScore)
    }

    return results, nil
}

func (s *service) PreviewMatching(ctx context.Context) (*MatchingResults, error) {
    return s.compute(ctx)
}

func (s *service) compute(ctx context.Context) (*MatchingResults, error) {
    profiles, err := s.repo.GetMatchingPool(ctx)
    if err != nil {
        return nil, err
    }

    var history *PairHistory
    if s.cfg.CooldownWeeks > 0 {
        since := time.Now().Add(-s.cfg.CooldownWindow())
        history, err = s.repo.GetPairHistory(ctx, since)
        if err != nil {
            return nil, err
        }
    }

    return s.engine.Run(ctx, profiles, history)
}

func (s *service) GetGroupsByWeek(ctx context.Context, week string) ([]*GroupRecord, error) {
    if week == "" {
        week = WeekOf(time.Now())
    }
    return s.repo.GetGroupsByWeek(ctx, week)
}

func (s *service) GetMyGroup(ctx context.Context, userID int64) (*GroupRecord, error) {
    return s.repo.GetActiveGroupForUser(ctx, userID)
}

func (s *service) GetLatestRun(ctx context.Context) (*RunRecord, error) {
    return s.repo.GetLatestRun(ctx)
}

// acquireRunLock takes the redis run guard. Without redis the guard degrades
// to nothing, which is safe: concurrent runs over an unchanged pool are
// deterministic duplicates, wasteful but harmless.
func (s *service) acquireRunLock(ctx context.Context) (func(), error) {
    if s.redis == nil {
        return func() {}, nil
    }

    ok, err := s.redis.SetNX(ctx, runLockKey, time.Now().Format(time.RFC3339), runLockTTL).Result()
    if err != nil {
        log.Printf("matching: run lock unavailable, continuing without it: %v", err)
        return func() {}, nil
    }
    if !ok {
        return nil, ErrRunInProgress
    }

    return func() {
        if err := s.redis.Del(context.Background(), runLockKey).Err(); err != nil {
            log.Printf("matching: failed to release run lock: %v", err)
        }
    }, nil
}

func (s *service) cacheLastRun(ctx context.Context, results *MatchingResults) {
    if s.redis == nil {
        return
    }

    payload, err := json.Marshal(results.Stats)
    if err != nil {
        return
    }
    if err := s.redis.Set(ctx, lastRunKey, payload, lastRunKeepFor).Err(); err != nil {
        log.Printf("matching: failed to cache run summary: %v", err)
    }
}

// notifyGroups is best-effort: a failed notification never fails the run,
// since the groups are already persisted and retriable downstream.
func (s *service) notifyGroups(ctx context.Context, results *MatchingResults) {
    for _, group := range results.Groups {
        if s.notifier != nil {
            if err := s.notifier.NotifyGroupFormed(ctx, results.Week, group); err != nil {
                log.Printf("matching: failed to notify group %s: %v", group.ID, err)
            }
        }
        if s.hub != nil {
            s.hub.NotifyGroupFormed(group)
        }
    }
}

func (s *service) archiveRun(ctx context.Context, results *MatchingResults) {
    if s.archiver == nil {
        return
    }
    if err := s.archiver.ArchiveRun(ctx, results); err != nil {
        log.Printf("matching: failed to archive run %s: %v", results.RunID, err)
    }
}
