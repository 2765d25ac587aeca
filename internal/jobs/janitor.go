package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"anilog/internal/review"
)

type TokenPurger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type LimiterSweeper interface {
	Cleanup(now time.Time) int
}

type ScoreSource interface {
	ScoresByAnime(ctx context.Context, animeIDs []int64) (map[int64][]review.Scored, error)
}

type RankingStore interface {
	Rebuild(ctx context.Context, aggs map[int64]review.Aggregate) error
}

// Intervals of the periodic jobs. A zero interval disables the job.
type Intervals struct {
	TokenPurge   time.Duration
	LimiterSweep time.Duration
	Ranking      time.Duration
}

func DefaultIntervals() Intervals {
	return Intervals{
		TokenPurge:   time.Hour,
		LimiterSweep: 5 * time.Minute,
		Ranking:      30 * time.Minute,
	}
}

// Janitor runs the housekeeping pollers of the API process.
type Janitor struct {
	tokens  TokenPurger
	limiter LimiterSweeper
	scores  ScoreSource
	ranking RankingStore
	every   Intervals
	logger  *slog.Logger
	now     func() time.Time
	wg      sync.WaitGroup
}

func NewJanitor(tokens TokenPurger, limiter LimiterSweeper, scores ScoreSource, ranking RankingStore, every Intervals, logger *slog.Logger) *Janitor {
	return &Janitor{
		tokens:  tokens,
		limiter: limiter,
		scores:  scores,
		ranking: ranking,
		every:   every,
		logger:  logger,
		now:     time.Now,
	}
}

// PurgeTokens deletes refresh tokens past their expiry.
func (j *Janitor) PurgeTokens(ctx context.Context) (int64, error) {
	n, err := j.tokens.DeleteExpired(ctx, j.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		j.logger.Info("purged expired refresh tokens", "count", n)
	}
	return n, nil
}

// SweepLimiters drops idle per-client limiters.
func (j *Janitor) SweepLimiters() int {
	n := j.limiter.Cleanup(j.now())
	if n > 0 {
		j.logger.Debug("swept idle rate limiters", "count", n)
	}
	return n
}

// RebuildRanking recomputes every anime aggregate and replaces the
// top-rated ranking.
func (j *Janitor) RebuildRanking(ctx context.Context) error {
	scores, err := j.scores.ScoresByAnime(ctx, nil)
	if err != nil {
		return err
	}
	aggs := make(map[int64]review.Aggregate, len(scores))
	for id, s := range scores {
		aggs[id] = review.Aggregated(s)
	}
	if err := j.ranking.Rebuild(ctx, aggs); err != nil {
		return err
	}
	j.logger.Info("rebuilt top-rated ranking", "anime", len(aggs))
	return nil
}

// StartPollers launches one goroutine per enabled job. They stop when ctx
// is cancelled; Wait blocks until they have.
func (j *Janitor) StartPollers(ctx context.Context) {
	if j.tokens != nil {
		j.poll(ctx, "token-purge", j.every.TokenPurge, func(ctx context.Context) error {
			_, err := j.PurgeTokens(ctx)
			return err
		})
	}
	if j.limiter != nil {
		j.poll(ctx, "limiter-sweep", j.every.LimiterSweep, func(context.Context) error {
			j.SweepLimiters()
			return nil
		})
	}
	if j.scores != nil && j.ranking != nil {
		j.poll(ctx, "ranking-rebuild", j.every.Ranking, j.RebuildRanking)
	}
}

func (j *Janitor) Wait() {
	j.wg.Wait()
}

func (j *Janitor) poll(ctx context.Context, name string, every time.Duration, run func(context.Context) error) {
	if every <= 0 {
		return
	}
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := run(ctx); err != nil && ctx.Err() == nil {
					j.logger.Warn("periodic job failed", "job", name, "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
