package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"dailybot/internal/model"
)

// UserSource lists the users whose analytics get materialized.
type UserSource interface {
	ListAll(ctx context.Context) ([]model.User, error)
}

// Sink receives materialized daily rows.
type Sink interface {
	Upsert(ctx context.Context, row *model.UserAnalytics) error
}

// Refresher periodically materializes recent daily rows into the
// user_analytics table. Re-running a refresh for a date is idempotent
// and yields the same result as a full replay.
type Refresher struct {
	cron  *cron.Cron
	agg   *Aggregator
	users UserSource
	sink  Sink
	log   *zap.Logger
}

func NewRefresher(agg *Aggregator, users UserSource, sink Sink, log *zap.Logger) *Refresher {
	return &Refresher{
		cron:  cron.New(cron.WithLocation(time.UTC)),
		agg:   agg,
		users: users,
		sink:  sink,
		log:   log,
	}
}

// Schedule registers the refresh job at the given interval and starts
// the cron loop.
func (r *Refresher) Schedule(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	spec := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	if _, err := r.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := r.RunOnce(ctx, time.Now()); err != nil {
			r.log.Warn("analytics refresh failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}
	r.cron.Start()
	return nil
}

// Stop waits for a running job to finish.
func (r *Refresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

// RunOnce materializes yesterday and today for every known user.
func (r *Refresher) RunOnce(ctx context.Context, now time.Time) error {
	users, err := r.users.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	from := now.UTC().AddDate(0, 0, -1)
	var failed int
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rows, err := r.agg.Aggregate(ctx, user.ID, from, now)
		if err != nil {
			r.log.Warn("aggregate user failed", zap.String("user_id", user.ID), zap.Error(err))
			failed++
			continue
		}
		for i := range rows {
			if err := r.sink.Upsert(ctx, &rows[i]); err != nil {
				r.log.Warn("upsert analytics failed",
					zap.String("user_id", user.ID),
					zap.Time("date", rows[i].Date),
					zap.Error(err))
				failed++
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("refresh finished with %d failures", failed)
	}
	return nil
}
