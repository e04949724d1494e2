// Package jobs runs the periodic maintenance the incentive engines need:
// the punishment expiry sweep and the monthly ranking recalculation.
package jobs

import (
	"context"
	"log"
	"time"

	"cleanscore-api/sys/incentive"
)

const sweepInterval = time.Hour

// Runner drives the periodic engine work off a single ticker.
type Runner struct {
	logger      *log.Logger
	punishments *incentive.PunishmentEngine
	rankings    *incentive.RankingEngine

	// Month the last ranking run covered, to fire once per month change.
	lastRankedYear  int
	lastRankedMonth time.Month
}

func NewRunner(logger *log.Logger, punishments *incentive.PunishmentEngine, rankings *incentive.RankingEngine) *Runner {
	return &Runner{logger: logger, punishments: punishments, rankings: rankings}
}

// Run blocks until ctx is cancelled, sweeping expired punishments every
// hour and recalculating the ranking for the just-closed month on the
// first sweep after a month boundary. Errors are logged, never fatal.
func (r *Runner) Run(ctx context.Context) {
	now := time.Now().UTC()
	r.lastRankedYear, r.lastRankedMonth = now.Year(), now.Month()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	r.logger.Printf("Background jobs started (sweep every %s)", sweepInterval)
	for {
		select {
		case <-ctx.Done():
			r.logger.Printf("Background jobs stopped: %s", ctx.Err())
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	if _, err := r.punishments.SweepExpired(ctx); err != nil {
		r.logger.Printf("Punishment expiry sweep failed: %s", err)
	}

	now := time.Now().UTC()
	if now.Year() == r.lastRankedYear && now.Month() == r.lastRankedMonth {
		return
	}

	closed := now.AddDate(0, 0, -now.Day()) // last day of the previous month
	ranked, err := r.rankings.CalculateMonthly(ctx, closed.Year(), int(closed.Month()))
	if err != nil {
		r.logger.Printf("Monthly ranking for %d-%02d failed: %s", closed.Year(), closed.Month(), err)
		return
	}

	r.lastRankedYear, r.lastRankedMonth = now.Year(), now.Month()
	r.logger.Printf("Monthly ranking for %d-%02d ranked %d cleaners", closed.Year(), closed.Month(), ranked)
}
