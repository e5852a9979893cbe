package analytics

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Mondays at 00:05, matching the week boundary used by WeekStart.
const weeklySchedule = "5 0 * * 1"

// Aggregator runs the weekly statistics rollup on a schedule. It is
// isolated from request serving: a panicking or failing rollup is logged
// and the next run proceeds as scheduled.
type Aggregator struct {
	store  *Store
	logger *slog.Logger
	cron   *cron.Cron
}

// NewAggregator creates an aggregator for the given store.
func NewAggregator(store *Store, logger *slog.Logger) *Aggregator {
	return &Aggregator{store: store, logger: logger}
}

// Start schedules the weekly rollup and runs one rollup immediately so the
// current week always has a row.
func (a *Aggregator) Start() {
	a.cron = cron.New()

	if _, err := a.cron.AddFunc(weeklySchedule, a.run); err != nil {
		a.logger.Error("weekly rollup not scheduled", "error", err)
	}

	a.cron.Start()
	go a.run()
}

// Stop halts the schedule. Running jobs are not interrupted.
func (a *Aggregator) Stop() {
	if a.cron != nil {
		a.cron.Stop()
	}
}

func (a *Aggregator) run() {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("weekly rollup panicked", "panic", r)
		}
	}()
	if err := a.store.WeeklyRollup(time.Now()); err != nil {
		a.logger.Error("weekly rollup failed", "error", err)
		return
	}
	a.logger.Debug("weekly rollup complete", "week", WeekStart(time.Now()))
}
