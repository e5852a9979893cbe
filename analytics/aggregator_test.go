package analytics

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
)

func TestWeeklyScheduleParses(t *testing.T) {
	if _, err := cron.ParseStandard(weeklySchedule); err != nil {
		t.Fatalf("weekly schedule %q does not parse: %v", weeklySchedule, err)
	}
}

func TestAggregatorRunWritesCurrentWeek(t *testing.T) {
	s := setupTestStore(t)
	if err := s.RecordVisit("10.0.0.1", desktopUA); err != nil {
		t.Fatalf("RecordVisit failed: %v", err)
	}

	a := NewAggregator(s, slog.New(slog.NewTextHandler(io.Discard, nil)))
	a.run()

	stat, err := s.GetWeeklyStat(WeekStart(time.Now()))
	if err != nil {
		t.Fatalf("no weekly row after rollup: %v", err)
	}
	if stat.Views != 1 {
		t.Errorf("weekly views = %d, want 1", stat.Views)
	}
}
