// Package reporter runs the daily attendance summaries, either once per
// process or on a fixed daily clock.
package reporter

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-lms-api/internal/models"
	"github.com/noah-isme/campus-lms-api/pkg/middleware/requestid"
)

type summaryRunner interface {
	Run(ctx context.Context, kind models.SubmissionKind) (*models.AttendanceSummary, error)
}

// Clock is a wall-clock time of day in the reporting zone.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock reads "HH:MM" on a 24 hour clock.
func ParseClock(raw string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return Clock{}, fmt.Errorf("invalid run time %q, expected HH:MM", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return Clock{}, fmt.Errorf("invalid hour in %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("invalid minute in %q", raw)
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

// NextRun returns the first instant strictly after now that reads c in loc.
func NextRun(now time.Time, c Clock, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), c.Hour, c.Minute, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Scheduler drives one reporter kind.
type Scheduler struct {
	runner summaryRunner
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
	after  func(time.Duration) <-chan time.Time
}

// NewScheduler builds a scheduler firing in loc.
func NewScheduler(runner summaryRunner, loc *time.Location, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{runner: runner, loc: loc, logger: logger, now: time.Now, after: time.After}
}

// RunOnce produces and posts one report.
func (s *Scheduler) RunOnce(ctx context.Context, kind models.SubmissionKind) error {
	return s.run(ctx, kind)
}

// run tags the attempt with an ID that the report service logs alongside
// its own entries.
func (s *Scheduler) run(ctx context.Context, kind models.SubmissionKind) error {
	id := requestid.New()
	s.logger.Debug("attendance report starting", zap.String("request_id", id), zap.String("kind", string(kind)))
	_, err := s.runner.Run(requestid.NewContext(ctx, id), kind)
	return err
}

// RunDaily reports at c every day until ctx is cancelled. A failed run is
// logged and the next day is still scheduled.
func (s *Scheduler) RunDaily(ctx context.Context, kind models.SubmissionKind, c Clock) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		next := NextRun(s.now(), c, s.loc)
		s.logger.Info("attendance report scheduled",
			zap.String("kind", string(kind)),
			zap.Time("at", next),
		)
		select {
		case <-ctx.Done():
			return nil
		case <-s.after(next.Sub(s.now())):
		}
		// failures are logged by run; tomorrow is still scheduled
		_ = s.run(ctx, kind)
	}
}
