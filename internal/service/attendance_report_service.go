package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-lms-api/internal/models"
	appErrors "github.com/noah-isme/campus-lms-api/pkg/errors"
	"github.com/noah-isme/campus-lms-api/pkg/logger"
	"github.com/noah-isme/campus-lms-api/pkg/webhook"
)

type studentDirectory interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
}

type submitterLister interface {
	SubmitterIDs(ctx context.Context, kind models.SubmissionKind, from, to time.Time) ([]string, error)
}

// AttendanceReportConfig tunes the daily reporters.
type AttendanceReportConfig struct {
	UTCOffset       time.Duration
	AbsentNameLimit int
}

// AttendanceReportService computes who submitted today and posts the summary.
type AttendanceReportService struct {
	students    studentDirectory
	submissions submitterLister
	poster      webhookPoster
	metrics     *MetricsService
	cfg         AttendanceReportConfig
	location    *time.Location
	logger      *zap.Logger
	now         func() time.Time
}

// NewAttendanceReportService constructs the service. poster may be nil when
// only summaries are needed. cfg.UTCOffset is used as given, so a zero offset
// reports in UTC.
func NewAttendanceReportService(students studentDirectory, submissions submitterLister, poster webhookPoster, metrics *MetricsService, cfg AttendanceReportConfig, logger *zap.Logger) *AttendanceReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.AbsentNameLimit <= 0 {
		cfg.AbsentNameLimit = 1024
	}
	return &AttendanceReportService{
		students:    students,
		submissions: submissions,
		poster:      poster,
		metrics:     metrics,
		cfg:         cfg,
		location:    time.FixedZone(offsetName(cfg.UTCOffset), int(cfg.UTCOffset.Seconds())),
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock overrides the time source.
func (s *AttendanceReportService) WithClock(now func() time.Time) *AttendanceReportService {
	if now != nil {
		s.now = now
	}
	return s
}

// Location is the fixed zone reports are computed in.
func (s *AttendanceReportService) Location() *time.Location {
	return s.location
}

// DayRange returns the [start, end) bounds, in UTC, of the calendar day that
// contains instant in the report zone.
func (s *AttendanceReportService) DayRange(instant time.Time) (time.Time, time.Time) {
	return dayBounds(instant, s.location)
}

// Today summarises the current day.
func (s *AttendanceReportService) Today(ctx context.Context, kind models.SubmissionKind) (*models.AttendanceSummary, error) {
	return s.Summarize(ctx, kind, s.now())
}

// Summarize partitions active students into present and absent for the day
// containing instant. Absent names are sorted ascending.
func (s *AttendanceReportService) Summarize(ctx context.Context, kind models.SubmissionKind, instant time.Time) (*models.AttendanceSummary, error) {
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "kind must be goals or reflections")
	}
	start, end := s.DayRange(instant)

	role := models.RoleStudent
	active := true
	students, err := s.students.List(ctx, models.UserFilter{Role: &role, Active: &active})
	if err != nil {
		return nil, appErrors.StoreFailure(err, "list students")
	}
	ids, err := s.submissions.SubmitterIDs(ctx, kind, start, end)
	if err != nil {
		return nil, appErrors.StoreFailure(err, "list "+string(kind)+" submitters")
	}
	submitted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		submitted[id] = struct{}{}
	}

	summary := &models.AttendanceSummary{
		Kind:          kind,
		Day:           start.In(s.location),
		TotalStudents: len(students),
	}
	absent := make([]string, 0)
	summary.Entries = make([]models.AttendanceEntry, 0, len(students))
	for _, student := range students {
		_, present := submitted[student.ID]
		summary.Entries = append(summary.Entries, models.AttendanceEntry{
			StudentID: student.ID,
			Name:      student.FullName,
			Email:     student.Email,
			Present:   present,
		})
		if present {
			summary.PresentCount++
			continue
		}
		absent = append(absent, student.FullName)
	}
	sort.Strings(absent)
	sort.SliceStable(summary.Entries, func(i, j int) bool {
		return summary.Entries[i].Name < summary.Entries[j].Name
	})
	summary.AbsentCount = len(absent)
	summary.AbsentNames = absent
	return summary, nil
}

// Message renders summary as a webhook message.
func (s *AttendanceReportService) Message(summary *models.AttendanceSummary) webhook.Message {
	pct := summary.Percentage()
	title := "Daily Goals Attendance"
	noun := "goals"
	if summary.Kind == models.SubmissionReflections {
		title = "Daily Reflections Attendance"
		noun = "reflections"
	}

	embed := webhook.Embed{
		Title:       title,
		Description: fmt.Sprintf("Submission summary for %s", summary.Day.Format("Monday, 02 January 2006")),
		Color:       ColorFor(pct),
		Fields: []webhook.Field{
			{Name: "Total Students", Value: strconv.Itoa(summary.TotalStudents), Inline: true},
			{Name: "Present", Value: strconv.Itoa(summary.PresentCount), Inline: true},
			{Name: "Absent", Value: strconv.Itoa(summary.AbsentCount), Inline: true},
			{Name: "Attendance", Value: FormatPercentage(pct), Inline: true},
		},
		Footer:    &webhook.Footer{Text: "Campus LMS attendance reporter"},
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}

	if summary.Kind == models.SubmissionGoals {
		if summary.AbsentCount == 0 {
			embed.Fields = append(embed.Fields, webhook.Field{
				Name:  "Perfect Attendance",
				Value: fmt.Sprintf("Every student submitted their %s today.", noun),
			})
		} else {
			embed.Fields = append(embed.Fields, webhook.Field{
				Name:  "Absent Students",
				Value: TruncateNames(summary.AbsentNames, s.cfg.AbsentNameLimit),
			})
		}
	}
	return webhook.Message{Embeds: []webhook.Embed{embed}}
}

// FailureMessage describes a failed run.
func (s *AttendanceReportService) FailureMessage(kind models.SubmissionKind, err error) webhook.Message {
	return webhook.Message{Embeds: []webhook.Embed{{
		Title:       fmt.Sprintf("Daily %s report failed", kindLabel(kind)),
		Description: TruncateNames([]string{err.Error()}, s.cfg.AbsentNameLimit),
		Color:       webhook.ColorDarkRed,
		Footer:      &webhook.Footer{Text: "Campus LMS attendance reporter"},
		Timestamp:   s.now().UTC().Format(time.RFC3339),
	}}}
}

// Run computes today's summary and posts it. On failure it makes one
// best-effort failure post and returns the original error.
func (s *AttendanceReportService) Run(ctx context.Context, kind models.SubmissionKind) (*models.AttendanceSummary, error) {
	logr := logger.WithContext(ctx, s.logger)
	summary, err := s.Today(ctx, kind)
	if err == nil {
		err = s.post(ctx, s.Message(summary))
	}
	if err != nil {
		s.ReportFailure(ctx, kind, err)
		return summary, err
	}
	logr.Info("attendance report posted",
		zap.String("kind", string(kind)),
		zap.Int("total", summary.TotalStudents),
		zap.Int("present", summary.PresentCount),
		zap.Int("absent", summary.AbsentCount),
	)
	return summary, nil
}

// ReportFailure logs err and makes one best-effort failure post. It needs
// only the poster, so callers can use it before the stores are reachable.
func (s *AttendanceReportService) ReportFailure(ctx context.Context, kind models.SubmissionKind, err error) {
	logr := logger.WithContext(ctx, s.logger)
	logr.Error("attendance report failed", zap.String("kind", string(kind)), zap.Error(err))
	if postErr := s.post(ctx, s.FailureMessage(kind, err)); postErr != nil {
		logr.Warn("failure notification not delivered", zap.String("kind", string(kind)), zap.Error(postErr))
	}
}

func (s *AttendanceReportService) post(ctx context.Context, msg webhook.Message) error {
	if s.poster == nil {
		return appErrors.Clone(appErrors.ErrTransport, "webhook is not configured")
	}
	err := s.poster.Post(ctx, msg)
	s.metrics.RecordWebhookPost("attendance_reporter", err)
	return err
}

// ColorFor maps an attendance percentage to the report palette.
func ColorFor(pct float64) int {
	switch {
	case pct >= 100:
		return webhook.ColorGreen
	case pct >= 75:
		return webhook.ColorAmber
	default:
		return webhook.ColorRed
	}
}

// FormatPercentage renders one decimal place, e.g. "84.9%".
func FormatPercentage(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// TruncateNames joins names with ", " and cuts the result to limit runes,
// ending in "..." when cut.
func TruncateNames(names []string, limit int) string {
	joined := strings.Join(names, ", ")
	runes := []rune(joined)
	if limit <= 0 || len(runes) <= limit {
		return joined
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

func kindLabel(kind models.SubmissionKind) string {
	if kind == models.SubmissionReflections {
		return "Reflections"
	}
	return "Goals"
}

func offsetName(offset time.Duration) string {
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, int(offset.Hours()), int(offset.Minutes())%60)
}
