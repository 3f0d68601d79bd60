package reporter

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-lms-api/internal/models"
	"github.com/noah-isme/campus-lms-api/internal/repository"
	"github.com/noah-isme/campus-lms-api/internal/service"
	"github.com/noah-isme/campus-lms-api/pkg/config"
	"github.com/noah-isme/campus-lms-api/pkg/database"
	"github.com/noah-isme/campus-lms-api/pkg/logger"
	"github.com/noah-isme/campus-lms-api/pkg/webhook"
)

// Options are the command line switches shared by both reporters.
type Options struct {
	Daemon bool
	DryRun bool
}

// ParseFlags reads -once, -daemon and -dry-run. -once is the default and
// cannot be combined with -daemon.
func ParseFlags(name string, args []string, stderr io.Writer) (Options, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	once := fs.Bool("once", true, "post today's report and exit")
	daemon := fs.Bool("daemon", false, "stay running and post every day at the configured time")
	dryRun := fs.Bool("dry-run", false, "print the webhook payload instead of posting it")
	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}

	onceSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "once" {
			onceSet = true
		}
	})
	if *daemon && onceSet && *once {
		return Options{}, errors.New("-once and -daemon are mutually exclusive")
	}
	return Options{Daemon: *daemon, DryRun: *dryRun}, nil
}

// StdoutPoster writes webhook payloads as indented JSON.
type StdoutPoster struct {
	w io.Writer
}

// NewStdoutPoster builds a poster writing to w.
func NewStdoutPoster(w io.Writer) *StdoutPoster {
	return &StdoutPoster{w: w}
}

// Post encodes msg to the writer.
func (p *StdoutPoster) Post(ctx context.Context, msg webhook.Message) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(msg)
}

// Main runs a reporter process and returns its exit code.
func Main(name string, kind models.SubmissionKind, args []string, stdout, stderr io.Writer) int {
	opts, err := ParseFlags(name, args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "%s: failed to load config: %v\n", name, err)
		return 1
	}
	if err := cfg.RequireReporter(); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 1
	}

	base, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "%s: failed to init logger: %v\n", name, err)
		return 1
	}
	defer base.Sync() //nolint:errcheck
	logr := logger.Component(base, name)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var poster interface {
		Post(ctx context.Context, msg webhook.Message) error
	}
	if opts.DryRun {
		poster = NewStdoutPoster(stdout)
	} else {
		poster = webhook.New(cfg.Webhook.URL, cfg.Webhook.Timeout, webhook.WithUsername(cfg.Webhook.Username))
	}
	reportCfg := service.AttendanceReportConfig{UTCOffset: cfg.Reporter.UTCOffset, AbsentNameLimit: cfg.Reporter.AbsentNameLimit}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		service.NewAttendanceReportService(nil, nil, poster, nil, reportCfg, logr).
			ReportFailure(ctx, kind, fmt.Errorf("connect database: %w", err))
		return 1
	}
	defer db.Close()

	reports := service.NewAttendanceReportService(
		repository.NewUserRepository(db),
		repository.NewSubmissionRepository(db),
		poster,
		nil,
		reportCfg,
		logr,
	)
	scheduler := NewScheduler(reports, reports.Location(), logr)

	if !opts.Daemon {
		if err := scheduler.RunOnce(ctx, kind); err != nil {
			return 1
		}
		return 0
	}

	at := cfg.Reporter.GoalsAt
	if kind == models.SubmissionReflections {
		at = cfg.Reporter.ReflectionsAt
	}
	clock, err := ParseClock(at)
	if err != nil {
		logr.Error("invalid schedule", zap.Error(err))
		return 1
	}
	if err := scheduler.RunDaily(ctx, kind, clock); err != nil {
		logr.Error("scheduler stopped", zap.Error(err))
		return 1
	}
	return 0
}
