// Package scheduler runs the periodic roster refresh that picks up edits
// made against the hosted store by other dashboard sessions.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/attractify/onboarding/internal/infrastructure/config"
	"github.com/attractify/onboarding/internal/infrastructure/telemetry"
)

// JobStatus represents the outcome of the last refresh
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// DefaultRefreshCron is used when no schedule is configured
const DefaultRefreshCron = "@every 5m"

// Refresher reloads state from the backing store
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Status is a snapshot of the scheduler for the health endpoint
type Status struct {
	Spec      string     `json:"spec"`
	Running   bool       `json:"running"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	NextRun   *time.Time `json:"next_run,omitempty"`
	LastState JobStatus  `json:"last_status"`
	LastError string     `json:"last_error,omitempty"`
	Runs      int        `json:"runs"`
}

// RefreshScheduler triggers Refresher.Refresh on a cron schedule. Runs never
// overlap; a tick that fires while a refresh is in progress is skipped.
type RefreshScheduler struct {
	spec    string
	timeout time.Duration
	target  Refresher
	logger  *zap.Logger

	cron  *cron.Cron
	entry cron.EntryID

	mu        sync.Mutex
	running   bool
	runMu     sync.Mutex
	lastRun   *time.Time
	lastState JobStatus
	lastError string
	runs      int
}

// NewRefreshScheduler validates the cron spec and builds a stopped
// scheduler. Standard five-field expressions and descriptors such as
// "@every 5m" are accepted.
func NewRefreshScheduler(cfg config.SchedulerConfig, target Refresher, logger *zap.Logger) (*RefreshScheduler, error) {
	if target == nil {
		return nil, fmt.Errorf("%w: refresh target is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	spec := cfg.RefreshCron
	if spec == "" {
		spec = DefaultRefreshCron
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: refresh_cron %q: %v", ErrInvalidConfig, spec, err)
	}

	s := &RefreshScheduler{
		spec:      spec,
		timeout:   cfg.JobTimeout,
		target:    target,
		logger:    logger.Named("scheduler"),
		lastState: JobStatusPending,
	}
	cronLog := zapCronLogger{logger: s.logger}
	s.cron = cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	s.entry = s.cron.Schedule(schedule, cron.FuncJob(func() {
		_ = s.RunNow(context.Background())
	}))
	return s, nil
}

// Start begins firing the schedule
func (s *RefreshScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrSchedulerRunning
	}
	s.cron.Start()
	s.running = true
	s.logger.Info("Refresh scheduler started", zap.String("spec", s.spec))
	return nil
}

// Stop halts the schedule and waits for an in-flight refresh, or for ctx.
func (s *RefreshScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.running = false
	done := s.cron.Stop()
	s.mu.Unlock()

	select {
	case <-done.Done():
		s.logger.Info("Refresh scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow performs one refresh immediately. It is what the schedule calls.
func (s *RefreshScheduler) RunNow(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	ctx, span := telemetry.StartSpan(ctx, "roster.refresh")
	defer span.End()

	started := time.Now()
	s.record(JobStatusRunning, started, nil)

	err := s.target.Refresh(ctx)
	s.record(JobStatusSuccess, started, err)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Roster refresh failed", zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		return err
	}
	s.logger.Debug("Roster refreshed", zap.Duration("elapsed", time.Since(started)))
	return nil
}

func (s *RefreshScheduler) record(state JobStatus, started time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state == JobStatusRunning {
		s.lastState = state
		return
	}
	s.runs++
	s.lastRun = &started
	s.lastState = JobStatusSuccess
	s.lastError = ""
	if err != nil {
		s.lastState = JobStatusFailed
		s.lastError = err.Error()
	}
}

// Status returns the current scheduler state
func (s *RefreshScheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Spec:      s.spec,
		Running:   s.running,
		LastState: s.lastState,
		LastError: s.lastError,
		Runs:      s.runs,
	}
	if s.lastRun != nil {
		last := *s.lastRun
		st.LastRun = &last
	}
	if s.running {
		if next := s.cron.Entry(s.entry).Next; !next.IsZero() {
			st.NextRun = &next
		}
	}
	return st
}

// zapCronLogger adapts zap to cron.Logger
type zapCronLogger struct {
	logger *zap.Logger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
