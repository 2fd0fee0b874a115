// Package job provides background job schedulers.
package job

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"newsletter-analytics/internal/domain"
	"newsletter-analytics/pkg/locker"
)

// Analyzer runs a single publication analysis.
type Analyzer interface {
	Analyze(ctx context.Context, input string, limit int) (*domain.Analysis, error)
}

// RefreshScheduler periodically re-analyzes a fixed list of publications.
// A per-publication distributed lock ensures each publication is refreshed
// by at most one instance per interval.
type RefreshScheduler struct {
	analyzer     Analyzer
	reports      domain.ReportWriter
	publications []string
	interval     time.Duration
	timeout      time.Duration
	logger       *zap.Logger
	locker       locker.DistributedLocker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// RefreshConfig holds refresh scheduler configuration.
type RefreshConfig struct {
	Publications []string
	Interval     time.Duration
	Timeout      time.Duration
}

// RefreshResult is the outcome of one publication refresh.
type RefreshResult struct {
	Publication string
	Skipped     bool
	Posts       int
	Report      string
	Duration    time.Duration
	Error       error
}

// NewRefreshScheduler creates a new RefreshScheduler. reports may be nil,
// in which case no spreadsheet is written after each run.
func NewRefreshScheduler(
	analyzer Analyzer,
	reports domain.ReportWriter,
	cfg RefreshConfig,
	logger *zap.Logger,
	locker locker.DistributedLocker,
) *RefreshScheduler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = cfg.Interval
	}

	return &RefreshScheduler{
		analyzer:     analyzer,
		reports:      reports,
		publications: cfg.Publications,
		interval:     cfg.Interval,
		timeout:      cfg.Timeout,
		logger:       logger,
		locker:       locker,
	}
}

// Start begins the background refresh job.
func (s *RefreshScheduler) Start(runOnStartup bool) {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.logger.Info("starting refresh scheduler",
		zap.Duration("interval", s.interval),
		zap.Strings("publications", s.publications),
		zap.Bool("run_on_startup", runOnStartup),
	)

	s.wg.Add(1)
	go s.run(runOnStartup)
}

// Stop gracefully stops the scheduler and waits for the current pass.
func (s *RefreshScheduler) Stop() {
	s.logger.Info("stopping refresh scheduler")
	s.cancel()
	s.wg.Wait()
	s.logger.Info("refresh scheduler stopped")
}

func (s *RefreshScheduler) run(runOnStartup bool) {
	defer s.wg.Done()

	if runOnStartup {
		s.RefreshAll(s.ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.RefreshAll(s.ctx)
		}
	}
}

// RefreshAll refreshes every configured publication in turn. Publications
// are processed sequentially so upstream request pacing stays per-run.
func (s *RefreshScheduler) RefreshAll(ctx context.Context) []RefreshResult {
	results := make([]RefreshResult, 0, len(s.publications))

	for _, pub := range s.publications {
		if ctx.Err() != nil {
			break
		}
		results = append(results, s.refresh(ctx, pub))
	}

	refreshed, failed := 0, 0
	for _, r := range results {
		switch {
		case r.Error != nil:
			failed++
		case !r.Skipped:
			refreshed++
		}
	}

	s.logger.Info("refresh pass completed",
		zap.Int("refreshed", refreshed),
		zap.Int("failed", failed),
	)

	return results
}

// refresh runs one publication under its cooldown lock.
//
// Locking behavior:
//   - Lock TTL = interval (cooldown model)
//   - Success: lock held for the full interval
//   - Failure: lock released so another instance may retry
func (s *RefreshScheduler) refresh(ctx context.Context, publication string) RefreshResult {
	start := time.Now()
	result := RefreshResult{Publication: publication}
	lockKey := "analysis:schedule:" + publication

	acquired, err := s.locker.Acquire(ctx, lockKey, s.interval)
	if err != nil {
		s.logger.Error("failed to acquire refresh lock",
			zap.String("publication", publication),
			zap.Error(err),
		)
		result.Error = err

		return result
	}
	if !acquired {
		s.logger.Debug("publication refreshed recently or by another instance, skipping",
			zap.String("publication", publication),
		)
		result.Skipped = true

		return result
	}

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	analysis, err := s.analyzer.Analyze(runCtx, publication, 0)
	if err == nil && s.reports != nil {
		result.Report, err = s.reports.WriteReport(runCtx, analysis)
	}
	result.Duration = time.Since(start)

	if err != nil {
		if releaseErr := s.locker.Release(context.WithoutCancel(ctx), lockKey); releaseErr != nil {
			s.logger.Error("failed to release lock after refresh error", zap.Error(releaseErr))
		}

		if errors.Is(err, domain.ErrAnalysisInProgress) {
			s.logger.Debug("analysis already running, skipping",
				zap.String("publication", publication),
			)
			result.Skipped = true

			return result
		}

		result.Error = err
		s.logger.Warn("refresh failed, lock released for retry",
			zap.String("publication", publication),
			zap.Error(err),
		)

		return result
	}

	result.Posts = analysis.Analytics.TotalPostsAnalyzed
	s.logger.Info("publication refreshed, lock held for cooldown",
		zap.String("publication", publication),
		zap.Int("posts", result.Posts),
		zap.Duration("duration", result.Duration),
		zap.Duration("cooldown", s.interval),
	)

	return result
}
