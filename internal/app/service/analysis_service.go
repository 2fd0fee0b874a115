// Package service provides application use cases.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"newsletter-analytics/internal/domain"
	"newsletter-analytics/internal/extract"
	"newsletter-analytics/pkg/locker"
)

// Sources are the upstream ports an analysis reads from.
type Sources struct {
	Feed        domain.FeedFetcher
	Pages       domain.DocumentFetcher
	HomePages   domain.DocumentFetcher
	Subscribers domain.SubscriberLookup // optional
}

// AnalysisConfig holds the per-run pipeline settings.
type AnalysisConfig struct {
	Workers      int
	RequestDelay time.Duration
	DefaultLimit int
	MaxLimit     int
	TopN         int
	LockTTL      time.Duration
}

// AnalysisService runs the feed → pages → metrics → analytics pipeline for
// one publication at a time.
type AnalysisService struct {
	sources   Sources
	extractor *extract.Extractor
	builder   *extract.Builder
	repo      domain.AnalysisRepository
	locker    locker.DistributedLocker
	cfg       AnalysisConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewAnalysisService creates a new AnalysisService. repo and lock may be nil,
// which disables persistence and run exclusion respectively.
func NewAnalysisService(
	sources Sources,
	extractor *extract.Extractor,
	repo domain.AnalysisRepository,
	lock locker.DistributedLocker,
	cfg AnalysisConfig,
	logger *zap.Logger,
) *AnalysisService {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.TopN <= 0 {
		cfg.TopN = domain.DefaultTopN
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 15 * time.Minute
	}

	return &AnalysisService{
		sources:   sources,
		extractor: extractor,
		builder:   extract.NewBuilder(extractor, logger),
		repo:      repo,
		locker:    lock,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Analyze runs a fresh analysis of the publication identified by input.
// limit caps the number of feed items; zero applies the configured default.
//
// Returns domain.ErrInvalidPublication for unparsable input,
// domain.ErrAnalysisInProgress when another run for the same publication
// holds the lock, and domain.ErrNoPosts when the feed yields nothing.
func (s *AnalysisService) Analyze(ctx context.Context, input string, limit int) (*domain.Analysis, error) {
	ref, err := domain.ParsePublicationInput(input)
	if err != nil {
		return nil, err
	}

	if s.locker != nil {
		key := runLockKey(ref.Key)
		acquired, err := s.locker.Acquire(ctx, key, s.cfg.LockTTL)
		if err != nil {
			return nil, fmt.Errorf("locking analysis of %s: %w", ref.Name, err)
		}
		if !acquired {
			return nil, fmt.Errorf("%s: %w", ref.Name, domain.ErrAnalysisInProgress)
		}
		defer func() {
			if err := s.locker.Release(context.WithoutCancel(ctx), key); err != nil {
				s.logger.Warn("failed to release analysis lock", zap.String("key", key), zap.Error(err))
			}
		}()
	}

	start := s.now()
	s.logger.Info("starting analysis",
		zap.String("publication", ref.Name),
		zap.String("url", ref.BaseURL),
	)

	publication := s.publication(ctx, ref)

	posts, err := s.sources.Feed.FetchFeed(ctx, ref)
	if err != nil {
		s.logger.Warn("feed unavailable, treating as empty",
			zap.String("publication", ref.Name),
			zap.Error(err),
		)
		posts = nil
	}

	if n := s.limitFor(limit); n > 0 && len(posts) > n {
		posts = posts[:n]
	}
	if len(posts) == 0 {
		return nil, fmt.Errorf("%s: %w", ref.Name, domain.ErrNoPosts)
	}

	metrics := s.collect(ctx, posts)

	analytics, err := domain.Aggregate(metrics, s.cfg.TopN)
	if err != nil {
		return nil, fmt.Errorf("aggregating %s: %w", ref.Name, err)
	}

	generated := s.now()
	publication.LastUpdated = generated

	analysis := &domain.Analysis{
		Publication: publication,
		Analytics:   analytics,
		Posts:       metrics,
		GeneratedAt: generated,
	}

	if s.repo != nil {
		if err := s.repo.Save(ctx, analysis); err != nil {
			s.logger.Error("failed to store analysis",
				zap.String("publication", ref.Name),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("analysis completed",
		zap.String("publication", ref.Name),
		zap.Int("posts", analytics.TotalPostsAnalyzed),
		zap.Int("total_engagement", analytics.TotalEngagement),
		zap.Duration("duration", generated.Sub(start)),
	)

	return analysis, nil
}

// Latest returns the newest stored analysis, or nil when none exists or
// persistence is disabled.
func (s *AnalysisService) Latest(ctx context.Context, input string) (*domain.Analysis, error) {
	ref, err := domain.ParsePublicationInput(input)
	if err != nil {
		return nil, err
	}
	if s.repo == nil {
		return nil, nil
	}

	analysis, err := s.repo.Latest(ctx, ref.Key)
	if err != nil {
		return nil, fmt.Errorf("loading latest analysis of %s: %w", ref.Name, err)
	}

	return analysis, nil
}

// LatestOrAnalyze returns the newest stored analysis, running a fresh one
// when nothing is stored. The boolean reports whether the result is fresh.
func (s *AnalysisService) LatestOrAnalyze(ctx context.Context, input string, limit int) (*domain.Analysis, bool, error) {
	stored, err := s.Latest(ctx, input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPublication) {
			return nil, false, err
		}
		s.logger.Warn("stored analysis unavailable, running a fresh one", zap.Error(err))
	}
	if stored != nil {
		return stored, false, nil
	}

	fresh, err := s.Analyze(ctx, input, limit)

	return fresh, err == nil, err
}

// History lists previous runs for a publication, newest first, without posts.
func (s *AnalysisService) History(ctx context.Context, input string, limit int) ([]*domain.Analysis, error) {
	ref, err := domain.ParsePublicationInput(input)
	if err != nil {
		return nil, err
	}
	if s.repo == nil {
		return []*domain.Analysis{}, nil
	}

	return s.repo.History(ctx, ref.Key, limit)
}

// publication reads the home page and falls back to the directory search
// for the subscriber count. Failures leave fields empty or Unknown.
func (s *AnalysisService) publication(ctx context.Context, ref domain.PublicationRef) domain.Publication {
	pub := domain.Publication{
		Key:             ref.Key,
		Name:            ref.Name,
		URL:             ref.BaseURL,
		SubscriberCount: domain.Unknown,
	}

	if s.sources.HomePages != nil {
		page, err := s.sources.HomePages.FetchDocument(ctx, ref.BaseURL)
		if err != nil {
			s.logger.Warn("publication home page unavailable",
				zap.String("publication", ref.Name),
				zap.Error(err),
			)
		} else {
			info := s.extractor.PublicationInfo(page, ref)
			pub.Name = info.Name
			pub.Description = info.Description
			pub.SubscriberCount = info.Subscribers
		}
	}

	if pub.SubscriberCount.IsKnown() || s.sources.Subscribers == nil {
		return pub
	}

	count, err := s.sources.Subscribers.LookupSubscriberCount(ctx, ref)
	if err != nil {
		s.logger.Warn("subscriber lookup failed",
			zap.String("publication", ref.Name),
			zap.Error(err),
		)

		return pub
	}
	pub.SubscriberCount = count

	return pub
}

// collect measures every post on a bounded worker pool. Results land in
// feed order regardless of completion order.
func (s *AnalysisService) collect(ctx context.Context, posts []domain.Post) []domain.PostMetrics {
	results := make([]domain.PostMetrics, len(posts))

	var pace <-chan time.Time
	if s.cfg.RequestDelay > 0 {
		ticker := time.NewTicker(s.cfg.RequestDelay)
		defer ticker.Stop()
		pace = ticker.C
	}

	workers := min(s.cfg.Workers, len(posts))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.measure(ctx, posts[i], pace)
			}
		}()
	}

	for i := range posts {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	s.logger.Debug("posts measured",
		zap.Int("posts", len(results)),
		zap.Int("workers", workers),
	)

	return results
}

// measure fetches one post page and builds its metrics. Any failure
// degrades only this post.
func (s *AnalysisService) measure(ctx context.Context, post domain.Post, pace <-chan time.Time) domain.PostMetrics {
	if post.Link == "" {
		return domain.DegradedPostMetrics(post)
	}

	if pace != nil {
		select {
		case <-ctx.Done():
			return domain.DegradedPostMetrics(post)
		case <-pace:
		}
	} else if ctx.Err() != nil {
		return domain.DegradedPostMetrics(post)
	}

	page, err := s.sources.Pages.FetchDocument(ctx, post.Link)
	if err != nil {
		s.logger.Warn("post page unavailable",
			zap.String("link", post.Link),
			zap.Error(err),
		)

		return domain.DegradedPostMetrics(post)
	}

	return s.builder.Build(post, page)
}

func (s *AnalysisService) limitFor(requested int) int {
	n := requested
	if n <= 0 {
		n = s.cfg.DefaultLimit
	}
	if s.cfg.MaxLimit > 0 && (n <= 0 || n > s.cfg.MaxLimit) {
		n = s.cfg.MaxLimit
	}

	return n
}

func runLockKey(publication string) string {
	return "analysis:run:" + publication
}
