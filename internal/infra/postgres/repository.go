package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"newsletter-analytics/internal/domain"
)

// DefaultHistoryLimit bounds History when no limit is given.
const DefaultHistoryLimit = 20

// Repository implements domain.AnalysisRepository using PostgreSQL.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Save stores the run and its posts in one transaction and sets
// analysis.ID to the generated run ID.
func (r *Repository) Save(ctx context.Context, analysis *domain.Analysis) error {
	run := RunFromDomain(analysis)
	posts := run.Posts
	run.Posts = nil

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Posts").Create(run).Error; err != nil {
			return fmt.Errorf("inserting analysis run: %w", err)
		}

		if len(posts) == 0 {
			return nil
		}
		for i := range posts {
			posts[i].RunID = run.ID
		}
		if err := tx.CreateInBatches(posts, 100).Error; err != nil {
			return fmt.Errorf("inserting post metrics: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("saving analysis of %s: %w", analysis.Publication.Key, err)
	}

	analysis.ID = run.ID

	return nil
}

// Latest returns the newest run for a publication key with its posts in
// feed order, or nil when none is stored.
func (r *Repository) Latest(ctx context.Context, publication string) (*domain.Analysis, error) {
	var run AnalysisRunModel
	err := r.db.WithContext(ctx).
		Preload("Posts", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("publication_key = ?", publication).
		Order("generated_at DESC").
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Not found
		}

		return nil, fmt.Errorf("getting latest analysis: %w", err)
	}

	return run.ToDomain(), nil
}

// History returns up to limit runs for a publication key, newest first.
// Posts are not loaded.
func (r *Repository) History(ctx context.Context, publication string, limit int) ([]*domain.Analysis, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	var runs []AnalysisRunModel
	err := r.db.WithContext(ctx).
		Where("publication_key = ?", publication).
		Order("generated_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("listing analysis history: %w", err)
	}

	out := make([]*domain.Analysis, len(runs))
	for i := range runs {
		out[i] = runs[i].ToDomain()
	}

	return out, nil
}
