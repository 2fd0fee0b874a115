package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createAnalysisRunsTable creates the analysis_runs table.
func createAnalysisRunsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "001_create_analysis_runs",
		Migrate: func(tx *gorm.DB) error {
			err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS analysis_runs (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					publication_key VARCHAR(100) NOT NULL,
					publication_name VARCHAR(500) NOT NULL,
					publication_url VARCHAR(500) NOT NULL,
					publication_description TEXT,
					subscriber_count INTEGER,

					-- Aggregates, unrounded
					total_posts_analyzed INTEGER NOT NULL,
					average_likes DOUBLE PRECISION NOT NULL,
					average_comments DOUBLE PRECISION NOT NULL,
					average_shares DOUBLE PRECISION NOT NULL,
					average_restacks DOUBLE PRECISION NOT NULL,
					average_word_count DOUBLE PRECISION NOT NULL,
					average_reading_time DOUBLE PRECISION NOT NULL,
					publishing_frequency DOUBLE PRECISION NOT NULL,
					total_engagement INTEGER NOT NULL,
					top_n INTEGER NOT NULL,

					generated_at TIMESTAMP NOT NULL,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
				);
			`).Error
			if err != nil {
				return err
			}

			return tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_runs_publication_generated
				ON analysis_runs(publication_key, generated_at DESC);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS analysis_runs;").Error
		},
	}
}
