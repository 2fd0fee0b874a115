package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createPostMetricsTable creates the post_metrics table. Metric columns are
// nullable: NULL means the signal was not found.
func createPostMetricsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "002_create_post_metrics",
		Migrate: func(tx *gorm.DB) error {
			err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS post_metrics (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					run_id UUID NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
					position INTEGER NOT NULL,
					title TEXT NOT NULL,
					link TEXT NOT NULL,
					description TEXT,
					pub_date VARCHAR(100),
					published_at TIMESTAMP,
					author VARCHAR(255),
					categories TEXT[],

					likes INTEGER,
					comments INTEGER,
					shares INTEGER,
					restacks INTEGER,

					word_count INTEGER NOT NULL DEFAULT 0,
					reading_time_minutes INTEGER NOT NULL DEFAULT 0,
					total_engagement INTEGER NOT NULL DEFAULT 0
				);
			`).Error
			if err != nil {
				return err
			}

			indexes := []string{
				"CREATE INDEX IF NOT EXISTS idx_post_metrics_run_position ON post_metrics(run_id, position);",
				"CREATE INDEX IF NOT EXISTS idx_post_metrics_published_at ON post_metrics(published_at);",
			}
			for _, idx := range indexes {
				if err := tx.Exec(idx).Error; err != nil {
					return err
				}
			}

			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS post_metrics;").Error
		},
	}
}
