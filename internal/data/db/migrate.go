package db

import (
	"fmt"

	types "github.com/hamzzaahhhhh-spec/neet-ai-app/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&types.Question{},
		&types.DailyPaper{},
		&types.DailyPaperQuestion{},
		&types.GenerationLog{},
		&types.TopicWeight{},
	); err != nil {
		return err
	}
	return EnsureGenerationIndexes(db)
}

// EnsureGenerationIndexes adds the indexes gorm tags cannot express. At most
// one success log per run date is enforced with a partial unique index.
func EnsureGenerationIndexes(db *gorm.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"idx_generation_log_success_per_date", `CREATE UNIQUE INDEX IF NOT EXISTS idx_generation_log_success_per_date ON generation_log(run_date) WHERE status = 'success';`},
		{"idx_question_date_hash", `CREATE INDEX IF NOT EXISTS idx_question_date_hash ON question(date_generated, hash_signature);`},
	}
	for _, s := range stmts {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}
