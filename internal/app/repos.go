package app

import (
	"gorm.io/gorm"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/data/repos"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/logger"
)

type Repos struct {
	Question      repos.QuestionRepo
	DailyPaper    repos.DailyPaperRepo
	GenerationLog repos.GenerationLogRepo
	TopicWeight   repos.TopicWeightRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Question:      repos.NewQuestionRepo(db, log),
		DailyPaper:    repos.NewDailyPaperRepo(db, log),
		GenerationLog: repos.NewGenerationLogRepo(db, log),
		TopicWeight:   repos.NewTopicWeightRepo(db, log),
	}
}
