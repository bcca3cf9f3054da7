package repos

import (
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/data/repos/papers"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/logger"
	"gorm.io/gorm"
)

type QuestionRepo = papers.QuestionRepo
type DailyPaperRepo = papers.DailyPaperRepo
type GenerationLogRepo = papers.GenerationLogRepo
type TopicWeightRepo = papers.TopicWeightRepo

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return papers.NewQuestionRepo(db, baseLog)
}
func NewDailyPaperRepo(db *gorm.DB, baseLog *logger.Logger) DailyPaperRepo {
	return papers.NewDailyPaperRepo(db, baseLog)
}
func NewGenerationLogRepo(db *gorm.DB, baseLog *logger.Logger) GenerationLogRepo {
	return papers.NewGenerationLogRepo(db, baseLog)
}
func NewTopicWeightRepo(db *gorm.DB, baseLog *logger.Logger) TopicWeightRepo {
	return papers.NewTopicWeightRepo(db, baseLog)
}
