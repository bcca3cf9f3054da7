package papers

import (
	"gorm.io/gorm"

	types "github.com/hamzzaahhhhh-spec/neet-ai-app/internal/domain"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/dbctx"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/logger"
)

type QuestionRepo interface {
	Create(dbc dbctx.Context, questions []*types.Question) error
	// ListGeneratedSince returns the duplicate-relevant columns of questions
	// generated on or after from, skipping exclude, oldest first.
	ListGeneratedSince(dbc dbctx.Context, from, exclude string) ([]*types.Question, error)
	DuplicateStats(dbc dbctx.Context, since string) ([]types.DuplicateStat, error)
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return &questionRepo{
		db:  db,
		log: baseLog.With("repo", "QuestionRepo"),
	}
}

func (r *questionRepo) Create(dbc dbctx.Context, questions []*types.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return dbc.Conn(r.db).Create(&questions).Error
}

func (r *questionRepo) ListGeneratedSince(dbc dbctx.Context, from, exclude string) ([]*types.Question, error) {
	var out []*types.Question
	err := dbc.Conn(r.db).
		Select("id", "subject", "topic", "concept_tag", "question_text", "hash_signature", "date_generated", "created_at").
		Where("date_generated >= ? AND date_generated <> ?", from, exclude).
		Order("date_generated ASC").
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *questionRepo) DuplicateStats(dbc dbctx.Context, since string) ([]types.DuplicateStat, error) {
	var out []types.DuplicateStat
	err := dbc.Conn(r.db).
		Table("daily_paper_question AS dpq").
		Select("dp.paper_date AS paper_date, COUNT(*) AS total_questions, COUNT(DISTINCT q.hash_signature) AS unique_hashes").
		Joins("JOIN daily_paper dp ON dp.id = dpq.paper_id").
		Joins("JOIN question q ON q.id = dpq.question_id").
		Where("dp.paper_date >= ?", since).
		Group("dp.paper_date").
		Order("dp.paper_date DESC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
