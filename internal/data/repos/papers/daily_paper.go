package papers

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/hamzzaahhhhh-spec/neet-ai-app/internal/domain"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/dbctx"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/logger"
)

type DailyPaperRepo interface {
	// Create fails with gorm.ErrDuplicatedKey when the date already has a
	// paper (requires TranslateError on the connection).
	Create(dbc dbctx.Context, paper *types.DailyPaper) error
	CreateLinks(dbc dbctx.Context, links []*types.DailyPaperQuestion) error
	ExistsByDate(dbc dbctx.Context, date string) (bool, error)
	GetByDate(dbc dbctx.Context, date string) (*types.DailyPaper, error)
	ListQuestions(dbc dbctx.Context, paperID uuid.UUID) ([]types.Question, error)
}

type dailyPaperRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDailyPaperRepo(db *gorm.DB, baseLog *logger.Logger) DailyPaperRepo {
	return &dailyPaperRepo{
		db:  db,
		log: baseLog.With("repo", "DailyPaperRepo"),
	}
}

func (r *dailyPaperRepo) Create(dbc dbctx.Context, paper *types.DailyPaper) error {
	if paper.ID == uuid.Nil {
		paper.ID = uuid.New()
	}
	return dbc.Conn(r.db).Create(paper).Error
}

func (r *dailyPaperRepo) CreateLinks(dbc dbctx.Context, links []*types.DailyPaperQuestion) error {
	if len(links) == 0 {
		return nil
	}
	return dbc.Conn(r.db).Create(&links).Error
}

func (r *dailyPaperRepo) ExistsByDate(dbc dbctx.Context, date string) (bool, error) {
	var count int64
	err := dbc.Conn(r.db).
		Model(&types.DailyPaper{}).
		Where("paper_date = ?", date).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *dailyPaperRepo) GetByDate(dbc dbctx.Context, date string) (*types.DailyPaper, error) {
	var paper types.DailyPaper
	err := dbc.Conn(r.db).
		Where("paper_date = ?", date).
		Limit(1).
		Find(&paper).Error
	if err != nil {
		return nil, err
	}
	if paper.ID == uuid.Nil {
		return nil, nil
	}
	return &paper, nil
}

func (r *dailyPaperRepo) ListQuestions(dbc dbctx.Context, paperID uuid.UUID) ([]types.Question, error) {
	var out []types.Question
	err := dbc.Conn(r.db).
		Table("daily_paper_question AS dpq").
		Select("q.*").
		Joins("JOIN question q ON q.id = dpq.question_id").
		Where("dpq.paper_id = ?", paperID).
		Order("dpq.question_order ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
