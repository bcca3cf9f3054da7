package papers

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/hamzzaahhhhh-spec/neet-ai-app/internal/domain"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/dbctx"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/logger"
)

const MaxLogListLimit = 200

type GenerationLogRepo interface {
	Create(dbc dbctx.Context, entry *types.GenerationLog) error
	HasSuccess(dbc dbctx.Context, date string) (bool, error)
	// ListRecent returns the newest logs first. limit is clamped to [1, 200].
	ListRecent(dbc dbctx.Context, limit int) ([]*types.GenerationLog, error)
}

type generationLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGenerationLogRepo(db *gorm.DB, baseLog *logger.Logger) GenerationLogRepo {
	return &generationLogRepo{
		db:  db,
		log: baseLog.With("repo", "GenerationLogRepo"),
	}
}

func (r *generationLogRepo) Create(dbc dbctx.Context, entry *types.GenerationLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return dbc.Conn(r.db).Create(entry).Error
}

func (r *generationLogRepo) HasSuccess(dbc dbctx.Context, date string) (bool, error) {
	var count int64
	err := dbc.Conn(r.db).
		Model(&types.GenerationLog{}).
		Where("run_date = ? AND status = ?", date, types.GenerationStatusSuccess).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *generationLogRepo) ListRecent(dbc dbctx.Context, limit int) ([]*types.GenerationLog, error) {
	if limit <= 0 {
		limit = 1
	}
	if limit > MaxLogListLimit {
		limit = MaxLogListLimit
	}
	var out []*types.GenerationLog
	err := dbc.Conn(r.db).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
