package papers

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/hamzzaahhhhh-spec/neet-ai-app/internal/domain"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/dbctx"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/logger"
)

type TopicWeightRepo interface {
	List(dbc dbctx.Context) ([]*types.TopicWeight, error)
	Upsert(dbc dbctx.Context, row *types.TopicWeight) error
	// InsertMissing inserts rows whose subject has no row yet and reports how
	// many were written.
	InsertMissing(dbc dbctx.Context, rows []*types.TopicWeight) (int64, error)
}

type topicWeightRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicWeightRepo(db *gorm.DB, baseLog *logger.Logger) TopicWeightRepo {
	return &topicWeightRepo{
		db:  db,
		log: baseLog.With("repo", "TopicWeightRepo"),
	}
}

func (r *topicWeightRepo) List(dbc dbctx.Context) ([]*types.TopicWeight, error) {
	var out []*types.TopicWeight
	if err := dbc.Conn(r.db).Order("subject ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *topicWeightRepo) Upsert(dbc dbctx.Context, row *types.TopicWeight) error {
	return dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subject"}},
			DoUpdates: clause.AssignmentColumns([]string{"weights", "updated_at"}),
		}).
		Create(row).Error
}

func (r *topicWeightRepo) InsertMissing(dbc dbctx.Context, rows []*types.TopicWeight) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := dbc.Conn(r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows)
	return res.RowsAffected, res.Error
}
