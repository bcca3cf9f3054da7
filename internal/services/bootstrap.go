package services

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/data/repos"
	types "github.com/hamzzaahhhhh-spec/neet-ai-app/internal/domain"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/catalog"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/dbctx"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/logger"
)

// SeedDefaultTopicWeights writes weight 1 for every catalogue topic of each
// subject that has no weight row yet. Existing rows are never touched.
func SeedDefaultTopicWeights(ctx context.Context, weights repos.TopicWeightRepo, cat *catalog.Catalog, log *logger.Logger) (int64, error) {
	if weights == nil || cat == nil {
		return 0, fmt.Errorf("topic weight bootstrap not configured")
	}
	rows := make([]*types.TopicWeight, 0, len(catalog.Subjects))
	for _, subject := range catalog.Subjects {
		m := map[string]float64{}
		for _, topic := range cat.Topics(subject) {
			m[topic] = 1
		}
		raw, err := json.Marshal(m)
		if err != nil {
			return 0, err
		}
		rows = append(rows, &types.TopicWeight{Subject: string(subject), Weights: datatypes.JSON(raw)})
	}
	n, err := weights.InsertMissing(dbctx.Context{Ctx: ctx}, rows)
	if err != nil {
		return 0, err
	}
	if n > 0 && log != nil {
		log.Info("Seeded default topic weights", "subjects", n)
	}
	return n, nil
}
