package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/catalog"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/logger"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/redisx"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/services"
)

type Services struct {
	Catalog    *catalog.Catalog
	Engine     *dailypaper.Engine
	Generation services.GenerationService
	Papers     services.PaperService
	Admin      services.AdminService
}

func wireServices(db *gorm.DB, rdb goredis.UniversalClient, log *logger.Logger, cfg Config, r Repos, c Clients) (Services, error) {
	log.Info("Wiring services...")

	cat, err := catalog.Load(log)
	if err != nil {
		return Services{}, fmt.Errorf("load catalog: %w", err)
	}
	bp, err := catalog.LoadBlueprint()
	if err != nil {
		return Services{}, fmt.Errorf("load blueprint: %w", err)
	}

	paperCache := redisx.NewPaperCache(rdb)
	store := dailypaper.NewGormStore(db, dailypaper.GormStoreRepos{
		Questions: r.Question,
		Papers:    r.DailyPaper,
		Logs:      r.GenerationLog,
		Weights:   r.TopicWeight,
	}, log)

	engineCfg := dailypaper.DefaultConfig(bp, cat)
	engineCfg.ParallelSubjects = cfg.ParallelSubjects
	engine, err := dailypaper.New(engineCfg, dailypaper.Deps{
		Store:  store,
		Locker: redisx.NewLocker(rdb),
		Hashes: redisx.NewHashCache(rdb),
		Papers: paperCache,
		Source: c.Source,
	}, log)
	if err != nil {
		return Services{}, fmt.Errorf("init generation engine: %w", err)
	}

	return Services{
		Catalog:    cat,
		Engine:     engine,
		Generation: services.NewGenerationService(engine, cfg.Location, nil, log),
		Papers:     services.NewPaperService(r.DailyPaper, paperCache, log),
		Admin:      services.NewAdminService(cat, r.TopicWeight, r.GenerationLog, r.Question, log),
	}, nil
}
