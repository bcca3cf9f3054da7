package app

import (
	"context"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/http"
	httpH "github.com/hamzzaahhhhh-spec/neet-ai-app/internal/http/handlers"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/logger"
)

type Handlers struct {
	Health     *httpH.HealthHandler
	Generation *httpH.GenerationHandler
	Admin      *httpH.AdminHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, rdb goredis.UniversalClient, s Services) Handlers {
	log.Info("Wiring handlers...")
	probes := map[string]httpH.HealthProbe{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
	}
	return Handlers{
		Health:     httpH.NewHealthHandler(probes),
		Generation: httpH.NewGenerationHandler(log, s.Generation),
		Admin:      httpH.NewAdminHandler(log, s.Papers, s.Admin, s.Generation),
	}
}

func wireRouter(log *logger.Logger, cfg Config, h Handlers) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:               log,
		CORSOrigins:       cfg.CORSOrigins,
		GenerationHandler: h.Generation,
		AdminHandler:      h.Admin,
		HealthHandler:     h.Health,
	})
}
