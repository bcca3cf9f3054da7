package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/hamzzaahhhhh-spec/neet-ai-app/internal/http/handlers"
	httpMW "github.com/hamzzaahhhhh-spec/neet-ai-app/internal/http/middleware"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/logger"
)

const serviceName = "papergen"

type RouterConfig struct {
	Log         *logger.Logger
	CORSOrigins []string

	GenerationHandler *httpH.GenerationHandler
	AdminHandler      *httpH.AdminHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	admin := r.Group("/api/admin")
	{
		// Generation triggers
		if cfg.GenerationHandler != nil {
			admin.POST("/generate", cfg.GenerationHandler.Generate)
			admin.POST("/paper/regenerate", cfg.GenerationHandler.Regenerate)
		}

		// Papers, weights and run history
		if cfg.AdminHandler != nil {
			admin.GET("/paper/:date", cfg.AdminHandler.GetPaper)
			admin.GET("/topic-weights", cfg.AdminHandler.GetTopicWeights)
			admin.PUT("/topic-weights", cfg.AdminHandler.UpdateTopicWeights)
			admin.GET("/logs", cfg.AdminHandler.ListLogs)
			admin.GET("/duplicates", cfg.AdminHandler.DuplicateStats)
		}
	}

	return r
}
