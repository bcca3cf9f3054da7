package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/http/response"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/apierr"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/logger"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/services"
)

const defaultLogLimit = 50

type AdminHandler struct {
	log    *logger.Logger
	papers services.PaperService
	admin  services.AdminService
	gen    services.GenerationService
}

func NewAdminHandler(log *logger.Logger, papers services.PaperService, admin services.AdminService, gen services.GenerationService) *AdminHandler {
	return &AdminHandler{
		log:    log.With("handler", "AdminHandler"),
		papers: papers,
		admin:  admin,
		gen:    gen,
	}
}

// GET /api/admin/paper/:date
func (h *AdminHandler) GetPaper(c *gin.Context) {
	date := c.Param("date")
	paper, err := h.papers.GetPaper(c.Request.Context(), date)
	switch {
	case err == nil:
		response.RespondOK(c, paper)
	case errors.Is(err, dailypaper.ErrInvalidInput):
		response.RespondError(c, http.StatusBadRequest, "invalid_date", err)
	case errors.Is(err, services.ErrPaperNotFound):
		response.RespondError(c, http.StatusNotFound, "paper_not_found", err)
	default:
		h.log.Error("GetPaper failed", "error", err, "date", date)
		response.RespondError(c, http.StatusInternalServerError, "load_paper_failed", err)
	}
}

// GET /api/admin/topic-weights
func (h *AdminHandler) GetTopicWeights(c *gin.Context) {
	weights, err := h.admin.TopicWeights(c.Request.Context())
	if err != nil {
		h.log.Error("GetTopicWeights failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "load_topic_weights_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"weights": weights})
}

type updateTopicWeightsRequest struct {
	Subject string             `json:"subject" binding:"required"`
	Weights map[string]float64 `json:"weights" binding:"required"`
}

// PUT /api/admin/topic-weights
func (h *AdminHandler) UpdateTopicWeights(c *gin.Context) {
	var req updateTopicWeightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidRequest, err)
		return
	}
	weights, err := h.admin.UpdateTopicWeights(c.Request.Context(), req.Subject, req.Weights)
	if err != nil {
		if errors.Is(err, dailypaper.ErrInvalidInput) {
			response.RespondError(c, http.StatusBadRequest, "invalid_topic_weights", err)
			return
		}
		h.log.Error("UpdateTopicWeights failed", "error", err, "subject", req.Subject)
		response.RespondError(c, http.StatusInternalServerError, "update_topic_weights_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"subject": req.Subject, "weights": weights})
}

// GET /api/admin/logs?limit=
func (h *AdminHandler) ListLogs(c *gin.Context) {
	limit := defaultLogLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
			return
		}
		limit = n
	}
	logs, err := h.admin.ListLogs(c.Request.Context(), limit)
	if err != nil {
		h.log.Error("ListLogs failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "list_logs_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"logs": logs})
}

// GET /api/admin/duplicates
func (h *AdminHandler) DuplicateStats(c *gin.Context) {
	stats, err := h.admin.DuplicateStats(c.Request.Context(), h.gen.Today())
	if err != nil {
		h.log.Error("DuplicateStats failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "duplicate_stats_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"stats": stats})
}
