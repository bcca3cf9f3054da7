package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/http/response"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/planner"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/apierr"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/logger"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/services"
)

type GenerationHandler struct {
	log *logger.Logger
	gen services.GenerationService
}

func NewGenerationHandler(log *logger.Logger, gen services.GenerationService) *GenerationHandler {
	return &GenerationHandler{log: log.With("handler", "GenerationHandler"), gen: gen}
}

type generateRequest struct {
	Date            string                   `json:"date"`
	AdaptiveProfile *planner.AdaptiveProfile `json:"adaptiveProfile"`
	// Profile is the short alias; adaptiveProfile wins when both are sent.
	Profile *planner.AdaptiveProfile `json:"profile"`
}

func (r generateRequest) profile() *planner.AdaptiveProfile {
	if r.AdaptiveProfile != nil {
		return r.AdaptiveProfile
	}
	return r.Profile
}

// POST /api/admin/generate
func (h *GenerationHandler) Generate(c *gin.Context) {
	req, ok := bindGenerateRequest(c)
	if !ok {
		return
	}
	res, err := h.gen.Generate(c.Request.Context(), dailypaper.GenerateInput{
		Date:        req.Date,
		TriggeredBy: dailypaper.TriggerAdmin,
		Profile:     req.profile(),
	})
	h.respond(c, res, err)
}

// POST /api/admin/paper/regenerate
func (h *GenerationHandler) Regenerate(c *gin.Context) {
	req, ok := bindGenerateRequest(c)
	if !ok {
		return
	}
	res, err := h.gen.Regenerate(c.Request.Context(), req.Date, req.profile())
	h.respond(c, res, err)
}

// An empty body means "today, no profile".
func bindGenerateRequest(c *gin.Context) (generateRequest, bool) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidRequest, err)
		return req, false
	}
	return req, true
}

func (h *GenerationHandler) respond(c *gin.Context, res *dailypaper.Result, err error) {
	if err == nil {
		response.RespondOK(c, res)
		return
	}
	ae := generationError(err)
	var exhausted *dailypaper.SlotExhaustedError
	switch {
	case errors.As(err, &exhausted):
		h.log.Warn("Generation exhausted", "subject", exhausted.Subject, "slot", exhausted.Slot, "attempts", exhausted.Attempts)
	case ae.Status >= http.StatusInternalServerError:
		h.log.Error("Generation failed", "error", err)
	}
	response.RespondError(c, ae.Status, ae.Code, ae.Err)
}

// generationError maps engine errors onto API errors. Skips are not errors
// and never reach here.
func generationError(err error) *apierr.Error {
	var ae *apierr.Error
	switch {
	case errors.As(err, &ae):
		return ae
	case errors.Is(err, dailypaper.ErrInvalidInput):
		return apierr.New(http.StatusBadRequest, apierr.CodeInvalidInput, err)
	case errors.Is(err, dailypaper.ErrSlotExhausted):
		return apierr.New(http.StatusUnprocessableEntity, apierr.CodeGenerationExhausted, err)
	default:
		return apierr.New(http.StatusInternalServerError, apierr.CodeGenerationFailed, err)
	}
}
