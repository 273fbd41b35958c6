package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"lead_scoring_backend/internal/scheduler"
	"lead_scoring_backend/internal/scoring/domain"
	"lead_scoring_backend/internal/scoring/service"
	"lead_scoring_backend/internal/scoring/transport"
	"lead_scoring_backend/platform/httpkit"
	"lead_scoring_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidReason    = "invalid recalculation reason"
	statusQueued        = "queued"
)

// ScoringService is the part of the scoring service exposed over HTTP.
type ScoringService interface {
	CalculateScore(ctx context.Context, leadID uuid.UUID, opts service.CalculateOptions) (*transport.LeadScoreResponse, error)
	GetScore(ctx context.Context, leadID uuid.UUID) (*transport.LeadScoreResponse, error)
	AdjustScore(ctx context.Context, leadID uuid.UUID, delta int, notes, actor string) (*transport.LeadScoreResponse, error)
	ListHistory(ctx context.Context, leadID uuid.UUID) (*transport.HistoryResponse, error)
	GetAnalytics(ctx context.Context, q transport.AnalyticsQuery) (*transport.AnalyticsResponse, error)
	GetConfig(ctx context.Context) (*transport.ScoringConfigResponse, error)
	UpdateDimensionConfig(ctx context.Context, dimension string, req transport.UpdateDimensionConfigRequest, actor string) (*transport.DimensionConfigResponse, error)
	RecalculateAll(ctx context.Context, reason domain.ChangeReason) (*transport.RecalculateResponse, error)
}

// Handler handles HTTP requests for lead scoring
type Handler struct {
	svc    ScoringService
	val    *validator.Validator
	recalc scheduler.RecalculationScheduler
}

// New creates a new scoring handler
func New(svc ScoringService, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// SetRecalculationScheduler injects the job queue used for asynchronous batch runs.
// Without one, POST /admin/scoring/recalculate always runs in the request.
func (h *Handler) SetRecalculationScheduler(recalc scheduler.RecalculationScheduler) {
	h.recalc = recalc
}

// RegisterRoutes registers the lead score routes on the authenticated group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/leads/:id/score", h.Calculate)
	rg.GET("/leads/:id/score", h.GetScore)
	rg.POST("/leads/:id/score/adjustments", h.Adjust)
	rg.GET("/leads/:id/score/history", h.ListHistory)
	rg.GET("/scoring/analytics", h.GetAnalytics)
}

// RegisterAdminRoutes registers the configuration and batch routes on the admin group
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup, recalcLimit gin.HandlerFunc) {
	rg.GET("/scoring/config", h.GetConfig)
	rg.PUT("/scoring/config/:dimension", h.UpdateConfig)
	if recalcLimit != nil {
		rg.POST("/scoring/recalculate", recalcLimit, h.Recalculate)
	} else {
		rg.POST("/scoring/recalculate", h.Recalculate)
	}
}

// Calculate handles POST /api/v1/leads/:id/score
func (h *Handler) Calculate(c *gin.Context) {
	leadID, ok := parseLeadID(c)
	if !ok {
		return
	}

	// The body is optional.
	var req transport.CalculateScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.CalculateScore(c.Request.Context(), leadID, service.CalculateOptions{
		Reason:          domain.ReasonAutomaticCalculation,
		ResetAdjustment: req.ResetAdjustment,
		Actor:           identity.Actor(),
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// GetScore handles GET /api/v1/leads/:id/score
func (h *Handler) GetScore(c *gin.Context) {
	leadID, ok := parseLeadID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetScore(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Adjust handles POST /api/v1/leads/:id/score/adjustments
func (h *Handler) Adjust(c *gin.Context) {
	leadID, ok := parseLeadID(c)
	if !ok {
		return
	}

	var req transport.AdjustScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.AdjustScore(c.Request.Context(), leadID, *req.Delta, req.Notes, identity.Actor())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// ListHistory handles GET /api/v1/leads/:id/score/history
func (h *Handler) ListHistory(c *gin.Context) {
	leadID, ok := parseLeadID(c)
	if !ok {
		return
	}

	result, err := h.svc.ListHistory(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// GetAnalytics handles GET /api/v1/scoring/analytics?from=&to=&status=&assignedTo=
func (h *Handler) GetAnalytics(c *gin.Context) {
	var q transport.AnalyticsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	result, err := h.svc.GetAnalytics(c.Request.Context(), q)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// GetConfig handles GET /api/v1/admin/scoring/config
func (h *Handler) GetConfig(c *gin.Context) {
	result, err := h.svc.GetConfig(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// UpdateConfig handles PUT /api/v1/admin/scoring/config/:dimension
func (h *Handler) UpdateConfig(c *gin.Context) {
	var req transport.UpdateDimensionConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.UpdateDimensionConfig(c.Request.Context(), c.Param("dimension"), req, identity.Actor())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Recalculate handles POST /api/v1/admin/scoring/recalculate?reason=&sync=
// The batch is queued when a scheduler is configured, unless sync=true.
func (h *Handler) Recalculate(c *gin.Context) {
	reason := domain.ReasonAutomaticCalculation
	if raw := c.Query("reason"); raw != "" {
		reason = domain.ChangeReason(raw)
	}
	if !reason.IsRecalculation() {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidReason, gin.H{"reason": string(reason)})
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if h.recalc != nil && c.Query("sync") != "true" {
		err := h.recalc.EnqueueRecalculateAll(c.Request.Context(), scheduler.RecalculateAllPayload{
			Reason:      string(reason),
			RequestedBy: identity.Actor(),
		})
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.Accepted(c, transport.RecalculateQueuedResponse{Status: statusQueued, Reason: string(reason)})
		return
	}

	result, err := h.svc.RecalculateAll(c.Request.Context(), reason)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func parseLeadID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.UUID{}, false
	}
	return id, true
}
