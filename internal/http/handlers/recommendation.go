package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clipsmith/clipsmith-backend/internal/http/response"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/ctxutil"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/dbctx"
	"github.com/clipsmith/clipsmith-backend/internal/services"
)

type RecommendationHandler struct {
	recs services.RecommendationService
}

func NewRecommendationHandler(recs services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recs: recs}
}

type generateBody struct {
	WorkspaceID string `json:"workspace_id" binding:"required"`
	services.GenerateRequest
}

// POST /api/media/:id/recommendations/generate
func (h *RecommendationHandler) GenerateForMedia(c *gin.Context) {
	mediaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_media_id", err)
		return
	}
	var body generateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	workspaceID, err := uuid.Parse(body.WorkspaceID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_workspace_id", err)
		return
	}
	userID := ctxutil.GetRequestUser(c.Request.Context())
	job, created, err := h.recs.GenerateForMedia(dbctx.Context{Ctx: c.Request.Context()}, userID, workspaceID, mediaID, body.GenerateRequest)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "generate_failed", err)
		return
	}
	if !created {
		response.RespondOK(c, gin.H{"job": nil, "deduplicated": true})
		return
	}
	response.RespondAccepted(c, gin.H{"job": job})
}

// POST /api/timelines/:id/recommendations/generate
func (h *RecommendationHandler) GenerateForTimeline(c *gin.Context) {
	timelineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_timeline_id", err)
		return
	}
	var body generateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	workspaceID, err := uuid.Parse(body.WorkspaceID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_workspace_id", err)
		return
	}
	userID := ctxutil.GetRequestUser(c.Request.Context())
	job, created, err := h.recs.GenerateForTimeline(dbctx.Context{Ctx: c.Request.Context()}, userID, workspaceID, timelineID, body.GenerateRequest)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "generate_failed", err)
		return
	}
	if !created {
		response.RespondOK(c, gin.H{"job": nil, "deduplicated": true})
		return
	}
	response.RespondAccepted(c, gin.H{"job": job})
}

// GET /api/recommendations/media?query_hash=...
func (h *RecommendationHandler) ListMedia(c *gin.Context) {
	queryHash := c.Query("query_hash")
	if queryHash == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_query_hash", fmt.Errorf("query_hash is required"))
		return
	}
	recs, err := h.recs.ListMedia(dbctx.Context{Ctx: c.Request.Context()}, queryHash)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"recommendations": recs})
}

// GET /api/recommendations/timeline?query_hash=...
func (h *RecommendationHandler) ListTimeline(c *gin.Context) {
	queryHash := c.Query("query_hash")
	if queryHash == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_query_hash", fmt.Errorf("query_hash is required"))
		return
	}
	recs, err := h.recs.ListTimeline(dbctx.Context{Ctx: c.Request.Context()}, queryHash)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"recommendations": recs})
}

// POST /api/recommendations/timeline/:id/accept
func (h *RecommendationHandler) Accept(c *gin.Context) {
	recID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_recommendation_id", err)
		return
	}
	rec, err := h.recs.Accept(dbctx.Context{Ctx: c.Request.Context()}, recID)
	if err != nil {
		response.RespondError(c, http.StatusConflict, "accept_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"recommendation": rec})
}

// POST /api/recommendations/timeline/:id/dismiss
func (h *RecommendationHandler) Dismiss(c *gin.Context) {
	recID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_recommendation_id", err)
		return
	}
	rec, err := h.recs.Dismiss(dbctx.Context{Ctx: c.Request.Context()}, recID)
	if err != nil {
		response.RespondError(c, http.StatusConflict, "dismiss_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"recommendation": rec})
}
