package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clipsmith/clipsmith-backend/internal/http/response"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/ctxutil"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/dbctx"
	"github.com/clipsmith/clipsmith-backend/internal/services"
)

type MediaHandler struct {
	jobs services.JobService
}

func NewMediaHandler(jobs services.JobService) *MediaHandler {
	return &MediaHandler{jobs: jobs}
}

type detectLabelsBody struct {
	WorkspaceID  string `json:"workspace_id" binding:"required"`
	LanguageCode string `json:"language_code,omitempty"`
}

// POST /api/media/:id/labels/detect
func (h *MediaHandler) DetectLabels(c *gin.Context) {
	mediaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_media_id", err)
		return
	}
	var body detectLabelsBody
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

	payload := map[string]any{
		"workspace_id": workspaceID.String(),
		"media_id":     mediaID.String(),
	}
	if body.LanguageCode != "" {
		payload["language_code"] = body.LanguageCode
	}
	entityID := mediaID
	job, created, err := h.jobs.Enqueue(dbctx.Context{Ctx: c.Request.Context()}, userID, "label_detect", "media_asset", &entityID, payload)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "enqueue_failed", err)
		return
	}
	if !created {
		response.RespondOK(c, gin.H{"job": nil, "deduplicated": true})
		return
	}
	response.RespondAccepted(c, gin.H{"job": job})
}
