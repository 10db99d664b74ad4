package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clipsmith/clipsmith-backend/internal/pkg/ctxutil"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
	"github.com/clipsmith/clipsmith-backend/internal/sse"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *sse.SSEHub
}

func NewRealtimeHandler(baseLog *logger.Logger, hub *sse.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		log: baseLog.With("handler", "RealtimeHandler"),
		hub: hub,
	}
}

// GET /api/sse/stream
//
// Every connection is subscribed to the user's own channel, which is where
// job lifecycle and recommendation events are published.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	userID := ctxutil.GetRequestUser(c.Request.Context())
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	h.log.Info("SSEStream open", "user_id", userID)

	client := h.hub.NewSSEClient(userID)
	h.hub.AddChannel(client, userID.String())

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
	h.log.Debug("SSEStream closed", "user_id", userID, "client_id", client.ID)
}
