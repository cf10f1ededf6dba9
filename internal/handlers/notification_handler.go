package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hireflow/internal/auth"
	"github.com/justsurfingit/hireflow/internal/services"
)

type NotificationHandler struct {
	Notifications *services.NotificationService
}

func NewNotificationHandler(n *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Notifications: n}
}

func audienceOf(actor auth.Actor) services.Audience {
	switch actor.Type {
	case auth.ActorAdmin:
		return services.AdminAudience()
	case auth.ActorEmployer:
		return services.EmployerAudience(actor.ID)
	default:
		return services.CandidateAudience(actor.ID)
	}
}

// Poll is the GET /notifications/poll endpoint.
func (h *NotificationHandler) Poll(c *gin.Context) {
	actor, _ := auth.FromContext(c)

	notes, err := h.Notifications.Unread(c.Request.Context(), audienceOf(actor))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notes})
}

// MarkRead is the POST /notifications/mark-read endpoint.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, _ := auth.FromContext(c)

	n, err := h.Notifications.MarkAllRead(c.Request.Context(), audienceOf(actor))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updated": n})
}
