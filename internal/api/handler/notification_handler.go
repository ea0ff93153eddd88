package handler

import (
	"net/http"

	"github.com/cuongbtq/jobboard-be/internal/api/dto"
	"github.com/gin-gonic/gin"
)

// ListForUser handles GET /notifications/:id where id is the user id
func (h *NotificationHandler) ListForUser(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	list, err := h.notifications.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list notifications")
		return
	}

	resp := make([]dto.NotificationDTO, len(list))
	for i, n := range list {
		resp[i] = dto.ToNotificationDTO(n)
	}
	c.JSON(http.StatusOK, resp)
}

// Create handles POST /notifications
func (h *NotificationHandler) Create(c *gin.Context) {
	var req dto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "Invalid request body", err)
		return
	}

	n, err := h.notifications.Append(c.Request.Context(), req.UserID, req.Message)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create notification")
		return
	}

	c.JSON(http.StatusCreated, dto.ToNotificationDTO(*n))
}

// MarkRead handles PATCH /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	n, err := h.notifications.MarkRead(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to mark notification read")
		return
	}

	c.JSON(http.StatusOK, dto.ToNotificationDTO(*n))
}
