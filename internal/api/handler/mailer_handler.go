package handler

import (
	"errors"
	"net/http"

	"github.com/cuongbtq/jobboard-be/internal/api/dto"
	"github.com/cuongbtq/jobboard-be/internal/mailer"
	"github.com/gin-gonic/gin"
)

// SendApplication handles POST /mailer/send-application
func (h *MailerHandler) SendApplication(c *gin.Context) {
	var req dto.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "Invalid request body", err)
		return
	}

	if err := h.mailer.SendApplicationEmail(c.Request.Context(), req.To, req.JobTitle); err != nil {
		h.sendFailed(c, err, "Failed to send application email")
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Application email sent successfully"})
}

// SendShortlist handles POST /mailer/send-shortlist
func (h *MailerHandler) SendShortlist(c *gin.Context) {
	var req dto.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "Invalid request body", err)
		return
	}

	if err := h.mailer.SendShortlistEmail(c.Request.Context(), req.To, req.JobTitle); err != nil {
		h.sendFailed(c, err, "Failed to send shortlist email")
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Shortlist email sent successfully"})
}

func (h *MailerHandler) sendFailed(c *gin.Context, err error, fallback string) {
	if errors.Is(err, mailer.ErrInvalidMessage) {
		badRequest(c, h.logger, "Invalid email message", err)
		return
	}
	respondError(c, h.logger, err, fallback)
}
