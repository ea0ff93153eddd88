package handler

import (
	"net/http"

	"github.com/cuongbtq/jobboard-be/internal/api/dto"
	"github.com/cuongbtq/jobboard-be/internal/api/workflow"
	"github.com/gin-gonic/gin"
)

const (
	msgApplied            = "Application submitted and email sent successfully"
	msgAppliedDegraded    = "Application submitted"
	msgShortlisted        = "User shortlisted and notified successfully"
	msgShortlistedDegrade = "User shortlisted"
	msgClosed             = "Job closed and notifications sent"
	msgClosedDegraded     = "Job closed"

	warnCloseFanout = "some applicants could not be notified"

	warnEmail        = "email could not be sent"
	warnNotification = "notification could not be recorded"
)

// Apply handles POST /users/:id/apply/:jobId
func (h *WorkflowHandler) Apply(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	jobID, ok := paramID(c, "jobId")
	if !ok {
		return
	}

	out, err := h.engine.Apply(c.Request.Context(), jobID, userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to apply for job")
		return
	}

	c.JSON(http.StatusCreated, transitionResponse(out, msgApplied, msgAppliedDegraded))
}

// Shortlist handles POST /jobs/:id/shortlist/:userId
func (h *WorkflowHandler) Shortlist(c *gin.Context) {
	jobID, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	out, err := h.engine.Shortlist(c.Request.Context(), jobID, userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to shortlist user")
		return
	}

	c.JSON(http.StatusCreated, transitionResponse(out, msgShortlisted, msgShortlistedDegrade))
}

// Close handles PATCH /jobs/:id/close
func (h *WorkflowHandler) Close(c *gin.Context) {
	jobID, ok := paramID(c, "id")
	if !ok {
		return
	}

	out, err := h.engine.Close(c.Request.Context(), jobID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to close job")
		return
	}

	c.JSON(http.StatusOK, closeResponse(out))
}

func closeResponse(out *workflow.CloseOutcome) dto.CloseResponse {
	resp := dto.CloseResponse{
		Message:  msgClosed,
		Notified: out.Notified,
		Failed:   out.Failed,
	}

	if len(out.Failed) > 0 {
		resp.Message = msgClosedDegraded
		resp.Warning = warnCloseFanout
	}
	return resp
}

func transitionResponse(out *workflow.Outcome, full, degraded string) dto.TransitionResponse {
	resp := dto.TransitionResponse{
		Message:              full,
		EmailSent:            out.EmailSent,
		NotificationRecorded: out.NotificationErr == nil,
	}

	if !out.Degraded() {
		return resp
	}

	resp.Message = degraded
	switch {
	case out.NotificationErr != nil && !out.EmailSent:
		resp.Warning = warnNotification + "; " + warnEmail
	case out.NotificationErr != nil:
		resp.Warning = warnNotification
	default:
		resp.Warning = warnEmail
	}
	return resp
}
