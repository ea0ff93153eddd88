package handler

import (
	"log/slog"
	"net/http"

	"github.com/cuongbtq/jobboard-be/internal/api/dto"
	"github.com/cuongbtq/jobboard-be/internal/api/model"
	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CreateJob handles POST /jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "Invalid request body", err)
		return
	}

	job := model.Job{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		JobType:     req.JobType,
	}

	if err := h.store.CreateJob(c.Request.Context(), &job); err != nil {
		respondError(c, h.logger, err, "Failed to create job")
		return
	}

	h.logger.Info("Job created",
		slog.Int64("job_id", job.ID),
		slog.String("title", job.Title),
	)
	c.JSON(http.StatusCreated, dto.ToJobDTO(job))
}

// GetJob handles GET /jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	job, err := h.store.GetJob(c.Request.Context(), id, model.Relations{})
	if err != nil {
		respondError(c, h.logger, err, "Failed to get job")
		return
	}

	c.JSON(http.StatusOK, dto.ToJobDTO(*job))
}

// ListJobs handles GET /jobs
// Filters by search, location, job_type and status, newest first with a cursor
func (h *JobHandler) ListJobs(c *gin.Context) {
	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, h.logger, "Invalid query parameters", err)
		return
	}

	if req.PageSize <= 0 {
		req.PageSize = defaultPageSize
	}

	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}

	cursor, err := DecodeJobCursor(req.Cursor)
	if err != nil {
		badRequest(c, h.logger, "Invalid cursor", err)
		return
	}

	filter := model.JobFilter{
		Search:   req.Search,
		Location: req.Location,
		JobType:  req.JobType,
		Status:   req.Status,
		PageSize: req.PageSize,
		Cursor:   cursor,
	}

	jobs, err := h.store.ListJobs(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list jobs")
		return
	}

	hasMore := len(jobs) > req.PageSize
	if hasMore {
		jobs = jobs[:req.PageSize]
	}

	resp := dto.ListJobsResponse{Jobs: make([]dto.JobDTO, len(jobs))}
	for i, job := range jobs {
		resp.Jobs[i] = dto.ToJobDTO(job)
	}

	if hasMore {
		last := jobs[len(jobs)-1]
		resp.NextCursor = EncodeJobCursor(&model.JobCursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateJob handles PATCH /jobs/:id
func (h *JobHandler) UpdateJob(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "Invalid request body", err)
		return
	}

	job, err := h.store.UpdateJob(c.Request.Context(), id, model.JobUpdate{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		JobType:     req.JobType,
	})
	if err != nil {
		respondError(c, h.logger, err, "Failed to update job")
		return
	}

	c.JSON(http.StatusOK, dto.ToJobDTO(*job))
}

// DeleteJob handles DELETE /jobs/:id
// Applications and shortlist entries go with the job
func (h *JobHandler) DeleteJob(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteJob(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "Failed to delete job")
		return
	}

	h.logger.Info("Job deleted", slog.Int64("job_id", id))
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Job deleted successfully"})
}

// ListAppliedUsers handles GET /jobs/:id/applied-users
func (h *JobHandler) ListAppliedUsers(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	users, err := h.queries.ListApplied(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list applied users")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTOs(users))
}

// ListShortlistedUsers handles GET /jobs/:id/shortlisted-users
func (h *JobHandler) ListShortlistedUsers(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	users, err := h.queries.ListShortlisted(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list shortlisted users")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTOs(users))
}
