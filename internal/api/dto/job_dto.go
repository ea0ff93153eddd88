package dto

type CreateJobRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Location    string `json:"location" binding:"required"`
	JobType     string `json:"job_type" binding:"required"`
}

type UpdateJobRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1"`
	Description *string `json:"description" binding:"omitempty,min=1"`
	Location    *string `json:"location" binding:"omitempty,min=1"`
	JobType     *string `json:"job_type" binding:"omitempty,min=1"`
}

type ListJobsRequest struct {
	Search   string `form:"search"`
	Location string `form:"location"`
	JobType  string `form:"job_type"`
	Status   string `form:"status" binding:"omitempty,oneof=open closed"`
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

type ListJobsResponse struct {
	Jobs       []JobDTO `json:"jobs"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

type JobDTO struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	JobType     string `json:"job_type"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}
