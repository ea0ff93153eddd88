package dto

import (
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/model"
)

func ToJobDTO(job model.Job) JobDTO {
	return JobDTO{
		ID:          job.ID,
		Title:       job.Title,
		Description: job.Description,
		Location:    job.Location,
		JobType:     job.JobType,
		Status:      job.Status,
		CreatedAt:   job.CreatedAt.Format(time.RFC3339),
	}
}

func ToUserDTO(user model.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Age:       user.Age,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

func ToUserDTOs(users []model.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}

func ToNotificationDTO(n model.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		UserID:    n.UserID,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}
