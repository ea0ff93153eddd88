package dto

type CreateNotificationRequest struct {
	UserID  int64  `json:"user_id" binding:"required,min=1"`
	Message string `json:"message" binding:"required,min=1"`
}

type NotificationDTO struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

type SendEmailRequest struct {
	To       string `json:"to" binding:"required,email"`
	JobTitle string `json:"job_title" binding:"required,min=1"`
}
