package handler

import (
	"log/slog"

	"github.com/cuongbtq/jobboard-be/internal/api/notification"
	"github.com/cuongbtq/jobboard-be/internal/api/storage"
	"github.com/cuongbtq/jobboard-be/internal/api/workflow"
	"github.com/cuongbtq/jobboard-be/internal/auth"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger        *slog.Logger
	Store         storage.Repository
	Engine        *workflow.Engine
	Queries       *workflow.Queries
	Notifications *notification.Log
	Mailer        workflow.Mailer
	Issuer        *auth.Issuer
}

// JobHandler handles job CRUD and the job-side workflow reads
type JobHandler struct {
	logger  *slog.Logger
	store   storage.Repository
	queries *workflow.Queries
}

func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{
		logger:  deps.Logger,
		store:   deps.Store,
		queries: deps.Queries,
	}
}

// UserHandler handles user CRUD
type UserHandler struct {
	logger *slog.Logger
	store  storage.Repository
}

func NewUserHandler(deps *Dependencies) *UserHandler {
	return &UserHandler{
		logger: deps.Logger,
		store:  deps.Store,
	}
}

// WorkflowHandler handles apply, shortlist and close
type WorkflowHandler struct {
	logger *slog.Logger
	engine *workflow.Engine
}

func NewWorkflowHandler(deps *Dependencies) *WorkflowHandler {
	return &WorkflowHandler{
		logger: deps.Logger,
		engine: deps.Engine,
	}
}

// NotificationHandler handles the per-user notification log
type NotificationHandler struct {
	logger        *slog.Logger
	notifications *notification.Log
}

func NewNotificationHandler(deps *Dependencies) *NotificationHandler {
	return &NotificationHandler{
		logger:        deps.Logger,
		notifications: deps.Notifications,
	}
}

// AuthHandler handles registration and login
type AuthHandler struct {
	logger *slog.Logger
	store  storage.Repository
	issuer *auth.Issuer
}

func NewAuthHandler(deps *Dependencies) *AuthHandler {
	return &AuthHandler{
		logger: deps.Logger,
		store:  deps.Store,
		issuer: deps.Issuer,
	}
}

// MailerHandler exposes the email dispatcher directly
type MailerHandler struct {
	logger *slog.Logger
	mailer workflow.Mailer
}

func NewMailerHandler(deps *Dependencies) *MailerHandler {
	return &MailerHandler{
		logger: deps.Logger,
		mailer: deps.Mailer,
	}
}
