package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cuongbtq/jobboard-be/internal/api/domain"
	"github.com/cuongbtq/jobboard-be/internal/api/dto"
	"github.com/cuongbtq/jobboard-be/internal/api/model"
	"github.com/cuongbtq/jobboard-be/internal/auth"
	"github.com/gin-gonic/gin"
)

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "Invalid request body", err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, h.logger, err, "Failed to register user")
		return
	}

	user := model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Age:          req.Age,
	}
	if err := h.store.CreateUser(c.Request.Context(), &user); err != nil {
		respondError(c, h.logger, err, "Failed to register user")
		return
	}

	h.logger.Info("User registered", slog.Int64("user_id", user.ID))
	c.JSON(http.StatusCreated, dto.MessageResponse{Message: "User registered successfully"})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "Invalid request body", err)
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = domain.ErrInvalidCredentials
		}
		respondError(c, h.logger, err, "Failed to log in")
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondError(c, h.logger, domain.ErrInvalidCredentials, "Failed to log in")
		return
	}

	token, err := h.issuer.Issue(user.ID, user.Email)
	if err != nil {
		respondError(c, h.logger, err, "Failed to log in")
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{AccessToken: token})
}
