package handler

import (
	"log/slog"
	"net/http"

	"github.com/cuongbtq/jobboard-be/internal/api/dto"
	"github.com/cuongbtq/jobboard-be/internal/api/model"
	"github.com/cuongbtq/jobboard-be/internal/auth"
	"github.com/gin-gonic/gin"
)

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "Invalid request body", err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create user")
		return
	}

	user := model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Age:          req.Age,
	}

	if err := h.store.CreateUser(c.Request.Context(), &user); err != nil {
		respondError(c, h.logger, err, "Failed to create user")
		return
	}

	h.logger.Info("User created", slog.Int64("user_id", user.ID))
	c.JSON(http.StatusCreated, dto.ToUserDTO(user))
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to list users")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTOs(users))
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	user, err := h.store.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to get user")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateUser handles PATCH /users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "Invalid request body", err)
		return
	}

	upd := model.UserUpdate{
		Name:  req.Name,
		Email: req.Email,
		Age:   req.Age,
	}

	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			respondError(c, h.logger, err, "Failed to update user")
			return
		}
		upd.PasswordHash = &hash
	}

	user, err := h.store.UpdateUser(c.Request.Context(), id, upd)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update user")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// DeleteUser handles DELETE /users/:id
// Clears the user's applications, shortlist entries and notifications first
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "Failed to delete user")
		return
	}

	h.logger.Info("User deleted", slog.Int64("user_id", id))
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "User deleted successfully"})
}
