package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/waypost/backend/internal/auth"
	"github.com/waypost/backend/internal/models"
	"github.com/waypost/backend/internal/moderation"
	"github.com/waypost/backend/internal/repository"
)

type AuthHandler struct {
	userRepo   *repository.UserRepository
	jwtService *auth.JWTService
	modService *moderation.Service
}

func NewAuthHandler(userRepo *repository.UserRepository, jwtService *auth.JWTService, modService *moderation.Service) *AuthHandler {
	return &AuthHandler{userRepo: userRepo, jwtService: jwtService, modService: modService}
}

// Register creates a new account. The username passes the moderation gate
// before the row is written; after a successful write it is scanned again on
// the passive path (registration has no session yet, so this runs under the
// service identity).
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user := &models.User{
		ID:        uuid.New(),
		Email:     req.Email,
		Username:  req.Username,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := user.Validate(); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	usernameCandidate := models.ModerationCandidate{
		UserID:      user.ID,
		ContentType: models.ContentTypeUsername,
		Text:        req.Username,
	}
	if block := h.modService.Enforce(c.Request.Context(), usernameCandidate); block != nil {
		BlockedResponse(c, block)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to create user")
		return
	}
	user.PasswordHash = hash

	if err := h.userRepo.Create(user); err != nil {
		ErrorResponse(c, http.StatusConflict, "Email or username already taken")
		return
	}

	h.modService.LogCandidate(c.Request.Context(), usernameCandidate)

	token, err := h.jwtService.GenerateToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusCreated, models.LoginResponse{Token: token, User: *user})
}

// Login authenticates a user and returns a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userRepo.GetByEmail(req.Email)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if user.IsBanned {
		ErrorResponse(c, http.StatusForbidden, "Account is banned")
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{Token: token, User: *user})
}

// GetMe returns the authenticated user.
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, _ := c.Get("user_id")
	uid := userID.(uuid.UUID)

	user, err := h.userRepo.GetByID(uid)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile updates username, bio and avatar. Changed text fields pass
// the moderation gate in field order (username, then bio); the first block
// aborts the whole update.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	userID, _ := c.Get("user_id")
	uid := userID.(uuid.UUID)

	user, err := h.userRepo.GetByID(uid)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "User not found")
		return
	}

	var candidates []models.ModerationCandidate
	if req.Username != nil && *req.Username != user.Username {
		user.Username = *req.Username
		candidates = append(candidates, models.ModerationCandidate{
			UserID:      uid,
			ContentType: models.ContentTypeUsername,
			Text:        *req.Username,
		})
	}
	if req.Bio != nil {
		user.Bio = req.Bio
		candidates = append(candidates, models.ModerationCandidate{
			UserID:      uid,
			ContentType: models.ContentTypeProfileBio,
			Text:        *req.Bio,
		})
	}
	if req.AvatarURL != nil {
		user.AvatarURL = req.AvatarURL
	}

	if err := user.Validate(); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if block := h.modService.Enforce(c.Request.Context(), candidates...); block != nil {
		BlockedResponse(c, block)
		return
	}

	if err := h.userRepo.UpdateProfile(user); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	for _, cand := range candidates {
		h.modService.LogCandidate(c.Request.Context(), cand)
	}

	c.JSON(http.StatusOK, user)
}
