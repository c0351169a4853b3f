package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/curiohub/curiohub/internal/auth"
	apierrors "github.com/curiohub/curiohub/internal/errors"
	"github.com/curiohub/curiohub/internal/logger"
	"github.com/curiohub/curiohub/internal/repository"
	"github.com/curiohub/curiohub/internal/storage"
	"github.com/curiohub/curiohub/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	maxDisplayName = 50
	maxBio         = 500
)

// Register creates an account
// POST /api/v1/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}
	req.DisplayName = util.SanitizeText(req.DisplayName)

	resp, err := h.auth.Register(c.Request.Context(), req)
	switch {
	case errors.Is(err, auth.ErrInvalidUsername):
		util.RespondValidationError(c, "username", err.Error())
		return
	case errors.Is(err, auth.ErrUsernameExists):
		util.RespondWithAPIError(c, apierrors.Duplicate("username"))
		return
	case errors.Is(err, auth.ErrUserExists):
		util.RespondWithAPIError(c, apierrors.Duplicate("account with this email"))
		return
	case err != nil:
		util.RespondInternalError(c, "failed to register", err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login exchanges email and password for a token
// POST /api/v1/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), req)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		util.RespondUnauthorized(c, "invalid email or password")
		return
	}
	if err != nil {
		util.RespondInternalError(c, "failed to log in", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me returns the signed-in user
// GET /api/v1/auth/me
func (h *Handlers) Me(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type updateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatar_url"`
}

// UpdateMe edits the signed-in user's profile
// PATCH /api/v1/auth/me
func (h *Handlers) UpdateMe(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	var update repository.ProfileUpdate
	if req.DisplayName != nil {
		name := util.SanitizeText(*req.DisplayName)
		if !util.ValidateLength(name, 1, maxDisplayName) {
			util.RespondValidationError(c, "display_name", "display name must be 1-50 characters")
			return
		}
		update.DisplayName = &name
	}
	if req.Bio != nil {
		bio := util.SanitizeText(*req.Bio)
		if !util.ValidateLength(bio, 0, maxBio) {
			util.RespondValidationError(c, "bio", "bio must be at most 500 characters")
			return
		}
		update.Bio = &bio
	}
	if req.AvatarURL != nil {
		avatar := strings.TrimSpace(*req.AvatarURL)
		if avatar != "" {
			if err := util.ValidateSubmissionURL(avatar); err != nil {
				util.RespondValidationError(c, "avatar_url", err.Error())
				return
			}
		}
		update.AvatarURL = &avatar
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), userID, update)
	if err != nil {
		util.RespondInternalError(c, "failed to update profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UploadAvatar stores a profile picture and points avatar_url at it
// POST /api/v1/auth/me/avatar (multipart field "avatar")
func (h *Handlers) UploadAvatar(c *gin.Context) {
	current, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	userID := current.ID
	if h.avatars == nil {
		util.RespondWithAPIError(c, apierrors.ServiceUnavailable("avatar storage"))
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, storage.MaxAvatarSize+1<<20)
	header, err := c.FormFile("avatar")
	if err != nil {
		util.RespondValidationError(c, "avatar", "avatar file is required")
		return
	}
	if header.Size > storage.MaxAvatarSize {
		util.RespondValidationError(c, "avatar", "avatar must be at most 5MB")
		return
	}
	file, err := header.Open()
	if err != nil {
		util.RespondBadRequest(c, "could not read avatar")
		return
	}
	defer file.Close()

	result, err := h.avatars.UploadAvatar(c.Request.Context(), file, header, userID)
	if errors.Is(err, storage.ErrUnsupportedImage) {
		util.RespondValidationError(c, "avatar", "avatar must be a JPEG, PNG, GIF or WebP image")
		return
	}
	if err != nil {
		util.RespondInternalError(c, "failed to upload avatar", err)
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), userID, repository.ProfileUpdate{AvatarURL: &result.URL})
	if err != nil {
		h.deleteAvatar(c, userID, result.Key)
		util.RespondInternalError(c, "failed to update profile", err)
		return
	}
	logger.Log.Info("Avatar uploaded", logger.WithUserID(userID), zap.String("key", result.Key))
	if old, ok := storage.AvatarKeyFromURL(current.AvatarURL, userID); ok && old != result.Key {
		h.deleteAvatar(c, userID, old)
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "avatar_url": result.URL})
}

// deleteAvatar removes an avatar object. Failures only leave an orphan in
// the bucket, so they are logged and not returned.
func (h *Handlers) deleteAvatar(c *gin.Context, userID, key string) {
	if err := h.avatars.DeleteFile(c.Request.Context(), key); err != nil {
		logger.Log.Warn("Failed to delete avatar object",
			logger.WithUserID(userID),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

type resetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RequestPasswordReset mails a reset link. The response is the same
// whether or not the email is registered.
// POST /api/v1/auth/reset-password
func (h *Handlers) RequestPasswordReset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	reset, err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		util.RespondInternalError(c, "failed to request password reset", err)
		return
	}
	if reset != nil && h.mailer != nil {
		if err := h.mailer.SendPasswordResetEmail(c.Request.Context(), reset.User.Email, reset.Token); err != nil {
			logger.Log.Error("Failed to send password reset email",
				logger.WithUserID(reset.UserID),
				zap.Error(err),
			)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "If that email is registered, a reset link is on its way"})
}

type confirmResetRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// ConfirmPasswordReset sets a new password using a reset token
// POST /api/v1/auth/reset-password/confirm
func (h *Handlers) ConfirmPasswordReset(c *gin.Context) {
	var req confirmResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	err := h.auth.ResetPassword(c.Request.Context(), req.Token, req.Password)
	if errors.Is(err, auth.ErrInvalidResetToken) {
		util.RespondValidationError(c, "token", err.Error())
		return
	}
	if err != nil {
		util.RespondInternalError(c, "failed to reset password", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
