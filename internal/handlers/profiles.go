package handlers

import (
	"errors"
	"net/http"

	"github.com/curiohub/curiohub/internal/models"
	"github.com/curiohub/curiohub/internal/repository"
	"github.com/curiohub/curiohub/internal/util"
	"github.com/gin-gonic/gin"
)

// GetProfile returns a public profile
// GET /api/v1/profiles/:username
func (h *Handlers) GetProfile(c *gin.Context) {
	user, ok := h.profileUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetProfileSubmissions lists a user's submissions. Owners also see their
// rejected ones.
// GET /api/v1/profiles/:username/submissions
func (h *Handlers) GetProfileSubmissions(c *gin.Context) {
	user, ok := h.profileUser(c)
	if !ok {
		return
	}
	limit, offset := util.ParsePage(c)
	own := c.GetString(util.ContextUserID) == user.ID

	subs, err := h.submissions.ByUser(c.Request.Context(), user.ID, own, repository.Page{Limit: limit, Offset: offset})
	if err != nil {
		util.RespondInternalError(c, "failed to load submissions", err)
		return
	}
	if subs == nil {
		subs = []models.Submission{}
	}
	c.JSON(http.StatusOK, gin.H{"submissions": subs})
}

// GetProfileSaved lists a user's bookmarks, newest first
// GET /api/v1/profiles/:username/saved
func (h *Handlers) GetProfileSaved(c *gin.Context) {
	user, ok := h.profileUser(c)
	if !ok {
		return
	}
	limit, offset := util.ParsePage(c)

	bookmarks, err := h.submissions.SavedBy(c.Request.Context(), user.ID, repository.Page{Limit: limit, Offset: offset})
	if err != nil {
		util.RespondInternalError(c, "failed to load saved submissions", err)
		return
	}
	if bookmarks == nil {
		bookmarks = []models.Bookmark{}
	}
	c.JSON(http.StatusOK, gin.H{"bookmarks": bookmarks})
}

func (h *Handlers) profileUser(c *gin.Context) (*models.User, bool) {
	user, err := h.users.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if errors.Is(err, repository.ErrUserNotFound) {
		util.RespondNotFound(c, "user")
		return nil, false
	}
	if err != nil {
		util.RespondInternalError(c, "failed to load user", err)
		return nil, false
	}
	return user, true
}
