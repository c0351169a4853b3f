package handlers

import (
	"errors"
	"net/http"

	apierrors "github.com/curiohub/curiohub/internal/errors"
	"github.com/curiohub/curiohub/internal/gateway"
	"github.com/curiohub/curiohub/internal/interaction"
	"github.com/curiohub/curiohub/internal/util"
	"github.com/gin-gonic/gin"
)

// The row endpoints expose the Gateway operations one-to-one so that a
// Controller running outside the server (gateway.Remote) sees the same
// behaviour as one running inside it (gateway.Store). Every write is
// checked against the caller's own user id.

type rowRequest struct {
	UserID       string `json:"user_id" binding:"required"`
	SubmissionID string `json:"submission_id" binding:"required,uuid"`
}

// CreateVote inserts a vote row
// POST /api/v1/votes
func (h *Handlers) CreateVote(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	var req rowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	row, err := gateway.NewStore(h.db, userID).InsertVote(c.Request.Context(), req.UserID, req.SubmissionID)
	if err != nil {
		respondRowError(c, "vote", err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

type upvotesRequest struct {
	Upvotes *int `json:"upvotes" binding:"required"`
}

// UpdateUpvotes overwrites a submission's upvote total
// PATCH /api/v1/submissions/:id/upvotes
func (h *Handlers) UpdateUpvotes(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	id, ok := submissionIDParam(c, "id")
	if !ok {
		return
	}
	var req upvotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}
	if *req.Upvotes < 0 {
		util.RespondValidationError(c, "upvotes", "upvotes must not be negative")
		return
	}

	if err := gateway.NewStore(h.db, userID).UpdateUpvoteCount(c.Request.Context(), id, *req.Upvotes); err != nil {
		respondRowError(c, "submission", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission_id": id, "upvotes": *req.Upvotes})
}

// CreateBookmark inserts a bookmark row
// POST /api/v1/bookmarks
func (h *Handlers) CreateBookmark(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	var req rowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	row, err := gateway.NewStore(h.db, userID).InsertBookmark(c.Request.Context(), req.UserID, req.SubmissionID)
	if err != nil {
		respondRowError(c, "bookmark", err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

// GetBookmark returns the caller's bookmark on a submission, or 404
// GET /api/v1/bookmarks/:submission_id
func (h *Handlers) GetBookmark(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	id, ok := submissionIDParam(c, "submission_id")
	if !ok {
		return
	}

	row, err := gateway.NewStore(h.db, userID).FindBookmark(c.Request.Context(), userID, id)
	if err != nil {
		respondRowError(c, "bookmark", err)
		return
	}
	if row == nil {
		util.RespondNotFound(c, "bookmark")
		return
	}
	c.JSON(http.StatusOK, row)
}

// DeleteBookmark removes the caller's bookmark; missing bookmarks are fine
// DELETE /api/v1/bookmarks/:submission_id
func (h *Handlers) DeleteBookmark(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	id, ok := submissionIDParam(c, "submission_id")
	if !ok {
		return
	}

	if err := gateway.NewStore(h.db, userID).DeleteBookmark(c.Request.Context(), userID, id); err != nil {
		respondRowError(c, "bookmark", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func respondRowError(c *gin.Context, resource string, err error) {
	switch {
	case errors.Is(err, interaction.ErrConstraintViolation):
		util.RespondWithAPIError(c, apierrors.Duplicate(resource))
	case errors.Is(err, interaction.ErrPermissionDenied):
		util.RespondWithAPIError(c, apierrors.PermissionDenied("you may only change your own "+resource+"s"))
	case errors.Is(err, gateway.ErrSubmissionNotFound):
		util.RespondNotFound(c, "submission")
	default:
		util.RespondInternalError(c, "failed to write "+resource, err)
	}
}
