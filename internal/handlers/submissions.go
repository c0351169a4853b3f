package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/curiohub/curiohub/internal/cache"
	apierrors "github.com/curiohub/curiohub/internal/errors"
	"github.com/curiohub/curiohub/internal/logger"
	"github.com/curiohub/curiohub/internal/metrics"
	"github.com/curiohub/curiohub/internal/models"
	"github.com/curiohub/curiohub/internal/repository"
	"github.com/curiohub/curiohub/internal/telemetry"
	"github.com/curiohub/curiohub/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

const (
	maxTitle       = 200
	maxDescription = 2000
	maxTags        = 5
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type listingResponse struct {
	Submissions []models.Submission `json:"submissions"`
	Limit       int                 `json:"limit"`
	Offset      int                 `json:"offset"`
}

// GetFeed lists approved submissions, most upvoted first
// GET /api/v1/submissions?source=youtube&tags=science,art
func (h *Handlers) GetFeed(c *gin.Context) {
	source := strings.ToLower(strings.TrimSpace(c.Query("source")))
	if source != "" && source != "all" && !models.SourceType(source).Valid() {
		util.RespondValidationError(c, "source", "unknown source type")
		return
	}
	tags := util.ParseTags(c.Query("tags"))
	limit, offset := util.ParsePage(c)

	ctx, span := telemetry.TraceGetFeed(c.Request.Context(), "feed", source, tags)
	defer span.End()

	page := repository.Page{Limit: limit, Offset: offset}.Normalize()
	key := cache.FeedKey{Kind: "feed", Source: source, Tags: tags, Limit: page.Limit, Offset: page.Offset}
	if payload, ok := h.feedCache.Get(ctx, key); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(payload))
		return
	}

	subs, err := h.submissions.Feed(ctx, repository.FeedFilter{Source: source, Tags: tags, Page: page})
	if err != nil {
		util.RespondInternalError(c, "failed to load feed", err)
		return
	}
	h.respondListing(c, key, subs, page)
}

// GetDiscover lists the pending queue, newest first
// GET /api/v1/submissions/discover
func (h *Handlers) GetDiscover(c *gin.Context) {
	limit, offset := util.ParsePage(c)

	ctx, span := telemetry.TraceGetFeed(c.Request.Context(), "discover", "", nil)
	defer span.End()

	page := repository.Page{Limit: limit, Offset: offset}.Normalize()
	key := cache.FeedKey{Kind: "discover", Limit: page.Limit, Offset: page.Offset}
	if payload, ok := h.feedCache.Get(ctx, key); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(payload))
		return
	}

	subs, err := h.submissions.Discover(ctx, page)
	if err != nil {
		util.RespondInternalError(c, "failed to load discover queue", err)
		return
	}
	h.respondListing(c, key, subs, page)
}

func (h *Handlers) respondListing(c *gin.Context, key cache.FeedKey, subs []models.Submission, page repository.Page) {
	if subs == nil {
		subs = []models.Submission{}
	}
	resp := listingResponse{Submissions: subs, Limit: page.Limit, Offset: page.Offset}

	payload, err := json.MarshalToString(resp)
	if err != nil {
		util.RespondInternalError(c, "failed to encode listing", err)
		return
	}
	h.feedCache.Set(c.Request.Context(), key, payload)
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(payload))
}

// GetSubmission returns one approved or pending submission
// GET /api/v1/submissions/:id
func (h *Handlers) GetSubmission(c *gin.Context) {
	id, ok := submissionIDParam(c, "id")
	if !ok {
		return
	}
	sub, err := h.submissions.Get(c.Request.Context(), id)
	if errors.Is(err, repository.ErrSubmissionNotFound) {
		util.RespondNotFound(c, "submission")
		return
	}
	if err != nil {
		util.RespondInternalError(c, "failed to load submission", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": sub})
}

type createSubmissionRequest struct {
	Title        string   `json:"title" binding:"required"`
	URL          string   `json:"url" binding:"required"`
	Description  string   `json:"description"`
	ThumbnailURL string   `json:"thumbnail_url"`
	SourceType   string   `json:"source_type" binding:"required"`
	Tags         []string `json:"tags"`
}

// CreateSubmission queues a new link for moderation
// POST /api/v1/submissions
func (h *Handlers) CreateSubmission(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req createSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	title := util.SanitizeText(req.Title)
	if !util.ValidateLength(title, 1, maxTitle) {
		util.RespondValidationError(c, "title", "title must be 1-200 characters")
		return
	}
	description := util.SanitizeText(req.Description)
	if !util.ValidateLength(description, 0, maxDescription) {
		util.RespondValidationError(c, "description", "description must be at most 2000 characters")
		return
	}
	link := strings.TrimSpace(req.URL)
	if err := util.ValidateSubmissionURL(link); err != nil {
		util.RespondValidationError(c, "url", err.Error())
		return
	}
	thumbnail := strings.TrimSpace(req.ThumbnailURL)
	if thumbnail != "" {
		if err := util.ValidateSubmissionURL(thumbnail); err != nil {
			util.RespondValidationError(c, "thumbnail_url", err.Error())
			return
		}
	}
	source := models.SourceType(strings.ToLower(strings.TrimSpace(req.SourceType)))
	if !source.Valid() {
		util.RespondValidationError(c, "source_type", "unknown source type")
		return
	}
	tags := util.ParseTags(strings.Join(req.Tags, ","))
	if len(tags) > maxTags {
		util.RespondValidationError(c, "tags", "at most 5 tags")
		return
	}

	sub := &models.Submission{
		UserID:       userID,
		Title:        title,
		URL:          link,
		Description:  description,
		ThumbnailURL: thumbnail,
		SourceType:   source,
		Status:       models.StatusPending,
	}
	if err := h.submissions.Create(c.Request.Context(), sub, tags); err != nil {
		util.RespondInternalError(c, "failed to create submission", err)
		return
	}

	metrics.Get().SubmissionsCreatedTotal.WithLabelValues(string(source)).Inc()
	h.feedCache.Invalidate(c.Request.Context())
	logger.Log.Info("Submission created",
		logger.WithUserID(userID),
		logger.WithSubmissionID(sub.ID),
		zap.String("source_type", string(source)),
	)

	created, err := h.submissions.Get(c.Request.Context(), sub.ID)
	if err != nil {
		created = sub
	}
	c.JSON(http.StatusCreated, gin.H{"submission": created})
}

type moderateRequest struct {
	Status string `json:"status" binding:"required"`
}

// ModerateSubmission approves or rejects a pending submission
// PATCH /api/v1/submissions/:id/status
func (h *Handlers) ModerateSubmission(c *gin.Context) {
	id, ok := submissionIDParam(c, "id")
	if !ok {
		return
	}
	var req moderateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}
	status := models.Status(strings.ToLower(req.Status))
	if status != models.StatusApproved && status != models.StatusRejected {
		util.RespondValidationError(c, "status", "status must be approved or rejected")
		return
	}

	sub, err := h.submissions.SetStatus(c.Request.Context(), id, status)
	switch {
	case errors.Is(err, repository.ErrSubmissionNotFound):
		util.RespondNotFound(c, "submission")
		return
	case errors.Is(err, repository.ErrInvalidTransition):
		util.RespondWithAPIError(c, apierrors.Conflict("submission").WithDetails(err.Error()))
		return
	case err != nil:
		util.RespondInternalError(c, "failed to moderate submission", err)
		return
	}

	metrics.Get().ModerationTotal.WithLabelValues(string(status)).Inc()
	h.feedCache.Invalidate(c.Request.Context())
	logger.Log.Info("Submission moderated",
		logger.WithUserID(c.GetString(util.ContextUserID)),
		logger.WithSubmissionID(id),
		zap.String("status", string(status)),
	)
	c.JSON(http.StatusOK, gin.H{"submission": sub})
}

// RecountUpvotes resets a submission's upvote total to its vote count
// POST /api/v1/submissions/:id/recount
func (h *Handlers) RecountUpvotes(c *gin.Context) {
	id, ok := submissionIDParam(c, "id")
	if !ok {
		return
	}
	count, err := h.submissions.RecountUpvotes(c.Request.Context(), id)
	if errors.Is(err, repository.ErrSubmissionNotFound) {
		util.RespondNotFound(c, "submission")
		return
	}
	if err != nil {
		util.RespondInternalError(c, "failed to recount upvotes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission_id": id, "upvotes": count})
}

// submissionIDParam reads a UUID path parameter, answering 400 when it is
// malformed.
func submissionIDParam(c *gin.Context, name string) (string, bool) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		util.RespondBadRequest(c, "invalid submission id")
		return "", false
	}
	return id.String(), true
}
