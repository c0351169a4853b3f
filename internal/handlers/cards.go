package handlers

import (
	"errors"
	"net/http"

	"github.com/curiohub/curiohub/internal/gateway"
	"github.com/curiohub/curiohub/internal/interaction"
	"github.com/curiohub/curiohub/internal/metrics"
	"github.com/curiohub/curiohub/internal/models"
	"github.com/curiohub/curiohub/internal/repository"
	"github.com/curiohub/curiohub/internal/telemetry"
	"github.com/curiohub/curiohub/internal/util"
	"github.com/gin-gonic/gin"
)

type cardResponse struct {
	Submission *models.Submission `json:"submission,omitempty"`
	Outcome    string             `json:"outcome,omitempty"`
	Message    string             `json:"message,omitempty"`
	Warning    string             `json:"warning,omitempty"`
	View       interaction.View   `json:"view"`
}

// GetCard returns a submission with the caller's card state
// GET /api/v1/cards/:id
func (h *Handlers) GetCard(c *gin.Context) {
	sub, ctrl, ok := h.mountCard(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cardResponse{Submission: sub, View: ctrl.View()})
}

// VoteCard runs one vote through a card controller
// POST /api/v1/cards/:id/vote
func (h *Handlers) VoteCard(c *gin.Context) {
	h.runCardAction(c, interaction.ActionVote)
}

// BookmarkCard toggles the caller's bookmark through a card controller
// POST /api/v1/cards/:id/bookmark
func (h *Handlers) BookmarkCard(c *gin.Context) {
	h.runCardAction(c, interaction.ActionBookmark)
}

func (h *Handlers) runCardAction(c *gin.Context, action interaction.Action) {
	_, ctrl, ok := h.mountCard(c)
	if !ok {
		return
	}

	viewerID := ""
	if v, ok := ctrl.Session().Viewer(); ok {
		viewerID = v.ID
	}
	ctx, span := telemetry.TraceCardAction(c.Request.Context(), string(action), ctrl.SubmissionID(), viewerID)

	var out interaction.Outcome
	switch action {
	case interaction.ActionVote:
		out = ctrl.CastVote(ctx)
	default:
		out = ctrl.ToggleBookmark(ctx)
	}
	telemetry.EndWithOutcome(span, out.Kind.String(), out.Err)
	metrics.RecordInteraction(string(action), out.Kind.String(), out.CountSyncErr != nil)

	resp := cardResponse{Outcome: out.Kind.String(), Message: out.Message(), View: out.View}
	if out.CountSyncErr != nil {
		resp.Warning = "vote recorded but the total could not be updated"
	}
	c.JSON(cardStatus(out.Kind), resp)
}

// mountCard loads the submission, builds a controller for the caller and
// mounts it.
func (h *Handlers) mountCard(c *gin.Context) (*models.Submission, *interaction.Controller, bool) {
	id, ok := submissionIDParam(c, "id")
	if !ok {
		return nil, nil, false
	}
	sub, err := h.submissions.Get(c.Request.Context(), id)
	if errors.Is(err, repository.ErrSubmissionNotFound) {
		util.RespondNotFound(c, "submission")
		return nil, nil, false
	}
	if err != nil {
		util.RespondInternalError(c, "failed to load submission", err)
		return nil, nil, false
	}

	viewerID := c.GetString(util.ContextUserID)
	session := interaction.Anonymous()
	if user, ok := util.OptionalUser(c); ok {
		session = interaction.NewSession(&interaction.Viewer{ID: user.ID, Username: user.Username})
	}
	ctrl := interaction.NewController(session, gateway.NewStore(h.db, viewerID), interaction.Snapshot{ID: sub.ID, Upvotes: sub.Upvotes})
	if err := ctrl.Mount(c.Request.Context()); err != nil {
		util.RespondInternalError(c, "failed to load card state", err)
		return nil, nil, false
	}
	return sub, ctrl, true
}

// cardStatus maps an outcome to the HTTP status of the card response.
func cardStatus(kind interaction.OutcomeKind) int {
	switch kind {
	case interaction.OutcomeOK, interaction.OutcomeNoop:
		return http.StatusOK
	case interaction.OutcomeUnauthenticated:
		return http.StatusUnauthorized
	case interaction.OutcomeAlreadyVoted:
		return http.StatusConflict
	case interaction.OutcomePermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusBadGateway
	}
}
