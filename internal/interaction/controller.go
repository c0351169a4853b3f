package interaction

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/curiohub/curiohub/internal/logger"
	"go.uber.org/zap"
)

// Controller owns the vote and bookmark state of one rendered card. Two
// controllers for the same submission share nothing.
//
// The mutex guards local state only and is never held across a gateway
// call. No timeout is applied to gateway calls beyond what ctx carries.
type Controller struct {
	session      Session
	gw           Gateway
	submissionID string

	mu         sync.Mutex
	phase      VotePhase
	bookmarked bool
	upvotes    int
}

// NewController builds a card controller. The viewer comes from session and
// is never re-fetched.
func NewController(session Session, gw Gateway, snap Snapshot) *Controller {
	return &Controller{
		session:      session,
		gw:           gw,
		submissionID: snap.ID,
		upvotes:      snap.Upvotes,
	}
}

// Mount loads whether the viewer has bookmarked the submission. Prior votes
// are not looked up, so a returning viewer starts with HasVoted false and
// may attempt a redundant vote (answered with OutcomeAlreadyVoted).
func (c *Controller) Mount(ctx context.Context) error {
	viewer, ok := c.session.Viewer()
	if !ok {
		return nil
	}

	row, err := c.gw.FindBookmark(ctx, viewer.ID, c.submissionID)
	if err != nil {
		logger.Log.Warn("Bookmark lookup failed",
			logger.WithUserID(viewer.ID),
			logger.WithSubmissionID(c.submissionID),
			zap.Error(err),
		)
		return fmt.Errorf("find bookmark: %w", err)
	}

	c.mu.Lock()
	c.bookmarked = row != nil
	c.mu.Unlock()
	return nil
}

// CastVote records the viewer's upvote. On success the displayed count goes
// up by one and the new total is written back with UpdateUpvoteCount.
//
// That write-back is a plain overwrite computed from this card's snapshot,
// not an atomic increment: two viewers voting from the same stale count
// both write count+1 and one vote is lost from the total. Vote rows are
// still correct; RecountUpvotes reconciles.
func (c *Controller) CastVote(ctx context.Context) Outcome {
	viewer, ok := c.session.Viewer()
	if !ok {
		return c.outcome(ActionVote, OutcomeUnauthenticated, nil)
	}

	c.mu.Lock()
	if !c.phase.Accepting() {
		c.mu.Unlock()
		return c.outcome(ActionVote, OutcomeNoop, nil)
	}
	c.setPhase(PhasePending)
	c.mu.Unlock()

	if _, err := c.gw.InsertVote(ctx, viewer.ID, c.submissionID); err != nil {
		c.mu.Lock()
		c.setPhase(PhaseFailed)
		c.mu.Unlock()

		if errors.Is(err, ErrConstraintViolation) {
			return c.outcome(ActionVote, OutcomeAlreadyVoted, err)
		}
		logger.Log.Warn("Vote insert failed",
			logger.WithUserID(viewer.ID),
			logger.WithSubmissionID(c.submissionID),
			zap.Error(err),
		)
		return c.outcome(ActionVote, OutcomeFailed, err)
	}

	c.mu.Lock()
	c.upvotes++
	count := c.upvotes
	c.setPhase(PhaseCommitted)
	c.mu.Unlock()

	out := c.outcome(ActionVote, OutcomeOK, nil)
	if err := c.gw.UpdateUpvoteCount(ctx, c.submissionID, count); err != nil {
		logger.Log.Warn("Upvote count sync failed",
			logger.WithSubmissionID(c.submissionID),
			zap.Int("count", count),
			zap.Error(err),
		)
		out.CountSyncErr = err
	}
	return out
}

// ToggleBookmark inserts or deletes the viewer's bookmark. Local state only
// changes once the gateway has answered. A duplicate insert counts as
// success.
func (c *Controller) ToggleBookmark(ctx context.Context) Outcome {
	viewer, ok := c.session.Viewer()
	if !ok {
		return c.outcome(ActionBookmark, OutcomeUnauthenticated, nil)
	}

	c.mu.Lock()
	bookmarked := c.bookmarked
	c.mu.Unlock()

	if bookmarked {
		if err := c.gw.DeleteBookmark(ctx, viewer.ID, c.submissionID); err != nil {
			return c.bookmarkFailure(viewer, err)
		}
		c.mu.Lock()
		c.bookmarked = false
		c.mu.Unlock()
		return c.outcome(ActionBookmark, OutcomeOK, nil)
	}

	if _, err := c.gw.InsertBookmark(ctx, viewer.ID, c.submissionID); err != nil && !errors.Is(err, ErrConstraintViolation) {
		return c.bookmarkFailure(viewer, err)
	}
	c.mu.Lock()
	c.bookmarked = true
	c.mu.Unlock()
	return c.outcome(ActionBookmark, OutcomeOK, nil)
}

func (c *Controller) bookmarkFailure(viewer Viewer, err error) Outcome {
	kind := OutcomeFailed
	if errors.Is(err, ErrPermissionDenied) {
		kind = OutcomePermissionDenied
	}
	logger.Log.Warn("Bookmark toggle failed",
		logger.WithUserID(viewer.ID),
		logger.WithSubmissionID(c.submissionID),
		logger.WithOutcome(kind.String()),
		zap.Error(err),
	)
	return c.outcome(ActionBookmark, kind, err)
}

// View returns a snapshot of the card state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Session returns the session the controller was built with.
func (c *Controller) Session() Session {
	return c.session
}

// SubmissionID returns the id of the submission this card shows.
func (c *Controller) SubmissionID() string {
	return c.submissionID
}

func (c *Controller) viewLocked() View {
	return View{
		HasVoted:         c.phase.Voted(),
		IsBookmarked:     c.bookmarked,
		DisplayedUpvotes: c.upvotes,
		VoteEnabled:      c.phase.Accepting(),
		Phase:            c.phase,
	}
}

func (c *Controller) outcome(action Action, kind OutcomeKind, err error) Outcome {
	return Outcome{Action: action, Kind: kind, Err: err, View: c.View()}
}

// setPhase must be called with mu held.
func (c *Controller) setPhase(next VotePhase) {
	if !c.phase.CanTransition(next) {
		panic(fmt.Sprintf("interaction: illegal vote transition %s -> %s", c.phase, next))
	}
	c.phase = next
}
