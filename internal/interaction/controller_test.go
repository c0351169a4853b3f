package interaction

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/curiohub/curiohub/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var errNetwork = errors.New("connection reset")

type ControllerTestSuite struct {
	suite.Suite
	ctx    context.Context
	viewer *Viewer
	gw     *MockGateway
	snap   Snapshot
}

func (s *ControllerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.viewer = &Viewer{ID: "user-u", Username: "u"}
	s.gw = NewMockGateway(s.viewer)
	s.snap = Snapshot{ID: "sub-s", Upvotes: 5}
}

func (s *ControllerTestSuite) mounted() *Controller {
	session, err := ResolveSession(s.ctx, s.gw)
	s.Require().NoError(err)
	c := NewController(session, s.gw, s.snap)
	s.Require().NoError(c.Mount(s.ctx))
	s.gw.Reset()
	return c
}

func (s *ControllerTestSuite) TestUnauthenticatedNeverWrites() {
	c := NewController(Anonymous(), s.gw, s.snap)
	s.Require().NoError(c.Mount(s.ctx))

	vote := c.CastVote(s.ctx)
	bookmark := c.ToggleBookmark(s.ctx)

	s.Equal(OutcomeUnauthenticated, vote.Kind)
	s.Equal(OutcomeUnauthenticated, bookmark.Kind)
	s.Equal("Please sign in to vote", vote.Message())
	s.Empty(s.gw.GetCalls())
	s.Equal(5, c.View().DisplayedUpvotes)
}

func (s *ControllerTestSuite) TestMountChecksBookmarkOnly() {
	s.gw.FindBookmarkFunc = func(ctx context.Context, userID, submissionID string) (*BookmarkRow, error) {
		return &BookmarkRow{UserID: userID, SubmissionID: submissionID}, nil
	}
	session, err := ResolveSession(s.ctx, s.gw)
	s.Require().NoError(err)

	c := NewController(session, s.gw, s.snap)
	s.Require().NoError(c.Mount(s.ctx))

	s.Equal([]string{"CurrentUser", "FindBookmark"}, s.gw.Methods())
	view := c.View()
	s.True(view.IsBookmarked)
	s.False(view.HasVoted)
	s.True(view.VoteEnabled)
}

func (s *ControllerTestSuite) TestMountLookupFailureLeavesUnbookmarked() {
	s.gw.FindBookmarkFunc = func(ctx context.Context, userID, submissionID string) (*BookmarkRow, error) {
		return nil, errNetwork
	}
	c := NewController(NewSession(s.viewer), s.gw, s.snap)

	err := c.Mount(s.ctx)
	s.ErrorIs(err, errNetwork)
	s.False(c.View().IsBookmarked)
}

func (s *ControllerTestSuite) TestActionsDoNotRefetchViewer() {
	c := s.mounted()

	c.CastVote(s.ctx)
	c.ToggleBookmark(s.ctx)

	s.Zero(s.gw.CallCount("CurrentUser"))
}

func (s *ControllerTestSuite) TestSuccessfulVote() {
	c := s.mounted()

	out := c.CastVote(s.ctx)

	s.Equal(OutcomeOK, out.Kind)
	s.NoError(out.CountSyncErr)
	s.True(out.View.HasVoted)
	s.Equal(6, out.View.DisplayedUpvotes)
	s.False(out.View.VoteEnabled)
	s.Equal(PhaseCommitted, out.View.Phase)

	calls := s.gw.GetCalls()
	s.Require().Len(calls, 2)
	s.Equal(MockCall{Method: "InsertVote", Args: []interface{}{"user-u", "sub-s"}}, calls[0])
	s.Equal(MockCall{Method: "UpdateUpvoteCount", Args: []interface{}{"sub-s", 6}}, calls[1])
}

func (s *ControllerTestSuite) TestSecondVoteIsNoop() {
	c := s.mounted()
	c.CastVote(s.ctx)
	s.gw.Reset()

	out := c.CastVote(s.ctx)

	s.Equal(OutcomeNoop, out.Kind)
	s.Empty(s.gw.GetCalls())
	s.Equal(6, out.View.DisplayedUpvotes)
}

func (s *ControllerTestSuite) TestDuplicateVoteReverts() {
	s.gw.InsertVoteFunc = func(ctx context.Context, userID, submissionID string) (*VoteRow, error) {
		return nil, fmt.Errorf("insert vote: %w", ErrConstraintViolation)
	}
	c := s.mounted()

	out := c.CastVote(s.ctx)

	s.Equal(OutcomeAlreadyVoted, out.Kind)
	s.False(out.View.HasVoted)
	s.True(out.View.VoteEnabled)
	s.Equal(5, out.View.DisplayedUpvotes)
	s.Equal(PhaseFailed, out.View.Phase)
	s.Zero(s.gw.CallCount("UpdateUpvoteCount"))
}

func (s *ControllerTestSuite) TestGenericVoteFailureRevertsAndAllowsRetry() {
	attempts := 0
	s.gw.InsertVoteFunc = func(ctx context.Context, userID, submissionID string) (*VoteRow, error) {
		attempts++
		if attempts == 1 {
			return nil, errNetwork
		}
		return &VoteRow{UserID: userID, SubmissionID: submissionID}, nil
	}
	c := s.mounted()

	first := c.CastVote(s.ctx)
	s.Equal(OutcomeFailed, first.Kind)
	s.ErrorIs(first.Err, errNetwork)
	s.Equal(5, first.View.DisplayedUpvotes)
	s.Equal("Could not vote right now, please try again", first.Message())

	second := c.CastVote(s.ctx)
	s.Equal(OutcomeOK, second.Kind)
	s.Equal(6, second.View.DisplayedUpvotes)
	s.Equal(2, attempts)
}

func (s *ControllerTestSuite) TestPermissionDeniedVoteIsGenericFailure() {
	s.gw.InsertVoteFunc = func(ctx context.Context, userID, submissionID string) (*VoteRow, error) {
		return nil, ErrPermissionDenied
	}
	c := s.mounted()

	s.Equal(OutcomeFailed, c.CastVote(s.ctx).Kind)
}

func (s *ControllerTestSuite) TestCountSyncFailureKeepsVote() {
	s.gw.UpdateUpvoteCountFunc = func(ctx context.Context, submissionID string, count int) error {
		return errNetwork
	}
	c := s.mounted()
	core, logs := observer.New(zap.InfoLevel)
	defer logger.Replace(zap.New(core))()

	out := c.CastVote(s.ctx)

	s.Equal(OutcomeOK, out.Kind)
	s.ErrorIs(out.CountSyncErr, errNetwork)
	s.True(out.View.HasVoted)
	s.Equal(6, out.View.DisplayedUpvotes)

	synced := logs.FilterMessage("Upvote count sync failed").AllUntimed()
	s.Require().Len(synced, 1)
	s.Equal(zapcore.WarnLevel, synced[0].Level)
	fields := synced[0].ContextMap()
	s.Equal(int64(6), fields["count"])
	s.Equal("sub-s", fields["submission_id"])
}

func (s *ControllerTestSuite) TestBookmarkToggleRoundTrip() {
	c := s.mounted()

	on := c.ToggleBookmark(s.ctx)
	s.Equal(OutcomeOK, on.Kind)
	s.True(on.View.IsBookmarked)
	s.Equal("Saved to your bookmarks", on.Message())

	off := c.ToggleBookmark(s.ctx)
	s.Equal(OutcomeOK, off.Kind)
	s.False(off.View.IsBookmarked)
	s.Equal("Removed from your bookmarks", off.Message())

	s.Equal([]string{"InsertBookmark", "DeleteBookmark"}, s.gw.Methods())
	calls := s.gw.GetCalls()
	s.Equal([]interface{}{"user-u", "sub-s"}, calls[0].Args)
	s.Equal([]interface{}{"user-u", "sub-s"}, calls[1].Args)
}

func (s *ControllerTestSuite) TestDuplicateBookmarkIsSuccess() {
	s.gw.InsertBookmarkFunc = func(ctx context.Context, userID, submissionID string) (*BookmarkRow, error) {
		return nil, fmt.Errorf("insert bookmark: %w", ErrConstraintViolation)
	}
	c := s.mounted()

	out := c.ToggleBookmark(s.ctx)

	s.Equal(OutcomeOK, out.Kind)
	s.NoError(out.Err)
	s.True(out.View.IsBookmarked)
}

func (s *ControllerTestSuite) TestBookmarkPermissionDenied() {
	s.gw.InsertBookmarkFunc = func(ctx context.Context, userID, submissionID string) (*BookmarkRow, error) {
		return nil, fmt.Errorf("insert bookmark: %w", ErrPermissionDenied)
	}
	c := s.mounted()

	out := c.ToggleBookmark(s.ctx)

	s.Equal(OutcomePermissionDenied, out.Kind)
	s.False(out.View.IsBookmarked)
	s.Equal("You are not allowed to change this bookmark", out.Message())
}

func (s *ControllerTestSuite) TestBookmarkFailureLeavesState() {
	s.gw.FindBookmarkFunc = func(ctx context.Context, userID, submissionID string) (*BookmarkRow, error) {
		return &BookmarkRow{}, nil
	}
	s.gw.DeleteBookmarkFunc = func(ctx context.Context, userID, submissionID string) error {
		return errNetwork
	}
	c := s.mounted()
	s.Require().True(c.View().IsBookmarked)

	out := c.ToggleBookmark(s.ctx)

	s.Equal(OutcomeFailed, out.Kind)
	s.True(out.View.IsBookmarked)
}

func (s *ControllerTestSuite) TestBookmarkIndependentOfVote() {
	s.gw.InsertVoteFunc = func(ctx context.Context, userID, submissionID string) (*VoteRow, error) {
		return nil, ErrConstraintViolation
	}
	c := s.mounted()

	c.CastVote(s.ctx)
	out := c.ToggleBookmark(s.ctx)

	s.Equal(OutcomeOK, out.Kind)
	s.True(out.View.IsBookmarked)
	s.Equal(PhaseFailed, out.View.Phase)
}

func (s *ControllerTestSuite) TestVoteInFlightBlocksSecondVote() {
	release := make(chan struct{})
	entered := make(chan struct{})
	s.gw.InsertVoteFunc = func(ctx context.Context, userID, submissionID string) (*VoteRow, error) {
		close(entered)
		<-release
		return &VoteRow{}, nil
	}
	c := s.mounted()

	var wg sync.WaitGroup
	var first Outcome
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = c.CastVote(s.ctx)
	}()
	<-entered

	pending := c.View()
	s.Equal(PhasePending, pending.Phase)
	s.False(pending.VoteEnabled)

	second := c.CastVote(s.ctx)
	s.Equal(OutcomeNoop, second.Kind)
	s.Equal("Your vote is still being recorded", second.Message())

	close(release)
	wg.Wait()
	s.Equal(OutcomeOK, first.Kind)
	s.Equal(1, s.gw.CallCount("InsertVote"))
}

func (s *ControllerTestSuite) TestCardsAreIndependent() {
	a := s.mounted()
	b := NewController(a.Session(), s.gw, s.snap)

	a.CastVote(s.ctx)

	s.True(a.View().HasVoted)
	s.False(b.View().HasVoted)
	s.Equal(5, b.View().DisplayedUpvotes)
}

func TestControllerTestSuite(t *testing.T) {
	suite.Run(t, new(ControllerTestSuite))
}

func TestResolveSessionPropagatesError(t *testing.T) {
	gw := NewMockGateway(nil)
	gw.CurrentUserFunc = func(ctx context.Context) (*Viewer, error) {
		return nil, errNetwork
	}

	_, err := ResolveSession(context.Background(), gw)
	assert.ErrorIs(t, err, errNetwork)
}

func TestNewSessionCopiesViewer(t *testing.T) {
	v := &Viewer{ID: "a"}
	session := NewSession(v)
	v.ID = "b"

	got, ok := session.Viewer()
	require.True(t, ok)
	assert.Equal(t, "a", got.ID)
	assert.False(t, NewSession(nil).Authenticated())
}

func TestVotePhaseTransitions(t *testing.T) {
	allowed := map[VotePhase][]VotePhase{
		PhaseIdle:      {PhasePending},
		PhasePending:   {PhaseCommitted, PhaseFailed},
		PhaseFailed:    {PhasePending},
		PhaseCommitted: {},
	}
	all := []VotePhase{PhaseIdle, PhasePending, PhaseCommitted, PhaseFailed}

	for from, targets := range allowed {
		for _, to := range all {
			assert.Equal(t, contains(targets, to), from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func TestVotePhaseText(t *testing.T) {
	for _, p := range []VotePhase{PhaseIdle, PhasePending, PhaseCommitted, PhaseFailed} {
		text, err := p.MarshalText()
		require.NoError(t, err)

		var back VotePhase
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, p, back)
	}
	var p VotePhase
	assert.Error(t, p.UnmarshalText([]byte("voting")))
}

func TestOutcomeKindText(t *testing.T) {
	var k OutcomeKind
	require.NoError(t, k.UnmarshalText([]byte("already_voted")))
	assert.Equal(t, OutcomeAlreadyVoted, k)
	assert.Error(t, k.UnmarshalText([]byte("exploded")))
}

func contains(list []VotePhase, p VotePhase) bool {
	for _, x := range list {
		if x == p {
			return true
		}
	}
	return false
}
