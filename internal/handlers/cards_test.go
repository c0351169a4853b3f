package handlers

import (
	"net/http"

	"github.com/curiohub/curiohub/internal/interaction"
	"github.com/curiohub/curiohub/internal/models"
)

type cardBody struct {
	Outcome string           `json:"outcome"`
	Message string           `json:"message"`
	View    interaction.View `json:"view"`
}

func (s *HandlersTestSuite) TestVoteRowEndpoints() {
	sub := s.createSubmission(models.StatusApproved, models.SourceArticle, 0)
	row := map[string]string{"user_id": s.bob.ID, "submission_id": sub.ID}

	s.Equal(http.StatusUnauthorized, s.do(http.MethodPost, "/api/v1/votes", "", row).Code)

	w := s.do(http.MethodPost, "/api/v1/votes", s.aliceToken, row)
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("PERMISSION_DENIED", s.errorCode(w))

	w = s.do(http.MethodPost, "/api/v1/votes", s.bobToken, row)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var vote interaction.VoteRow
	s.decode(w, &vote)
	s.Equal(s.bob.ID, vote.UserID)

	w = s.do(http.MethodPost, "/api/v1/votes", s.bobToken, row)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("DUPLICATE", s.errorCode(w))

	missing := map[string]string{"user_id": s.bob.ID, "submission_id": "00000000-0000-0000-0000-000000000000"}
	s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/api/v1/votes", s.bobToken, missing).Code)

	path := "/api/v1/submissions/" + sub.ID + "/upvotes"
	s.Equal(http.StatusUnprocessableEntity, s.do(http.MethodPatch, path, s.bobToken, map[string]int{"upvotes": -1}).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodPatch, path, s.bobToken, map[string]int{}).Code)
	s.Require().Equal(http.StatusOK, s.do(http.MethodPatch, path, s.bobToken, map[string]int{"upvotes": 5}).Code)

	var stored models.Submission
	s.Require().NoError(s.db.First(&stored, "id = ?", sub.ID).Error)
	s.Equal(5, stored.Upvotes)
}

func (s *HandlersTestSuite) TestBookmarkRowEndpoints() {
	sub := s.createSubmission(models.StatusApproved, models.SourceArticle, 0)
	path := "/api/v1/bookmarks/" + sub.ID

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, path, s.bobToken, nil).Code)

	row := map[string]string{"user_id": s.bob.ID, "submission_id": sub.ID}
	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/v1/bookmarks", s.bobToken, row).Code)
	s.Equal(http.StatusConflict, s.do(http.MethodPost, "/api/v1/bookmarks", s.bobToken, row).Code)
	s.Equal(http.StatusForbidden, s.do(http.MethodPost, "/api/v1/bookmarks", s.aliceToken, row).Code)

	w := s.do(http.MethodGet, path, s.bobToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var bookmark interaction.BookmarkRow
	s.decode(w, &bookmark)
	s.Equal(sub.ID, bookmark.SubmissionID)

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, path, s.aliceToken, nil).Code, "bookmarks are per user")

	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, path, s.bobToken, nil).Code)
	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, path, s.bobToken, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, path, s.bobToken, nil).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/bookmarks/bogus", s.bobToken, nil).Code)
}

func (s *HandlersTestSuite) TestCardAnonymous() {
	sub := s.createSubmission(models.StatusApproved, models.SourceArticle, 4)

	w := s.do(http.MethodGet, "/api/v1/cards/"+sub.ID, "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var card cardBody
	s.decode(w, &card)
	s.Equal(4, card.View.DisplayedUpvotes)
	s.True(card.View.VoteEnabled)

	w = s.do(http.MethodPost, "/api/v1/cards/"+sub.ID+"/vote", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.decode(w, &card)
	s.Equal("unauthenticated", card.Outcome)
	s.Equal("Please sign in to vote", card.Message)

	var votes int64
	s.db.Model(&models.Vote{}).Count(&votes)
	s.Zero(votes)
}

func (s *HandlersTestSuite) TestCardVote() {
	sub := s.createSubmission(models.StatusApproved, models.SourceArticle, 4)
	path := "/api/v1/cards/" + sub.ID + "/vote"

	w := s.do(http.MethodPost, path, s.bobToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var card cardBody
	s.decode(w, &card)
	s.Equal("ok", card.Outcome)
	s.Equal(5, card.View.DisplayedUpvotes)
	s.True(card.View.HasVoted)
	s.False(card.View.VoteEnabled)

	// A fresh card does not know about the earlier vote.
	w = s.do(http.MethodPost, path, s.bobToken, nil)
	s.Equal(http.StatusConflict, w.Code)
	s.decode(w, &card)
	s.Equal("already_voted", card.Outcome)
	s.Equal(5, card.View.DisplayedUpvotes)

	var stored models.Submission
	s.Require().NoError(s.db.First(&stored, "id = ?", sub.ID).Error)
	s.Equal(5, stored.Upvotes)
}

func (s *HandlersTestSuite) TestCardBookmarkToggle() {
	sub := s.createSubmission(models.StatusApproved, models.SourceArticle, 0)
	path := "/api/v1/cards/" + sub.ID + "/bookmark"

	var card cardBody
	s.decode(s.do(http.MethodPost, path, s.aliceToken, nil), &card)
	s.Equal("ok", card.Outcome)
	s.True(card.View.IsBookmarked)
	s.Equal("Saved to your bookmarks", card.Message)

	s.decode(s.do(http.MethodGet, "/api/v1/cards/"+sub.ID, s.aliceToken, nil), &card)
	s.True(card.View.IsBookmarked, "mount loads the bookmark")

	s.decode(s.do(http.MethodPost, path, s.aliceToken, nil), &card)
	s.Equal("ok", card.Outcome)
	s.False(card.View.IsBookmarked)

	var count int64
	s.db.Model(&models.Bookmark{}).Count(&count)
	s.Zero(count)
}

func (s *HandlersTestSuite) TestCardUnknownSubmission() {
	s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/api/v1/cards/00000000-0000-0000-0000-000000000000/vote", s.bobToken, nil).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/cards/nope", "", nil).Code)
}
