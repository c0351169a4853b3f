package handlers

import (
	"net/http"
	"time"

	"github.com/curiohub/curiohub/internal/cache"
	"github.com/curiohub/curiohub/internal/models"
	"github.com/curiohub/curiohub/internal/repository"
)

type listing struct {
	Submissions []models.Submission `json:"submissions"`
	Limit       int                 `json:"limit"`
}

func (s *HandlersTestSuite) TestCreateSubmissionValidation() {
	valid := map[string]interface{}{
		"title":       "  <i>The</i> Feynman technique ",
		"url":         "https://www.youtube.com/watch?v=abc",
		"description": "Explain it <b>simply</b>",
		"source_type": "YouTube",
		"tags":        []string{"science", "Learning", "nonexistent"},
	}
	s.Equal(http.StatusUnauthorized, s.do(http.MethodPost, "/api/v1/submissions", "", valid).Code)

	w := s.do(http.MethodPost, "/api/v1/submissions", s.aliceToken, valid)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Submission models.Submission `json:"submission"`
	}
	s.decode(w, &created)
	s.Equal("The Feynman technique", created.Submission.Title)
	s.Equal("Explain it simply", created.Submission.Description)
	s.Equal(models.SourceYouTube, created.Submission.SourceType)
	s.Equal(models.StatusPending, created.Submission.Status)
	s.Equal(s.alice.ID, created.Submission.UserID)
	s.Len(created.Submission.Tags, 2)

	plain := map[string]interface{}{
		"title":       "Don't Look Up & Think",
		"url":         "https://example.com/essay",
		"description": "Don't & Stop",
		"source_type": "article",
	}
	w = s.do(http.MethodPost, "/api/v1/submissions", s.aliceToken, plain)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.decode(w, &created)
	s.Equal("Don't Look Up & Think", created.Submission.Title)
	s.Equal("Don't & Stop", created.Submission.Description)

	cases := []struct {
		field string
		patch map[string]interface{}
	}{
		{"title", map[string]interface{}{"title": "<b></b>"}},
		{"url", map[string]interface{}{"url": "javascript:alert(1)"}},
		{"source_type", map[string]interface{}{"source_type": "myspace"}},
		{"tags", map[string]interface{}{"tags": []string{"a", "b", "c", "d", "e", "f"}}},
	}
	for _, tc := range cases {
		body := map[string]interface{}{}
		for k, v := range valid {
			body[k] = v
		}
		for k, v := range tc.patch {
			body[k] = v
		}
		w := s.do(http.MethodPost, "/api/v1/submissions", s.aliceToken, body)
		s.Equal(http.StatusUnprocessableEntity, w.Code, tc.field)
	}
}

func (s *HandlersTestSuite) TestModerationFlow() {
	sub := s.createSubmission(models.StatusPending, models.SourceArticle, 0)

	var discover listing
	s.decode(s.do(http.MethodGet, "/api/v1/submissions/discover", "", nil), &discover)
	s.Require().Len(discover.Submissions, 1)

	path := "/api/v1/submissions/" + sub.ID + "/status"
	s.Equal(http.StatusForbidden, s.do(http.MethodPatch, path, s.aliceToken, map[string]string{"status": "approved"}).Code)
	s.Equal(http.StatusUnprocessableEntity, s.do(http.MethodPatch, path, s.adminToken, map[string]string{"status": "pending"}).Code)

	w := s.do(http.MethodPatch, path, s.adminToken, map[string]string{"status": "approved"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPatch, path, s.adminToken, map[string]string{"status": "rejected"})
	s.Equal(http.StatusConflict, w.Code)

	var feed listing
	s.decode(s.do(http.MethodGet, "/api/v1/submissions", "", nil), &feed)
	s.Require().Len(feed.Submissions, 1)
	s.Equal(sub.ID, feed.Submissions[0].ID)
}

func (s *HandlersTestSuite) TestFeedFilters() {
	yt := s.createSubmission(models.StatusApproved, models.SourceYouTube, 3, "science")
	art := s.createSubmission(models.StatusApproved, models.SourceArticle, 9, "art")
	s.createSubmission(models.StatusPending, models.SourceYouTube, 50, "science")

	var feed listing
	s.decode(s.do(http.MethodGet, "/api/v1/submissions?source=all", "", nil), &feed)
	s.Require().Len(feed.Submissions, 2)
	s.Equal(art.ID, feed.Submissions[0].ID)
	s.Equal(repository.DefaultPageSize, feed.Limit)

	s.decode(s.do(http.MethodGet, "/api/v1/submissions?source=youtube", "", nil), &feed)
	s.Require().Len(feed.Submissions, 1)
	s.Equal(yt.ID, feed.Submissions[0].ID)

	s.decode(s.do(http.MethodGet, "/api/v1/submissions?tags=art,philosophy", "", nil), &feed)
	s.Require().Len(feed.Submissions, 1)
	s.Equal(art.ID, feed.Submissions[0].ID)

	s.Equal(http.StatusUnprocessableEntity, s.do(http.MethodGet, "/api/v1/submissions?source=myspace", "", nil).Code)
}

func (s *HandlersTestSuite) TestFeedCache() {
	store := &memStore{data: map[string]string{}}
	s.handlers.SetFeedCache(cache.NewFeedCache(store, time.Minute))
	sub := s.createSubmission(models.StatusApproved, models.SourceReddit, 1)

	var feed listing
	s.decode(s.do(http.MethodGet, "/api/v1/submissions", "", nil), &feed)
	s.Require().Len(feed.Submissions, 1)

	// Direct writes bypass invalidation, so the cached page is served.
	s.Require().NoError(s.db.Model(&models.Submission{}).Where("id = ?", sub.ID).Update("upvotes", 42).Error)
	s.decode(s.do(http.MethodGet, "/api/v1/submissions", "", nil), &feed)
	s.Equal(1, feed.Submissions[0].Upvotes)

	// Moderation invalidates.
	pending := s.createSubmission(models.StatusPending, models.SourceReddit, 0)
	s.Require().Equal(http.StatusOK, s.do(http.MethodPatch, "/api/v1/submissions/"+pending.ID+"/status", s.adminToken, map[string]string{"status": "approved"}).Code)
	s.decode(s.do(http.MethodGet, "/api/v1/submissions", "", nil), &feed)
	s.Require().Len(feed.Submissions, 2)
	s.Equal(42, feed.Submissions[0].Upvotes)
}

func (s *HandlersTestSuite) TestFeedCacheKeysOnClampedPage() {
	store := &memStore{data: map[string]string{}}
	s.handlers.SetFeedCache(cache.NewFeedCache(store, time.Minute))
	s.createSubmission(models.StatusApproved, models.SourceReddit, 1)

	entries := func() int {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.data)
	}

	var feed listing
	s.decode(s.do(http.MethodGet, "/api/v1/submissions?limit=0", "", nil), &feed)
	s.Equal(repository.DefaultPageSize, feed.Limit)
	base := entries()
	s.decode(s.do(http.MethodGet, "/api/v1/submissions?limit=20", "", nil), &feed)
	s.Equal(base, entries())

	s.decode(s.do(http.MethodGet, "/api/v1/submissions?limit=5000", "", nil), &feed)
	s.Equal(repository.MaxPageSize, feed.Limit)
	clamped := entries()
	s.Equal(base+1, clamped)
	s.decode(s.do(http.MethodGet, "/api/v1/submissions/discover?limit=50", "", nil), &feed)
	s.decode(s.do(http.MethodGet, "/api/v1/submissions?limit=50", "", nil), &feed)
	s.decode(s.do(http.MethodGet, "/api/v1/submissions?limit=999", "", nil), &feed)
	s.Equal(clamped+1, entries())
}

func (s *HandlersTestSuite) TestGetSubmission() {
	approved := s.createSubmission(models.StatusApproved, models.SourceTwitter, 0)
	rejected := s.createSubmission(models.StatusRejected, models.SourceTwitter, 1)

	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/v1/submissions/"+approved.ID, "", nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/v1/submissions/"+rejected.ID, "", nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/v1/submissions/00000000-0000-0000-0000-000000000000", "", nil).Code)

	w := s.do(http.MethodGet, "/api/v1/submissions/not-a-uuid", "", nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("BAD_REQUEST", s.errorCode(w))
}

func (s *HandlersTestSuite) TestRecountUpvotes() {
	sub := s.createSubmission(models.StatusApproved, models.SourceArticle, 7)
	s.Require().NoError(s.db.Create(&models.Vote{UserID: s.bob.ID, SubmissionID: sub.ID}).Error)

	path := "/api/v1/submissions/" + sub.ID + "/recount"
	s.Equal(http.StatusForbidden, s.do(http.MethodPost, path, s.bobToken, nil).Code)

	w := s.do(http.MethodPost, path, s.adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var body struct {
		Upvotes int `json:"upvotes"`
	}
	s.decode(w, &body)
	s.Equal(1, body.Upvotes)
}

func (s *HandlersTestSuite) TestTagsAndProfiles() {
	var tags struct {
		Tags []models.Tag `json:"tags"`
	}
	s.decode(s.do(http.MethodGet, "/api/v1/tags", "", nil), &tags)
	s.Len(tags.Tags, len(models.DefaultTags))

	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/v1/profiles/Alice", "", nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/v1/profiles/nobody", "", nil).Code)

	approved := s.createSubmission(models.StatusApproved, models.SourceArticle, 0)
	s.createSubmission(models.StatusRejected, models.SourceArticle, 1)

	var subs listing
	s.decode(s.do(http.MethodGet, "/api/v1/profiles/alice/submissions", "", nil), &subs)
	s.Len(subs.Submissions, 1)
	s.decode(s.do(http.MethodGet, "/api/v1/profiles/alice/submissions", s.aliceToken, nil), &subs)
	s.Len(subs.Submissions, 2, "owners see their rejected submissions")

	s.Require().NoError(s.db.Create(&models.Bookmark{UserID: s.bob.ID, SubmissionID: approved.ID}).Error)
	var saved struct {
		Bookmarks []models.Bookmark `json:"bookmarks"`
	}
	s.decode(s.do(http.MethodGet, "/api/v1/profiles/bob/saved", "", nil), &saved)
	s.Require().Len(saved.Bookmarks, 1)
	s.Equal(approved.ID, saved.Bookmarks[0].Submission.ID)
}
