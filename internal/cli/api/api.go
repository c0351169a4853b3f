// Package api wraps the CurioHub HTTP endpoints the CLI calls directly.
// Vote and bookmark rows go through gateway.Remote instead.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/curiohub/curiohub/internal/cli/client"
	"github.com/curiohub/curiohub/internal/cli/clilog"
	"github.com/curiohub/curiohub/internal/gateway"
	"github.com/curiohub/curiohub/internal/models"
	"github.com/go-resty/resty/v2"
)

// CheckResponse turns transport failures and non-2xx replies into errors.
func CheckResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return gateway.ParseAPIError(resp)
	}
	return nil
}

func hasStatus(err error, status int) bool {
	var apiErr *gateway.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// IsUnauthorized checks if error is due to missing/invalid authentication
func IsUnauthorized(err error) bool { return hasStatus(err, http.StatusUnauthorized) }

// IsForbidden checks if error is due to insufficient permissions
func IsForbidden(err error) bool { return hasStatus(err, http.StatusForbidden) }

// IsNotFound checks if error is due to resource not found
func IsNotFound(err error) bool { return hasStatus(err, http.StatusNotFound) }

// AuthResponse is the login and signup reply.
type AuthResponse struct {
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Login authenticates user with email and password
func Login(email, password string) (*AuthResponse, error) {
	clilog.Debug("Attempting login", "email", email)
	var out AuthResponse
	resp, err := client.GetClient().R().
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		Post("/auth/login")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns its first token.
func Register(email, username, password string) (*AuthResponse, error) {
	var out AuthResponse
	resp, err := client.GetClient().R().
		SetBody(map[string]string{"email": email, "username": username, "password": password}).
		SetResult(&out).
		Post("/auth/register")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestPasswordReset asks the server to mail a reset link.
func RequestPasswordReset(email string) error {
	resp, err := client.GetClient().R().
		SetBody(map[string]string{"email": email}).
		Post("/auth/reset-password")
	return CheckResponse(resp, err)
}

// ConfirmPasswordReset sets a new password with a mailed token.
func ConfirmPasswordReset(token, password string) error {
	resp, err := client.GetClient().R().
		SetBody(map[string]string{"token": token, "password": password}).
		Post("/auth/reset-password/confirm")
	return CheckResponse(resp, err)
}

// Me returns the authenticated user.
func Me() (*models.User, error) {
	var out struct {
		User models.User `json:"user"`
	}
	resp, err := client.GetClient().R().SetResult(&out).Get("/auth/me")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// FeedQuery selects a page of the approved feed.
type FeedQuery struct {
	Source string
	Tags   []string
	Limit  int
	Offset int
}

type listing struct {
	Submissions []models.Submission `json:"submissions"`
}

// Feed lists approved submissions, most upvoted first.
func Feed(q FeedQuery) ([]models.Submission, error) {
	req := client.GetClient().R()
	if q.Source != "" {
		req.SetQueryParam("source", q.Source)
	}
	if len(q.Tags) > 0 {
		req.SetQueryParam("tags", strings.Join(q.Tags, ","))
	}
	return getListing(req, "/submissions", q.Limit, q.Offset)
}

// Discover lists the newest approved submissions.
func Discover(limit, offset int) ([]models.Submission, error) {
	return getListing(client.GetClient().R(), "/submissions/discover", limit, offset)
}

// ProfileSubmissions lists what username has submitted.
func ProfileSubmissions(username string, limit, offset int) ([]models.Submission, error) {
	return getListing(client.GetClient().R(), "/profiles/"+username+"/submissions", limit, offset)
}

func getListing(req *resty.Request, path string, limit, offset int) ([]models.Submission, error) {
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		req.SetQueryParam("offset", strconv.Itoa(offset))
	}
	var out listing
	resp, err := req.SetResult(&out).Get(path)
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return out.Submissions, nil
}

// Saved lists username's bookmarks, newest first.
func Saved(username string, limit, offset int) ([]models.Bookmark, error) {
	req := client.GetClient().R()
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		req.SetQueryParam("offset", strconv.Itoa(offset))
	}
	var out struct {
		Bookmarks []models.Bookmark `json:"bookmarks"`
	}
	resp, err := req.SetResult(&out).Get("/profiles/" + username + "/saved")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return out.Bookmarks, nil
}

type submissionReply struct {
	Submission models.Submission `json:"submission"`
}

// GetSubmission fetches one submission.
func GetSubmission(id string) (*models.Submission, error) {
	var out submissionReply
	resp, err := client.GetClient().R().SetResult(&out).Get("/submissions/" + id)
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return &out.Submission, nil
}

// NewSubmission is the submit form.
type NewSubmission struct {
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	Description  string   `json:"description,omitempty"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
	SourceType   string   `json:"source_type"`
	Tags         []string `json:"tags,omitempty"`
}

// CreateSubmission submits a link for moderation.
func CreateSubmission(in NewSubmission) (*models.Submission, error) {
	var out submissionReply
	resp, err := client.GetClient().R().SetBody(in).SetResult(&out).Post("/submissions")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return &out.Submission, nil
}

// Moderate approves or rejects a pending submission. Admin only.
func Moderate(id string, status models.Status) (*models.Submission, error) {
	var out submissionReply
	resp, err := client.GetClient().R().
		SetBody(map[string]string{"status": string(status)}).
		SetResult(&out).
		Patch("/submissions/" + id + "/status")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return &out.Submission, nil
}

// Recount resets a submission's upvote total from its votes. Admin only.
func Recount(id string) (int, error) {
	var out struct {
		Upvotes int `json:"upvotes"`
	}
	resp, err := client.GetClient().R().SetResult(&out).Post("/submissions/" + id + "/recount")
	if err := CheckResponse(resp, err); err != nil {
		return 0, err
	}
	return out.Upvotes, nil
}

// Tags lists every tag.
func Tags() ([]models.Tag, error) {
	var out struct {
		Tags []models.Tag `json:"tags"`
	}
	resp, err := client.GetClient().R().SetResult(&out).Get("/tags")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return out.Tags, nil
}
