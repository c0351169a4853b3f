package gateway

import (
	"context"
	"fmt"
	"net/http"

	apierrors "github.com/curiohub/curiohub/internal/errors"
	"github.com/curiohub/curiohub/internal/interaction"
	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// APIError is a non-2xx reply from the API.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Field      string `json:"field"`
	Details    string `json:"details"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("[%d] %s: %s", e.StatusCode, e.Code, e.Message)
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return msg
}

// ParseAPIError reads an error reply. Bodies that are not the API's JSON
// error shape become code "unknown_error" with the raw body as message.
func ParseAPIError(resp *resty.Response) *APIError {
	apiErr := &APIError{}
	if err := json.Unmarshal(resp.Body(), apiErr); err != nil || apiErr.Code == "" {
		apiErr = &APIError{Code: "unknown_error", Message: string(resp.Body())}
	}
	apiErr.StatusCode = resp.StatusCode()
	return apiErr
}

// Remote is a Gateway speaking to the API's row endpoints. The client must
// already carry the base URL (…/api/v1) and the caller's bearer token.
type Remote struct {
	client *resty.Client
}

var _ interaction.Gateway = (*Remote)(nil)

// NewRemote wraps client.
func NewRemote(client *resty.Client) *Remote {
	return &Remote{client: client}
}

type rowBody struct {
	UserID       string `json:"user_id"`
	SubmissionID string `json:"submission_id"`
}

// CurrentUser returns nil when the token is missing or rejected.
func (r *Remote) CurrentUser(ctx context.Context) (*interaction.Viewer, error) {
	var body struct {
		User interaction.Viewer `json:"user"`
	}
	resp, err := r.client.R().SetContext(ctx).Get("/auth/me")
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return nil, nil
	}
	if err := decode(resp, &body); err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	return &body.User, nil
}

func (r *Remote) FindBookmark(ctx context.Context, userID, submissionID string) (*interaction.BookmarkRow, error) {
	resp, err := r.client.R().SetContext(ctx).Get("/bookmarks/" + submissionID)
	if err != nil {
		return nil, fmt.Errorf("find bookmark: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	var row interaction.BookmarkRow
	if err := decode(resp, &row); err != nil {
		return nil, fmt.Errorf("find bookmark: %w", err)
	}
	if row.UserID != userID {
		return nil, fmt.Errorf("find bookmark: %w", interaction.ErrPermissionDenied)
	}
	return &row, nil
}

func (r *Remote) InsertVote(ctx context.Context, userID, submissionID string) (*interaction.VoteRow, error) {
	resp, err := r.client.R().SetContext(ctx).
		SetBody(rowBody{UserID: userID, SubmissionID: submissionID}).
		Post("/votes")
	if err != nil {
		return nil, fmt.Errorf("insert vote: %w", err)
	}
	var row interaction.VoteRow
	if err := decode(resp, &row); err != nil {
		return nil, fmt.Errorf("insert vote: %w", err)
	}
	return &row, nil
}

func (r *Remote) UpdateUpvoteCount(ctx context.Context, submissionID string, count int) error {
	resp, err := r.client.R().SetContext(ctx).
		SetBody(map[string]int{"upvotes": count}).
		Patch("/submissions/" + submissionID + "/upvotes")
	if err != nil {
		return fmt.Errorf("update upvotes: %w", err)
	}
	if err := decode(resp, nil); err != nil {
		return fmt.Errorf("update upvotes: %w", err)
	}
	return nil
}

func (r *Remote) InsertBookmark(ctx context.Context, userID, submissionID string) (*interaction.BookmarkRow, error) {
	resp, err := r.client.R().SetContext(ctx).
		SetBody(rowBody{UserID: userID, SubmissionID: submissionID}).
		Post("/bookmarks")
	if err != nil {
		return nil, fmt.Errorf("insert bookmark: %w", err)
	}
	var row interaction.BookmarkRow
	if err := decode(resp, &row); err != nil {
		return nil, fmt.Errorf("insert bookmark: %w", err)
	}
	return &row, nil
}

// DeleteBookmark only removes the caller's own bookmark; the API has no way
// to name another user's.
func (r *Remote) DeleteBookmark(ctx context.Context, userID, submissionID string) error {
	resp, err := r.client.R().SetContext(ctx).Delete("/bookmarks/" + submissionID)
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	if err := decode(resp, nil); err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	return nil
}

// decode unmarshals a 2xx body into out (when non-nil) and turns error
// replies into errors the controller can classify.
func decode(resp *resty.Response, out interface{}) error {
	if resp.IsError() {
		return classify(resp)
	}
	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	return json.Unmarshal(resp.Body(), out)
}

func classify(resp *resty.Response) error {
	apiErr := ParseAPIError(resp)

	switch {
	case resp.StatusCode() == http.StatusConflict && apiErr.Code == string(apierrors.ErrDuplicate):
		return fmt.Errorf("%w: %v", interaction.ErrConstraintViolation, apiErr)
	case resp.StatusCode() == http.StatusForbidden:
		return fmt.Errorf("%w: %v", interaction.ErrPermissionDenied, apiErr)
	case resp.StatusCode() == http.StatusNotFound:
		return fmt.Errorf("%w: %v", ErrSubmissionNotFound, apiErr)
	default:
		return apiErr
	}
}
