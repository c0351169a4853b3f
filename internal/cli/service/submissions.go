package service

import (
	"fmt"
	"strings"

	"github.com/curiohub/curiohub/internal/cli/api"
	"github.com/curiohub/curiohub/internal/cli/config"
	"github.com/curiohub/curiohub/internal/cli/formatter"
	"github.com/curiohub/curiohub/internal/models"
)

// Feed prints a page of the approved feed.
func Feed(q api.FeedQuery) error {
	if _, err := UseCredentials(); err != nil {
		return err
	}
	subs, err := api.Feed(q)
	if err != nil {
		return err
	}
	return printSubmissions(subs)
}

// Discover prints the newest approved submissions.
func Discover(limit, offset int) error {
	subs, err := api.Discover(limit, offset)
	if err != nil {
		return err
	}
	return printSubmissions(subs)
}

// Show prints one submission.
func Show(id string) error {
	if _, err := UseCredentials(); err != nil {
		return err
	}
	sub, err := api.GetSubmission(id)
	if err != nil {
		return err
	}
	link := ShareURL(sub.ID)
	if formatter.JSON() {
		return formatter.PrintJSON(struct {
			*models.Submission
			ShareURL string `json:"share_url"`
		}{sub, link})
	}
	formatter.PrintSubmission(sub)
	formatter.PrintShareLink(link)
	return nil
}

// ShareURL is the web page of a submission under web.base_url.
func ShareURL(id string) string {
	return strings.TrimRight(config.GetString("web.base_url"), "/") + "/post/" + id
}

// Saved prints username's bookmarks. An empty username means the logged-in
// user.
func Saved(username string, limit, offset int) error {
	if username == "" {
		creds, err := RequireCredentials()
		if err != nil {
			return err
		}
		username = creds.Username
	}
	marks, err := api.Saved(username, limit, offset)
	if err != nil {
		return err
	}
	subs := make([]models.Submission, len(marks))
	for i, m := range marks {
		subs[i] = m.Submission
	}
	return printSubmissions(subs)
}

// Submitted prints what username has submitted. The owner also sees
// pending and rejected entries.
func Submitted(username string, limit, offset int) error {
	creds, err := UseCredentials()
	if err != nil {
		return err
	}
	if username == "" {
		if creds == nil {
			return ErrNotLoggedIn
		}
		username = creds.Username
	}
	subs, err := api.ProfileSubmissions(username, limit, offset)
	if err != nil {
		return err
	}
	return printSubmissions(subs)
}

// Submit posts a link for moderation.
func Submit(in api.NewSubmission) error {
	if _, err := RequireCredentials(); err != nil {
		return err
	}
	if !models.SourceType(in.SourceType).Valid() {
		return fmt.Errorf("unknown source %q, expected one of %v", in.SourceType, models.SourceTypes)
	}
	sub, err := api.CreateSubmission(in)
	if err != nil {
		return err
	}
	if formatter.JSON() {
		return formatter.PrintJSON(sub)
	}
	formatter.PrintSuccess("Submitted %s, waiting for moderation", formatter.Bold.Sprint(sub.Title))
	formatter.PrintInfo("id %s", sub.ID)
	return nil
}

// Moderate approves or rejects a pending submission.
func Moderate(id string, status models.Status) error {
	creds, err := RequireCredentials()
	if err != nil {
		return err
	}
	if !creds.IsAdmin {
		return fmt.Errorf("%s is not an admin", creds.Username)
	}
	sub, err := api.Moderate(id, status)
	if err != nil {
		return err
	}
	formatter.PrintSuccess("%s is now %s", sub.Title, sub.Status)
	return nil
}

// Recount resets a submission's stored upvote total from its vote rows.
func Recount(id string) error {
	if _, err := RequireCredentials(); err != nil {
		return err
	}
	n, err := api.Recount(id)
	if err != nil {
		return err
	}
	formatter.PrintSuccess("%s now shows %d upvotes", id, n)
	return nil
}

// Tags prints every tag slug.
func Tags() error {
	tags, err := api.Tags()
	if err != nil {
		return err
	}
	if formatter.JSON() {
		return formatter.PrintJSON(tags)
	}
	for _, t := range tags {
		fmt.Fprintf(formatter.Out, "%-16s %s\n", t.Slug, formatter.Faint.Sprint(t.Name))
	}
	return nil
}

func printSubmissions(subs []models.Submission) error {
	if formatter.JSON() {
		if subs == nil {
			subs = []models.Submission{}
		}
		return formatter.PrintJSON(subs)
	}
	formatter.PrintSubmissions(subs)
	return nil
}

// ParseStatus maps approve/reject to a moderation status.
func ParseStatus(verb string) (models.Status, error) {
	switch verb {
	case "approve":
		return models.StatusApproved, nil
	case "reject":
		return models.StatusRejected, nil
	default:
		return "", fmt.Errorf("unknown moderation action %q", verb)
	}
}
