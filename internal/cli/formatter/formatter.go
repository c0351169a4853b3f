// Package formatter prints CLI output in color, or as JSON when
// output.format is "json".
package formatter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/curiohub/curiohub/internal/cli/config"
	"github.com/curiohub/curiohub/internal/interaction"
	"github.com/curiohub/curiohub/internal/models"
	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
)

var (
	Bold    = color.New(color.Bold)
	Success = color.New(color.FgGreen)
	Error   = color.New(color.FgRed)
	Info    = color.New(color.FgCyan)
	Warning = color.New(color.FgYellow)
	Faint   = color.New(color.Faint)
)

// Out is where formatted output goes.
var Out io.Writer = os.Stdout

// JSON reports whether machine-readable output was requested.
func JSON() bool {
	return config.GetString("output.format") == "json"
}

// PrintJSON writes v as indented JSON.
func PrintJSON(v interface{}) error {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(Out, string(data))
	return err
}

func PrintSuccess(format string, args ...interface{}) {
	Success.Fprintf(Out, format+"\n", args...)
}

func PrintError(format string, args ...interface{}) {
	Error.Fprintf(Out, format+"\n", args...)
}

func PrintInfo(format string, args ...interface{}) {
	Info.Fprintf(Out, format+"\n", args...)
}

func PrintWarning(format string, args ...interface{}) {
	Warning.Fprintf(Out, format+"\n", args...)
}

// PrintSubmissions lists submissions one per block, numbered from 1.
func PrintSubmissions(subs []models.Submission) {
	if len(subs) == 0 {
		PrintInfo("Nothing here yet")
		return
	}
	for i, s := range subs {
		fmt.Fprintf(Out, "%3d. %s\n", i+1, Bold.Sprint(s.Title))
		fmt.Fprintf(Out, "     %s  %s\n", Info.Sprint(s.URL), Faint.Sprint(s.SourceType))
		meta := fmt.Sprintf("▲ %d  by %s  %s", s.Upvotes, s.User.Username, s.CreatedAt.Format(time.DateOnly))
		if tags := tagSlugs(s.Tags); tags != "" {
			meta += "  #" + tags
		}
		if s.Status != models.StatusApproved {
			meta += "  [" + string(s.Status) + "]"
		}
		fmt.Fprintf(Out, "     %s\n", Faint.Sprint(meta))
		fmt.Fprintf(Out, "     id %s\n", Faint.Sprint(s.ID))
	}
}

// PrintSubmission shows one submission in full.
func PrintSubmission(s *models.Submission) {
	fmt.Fprintln(Out, Bold.Sprint(s.Title))
	fmt.Fprintln(Out, Info.Sprint(s.URL))
	if s.Description != "" {
		fmt.Fprintln(Out, s.Description)
	}
	fmt.Fprintf(Out, "%s  ▲ %d  by %s  %s\n", s.SourceType, s.Upvotes, s.User.Username, s.Status)
	if tags := tagSlugs(s.Tags); tags != "" {
		fmt.Fprintln(Out, Faint.Sprint("#"+tags))
	}
}

// PrintShareLink prints the link to a submission's web page.
func PrintShareLink(url string) {
	fmt.Fprintf(Out, "%s %s\n", Faint.Sprint("share:"), url)
}

// PrintCard renders the vote and bookmark controls of a card.
func PrintCard(v interaction.View) {
	vote := Success.Sprintf("[v] upvote ▲ %d", v.DisplayedUpvotes)
	switch {
	case v.Phase.Voted():
		vote = Bold.Sprintf("▲ %d voted", v.DisplayedUpvotes)
	case !v.VoteEnabled:
		vote = Faint.Sprintf("▲ %d %s", v.DisplayedUpvotes, v.Phase)
	}
	mark := "[b] save"
	if v.IsBookmarked {
		mark = Warning.Sprint("[b] saved ★")
	}
	fmt.Fprintf(Out, "%s   %s   [q] quit\n", vote, mark)
}

// PrintOutcome shows the notification for an action.
func PrintOutcome(out interaction.Outcome) {
	switch out.Kind {
	case interaction.OutcomeOK:
		PrintSuccess("%s", out.Message())
		if out.CountSyncErr != nil {
			PrintWarning("The vote counts, but the total shown to others may lag")
		}
	case interaction.OutcomeNoop:
		PrintInfo("%s", out.Message())
	default:
		PrintError("%s", out.Message())
	}
}

func tagSlugs(tags []models.Tag) string {
	slugs := make([]string, len(tags))
	for i, t := range tags {
		slugs[i] = t.Slug
	}
	return strings.Join(slugs, " #")
}
