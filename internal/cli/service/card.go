package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/curiohub/curiohub/internal/cli/api"
	"github.com/curiohub/curiohub/internal/cli/client"
	"github.com/curiohub/curiohub/internal/cli/clilog"
	"github.com/curiohub/curiohub/internal/cli/formatter"
	"github.com/curiohub/curiohub/internal/cli/prompter"
	"github.com/curiohub/curiohub/internal/gateway"
	"github.com/curiohub/curiohub/internal/interaction"
	"github.com/curiohub/curiohub/internal/models"
)

// Card is one submission with a mounted controller.
type Card struct {
	Submission *models.Submission
	Controller *interaction.Controller
}

// OpenCard resolves the viewer once, loads the submission and mounts a
// controller over the HTTP gateway. Without saved credentials the card is
// anonymous and no user lookup is made.
func OpenCard(ctx context.Context, id string) (*Card, error) {
	creds, err := UseCredentials()
	if err != nil {
		return nil, err
	}
	remote := gateway.NewRemote(client.GetClient())

	session := interaction.Anonymous()
	if creds != nil {
		if session, err = interaction.ResolveSession(ctx, remote); err != nil {
			return nil, err
		}
	}

	sub, err := api.GetSubmission(id)
	if err != nil {
		return nil, err
	}

	ctrl := interaction.NewController(session, remote, interaction.Snapshot{ID: sub.ID, Upvotes: sub.Upvotes})
	if err := ctrl.Mount(ctx); err != nil {
		// The card still works; it just starts unbookmarked.
		clilog.Warn("Bookmark lookup failed", "submission", sub.ID, "err", err)
	}
	return &Card{Submission: sub, Controller: ctrl}, nil
}

// OutcomeError is returned when an action did not take effect for a
// reason the user has to act on.
type OutcomeError struct {
	Outcome interaction.Outcome
}

func (e *OutcomeError) Error() string {
	return e.Outcome.Message()
}

func (e *OutcomeError) Unwrap() error {
	return e.Outcome.Err
}

func report(out interaction.Outcome) error {
	if formatter.JSON() {
		if err := formatter.PrintJSON(outcomeJSON(out)); err != nil {
			return err
		}
	} else {
		formatter.PrintOutcome(out)
	}
	switch out.Kind {
	case interaction.OutcomeOK, interaction.OutcomeNoop, interaction.OutcomeAlreadyVoted:
		return nil
	default:
		return &OutcomeError{Outcome: out}
	}
}

func outcomeJSON(out interaction.Outcome) map[string]interface{} {
	m := map[string]interface{}{
		"action":  out.Action,
		"outcome": out.Kind,
		"message": out.Message(),
		"view":    out.View,
	}
	if out.CountSyncErr != nil {
		m["warning"] = "vote recorded but the total could not be updated"
	}
	return m
}

// Vote upvotes one submission.
func Vote(ctx context.Context, id string) error {
	card, err := OpenCard(ctx, id)
	if err != nil {
		return err
	}
	return report(card.Controller.CastVote(ctx))
}

// ToggleBookmark saves or unsaves one submission.
func ToggleBookmark(ctx context.Context, id string) error {
	card, err := OpenCard(ctx, id)
	if err != nil {
		return err
	}
	return report(card.Controller.ToggleBookmark(ctx))
}

// Interactive shows a card and reads single-letter commands until q or
// end of input. Failed actions are reported and the loop continues.
func Interactive(ctx context.Context, id string) error {
	card, err := OpenCard(ctx, id)
	if err != nil {
		return err
	}
	formatter.PrintSubmission(card.Submission)
	if !card.Controller.Session().Authenticated() {
		formatter.PrintWarning("Not logged in: voting and saving are disabled")
	}

	for {
		formatter.PrintCard(card.Controller.View())
		line, err := prompter.PromptString("> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.ToLower(line) {
		case "v", "vote":
			_ = report(card.Controller.CastVote(ctx))
		case "b", "bookmark", "save":
			_ = report(card.Controller.ToggleBookmark(ctx))
		case "q", "quit", "exit":
			return nil
		case "":
		default:
			formatter.PrintWarning("Unknown command %q", line)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
