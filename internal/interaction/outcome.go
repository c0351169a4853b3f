package interaction

import "fmt"

// Action names the user action an Outcome answers.
type Action string

const (
	ActionVote     Action = "vote"
	ActionBookmark Action = "bookmark"
)

// OutcomeKind classifies how an action ended.
type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	// OutcomeNoop means no gateway call was made because the action could
	// not change anything (a vote already recorded or in flight).
	OutcomeNoop
	OutcomeUnauthenticated
	OutcomeAlreadyVoted
	OutcomePermissionDenied
	OutcomeFailed
)

var outcomeNames = map[OutcomeKind]string{
	OutcomeOK:               "ok",
	OutcomeNoop:             "noop",
	OutcomeUnauthenticated:  "unauthenticated",
	OutcomeAlreadyVoted:     "already_voted",
	OutcomePermissionDenied: "permission_denied",
	OutcomeFailed:           "failed",
}

func (k OutcomeKind) String() string {
	if name, ok := outcomeNames[k]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(k))
}

func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *OutcomeKind) UnmarshalText(b []byte) error {
	for kind, name := range outcomeNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", b)
}

// View is what a renderer needs to draw a card.
type View struct {
	HasVoted         bool      `json:"has_voted"`
	IsBookmarked     bool      `json:"is_bookmarked"`
	DisplayedUpvotes int       `json:"displayed_upvotes"`
	VoteEnabled      bool      `json:"vote_enabled"`
	Phase            VotePhase `json:"phase"`
}

// Outcome is the result of one action. Errors stop here: callers show
// Message and keep going.
type Outcome struct {
	Action Action
	Kind   OutcomeKind
	// Err is the gateway error behind a failed action.
	Err error
	// CountSyncErr is set when a vote was recorded but writing the new
	// upvote total failed.
	CountSyncErr error
	View         View
}

// OK reports whether the action took effect.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeOK
}

// Message is the notification shown to the viewer.
func (o Outcome) Message() string {
	switch o.Kind {
	case OutcomeOK:
		if o.Action == ActionBookmark {
			if o.View.IsBookmarked {
				return "Saved to your bookmarks"
			}
			return "Removed from your bookmarks"
		}
		return "Vote recorded"
	case OutcomeNoop:
		if o.View.Phase == PhasePending {
			return "Your vote is still being recorded"
		}
		return "You have already voted on this submission"
	case OutcomeUnauthenticated:
		return fmt.Sprintf("Please sign in to %s", o.Action)
	case OutcomeAlreadyVoted:
		return "You have already voted on this submission"
	case OutcomePermissionDenied:
		return "You are not allowed to change this bookmark"
	default:
		return fmt.Sprintf("Could not %s right now, please try again", o.Action)
	}
}
