package interaction

import "fmt"

// VotePhase is the vote sub-state of a card.
//
//	Idle ──▶ Pending ──▶ Committed
//	           │  ▲
//	           ▼  │
//	          Failed
//
// Committed is terminal. Failed means the last attempt was rejected and the
// viewer may try again; nothing from the failed attempt is kept.
type VotePhase int

const (
	PhaseIdle VotePhase = iota
	PhasePending
	PhaseCommitted
	PhaseFailed
)

func (p VotePhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePending:
		return "pending"
	case PhaseCommitted:
		return "committed"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

func (p VotePhase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *VotePhase) UnmarshalText(b []byte) error {
	for _, candidate := range []VotePhase{PhaseIdle, PhasePending, PhaseCommitted, PhaseFailed} {
		if candidate.String() == string(b) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown vote phase %q", b)
}

// CanTransition reports whether next may follow p.
func (p VotePhase) CanTransition(next VotePhase) bool {
	switch p {
	case PhaseIdle, PhaseFailed:
		return next == PhasePending
	case PhasePending:
		return next == PhaseCommitted || next == PhaseFailed
	default:
		return false
	}
}

// Voted reports whether the viewer's vote has been recorded.
func (p VotePhase) Voted() bool {
	return p == PhaseCommitted
}

// Accepting reports whether a vote attempt may start from p.
func (p VotePhase) Accepting() bool {
	return p == PhaseIdle || p == PhaseFailed
}
