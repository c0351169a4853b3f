package interaction

import (
	"context"
	"fmt"
)

// Session carries the viewer for the lifetime of a controller. It is
// resolved once and handed to NewController; actions never look the viewer
// up again.
type Session struct {
	viewer *Viewer
}

// NewSession wraps an already-known viewer. A nil viewer is anonymous.
func NewSession(v *Viewer) Session {
	if v == nil {
		return Session{}
	}
	copied := *v
	return Session{viewer: &copied}
}

// Anonymous returns a session with no viewer.
func Anonymous() Session {
	return Session{}
}

// ResolveSession asks the gateway for the current user exactly once.
func ResolveSession(ctx context.Context, gw Gateway) (Session, error) {
	v, err := gw.CurrentUser(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("resolve current user: %w", err)
	}
	return NewSession(v), nil
}

// Viewer returns the authenticated viewer, if any.
func (s Session) Viewer() (Viewer, bool) {
	if s.viewer == nil {
		return Viewer{}, false
	}
	return *s.viewer, true
}

func (s Session) Authenticated() bool {
	return s.viewer != nil
}
