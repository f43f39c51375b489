// Package guard decides what a screen may render for the current session.
package guard

import (
	"strings"

	"reportdesk/internal/features/session"
	"reportdesk/internal/models"
)

// Action is what the caller should do with the requested path.
type Action int

const (
	// ActionWait renders nothing until the session leaves the loading state.
	ActionWait Action = iota
	ActionRender
	ActionRedirect
)

func (a Action) String() string {
	switch a {
	case ActionWait:
		return "wait"
	case ActionRender:
		return "render"
	case ActionRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the outcome of Evaluate. ReturnTo is set on login redirects so
// the user lands on the requested page afterwards.
type Decision struct {
	Action   Action
	Target   string
	ReturnTo string
}

// Space classifies a path.
type Space int

const (
	SpacePublic Space = iota
	SpaceUser
	SpaceAdmin
	SpaceRoot
)

type Guard struct {
	config *Config
}

func New(config *Config) *Guard {
	if config == nil {
		config = DefaultConfig()
	}
	return &Guard{config: config}
}

// Classify maps a path onto its space. "/" and unknown paths are SpaceRoot
// and resolve to the role home.
func (g *Guard) Classify(path string) Space {
	path = normalize(path)
	switch {
	case path == g.config.Login, path == g.config.Register, path == g.config.AccessDenied:
		return SpacePublic
	case under(path, g.config.AdminRoot):
		return SpaceAdmin
	case under(path, g.config.UserRoot):
		return SpaceUser
	default:
		return SpaceRoot
	}
}

// Evaluate is pure: the same snapshot and path always give the same decision.
func (g *Guard) Evaluate(snap session.Snapshot, path string) Decision {
	path = normalize(path)
	if snap.State == session.StateLoading {
		return Decision{Action: ActionWait}
	}

	space := g.Classify(path)
	if space == SpacePublic {
		return Decision{Action: ActionRender}
	}

	if snap.State != session.StateAuthenticated || snap.User == nil {
		d := Decision{Action: ActionRedirect, Target: g.config.Login}
		if space != SpaceRoot {
			d.ReturnTo = path
		}
		return d
	}

	admin := snap.User.Role == models.RoleAdmin
	switch space {
	case SpaceAdmin:
		if !admin {
			return Decision{Action: ActionRedirect, Target: g.config.AccessDenied}
		}
		return Decision{Action: ActionRender}
	case SpaceUser:
		if admin {
			return Decision{Action: ActionRedirect, Target: g.config.AdminRoot}
		}
		return Decision{Action: ActionRender}
	default:
		return Decision{Action: ActionRedirect, Target: g.Home(snap.User)}
	}
}

// Home is the landing path for the user's role.
func (g *Guard) Home(user *models.AuthUser) string {
	if user.IsAdmin() {
		return g.config.AdminRoot
	}
	return g.config.UserRoot
}

// AfterLogin picks the path to open once user has signed in: the remembered
// path when the role may see it, the role home otherwise.
func (g *Guard) AfterLogin(user *models.AuthUser, returnTo string) string {
	if returnTo == "" || user == nil {
		return g.Home(user)
	}
	d := g.Evaluate(session.Snapshot{State: session.StateAuthenticated, User: user}, returnTo)
	if d.Action == ActionRender && g.Classify(returnTo) != SpacePublic {
		return normalize(returnTo)
	}
	return g.Home(user)
}

func under(path, root string) bool {
	return path == root || strings.HasPrefix(path, root+"/")
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
