package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"reportdesk/internal/common/config"
	"reportdesk/internal/features/session"
	"reportdesk/internal/models"
)

var (
	userSnap  = session.Snapshot{State: session.StateAuthenticated, User: &models.AuthUser{ID: "u1", Role: models.RoleUser}}
	adminSnap = session.Snapshot{State: session.StateAuthenticated, User: &models.AuthUser{ID: "a1", Role: models.RoleAdmin}}
	anonSnap  = session.Snapshot{State: session.StateAnonymous}
	loadSnap  = session.Snapshot{State: session.StateLoading}
)

func TestGuard_Evaluate(t *testing.T) {
	g := New(DefaultConfig())

	tests := []struct {
		name string
		snap session.Snapshot
		path string
		want Decision
	}{
		// loading never renders, whatever the path
		{name: "loading protected", snap: loadSnap, path: "/dashboard", want: Decision{Action: ActionWait}},
		{name: "loading admin", snap: loadSnap, path: "/admin/templates", want: Decision{Action: ActionWait}},
		{name: "loading public", snap: loadSnap, path: "/login", want: Decision{Action: ActionWait}},

		// public pages
		{name: "anon login", snap: anonSnap, path: "/login", want: Decision{Action: ActionRender}},
		{name: "anon register", snap: anonSnap, path: "/register", want: Decision{Action: ActionRender}},
		{name: "user access denied page", snap: userSnap, path: "/admin-access-denied", want: Decision{Action: ActionRender}},

		// anonymous on protected pages
		{name: "anon dashboard", snap: anonSnap, path: "/dashboard/my-reports", want: Decision{Action: ActionRedirect, Target: "/login", ReturnTo: "/dashboard/my-reports"}},
		{name: "anon admin", snap: anonSnap, path: "/admin", want: Decision{Action: ActionRedirect, Target: "/login", ReturnTo: "/admin"}},
		{name: "anon root", snap: anonSnap, path: "/", want: Decision{Action: ActionRedirect, Target: "/login"}},

		// role separation
		{name: "admin in user space", snap: adminSnap, path: "/dashboard", want: Decision{Action: ActionRedirect, Target: "/admin"}},
		{name: "admin in user subpage", snap: adminSnap, path: "/dashboard/billing", want: Decision{Action: ActionRedirect, Target: "/admin"}},
		{name: "user in admin space", snap: userSnap, path: "/admin/templates/t1", want: Decision{Action: ActionRedirect, Target: "/admin-access-denied"}},
		{name: "user in user space", snap: userSnap, path: "/dashboard/tools/t1", want: Decision{Action: ActionRender}},
		{name: "admin in admin space", snap: adminSnap, path: "/admin/templates", want: Decision{Action: ActionRender}},

		// root and unknown paths resolve to the role home
		{name: "user root", snap: userSnap, path: "/", want: Decision{Action: ActionRedirect, Target: "/dashboard"}},
		{name: "admin root", snap: adminSnap, path: "", want: Decision{Action: ActionRedirect, Target: "/admin"}},
		{name: "user unknown", snap: userSnap, path: "/nowhere", want: Decision{Action: ActionRedirect, Target: "/dashboard"}},

		// path normalisation
		{name: "trailing slash", snap: userSnap, path: "/dashboard/", want: Decision{Action: ActionRender}},
		{name: "query string", snap: anonSnap, path: "/dashboard/reports?id=1", want: Decision{Action: ActionRedirect, Target: "/login", ReturnTo: "/dashboard/reports"}},
		{name: "admin prefix lookalike", snap: userSnap, path: "/administrator", want: Decision{Action: ActionRedirect, Target: "/dashboard"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Evaluate(tt.snap, tt.path))
		})
	}
}

func TestGuard_AuthenticatedWithoutUserIsAnonymous(t *testing.T) {
	g := New(nil)
	d := g.Evaluate(session.Snapshot{State: session.StateAuthenticated}, "/dashboard")
	assert.Equal(t, ActionRedirect, d.Action)
	assert.Equal(t, "/login", d.Target)
}

func TestGuard_AfterLogin(t *testing.T) {
	g := New(DefaultConfig())

	tests := []struct {
		name     string
		user     *models.AuthUser
		returnTo string
		want     string
	}{
		{name: "user back to requested page", user: userSnap.User, returnTo: "/dashboard/my-reports", want: "/dashboard/my-reports"},
		{name: "admin back to requested page", user: adminSnap.User, returnTo: "/admin/templates", want: "/admin/templates"},
		{name: "user requested admin page", user: userSnap.User, returnTo: "/admin/templates", want: "/dashboard"},
		{name: "admin requested user page", user: adminSnap.User, returnTo: "/dashboard", want: "/admin"},
		{name: "nothing remembered", user: userSnap.User, returnTo: "", want: "/dashboard"},
		{name: "remembered login page", user: adminSnap.User, returnTo: "/login", want: "/admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.AfterLogin(tt.user, tt.returnTo))
		})
	}
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.RoutesConfig{AdminRoot: "/console", UserRoot: "/app"})
	assert.NoError(t, cfg.Validate())

	g := New(cfg)
	assert.Equal(t, Decision{Action: ActionRedirect, Target: "/console"}, g.Evaluate(adminSnap, "/app/x"))
	assert.Equal(t, SpaceAdmin, g.Classify("/console/templates"))

	bad := DefaultConfig()
	bad.UserRoot = "dashboard"
	assert.Error(t, bad.Validate())
}
