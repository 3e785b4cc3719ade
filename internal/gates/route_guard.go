package gates

// Package gates implements the UI-blocking components of the session core:
// route guard, role resolution, and the role-specific onboarding gates.
// Gates decide; the surrounding UI renders.

import (
	"strings"

	"github.com/careerbridge/careerbridge-go/internal/session"
)

// RenderMode is the route guard's verdict for the current navigation.
type RenderMode int

const (
	// ModeSuspend renders nothing: hydration has not completed.
	ModeSuspend RenderMode = iota
	// ModeRender renders the page content.
	ModeRender
	// ModePromptLogin replaces the page with a login-required prompt.
	// No page content is mounted underneath.
	ModePromptLogin
)

// String implements fmt.Stringer for logging.
func (m RenderMode) String() string {
	switch m {
	case ModeSuspend:
		return "suspend"
	case ModeRender:
		return "render"
	case ModePromptLogin:
		return "prompt_login"
	default:
		return "invalid"
	}
}

// RouteGuard decides whether a path may render for the current session.
type RouteGuard struct {
	public         map[string]struct{}
	publicPrefixes []string
}

// RouteGuardOptions configures the public path set.
type RouteGuardOptions struct {
	// PublicPaths are exact-match public paths. Defaults cover the login
	// surface and the OAuth callback.
	PublicPaths []string
	// PublicPrefixes are prefix-match public roots, for multi-segment
	// registration routes. Defaults cover the registration root.
	PublicPrefixes []string
}

// NewRouteGuard constructs a RouteGuard. Zero options yield the default
// public set: /login, /oauth/callback, and everything under /register.
func NewRouteGuard(opts RouteGuardOptions) *RouteGuard {
	paths := opts.PublicPaths
	if paths == nil {
		paths = []string{"/login", "/oauth/callback"}
	}
	prefixes := opts.PublicPrefixes
	if prefixes == nil {
		prefixes = []string{"/register"}
	}

	public := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		public[p] = struct{}{}
	}
	return &RouteGuard{public: public, publicPrefixes: prefixes}
}

// IsPublic reports whether the path renders without authentication.
func (g *RouteGuard) IsPublic(path string) bool {
	if _, ok := g.public[path]; ok {
		return true
	}
	for _, prefix := range g.publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Decide returns the render mode for path under the given session snapshot.
func (g *RouteGuard) Decide(path string, snap session.Snapshot) RenderMode {
	if !snap.IsReady {
		return ModeSuspend
	}
	if snap.User != nil || g.IsPublic(path) {
		return ModeRender
	}
	return ModePromptLogin
}
