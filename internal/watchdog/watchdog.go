package watchdog

// Package watchdog force-terminates sessions whose access token has expired,
// via a hard-cap timer and a response-inspecting HTTP interceptor. Both paths
// funnel into the same idempotent forced logout.

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainsession "github.com/careerbridge/careerbridge-go/internal/domain/session"
	"github.com/careerbridge/careerbridge-go/internal/ports"
	"github.com/careerbridge/careerbridge-go/internal/session"
)

// HardCap is the longest any session may run past its last token change,
// whatever the token's own expiry claim says.
const HardCap = 15 * time.Minute

// forceGuardWindow collapses concurrent forced-logout triggers into one
// execution; after it elapses a fresh trigger may run again.
const forceGuardWindow = 3 * time.Second

// Watchdog owns the single expiry timer and the forced-logout guard.
type Watchdog struct {
	mgr    *session.Manager
	store  ports.CredentialStore
	nav    ports.Navigator
	logger *slog.Logger
	now    func() time.Time

	mu         sync.Mutex
	timer      *time.Timer
	lastToken  string
	lastForced time.Time
}

// Options groups dependencies for the Watchdog.
type Options struct {
	Manager   *session.Manager
	Store     ports.CredentialStore
	Navigator ports.Navigator
	Logger    *slog.Logger
	// Now overrides the clock in tests.
	Now func() time.Time
}

// New constructs a Watchdog.
func New(opts Options) *Watchdog {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Watchdog{
		mgr:    opts.Manager,
		store:  opts.Store,
		nav:    opts.Navigator,
		logger: opts.Logger,
		now:    now,
	}
}

func (w *Watchdog) log() *slog.Logger {
	if w.logger != nil {
		return w.logger
	}
	return slog.Default()
}

// FireDelay computes how long after now the expiry timer should fire for the
// given token: the token's exp claim when decodable and sooner than the hard
// cap, else the hard cap.
func FireDelay(token string, now time.Time) time.Duration {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if exp, expErr := claims.GetExpirationTime(); expErr == nil && exp != nil {
			if until := exp.Sub(now); until < HardCap {
				if until < 0 {
					return 0
				}
				return until
			}
		}
	}
	return HardCap
}

// TrackToken reschedules the expiry timer for a new access token. An empty
// token cancels the timer. Called on every token change; the previous timer
// is always cancelled first.
func (w *Watchdog) TrackToken(token string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.lastToken = token
	if token == "" {
		return
	}

	delay := FireDelay(token, w.now())
	w.timer = time.AfterFunc(delay, func() {
		ctx := context.Background()
		if w.ShouldDefer(ctx) {
			w.log().InfoContext(ctx, "expiry timer fired but logout deferred")
			return
		}
		w.ForceLogout(ctx, "expiry timer")
	})
}

// Watch subscribes the watchdog to session changes so every login or logout
// reschedules the timer. The returned function unsubscribes and stops the
// timer.
func (w *Watchdog) Watch() func() {
	unsubscribe := w.mgr.Subscribe(func(snap session.Snapshot) {
		token := ""
		if snap.User != nil {
			token = snap.User.AccessToken
		}
		w.mu.Lock()
		changed := token != w.lastToken
		w.mu.Unlock()
		if changed {
			w.TrackToken(token)
		}
	})
	return func() {
		unsubscribe()
		w.Stop()
	}
}

// Stop cancels the timer.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// ShouldDefer reports whether a forced logout must be suppressed right now:
// on the login surface, or while the stored role is still unresolved. Without
// this, a forced logout mid-onboarding would loop the user back to login.
func (w *Watchdog) ShouldDefer(ctx context.Context) bool {
	if w.nav != nil && w.nav.CurrentPath() == w.mgr.LoginPath() {
		return true
	}

	creds, err := w.store.Load(ctx)
	if err != nil {
		w.log().WarnContext(ctx, "credential load failed in deferral check", "error", err)
		return false
	}
	return domainsession.NormalizeRole(creds.Role).NeedsResolution()
}

// ForceLogout performs the automatic session termination: best-effort server
// termination, full credential clear, and navigation to login, with a hard
// reload when already there. Concurrent triggers within the guard window
// collapse into a single execution.
func (w *Watchdog) ForceLogout(ctx context.Context, reason string) {
	w.mu.Lock()
	if w.now().Sub(w.lastForced) < forceGuardWindow {
		w.mu.Unlock()
		return
	}
	w.lastForced = w.now()
	w.mu.Unlock()

	w.log().InfoContext(ctx, "forcing logout", "reason", reason)
	alreadyOnLogin := w.nav != nil && w.nav.CurrentPath() == w.mgr.LoginPath()
	w.mgr.Logout(ctx)

	// Already on the login surface: hard reload to flush stale in-memory state.
	if alreadyOnLogin {
		w.nav.Reload()
	}
}
