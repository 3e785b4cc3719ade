package gates

import (
	"context"
	"log/slog"
	"sync"

	"github.com/careerbridge/careerbridge-go/internal/ports"
	"github.com/careerbridge/careerbridge-go/internal/session"
)

// Overlay identifies which blocking surface, if any, sits over the page.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayLoginPrompt
	OverlayRoleSelect
	OverlayCompanyOnboarding
	OverlayProfessorOnboarding
)

// String implements fmt.Stringer for logging.
func (o Overlay) String() string {
	switch o {
	case OverlayNone:
		return "none"
	case OverlayLoginPrompt:
		return "login_prompt"
	case OverlayRoleSelect:
		return "role_select"
	case OverlayCompanyOnboarding:
		return "company_onboarding"
	case OverlayProfessorOnboarding:
		return "professor_onboarding"
	default:
		return "invalid"
	}
}

// Decision is the dispatcher's full verdict for one evaluation cycle.
type Decision struct {
	Mode    RenderMode
	Overlay Overlay
}

// Dispatcher is the single authoritative evaluator for all four gates. One
// ordered pass per state change replaces independently racing re-evaluations,
// so the gates can never disagree about who blocks.
type Dispatcher struct {
	guard     *RouteGuard
	role      *RoleGate
	company   *CompanyGate
	professor *ProfessorGate
	nav       ports.Navigator
	logger    *slog.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	lastUser string
	decision Decision
	wg       sync.WaitGroup
}

// DispatcherOptions groups dependencies for the Dispatcher.
type DispatcherOptions struct {
	RouteGuard    *RouteGuard
	RoleGate      *RoleGate
	CompanyGate   *CompanyGate
	ProfessorGate *ProfessorGate
	Navigator     ports.Navigator
	Logger        *slog.Logger
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	return &Dispatcher{
		guard:     opts.RouteGuard,
		role:      opts.RoleGate,
		company:   opts.CompanyGate,
		professor: opts.ProfessorGate,
		nav:       opts.Navigator,
		logger:    opts.Logger,
	}
}

func (d *Dispatcher) log() *slog.Logger {
	if d.logger != nil {
		return d.logger
	}
	return slog.Default()
}

// Evaluate runs one ordered gate pass for the given path and snapshot.
// Route guard first; then, over rendered content, role resolution; then the
// role-specific onboarding gates. Gates later in the order never run while an
// earlier gate blocks.
func (d *Dispatcher) Evaluate(ctx context.Context, path string, snap session.Snapshot) Decision {
	mode := d.guard.Decide(path, snap)
	if mode != ModeRender {
		return Decision{Mode: mode, Overlay: overlayForMode(mode)}
	}

	if snap.User == nil {
		return Decision{Mode: ModeRender, Overlay: OverlayNone}
	}

	if d.role.Open(snap) {
		return Decision{Mode: ModeRender, Overlay: OverlayRoleSelect}
	}
	if d.professor.Evaluate(ctx, snap) {
		return Decision{Mode: ModeRender, Overlay: OverlayProfessorOnboarding}
	}
	if d.company.Evaluate(ctx, snap) {
		return Decision{Mode: ModeRender, Overlay: OverlayCompanyOnboarding}
	}
	return Decision{Mode: ModeRender, Overlay: OverlayNone}
}

func overlayForMode(mode RenderMode) Overlay {
	if mode == ModePromptLogin {
		return OverlayLoginPrompt
	}
	return OverlayNone
}

// Decision returns the verdict from the most recent completed cycle.
func (d *Dispatcher) Decision() Decision {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.decision
}

// Watch subscribes the dispatcher to session changes. Each change cancels the
// in-flight evaluation cycle, resets the onboarding memos when the identity
// itself changed, and starts a fresh cycle. The returned function stops
// watching and waits for the last cycle to finish.
func (d *Dispatcher) Watch(mgr *session.Manager) func() {
	unsubscribe := mgr.Subscribe(func(snap session.Snapshot) {
		d.mu.Lock()
		if d.cancel != nil {
			d.cancel()
		}
		ctx, cancel := context.WithCancel(context.Background())
		d.cancel = cancel

		user := ""
		if snap.User != nil {
			user = snap.User.UserName + "|" + string(snap.User.Role)
		}
		identityChanged := user != d.lastUser
		d.lastUser = user
		d.mu.Unlock()

		if identityChanged {
			d.company.Reset()
			d.professor.Reset()
		}

		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			path := "/"
			if d.nav != nil {
				path = d.nav.CurrentPath()
			}
			decision := d.Evaluate(ctx, path, snap)
			if ctx.Err() != nil {
				// Superseded cycle; discard its result.
				return
			}
			d.mu.Lock()
			d.decision = decision
			d.mu.Unlock()
			d.log().Debug("gate cycle settled", "mode", decision.Mode, "overlay", decision.Overlay)
		}()
	})

	return func() {
		unsubscribe()
		d.mu.Lock()
		if d.cancel != nil {
			d.cancel()
		}
		d.mu.Unlock()
		d.wg.Wait()
	}
}
