package gates

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	domainsession "github.com/careerbridge/careerbridge-go/internal/domain/session"
	apperrors "github.com/careerbridge/careerbridge-go/internal/errors"
	"github.com/careerbridge/careerbridge-go/internal/ports"
	"github.com/careerbridge/careerbridge-go/internal/session"
)

// ProfessorForm carries the professor profile creation fields.
type ProfessorForm struct {
	Department string
	Faculty    string
}

// ProfessorGate forces a profile creation form on professor sessions that
// have no profile record yet.
type ProfessorGate struct {
	mgr    *session.Manager
	api    ports.ProfessorProfileAPI
	logger *slog.Logger

	mu   sync.Mutex
	done bool
}

// NewProfessorGate constructs a ProfessorGate.
func NewProfessorGate(mgr *session.Manager, api ports.ProfessorProfileAPI, logger *slog.Logger) *ProfessorGate {
	return &ProfessorGate{mgr: mgr, api: api, logger: logger}
}

func (g *ProfessorGate) log() *slog.Logger {
	if g.logger != nil {
		return g.logger
	}
	return slog.Default()
}

// Reset clears the per-session memo. The dispatcher calls it when the
// authenticated identity changes.
func (g *ProfessorGate) Reset() {
	g.mu.Lock()
	g.done = false
	g.mu.Unlock()
}

// Evaluate reports whether the creation form must block the app. A confirmed
// "not found" means the profile is needed; any other fetch failure fails open
// for the same reason: a false negative would silently block professor-only
// features later.
func (g *ProfessorGate) Evaluate(ctx context.Context, snap session.Snapshot) bool {
	if snap.User == nil || snap.User.Role != domainsession.RoleProfessor {
		return false
	}
	g.mu.Lock()
	if g.done {
		g.mu.Unlock()
		return false
	}
	g.mu.Unlock()

	_, err := g.api.GetProfessorProfile(ctx, snap.User.AccessToken)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		if !apperrors.IsNotFound(err) {
			g.log().WarnContext(ctx, "professor profile fetch failed, failing open", "error", err)
		}
		return true
	}

	// Profile exists; nothing to create for the rest of the session.
	g.mu.Lock()
	g.done = true
	g.mu.Unlock()
	return false
}

// Submit validates and creates the professor profile. Success closes the gate
// for the remainder of the session.
func (g *ProfessorGate) Submit(ctx context.Context, form ProfessorForm) error {
	department := strings.TrimSpace(form.Department)
	faculty := strings.TrimSpace(form.Faculty)
	if department == "" {
		return apperrors.Validation("department is required")
	}
	if faculty == "" {
		return apperrors.Validation("faculty is required")
	}

	_, err := g.api.CreateProfessorProfile(ctx, g.mgr.AccessToken(), ports.ProfessorProfile{
		Department: department,
		Faculty:    faculty,
	})
	if err != nil {
		g.log().WarnContext(ctx, "professor profile creation failed", "error", err)
		return err
	}

	g.mu.Lock()
	g.done = true
	g.mu.Unlock()
	return nil
}
