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

// CompanyForm carries the company onboarding form fields. Country maps to the
// backend profile's location field.
type CompanyForm struct {
	Name        string
	Country     string
	Description string
}

// CompanyGate forces a one-time onboarding form on freshly registered company
// accounts whose profile is missing or incomplete.
type CompanyGate struct {
	mgr    *session.Manager
	api    ports.CompanyProfileAPI
	logger *slog.Logger

	mu   sync.Mutex
	done bool
}

// NewCompanyGate constructs a CompanyGate.
func NewCompanyGate(mgr *session.Manager, api ports.CompanyProfileAPI, logger *slog.Logger) *CompanyGate {
	return &CompanyGate{mgr: mgr, api: api, logger: logger}
}

func (g *CompanyGate) log() *slog.Logger {
	if g.logger != nil {
		return g.logger
	}
	return slog.Default()
}

// Reset clears the per-session memo. The dispatcher calls it when the
// authenticated identity changes.
func (g *CompanyGate) Reset() {
	g.mu.Lock()
	g.done = false
	g.mu.Unlock()
}

// Evaluate reports whether the onboarding form must block the app. It fires
// only for company sessions carrying the one-shot onboarding marker. A fetch
// failure fails open: showing the form again beats silently losing the only
// chance to collect required data.
func (g *CompanyGate) Evaluate(ctx context.Context, snap session.Snapshot) bool {
	if snap.User == nil || snap.User.Role != domainsession.RoleCompany {
		return false
	}
	g.mu.Lock()
	if g.done {
		g.mu.Unlock()
		return false
	}
	g.mu.Unlock()

	if !g.mgr.PendingCompanyOnboarding(ctx) {
		return false
	}

	profile, err := g.api.GetCompanyProfile(ctx, snap.User.AccessToken)
	if err != nil {
		if ctx.Err() != nil {
			// Evaluation cycle was cancelled; a fresh one decides.
			return false
		}
		if !apperrors.IsNotFound(err) {
			g.log().WarnContext(ctx, "company profile fetch failed, failing open", "error", err)
		}
		return true
	}

	if strings.TrimSpace(profile.Location) == "" {
		return true
	}

	// Profile already complete: retire the marker so the gate never re-opens.
	g.mgr.SetPendingCompanyOnboarding(ctx, false)
	g.mu.Lock()
	g.done = true
	g.mu.Unlock()
	return false
}

// Submit validates and saves the onboarding form. On success the one-shot
// marker is cleared permanently. On failure the form stays open and the error
// message is safe to show inline.
func (g *CompanyGate) Submit(ctx context.Context, form CompanyForm) error {
	name := strings.TrimSpace(form.Name)
	country := strings.TrimSpace(form.Country)
	description := strings.TrimSpace(form.Description)
	if name == "" {
		return apperrors.Validation("company name is required")
	}
	if country == "" {
		return apperrors.Validation("country is required")
	}
	if description == "" {
		return apperrors.Validation("description is required")
	}

	_, err := g.api.UpsertCompanyProfile(ctx, g.mgr.AccessToken(), ports.CompanyProfile{
		Name:        name,
		Location:    country,
		Description: description,
	})
	if err != nil {
		g.log().WarnContext(ctx, "company profile save failed", "error", err)
		return err
	}

	g.mgr.SetPendingCompanyOnboarding(ctx, false)
	g.mu.Lock()
	g.done = true
	g.mu.Unlock()
	return nil
}
