package gates

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/careerbridge/careerbridge-go/internal/errors"
	"github.com/careerbridge/careerbridge-go/internal/ports"
)

func TestProfessorGate_IgnoresNonProfessorRoles(t *testing.T) {
	f := newFixture(t, "/jobs")
	gate := NewProfessorGate(f.mgr, f.api, nil)

	f.login("company")

	assert.False(t, gate.Evaluate(context.Background(), f.mgr.Snapshot()))
	assert.Zero(t, f.api.Calls("GetProfessorProfile"))
}

func TestProfessorGate_OpensOnMissingProfile(t *testing.T) {
	f := newFixture(t, "/jobs")
	gate := NewProfessorGate(f.mgr, f.api, nil)

	f.login("professor")

	// Default mock profile getter answers not found.
	assert.True(t, gate.Evaluate(context.Background(), f.mgr.Snapshot()))
}

func TestProfessorGate_FetchFailureFailsOpen(t *testing.T) {
	f := newFixture(t, "/jobs")
	gate := NewProfessorGate(f.mgr, f.api, nil)

	f.login("professor")
	f.api.GetProfessorProfileFunc = func(_ context.Context, _ string) (ports.ProfessorProfile, error) {
		return ports.ProfessorProfile{}, apperrors.Unavailable("backend down")
	}

	assert.True(t, gate.Evaluate(context.Background(), f.mgr.Snapshot()))
}

func TestProfessorGate_ExistingProfileClosesForSession(t *testing.T) {
	f := newFixture(t, "/jobs")
	gate := NewProfessorGate(f.mgr, f.api, nil)
	ctx := context.Background()

	f.login("professor")
	f.api.GetProfessorProfileFunc = func(_ context.Context, _ string) (ports.ProfessorProfile, error) {
		return ports.ProfessorProfile{Department: "Informatics", Faculty: "Science"}, nil
	}

	assert.False(t, gate.Evaluate(ctx, f.mgr.Snapshot()))
	assert.False(t, gate.Evaluate(ctx, f.mgr.Snapshot()))
	assert.Equal(t, 1, f.api.Calls("GetProfessorProfile"))
}

func TestProfessorGate_SubmitValidation(t *testing.T) {
	f := newFixture(t, "/jobs")
	gate := NewProfessorGate(f.mgr, f.api, nil)
	ctx := context.Background()
	f.login("professor")

	for _, form := range []ProfessorForm{
		{Faculty: "Science"},
		{Department: "Informatics"},
		{Department: " ", Faculty: "Science"},
	} {
		err := gate.Submit(ctx, form)
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	}
	assert.Zero(t, f.api.Calls("CreateProfessorProfile"))
}

func TestProfessorGate_SubmitCreatesAndCloses(t *testing.T) {
	f := newFixture(t, "/jobs")
	gate := NewProfessorGate(f.mgr, f.api, nil)
	ctx := context.Background()
	f.login("professor")

	var created ports.ProfessorProfile
	f.api.CreateProfessorProfileFunc = func(_ context.Context, _ string, p ports.ProfessorProfile) (ports.ProfessorProfile, error) {
		created = p
		return p, nil
	}

	require.NoError(t, gate.Submit(ctx, ProfessorForm{Department: " Informatics ", Faculty: "Science"}))
	assert.Equal(t, ports.ProfessorProfile{Department: "Informatics", Faculty: "Science"}, created)
	assert.False(t, gate.Evaluate(ctx, f.mgr.Snapshot()))
	assert.Zero(t, f.api.Calls("GetProfessorProfile"), "closed gate skips the profile fetch")
}

func TestProfessorGate_SubmitFailureKeepsGateOpen(t *testing.T) {
	f := newFixture(t, "/jobs")
	gate := NewProfessorGate(f.mgr, f.api, nil)
	ctx := context.Background()
	f.login("professor")

	f.api.CreateProfessorProfileFunc = func(_ context.Context, _ string, _ ports.ProfessorProfile) (ports.ProfessorProfile, error) {
		return ports.ProfessorProfile{}, apperrors.Validation("department unknown")
	}

	err := gate.Submit(ctx, ProfessorForm{Department: "Informatics", Faculty: "Science"})
	require.Error(t, err)
	assert.True(t, gate.Evaluate(ctx, f.mgr.Snapshot()))
}
