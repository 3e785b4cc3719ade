package httpapi

import (
	"context"
	"net/http"

	"github.com/careerbridge/careerbridge-go/internal/ports"
)

// companyProfilePayload is the backend's company profile shape. The "country"
// concept of the onboarding form lives in the profile's location field.
type companyProfilePayload struct {
	Data        *companyProfilePayload `json:"data,omitempty"`
	Name        string                 `json:"name"`
	Location    string                 `json:"location"`
	Description string                 `json:"description"`
}

func (p *companyProfilePayload) unwrap() *companyProfilePayload {
	inner := p
	for inner.Data != nil {
		inner = inner.Data
	}
	return inner
}

// GetCompanyProfile returns the caller's company profile, or a NotFound error
// when no record exists.
func (c *Client) GetCompanyProfile(ctx context.Context, accessToken string) (ports.CompanyProfile, error) {
	var payload companyProfilePayload
	err := c.do(ctx, requestParams{
		method:      http.MethodGet,
		path:        "/company/profile",
		accessToken: accessToken,
	}, &payload)
	if err != nil {
		return ports.CompanyProfile{}, err
	}
	inner := payload.unwrap()
	return ports.CompanyProfile{
		Name:        inner.Name,
		Location:    inner.Location,
		Description: inner.Description,
	}, nil
}

// UpsertCompanyProfile creates or updates the caller's company profile.
func (c *Client) UpsertCompanyProfile(ctx context.Context, accessToken string, profile ports.CompanyProfile) (ports.CompanyProfile, error) {
	var payload companyProfilePayload
	err := c.do(ctx, requestParams{
		method:      http.MethodPatch,
		path:        "/company/profile",
		accessToken: accessToken,
		body: map[string]string{
			"name":        profile.Name,
			"location":    profile.Location,
			"description": profile.Description,
		},
	}, &payload)
	if err != nil {
		return ports.CompanyProfile{}, err
	}
	inner := payload.unwrap()
	return ports.CompanyProfile{
		Name:        inner.Name,
		Location:    inner.Location,
		Description: inner.Description,
	}, nil
}

type professorProfilePayload struct {
	Data       *professorProfilePayload `json:"data,omitempty"`
	Department string                   `json:"department"`
	Faculty    string                   `json:"faculty"`
}

func (p *professorProfilePayload) unwrap() *professorProfilePayload {
	inner := p
	for inner.Data != nil {
		inner = inner.Data
	}
	return inner
}

// GetProfessorProfile returns the caller's professor profile. A confirmed
// missing record surfaces as a NotFound error.
func (c *Client) GetProfessorProfile(ctx context.Context, accessToken string) (ports.ProfessorProfile, error) {
	var payload professorProfilePayload
	err := c.do(ctx, requestParams{
		method:      http.MethodGet,
		path:        "/professor/profile",
		accessToken: accessToken,
	}, &payload)
	if err != nil {
		return ports.ProfessorProfile{}, err
	}
	inner := payload.unwrap()
	return ports.ProfessorProfile{
		Department: inner.Department,
		Faculty:    inner.Faculty,
	}, nil
}

// CreateProfessorProfile creates the caller's professor profile.
func (c *Client) CreateProfessorProfile(ctx context.Context, accessToken string, profile ports.ProfessorProfile) (ports.ProfessorProfile, error) {
	var payload professorProfilePayload
	err := c.do(ctx, requestParams{
		method:      http.MethodPost,
		path:        "/professor/profile",
		accessToken: accessToken,
		body: map[string]string{
			"department": profile.Department,
			"faculty":    profile.Faculty,
		},
	}, &payload)
	if err != nil {
		return ports.ProfessorProfile{}, err
	}
	inner := payload.unwrap()
	return ports.ProfessorProfile{
		Department: inner.Department,
		Faculty:    inner.Faculty,
	}, nil
}

// compile-time conformance to the aggregated backend port
var _ ports.BackendAPI = (*Client)(nil)
