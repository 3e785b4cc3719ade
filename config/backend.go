package config

import "time"

// BackendConfig contains the outbound API client configuration.
type BackendConfig struct {
	// BaseURL is the job-portal backend root, e.g. "https://api.example.com".
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:3000"`

	// Timeout bounds every backend request.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`

	// VerificationHeader, when non-empty, is sent verbatim as the
	// X-Client-Verification header on every request.
	VerificationHeader string `env:"VERIFICATION_HEADER"`
}

// Sanitize applies guardrails to backend configuration values.
func (b *BackendConfig) Sanitize() {
	if b.Timeout <= 0 {
		b.Timeout = 10 * time.Second
	}
}
