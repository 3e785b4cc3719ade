package config

// SessionConfig contains session and route configuration.
type SessionConfig struct {
	// LoginPath is where logout and forced logout send the user.
	LoginPath string `env:"LOGIN_PATH" envDefault:"/login"`

	// PublicPaths are exact-match paths that render without authentication.
	PublicPaths []string `env:"PUBLIC_PATHS" envDefault:"/login;/oauth/callback" envSeparator:";"`

	// PublicPrefixes are prefix-match public roots, for multi-segment
	// registration routes.
	PublicPrefixes []string `env:"PUBLIC_PREFIXES" envDefault:"/register" envSeparator:";"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.LoginPath == "" {
		s.LoginPath = "/login"
	}
}
