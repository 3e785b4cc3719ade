package session

import "testing"

func TestNormalizeRole_CaseInsensitiveSubstring(t *testing.T) {
	cases := map[string]Role{
		"Company":             RoleCompany,
		"COMPANY":             RoleCompany,
		"ROLE_company_hr":     RoleCompany,
		"student":             RoleStudent,
		"Student ":            RoleStudent,
		"PhD Student":         RoleStudent,
		"Professor":           RoleProfessor,
		"assistant PROFESSOR": RoleProfessor,
	}
	for raw, want := range cases {
		if got := NormalizeRole(raw); got != want {
			t.Fatalf("NormalizeRole(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestNormalizeRole_UnknownPassthrough(t *testing.T) {
	if got := NormalizeRole("  Admin "); got != Role("admin") {
		t.Fatalf("expected trimmed lowercase passthrough, got %q", got)
	}
	if got := NormalizeRole(""); got != RoleUnknown {
		t.Fatalf("expected RoleUnknown for empty input, got %q", got)
	}
	if got := NormalizeRole("   "); got != RoleUnknown {
		t.Fatalf("expected RoleUnknown for whitespace input, got %q", got)
	}
}

func TestRole_NeedsResolution(t *testing.T) {
	if RoleStudent.NeedsResolution() {
		t.Fatalf("student should not need resolution")
	}
	for _, r := range []Role{RoleUnknown, Role("unknown"), Role("unset"), Role("role_unknown")} {
		if !r.NeedsResolution() {
			t.Fatalf("%q should need resolution", r)
		}
	}
	// Non-placeholder foreign roles are unknown but stable; they do not
	// re-open the role prompt.
	if Role("admin").NeedsResolution() {
		t.Fatalf("foreign role without placeholder should not force the gate")
	}
}

func TestCredentials_IsAuthenticated(t *testing.T) {
	if (Credentials{}).IsAuthenticated() {
		t.Fatalf("empty credentials must be unauthenticated")
	}
	if !(Credentials{AccessToken: "tok"}).IsAuthenticated() {
		t.Fatalf("access token present must be authenticated")
	}
}

func TestPhase_String(t *testing.T) {
	if PhaseHydrating.String() != "hydrating" || PhaseAuthenticated.String() != "authenticated" {
		t.Fatalf("unexpected phase strings")
	}
}
