package user

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolveRedirect(t *testing.T) {
	type decision struct {
		Redirect string
		Moved    bool
	}

	anonymous := Session{}
	noRole := Session{Authenticated: true}
	patient := Session{Authenticated: true, Role: RolePatient}
	practitioner := Session{Authenticated: true, Role: RolePractitioner}
	admin := Session{Authenticated: true, Role: RoleAdmin}

	tests := []struct {
		name    string
		path    string
		session Session
		want    decision
	}{
		{"anonymous on home stays", "/", anonymous, decision{}},
		{"anonymous on login stays", "/login", anonymous, decision{}},
		{"anonymous on forgot password stays", "/forgot-password", anonymous, decision{}},
		{"anonymous on protected page goes to login", "/patient/dashboard", anonymous, decision{PathLogin, true}},
		{"anonymous with query string", "/practitioner/patients?q=a", anonymous, decision{PathLogin, true}},
		{"no role goes to select role", "/patient/dashboard", noRole, decision{PathSelectRole, true}},
		{"no role from login goes to select role", "/login", noRole, decision{PathSelectRole, true}},
		{"no role on select role stays", "/select-role", noRole, decision{}},
		{"patient inside area stays", "/patient/appointments", patient, decision{}},
		{"patient on area root stays", "/patient", patient, decision{}},
		{"patient on login goes to dashboard", "/login", patient, decision{"/patient/dashboard", true}},
		{"patient on home goes to dashboard", "/", patient, decision{"/patient/dashboard", true}},
		{"patient on practitioner page goes home", "/practitioner/dashboard", patient, decision{"/patient/dashboard", true}},
		{"patient on look-alike prefix goes home", "/patients", patient, decision{"/patient/dashboard", true}},
		{"practitioner inside area stays", "/practitioner/diet-plans/abc/edit", practitioner, decision{}},
		{"practitioner on select role goes home", "/select-role", practitioner, decision{"/practitioner/dashboard", true}},
		{"admin on patient page goes home", "/patient/dashboard", admin, decision{"/admin/dashboard", true}},
		{"trailing slash is cleaned", "/admin/dashboard/", admin, decision{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			redirect, moved := ResolveRedirect(tt.path, tt.session)
			got := decision{Redirect: redirect, Moved: moved}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ResolveRedirect(%q) mismatch (-want +got):\n%s", tt.path, diff)
			}
		})
	}
}

func TestDashboardPath(t *testing.T) {
	if got := DashboardPath(RolePractitioner); got != "/practitioner/dashboard" {
		t.Fatalf("DashboardPath = %q", got)
	}
}
