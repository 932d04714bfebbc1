package user

import (
	"path"
	"strings"
)

// Route paths the navigation resolver knows about
const (
	PathHome           = "/"
	PathLogin          = "/login"
	PathSignup         = "/signup"
	PathSelectRole     = "/select-role"
	PathForgotPassword = "/forgot-password"
)

var authRoutes = map[string]struct{}{
	PathLogin:          {},
	PathSignup:         {},
	PathSelectRole:     {},
	PathForgotPassword: {},
}

// Session is what the resolver needs to know about the caller
type Session struct {
	Authenticated bool
	Role          Role
}

// IsAuthRoute reports whether p is one of the sign-in flow pages
func IsAuthRoute(p string) bool {
	_, ok := authRoutes[cleanPath(p)]
	return ok
}

// DashboardPath returns the landing page of a role
func DashboardPath(r Role) string {
	return "/" + string(r) + "/dashboard"
}

// ResolveRedirect decides where a caller asking for path p should be sent.
// It returns false when the caller may stay on p.
func ResolveRedirect(p string, s Session) (string, bool) {
	p = cleanPath(p)

	if s.Authenticated {
		if s.Role == RoleNone {
			if p == PathSelectRole {
				return "", false
			}
			return PathSelectRole, true
		}

		if !withinRoleArea(p, s.Role) {
			return DashboardPath(s.Role), true
		}
		return "", false
	}

	if p == PathHome || IsAuthRoute(p) {
		return "", false
	}
	return PathLogin, true
}

func withinRoleArea(p string, r Role) bool {
	prefix := "/" + string(r)
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

func cleanPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return PathHome
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
