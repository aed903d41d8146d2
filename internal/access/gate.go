// Package access decides whether a visitor may see a protected page.
package access

import (
	"slices"

	"wastetrack/internal/models"
	"wastetrack/internal/session"
)

type Decision int

const (
	Allow Decision = iota
	// Wait: сессия ещё восстанавливается, редиректить нельзя.
	Wait
	RedirectLogin
	RedirectForbidden
)

const (
	LoginPath     = "/login"
	ForbiddenPath = "/forbidden"
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Wait:
		return "wait"
	case RedirectLogin:
		return "redirect_login"
	case RedirectForbidden:
		return "redirect_forbidden"
	default:
		return "unknown"
	}
}

// Target is the redirect location of d, empty for Allow and Wait.
func (d Decision) Target() string {
	switch d {
	case RedirectLogin:
		return LoginPath
	case RedirectForbidden:
		return ForbiddenPath
	default:
		return ""
	}
}

// Decide is pure: an empty required set means any authenticated user.
func Decide(required []models.UserRole, st session.State) Decision {
	if st.Loading {
		return Wait
	}
	if st.User == nil || st.Token == "" {
		return RedirectLogin
	}
	if len(required) > 0 && !slices.Contains(required, st.User.Role) {
		return RedirectForbidden
	}
	return Allow
}
