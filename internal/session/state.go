package session

import (
	"github.com/gin-gonic/gin"

	"wastetrack/internal/models"
)

// ContextKey — ключ gin.Context, куда middleware кладёт восстановленную сессию.
const ContextKey = "Session"

type State struct {
	Token   string
	User    *models.User
	Loading bool
}

// Pending is the state seen before Restore has resolved.
func Pending() State { return State{Loading: true} }

func (s State) Authenticated() bool {
	return !s.Loading && s.User != nil && s.Token != ""
}

func (s State) Role() models.UserRole {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

func (s State) Username() string {
	if s.User == nil {
		return ""
	}
	return s.User.Username
}

func (s State) Is(r models.UserRole) bool { return s.Authenticated() && s.User.Role == r }

func (s State) IsAdmin() bool        { return s.Is(models.RoleAdmin) }
func (s State) IsCollector() bool    { return s.Is(models.RoleCollector) }
func (s State) IsCompanyOwner() bool { return s.Is(models.RoleCompanyOwner) }
func (s State) IsUser() bool         { return s.Is(models.RoleUser) }

// FromContext returns the state stored by the session middleware,
// or Pending when the middleware has not run.
func FromContext(c *gin.Context) State {
	if v, ok := c.Get(ContextKey); ok {
		if st, ok := v.(State); ok {
			return st
		}
	}
	return Pending()
}
