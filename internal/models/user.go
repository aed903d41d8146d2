package models

import "fmt"

type UserRole string

const (
	RoleAdmin        UserRole = "admin"
	RoleCollector    UserRole = "collector"
	RoleUser         UserRole = "user"
	RoleCompanyOwner UserRole = "company_owner"
)

// Roles в порядке отображения.
var Roles = []UserRole{RoleAdmin, RoleCollector, RoleCompanyOwner, RoleUser}

func ParseRole(s string) (UserRole, error) {
	switch r := UserRole(s); r {
	case RoleAdmin, RoleCollector, RoleUser, RoleCompanyOwner:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r UserRole) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r UserRole) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleCollector:
		return "Collector"
	case RoleCompanyOwner:
		return "Company owner"
	case RoleUser:
		return "User"
	}
	return "Unknown"
}

// DashboardPath: куда отправлять пользователя после входа.
func (r UserRole) DashboardPath() string {
	switch r {
	case RoleAdmin:
		return "/admin-dashboard"
	case RoleCollector:
		return "/collector-dashboard"
	case RoleCompanyOwner:
		return "/my-company-dashboard"
	case RoleUser:
		return "/user-dashboard"
	}
	return "/"
}

// User is the profile returned by the API. The password never comes back.
type User struct {
	ID        int      `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Role      UserRole `json:"role"`
	CompanyID *int     `json:"company_id,omitempty"`
}
