package models

// UserRole is the role carried by the authenticated user.
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// UserPlan is the subscription tier shown on the profile.
type UserPlan string

const (
	PlanFree       UserPlan = "Free"
	PlanPro        UserPlan = "Pro"
	PlanEnterprise UserPlan = "Enterprise"
)

// AuthUser is the user record returned by /auth/me, /auth/login and /auth/register.
type AuthUser struct {
	ID       string   `json:"id" yaml:"id"`
	Email    string   `json:"email" yaml:"email"`
	FullName string   `json:"full_name" yaml:"full_name"`
	Role     UserRole `json:"role" yaml:"role"`
	Credits  int      `json:"credits" yaml:"credits"`
	Plan     UserPlan `json:"plan" yaml:"plan"`
}

// IsAdmin reports whether the user may enter the admin space.
func (u *AuthUser) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// AuthResponse is the flat login/register response: the user plus its token.
type AuthResponse struct {
	AuthUser
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}
