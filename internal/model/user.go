package model

import "time"

// Role is the enumerated account role.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleCaterer  Role = "caterer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleCaterer
}

// User represents a user in the database.
type User struct {
	ID              string
	Username        string
	Phone           string
	PasswordHash    string
	Role            Role
	BusinessName    string
	BusinessAddress string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RegisterRequest represents a user registration request.
// Business fields are only kept for caterers.
type RegisterRequest struct {
	Username        string `json:"username"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	Role            Role   `json:"role"`
	BusinessName    string `json:"businessName,omitempty"`
	BusinessAddress string `json:"businessAddress,omitempty"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// UserResponse represents user data safe for API responses (no password hash).
type UserResponse struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Phone           string    `json:"phone"`
	Role            Role      `json:"role"`
	BusinessName    string    `json:"businessName,omitempty"`
	BusinessAddress string    `json:"businessAddress,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// RegisterResponse is returned by a successful registration.
type RegisterResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// AuthResponse represents a login response with a JWT token and the user's profile.
type AuthResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

// MeResponse wraps the profile of the authenticated user.
type MeResponse struct {
	User UserResponse `json:"user"`
}
