package models

import (
	"net/url"
	"strings"
)

// Roles assigned by the API.
const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

// NormalizeRole maps free-form input onto a known role ("user" -> "User", " ADMIN " -> "Admin").
//
// Anything else yields "".
func NormalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "user":
		return RoleUser
	case "admin":
		return RoleAdmin
	default:
		return ""
	}
}

// User is an account as listed on the admin page and returned by userinfo.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// LoginRequest is the body of POST /authentication/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the auth context issued at login.
type LoginResponse struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	Username string `json:"username"`
}

// RegisterRequest is the body of POST /authentication/register. Role may be empty.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// ChangePasswordRequest is the body of POST /authentication/change-password.
type ChangePasswordRequest struct {
	Username        string `json:"username"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UpdateRoleRequest is the body of POST /authentication/update-role.
type UpdateRoleRequest struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Message is the {"message": "..."} body several endpoints answer with.
type Message struct {
	Message string `json:"message"`
}

// User sort keys and directions for GET /authentication/all-users.
const (
	UserSortUsername = "username"
	UserSortRole     = "role"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// UserQuery filters GET /authentication/all-users.
type UserQuery struct {
	Username      string
	SortBy        string
	SortDirection string // asc or desc
}

// Values renders q with the API's parameter names. The direction defaults to ascending.
func (q UserQuery) Values() url.Values {
	v := url.Values{}
	setIf(v, "username", q.Username)
	setIf(v, "sortBy", q.SortBy)
	dir := q.SortDirection
	if dir != SortDesc {
		dir = SortAsc
	}
	v.Set("sortDirection", dir)
	return v
}

// UserQueryFromValues reads a UserQuery back from API-style parameters.
func UserQueryFromValues(v url.Values) UserQuery {
	return UserQuery{
		Username:      v.Get("username"),
		SortBy:        v.Get("sortBy"),
		SortDirection: v.Get("sortDirection"),
	}
}
