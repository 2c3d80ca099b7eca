package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// Login exchanges credentials for a token, role and username.
//
// Calls POST /authentication/login.
func (c *CinemaService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	if err := c.doRequest(ctx, request{
		method:   http.MethodPost,
		endpoint: "/authentication/login",
		body:     req,
		result:   &resp,
		fallback: "Login failed!",
	}); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("%w: login response has no token", shared.ErrAuthFailed)
	}
	return &resp, nil
}

// Register creates an account.
//
// Calls POST /authentication/register.
func (c *CinemaService) Register(ctx context.Context, req models.RegisterRequest) error {
	return c.doRequest(ctx, request{
		method:   http.MethodPost,
		endpoint: "/authentication/register",
		body:     req,
		fallback: "Registration failed!",
	})
}

// UserInfo returns the profile of userID, or the token user when userID is empty.
//
// Calls GET /authentication/userinfo[/{userId}].
func (c *CinemaService) UserInfo(ctx context.Context, userID string) (*models.User, error) {
	endpoint := "/authentication/userinfo"
	if userID != "" {
		endpoint += "/" + url.PathEscape(userID)
	}

	var user models.User
	if err := c.doRequest(ctx, request{
		method:   http.MethodGet,
		endpoint: endpoint,
		result:   &user,
		auth:     true,
		fallback: "Failed to fetch user info",
	}); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword changes the token user's password.
//
// Calls POST /authentication/change-password.
func (c *CinemaService) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	return c.doRequest(ctx, request{
		method:   http.MethodPost,
		endpoint: "/authentication/change-password",
		body:     req,
		auth:     true,
		fallback: "Failed to change password",
	})
}

// Users lists accounts matching q. Requires an admin token.
//
// Calls GET /authentication/all-users.
func (c *CinemaService) Users(ctx context.Context, q models.UserQuery) ([]models.User, error) {
	var users models.Values[models.User]
	err := c.doRequest(ctx, request{
		method:   http.MethodGet,
		endpoint: "/authentication/all-users",
		query:    q.Values(),
		result:   &users,
		auth:     true,
		fallback: "Failed to fetch users",
	})
	return users, err
}

// DeleteUser removes an account. Requires an admin token.
//
// Calls DELETE /authentication/delete-user/{userId}.
func (c *CinemaService) DeleteUser(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id", shared.ErrMissingArgument)
	}
	return c.doRequest(ctx, request{
		method:   http.MethodDelete,
		endpoint: "/authentication/delete-user/" + url.PathEscape(userID),
		auth:     true,
		fallback: "Failed to delete user",
	})
}

// UpdateRole sets a user's role. Requires an admin token.
//
// Calls POST /authentication/update-role.
func (c *CinemaService) UpdateRole(ctx context.Context, req models.UpdateRoleRequest) error {
	role := models.NormalizeRole(req.Role)
	if role == "" {
		return fmt.Errorf("%w: Invalid role. Only 'User' or 'Admin' are allowed.", shared.ErrInvalidInput)
	}
	req.Role = role
	return c.doRequest(ctx, request{
		method:   http.MethodPost,
		endpoint: "/authentication/update-role",
		body:     req,
		auth:     true,
		fallback: "Failed to update role",
	})
}
