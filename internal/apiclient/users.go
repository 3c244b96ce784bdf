package apiclient

import (
	"context"
	"net/http"

	"github.com/Gilberthb/Umunsi-sub002/internal/domain"
)

const usersResource = "users"

// ListUsers returns one page of accounts. Administrators only.
func (c *Client) ListUsers(ctx context.Context, f domain.UserFilter) (domain.Page[domain.User], error) {
	if err := validatePayload(f); err != nil {
		return domain.Page[domain.User]{}, err
	}
	q, params := listParams(f.ListQuery)
	if f.Role != "" {
		q.Set("role", string(f.Role))
	}
	if f.Active != nil {
		status := "inactive"
		if *f.Active {
			status = "active"
		}
		q.Set("status", status)
	}
	return call(ctx, c, request{
		method:   http.MethodGet,
		path:     "/users",
		query:    q,
		resource: usersResource,
	}, listDecoder[domain.User](usersResource, params))
}

// GetUser fetches an account by id.
func (c *Client) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if err := requireID("user", id); err != nil {
		return nil, err
	}
	return call(ctx, c, request{
		method:   http.MethodGet,
		path:     "/users/" + escape(id),
		resource: usersResource,
	}, resourceDecoder[*domain.User](usersResource, "user"))
}

// CreateUser creates an account with the given role.
func (c *Client) CreateUser(ctx context.Context, in domain.CreateUserRequest) (*domain.User, error) {
	if err := validatePayload(in); err != nil {
		return nil, err
	}
	return call(ctx, c, request{
		method:   http.MethodPost,
		path:     "/users",
		body:     in,
		resource: usersResource,
	}, resourceDecoder[*domain.User](usersResource, "user"))
}

// UpdateUser changes account details.
func (c *Client) UpdateUser(ctx context.Context, id string, in domain.UpdateUserRequest) (*domain.User, error) {
	if err := requireID("user", id); err != nil {
		return nil, err
	}
	if err := validatePayload(in); err != nil {
		return nil, err
	}
	return call(ctx, c, request{
		method:   http.MethodPut,
		path:     "/users/" + escape(id),
		body:     in,
		resource: usersResource,
	}, resourceDecoder[*domain.User](usersResource, "user"))
}

type rolePatch struct {
	Role domain.Role `json:"role" validate:"required,oneof=ADMIN EDITOR AUTHOR USER"`
}

// SetUserRole changes an account's role.
func (c *Client) SetUserRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	if err := requireID("user", id); err != nil {
		return nil, err
	}
	body := rolePatch{Role: role}
	if err := validatePayload(body); err != nil {
		return nil, err
	}
	return call(ctx, c, request{
		method:   http.MethodPatch,
		path:     "/users/" + escape(id) + "/role",
		body:     body,
		resource: usersResource,
	}, resourceDecoder[*domain.User](usersResource, "user"))
}

type activePatch struct {
	IsActive bool `json:"isActive"`
}

// SetUserActive activates or deactivates an account.
func (c *Client) SetUserActive(ctx context.Context, id string, active bool) (*domain.User, error) {
	if err := requireID("user", id); err != nil {
		return nil, err
	}
	return call(ctx, c, request{
		method:   http.MethodPatch,
		path:     "/users/" + escape(id) + "/status",
		body:     activePatch{IsActive: active},
		resource: usersResource,
	}, resourceDecoder[*domain.User](usersResource, "user"))
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	if err := requireID("user", id); err != nil {
		return err
	}
	_, err := call(ctx, c, request{
		method:   http.MethodDelete,
		path:     "/users/" + escape(id),
		resource: usersResource,
	}, ackDecoder(usersResource))
	return err
}

// UpdateProfile changes the caller's own account details.
func (c *Client) UpdateProfile(ctx context.Context, in domain.UpdateUserRequest) (*domain.User, error) {
	if err := validatePayload(in); err != nil {
		return nil, err
	}
	return call(ctx, c, request{
		method:   http.MethodPut,
		path:     "/users/profile",
		body:     in,
		resource: usersResource,
	}, resourceDecoder[*domain.User](usersResource, "user"))
}

// UploadAvatar replaces the caller's avatar image.
func (c *Client) UploadAvatar(ctx context.Context, img domain.Upload) (*domain.User, error) {
	body, err := newUpload("avatar", img, true, nil)
	if err != nil {
		return nil, err
	}
	return call(ctx, c, request{
		method:   http.MethodPost,
		path:     "/users/avatar",
		upload:   body,
		resource: usersResource,
	}, resourceDecoder[*domain.User](usersResource, "user"))
}
