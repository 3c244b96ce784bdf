package apiclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/Gilberthb/Umunsi-sub002/internal/domain"
	apperrors "github.com/Gilberthb/Umunsi-sub002/pkg/errors"
)

// loginRequest is the wire body of POST /auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// rejections maps the statuses with which the API refuses credentials.
var rejections = map[int]bool{
	http.StatusBadRequest:   true,
	http.StatusUnauthorized: true,
	http.StatusForbidden:    true,
	http.StatusConflict:     true,
	http.StatusLocked:       true,
}

// asAuthError turns a credential rejection into an AuthError carrying the
// backend's message. Other failures are returned unchanged.
func asAuthError(err error) error {
	var httpErr *apperrors.HTTPError
	if errors.As(err, &httpErr) && rejections[httpErr.Status] {
		return &apperrors.AuthError{Status: httpErr.Status, Message: httpErr.Message, Err: httpErr}
	}
	return err
}

// decodeAuthResult decodes {success, user, token}.
func decodeAuthResult(body []byte) (*domain.AuthResult, error) {
	const resource = "auth"
	members, err := envelope(resource, body)
	if err != nil {
		return nil, err
	}
	if err := requireSuccess(resource, members); err != nil {
		return nil, err
	}
	user, err := member[*domain.User](resource, members, "user")
	if err != nil {
		return nil, err
	}
	token, err := member[string](resource, members, "token")
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, apperrors.NewShapeError(resource, `"token" is empty`, nil)
	}
	return &domain.AuthResult{User: user, Token: token}, nil
}

// Login exchanges credentials for an identity and bearer token. A rejection
// by the API is returned as *errors.AuthError.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	if err := validatePayload(creds); err != nil {
		return nil, &apperrors.AuthError{Message: err.Error(), Err: err}
	}
	res, err := call(ctx, c, request{
		method:   http.MethodPost,
		path:     "/auth/login",
		body:     loginRequest{Email: creds.Identifier, Password: creds.Secret},
		resource: "auth",
	}, decodeAuthResult)
	if err != nil {
		return nil, asAuthError(err)
	}
	return res, nil
}

// Register creates an account and signs it in.
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResult, error) {
	if err := validatePayload(req); err != nil {
		return nil, &apperrors.AuthError{Message: err.Error(), Err: err}
	}
	res, err := call(ctx, c, request{
		method:   http.MethodPost,
		path:     "/auth/register",
		body:     req,
		resource: "auth",
	}, decodeAuthResult)
	if err != nil {
		return nil, asAuthError(err)
	}
	return res, nil
}

// Logout invalidates the current token server-side.
func (c *Client) Logout(ctx context.Context) error {
	_, err := call(ctx, c, request{
		method:   http.MethodPost,
		path:     "/auth/logout",
		resource: "auth",
	}, ackDecoder("auth"))
	return err
}

// Me returns the identity the current token belongs to.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	return call(ctx, c, request{
		method:   http.MethodGet,
		path:     "/auth/me",
		resource: "auth",
	}, resourceDecoder[*domain.User]("auth", "user"))
}

// ChangePassword changes the caller's password.
func (c *Client) ChangePassword(ctx context.Context, req domain.ChangePasswordRequest) error {
	if err := validatePayload(req); err != nil {
		return err
	}
	_, err := call(ctx, c, request{
		method:   http.MethodPut,
		path:     "/auth/password",
		body:     req,
		resource: "auth",
	}, ackDecoder("auth"))
	return err
}
