package apiclient

import (
	"context"
	"net/http"

	"github.com/Gilberthb/Umunsi-sub002/internal/domain"
)

const securityResource = "security"

// SecuritySettings returns the caller's security preferences.
func (c *Client) SecuritySettings(ctx context.Context) (*domain.SecuritySettings, error) {
	return call(ctx, c, request{
		method:   http.MethodGet,
		path:     "/security/settings",
		resource: securityResource,
	}, resourceDecoder[*domain.SecuritySettings](securityResource, "settings"))
}

// UpdateSecuritySettings replaces the caller's security preferences.
func (c *Client) UpdateSecuritySettings(ctx context.Context, s domain.SecuritySettings) (*domain.SecuritySettings, error) {
	if err := validatePayload(s); err != nil {
		return nil, err
	}
	return call(ctx, c, request{
		method:   http.MethodPut,
		path:     "/security/settings",
		body:     s,
		resource: securityResource,
	}, resourceDecoder[*domain.SecuritySettings](securityResource, "settings"))
}

// EnableTwoFactor turns on two-factor authentication and returns the
// enrolment secret and backup codes.
func (c *Client) EnableTwoFactor(ctx context.Context) (*domain.TwoFactorSetup, error) {
	return call(ctx, c, request{
		method:   http.MethodPost,
		path:     "/security/2fa/enable",
		resource: securityResource,
	}, resourceDecoder[*domain.TwoFactorSetup](securityResource, "twoFactor"))
}

type disableTwoFactorRequest struct {
	Password string `json:"password" validate:"required"`
}

// DisableTwoFactor turns off two-factor authentication. The current password
// is required.
func (c *Client) DisableTwoFactor(ctx context.Context, password string) error {
	body := disableTwoFactorRequest{Password: password}
	if err := validatePayload(body); err != nil {
		return err
	}
	_, err := call(ctx, c, request{
		method:   http.MethodPost,
		path:     "/security/2fa/disable",
		body:     body,
		resource: securityResource,
	}, ackDecoder(securityResource))
	return err
}

// Sessions lists the caller's signed-in devices.
func (c *Client) Sessions(ctx context.Context) (domain.Page[domain.Session], error) {
	return call(ctx, c, request{
		method:   http.MethodGet,
		path:     "/security/sessions",
		resource: "sessions",
	}, listDecoder[domain.Session]("sessions", noPaging))
}

// RevokeSession signs out one device.
func (c *Client) RevokeSession(ctx context.Context, id string) error {
	if err := requireID("session", id); err != nil {
		return err
	}
	_, err := call(ctx, c, request{
		method:   http.MethodDelete,
		path:     "/security/sessions/" + escape(id),
		resource: "sessions",
	}, ackDecoder("sessions"))
	return err
}

// RevokeOtherSessions signs out every device except the current one.
func (c *Client) RevokeOtherSessions(ctx context.Context) error {
	_, err := call(ctx, c, request{
		method:   http.MethodDelete,
		path:     "/security/sessions",
		resource: "sessions",
	}, ackDecoder("sessions"))
	return err
}

// LoginHistory returns one page of the caller's login attempts.
func (c *Client) LoginHistory(ctx context.Context, q domain.ListQuery) (domain.Page[domain.LoginAttempt], error) {
	if err := validatePayload(q); err != nil {
		return domain.Page[domain.LoginAttempt]{}, err
	}
	values, params := listParams(q)
	return call(ctx, c, request{
		method:   http.MethodGet,
		path:     "/security/login-history",
		query:    values,
		resource: "login-history",
	}, listDecoder[domain.LoginAttempt]("login-history", params))
}

// APIKeys lists the caller's API keys. Secrets are never included.
func (c *Client) APIKeys(ctx context.Context) (domain.Page[domain.APIKey], error) {
	return call(ctx, c, request{
		method:   http.MethodGet,
		path:     "/security/api-keys",
		resource: "api-keys",
	}, listDecoder[domain.APIKey]("api-keys", noPaging))
}

// CreateAPIKey issues a key. The returned Key field is the only time the
// secret is visible.
func (c *Client) CreateAPIKey(ctx context.Context, in domain.APIKeyInput) (*domain.APIKey, error) {
	if err := validatePayload(in); err != nil {
		return nil, err
	}
	return call(ctx, c, request{
		method:   http.MethodPost,
		path:     "/security/api-keys",
		body:     in,
		resource: "api-keys",
	}, resourceDecoder[*domain.APIKey]("api-keys", "apiKey"))
}

// RevokeAPIKey deletes a key.
func (c *Client) RevokeAPIKey(ctx context.Context, id string) error {
	if err := requireID("api key", id); err != nil {
		return err
	}
	_, err := call(ctx, c, request{
		method:   http.MethodDelete,
		path:     "/security/api-keys/" + escape(id),
		resource: "api-keys",
	}, ackDecoder("api-keys"))
	return err
}
