package domain

import "time"

// SecuritySettings are the caller's account security preferences.
type SecuritySettings struct {
	TwoFactorEnabled   bool     `json:"twoFactorEnabled"`
	LoginNotifications bool     `json:"loginNotifications"`
	SessionTimeout     int      `json:"sessionTimeout" validate:"gte=0,lte=10080"`
	PasswordExpiryDays int      `json:"passwordExpiryDays" validate:"gte=0,lte=365"`
	IPWhitelist        []string `json:"ipWhitelist" validate:"dive,ip"`
}

// TwoFactorSetup is returned when two-factor authentication is enabled.
type TwoFactorSetup struct {
	Secret      string   `json:"secret" validate:"required"`
	OTPAuthURL  string   `json:"otpauthUrl"`
	BackupCodes []string `json:"backupCodes"`
}

// Session is one signed-in device of the caller.
type Session struct {
	ID         string    `json:"id" validate:"required"`
	Device     string    `json:"device"`
	IPAddress  string    `json:"ipAddress"`
	Location   string    `json:"location,omitempty"`
	LastActive time.Time `json:"lastActive"`
	CreatedAt  time.Time `json:"createdAt"`
	Current    bool      `json:"current"`
}

// LoginAttempt is one entry of the caller's login history.
type LoginAttempt struct {
	ID        string    `json:"id" validate:"required"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	Success   bool      `json:"success"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// APIKey is a long-lived credential for integrations. Key holds the secret
// only in the response to creation.
type APIKey struct {
	ID          string     `json:"id" validate:"required"`
	Name        string     `json:"name" validate:"required"`
	Prefix      string     `json:"prefix"`
	Key         string     `json:"key,omitempty"`
	Permissions []string   `json:"permissions"`
	LastUsed    *time.Time `json:"lastUsed,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// APIKeyInput is the payload for creating an API key.
type APIKeyInput struct {
	Name          string   `json:"name" validate:"required,max=100"`
	Permissions   []string `json:"permissions" validate:"dive,oneof=read write admin"`
	ExpiresInDays int      `json:"expiresInDays,omitempty" validate:"gte=0,lte=365"`
}
