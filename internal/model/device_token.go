package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Device classes a push token can come from
const (
	PlatformWeb     = "web"
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
	PlatformExpo    = "expo"
)

// DeviceToken is one push registration. A user may own many; a token is
// owned by at most one user.
type DeviceToken struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"-"`
	Token     string    `db:"token" json:"-"`
	Platform  string    `db:"platform" json:"platform"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TokenHint lets a client recognise its own registration without the
// token itself going over the wire.
func (d DeviceToken) TokenHint() string {
	return ShortToken(d.Token)
}

func (d DeviceToken) MarshalJSON() ([]byte, error) {
	type plain DeviceToken
	return json.Marshal(struct {
		plain
		TokenHint string `json:"token_hint"`
	}{plain(d), d.TokenHint()})
}

// RegisterTokenRequest is the request body for POST /devices/token and DELETE /devices/token.
type RegisterTokenRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// NormalizePlatform lowercases p and defaults it to web.
// It returns a ValidationError for an unknown device class.
func NormalizePlatform(p string) (string, error) {
	p = strings.ToLower(strings.TrimSpace(p))
	switch p {
	case "":
		return PlatformWeb, nil
	case PlatformWeb, PlatformIOS, PlatformAndroid, PlatformExpo:
		return p, nil
	}
	return "", NewValidation("platform", "must be one of web, ios, android, expo")
}
