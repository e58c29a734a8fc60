// Package session turns the configured auth token into one typed,
// decode-once session object that gets injected wherever the display name or
// role is needed, instead of re-parsing the token ad hoc per screen.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kedarnag/invoiceflow/internal/invoice"
)

var ErrNoToken = errors.New("no auth token configured")

// Session is the decoded identity of the signed-in admin.
type Session struct {
	FullName       string
	Role           invoice.Role
	ProfilePicture string
}

type claims struct {
	FullName       string `json:"full_name"`
	Role           string `json:"role"`
	ProfilePicture string `json:"profile_picture"`
	jwt.RegisteredClaims
}

// FromToken decodes the JWT claims without verifying the signature. The
// token is only used for display name and role routing; the backend is the
// trust boundary and re-checks authorization on every call.
func FromToken(token string) (*Session, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return nil, ErrNoToken
	}

	var c claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}

	return &Session{
		FullName:       c.FullName,
		Role:           invoice.Role(c.Role),
		ProfilePicture: c.ProfilePicture,
	}, nil
}
