// Package auth verifies the session tokens issued by the main MindCare
// application. Token issuance (login, password handling) lives outside this
// service; the realtime layer only needs to resolve a token to an identity
// once per connection.
package auth

import (
	"errors"

	"mindcare/backend/internal/models"
)

// ErrInvalidToken is returned for any token that cannot be resolved to an
// identity: malformed, expired, bad signature, or missing claims.
var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the authenticated principal behind one connection.
type Identity struct {
	UserID string
	Role   models.Role
}

// Authenticator resolves a credential token to an identity.
type Authenticator interface {
	Authenticate(token string) (Identity, error)
}
