// Package session caches the server-issued identity on the client. The
// decoded token fields are display convenience only; every
// authorization-relevant decision is re-confirmed by the backend.
package session

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the backend-assigned user role.
type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

// ErrMalformedToken indicates the access token payload could not be decoded.
// Treated as a login failure, never silently ignored.
var ErrMalformedToken = errors.New("malformed access token")

// User is the identity decoded from the access token.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Session is the ephemeral client-held credential plus decoded identity.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Decode extracts {sub, email, role} from the token payload without
// verifying the signature. Signature verification belongs to the backend;
// the client only needs the claims for display and routing.
func Decode(token string) (User, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return User{}, fmt.Errorf("%w: missing subject claim", ErrMalformedToken)
	}

	user := User{ID: sub}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		user.Role = Role(role)
	}
	return user, nil
}
