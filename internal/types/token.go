package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims represents the claims in a JWT token
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

// Viewer is the identity a request is evaluated for. The zero value is anonymous.
type Viewer struct {
	ID uint
}

// Anonymous is the viewer of unauthenticated requests.
var Anonymous = Viewer{}

// IsAnonymous reports whether no user is attached to the request.
func (v Viewer) IsAnonymous() bool {
	return v.ID == 0
}
