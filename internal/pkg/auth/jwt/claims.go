package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims the server accepts. Tokens are issued by
// the external identity service with a shared HS256 secret; this server only
// verifies them and reads the identity out.
type Payload struct {
	// StandardClaims embeds Exp, Iat and Iss, which drive validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// UserUUID is the stable opaque identifier of the authenticated user.
	UserUUID string `json:"user_uuid"`

	// Name is the display name carried for convenience; the user directory
	// row remains the source of truth.
	Name string `json:"name,omitempty"`

	// Department mirrors the directory's department field.
	Department string `json:"department,omitempty"`
}
