package types

import "github.com/golang-jwt/jwt/v5"

// Claims are the JWT access-token claims issued by the session service.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
