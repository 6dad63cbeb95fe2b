package jwt

import "time"

type TokenManager interface {
	GenerateToken(userID, email string, expiry time.Duration) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}
