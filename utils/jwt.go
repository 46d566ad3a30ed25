package utils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"dentflow/config"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt"
)

// StaffClaims identifies a clinic staff member. Tokens are issued by the identity service.
type StaffClaims struct {
	ClinicID string `json:"clinicId"`
	Role     string `json:"role,omitempty"`
	jwt.StandardClaims
}

func secretKey() ([]byte, error) {
	if config.AppConfig.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not configured")
	}
	return []byte(config.AppConfig.JWTSecret), nil
}

// GenerateToken signs StaffClaims the way the identity service issues staff tokens.
// ValidateToken accepts exactly what it produces.
func GenerateToken(subject, clinicID, role string, duration time.Duration) (string, error) {
	key, err := secretKey()
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := StaffClaims{
		ClinicID: clinicID,
		Role:     role,
		StandardClaims: jwt.StandardClaims{
			Subject:   subject,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(duration).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// HashToken computes a SHA-256 hash of the token string.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidateToken parses a token string and returns its claims if valid.
func ValidateToken(tokenString string) (*StaffClaims, error) {
	key, err := secretKey()
	if err != nil {
		return nil, err
	}
	claims := &StaffClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" || claims.ClinicID == "" {
		return nil, errors.New("token is missing subject or clinicId")
	}
	return claims, nil
}

// RevokeToken stores the token hash so IsTokenRevoked reports it until ttl elapses.
func RevokeToken(ctx context.Context, client *redis.Client, tokenString string, ttl time.Duration) error {
	return client.Set(ctx, RevokedTokenPrefix+HashToken(tokenString), "1", ttl).Err()
}

// IsTokenRevoked checks the revocation list.
func IsTokenRevoked(ctx context.Context, client *redis.Client, tokenString string) (bool, error) {
	err := client.Get(ctx, RevokedTokenPrefix+HashToken(tokenString)).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
