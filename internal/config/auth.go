package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// minSecretLen is the shortest accepted JWT_SECRET; HS256 with a short
// secret is brute-forceable.
const minSecretLen = 16

// defaultTokenTTL is how long issued access tokens stay valid.
const defaultTokenTTL = 24 * time.Hour

// JWTConfig holds the signing settings for API access tokens.
type JWTConfig struct {
	Secret   string
	TokenTTL time.Duration
}

// NewJWTConfig reads JWT_SECRET (required) and JWT_TTL (a Go duration
// string, default 24h) from the environment.
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretLen)
	}

	ttl := defaultTokenTTL
	if raw := os.Getenv("JWT_TTL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
		}
		if parsed < time.Minute {
			return nil, fmt.Errorf("JWT_TTL must be at least 1m, got %s", parsed)
		}
		ttl = parsed
	}

	return &JWTConfig{Secret: secret, TokenTTL: ttl}, nil
}

// PasswordConfig holds the bcrypt cost used for password hashing.
type PasswordConfig struct {
	BcryptCost int
}

// NewPasswordConfig reads BCRYPT_COST (default 12) from the environment.
func NewPasswordConfig() (*PasswordConfig, error) {
	cost := 12
	if raw := os.Getenv("BCRYPT_COST"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
		}
		cost = parsed
	}
	if cost < 10 || cost > 15 {
		return nil, fmt.Errorf("BCRYPT_COST out of range: %d (must be 10-15)", cost)
	}
	return &PasswordConfig{BcryptCost: cost}, nil
}

// HashPassword hashes a plaintext password with bcrypt.
func (c *PasswordConfig) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored bcrypt hash.
func (c *PasswordConfig) VerifyPassword(password, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
}
