package service

import "crypto/subtle"

// AuthService compares submitted passwords against the configured admin secret.
type AuthService struct {
	secret string
}

// NewAuthService creates an AuthService for secret.
func NewAuthService(secret string) *AuthService {
	return &AuthService{secret: secret}
}

// Check reports whether password matches the secret. An empty secret never matches.
func (s *AuthService) Check(password string) bool {
	if s == nil || s.secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.secret)) == 1
}
