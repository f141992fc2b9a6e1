package services

import (
	"context"

	"main/model"
)

// Credentials are what a caller presents to prove an identity.
type Credentials struct {
	Email    string
	Password string
}

// AuthResult is a verified identity plus the provider tokens backing it.
type AuthResult struct {
	User         *model.User
	AccessToken  string
	RefreshToken string
}

// Strategy authenticates credentials against some backend. There is one
// concrete implementation today; token-based strategies can slot in
// without touching the middleware or handlers.
type Strategy interface {
	Authenticate(ctx context.Context, creds Credentials) (*AuthResult, error)
}

// PasswordStrategy verifies email/password pairs against the auth provider.
type PasswordStrategy struct {
	Provider *SupabaseAuth
}

func NewPasswordStrategy(provider *SupabaseAuth) *PasswordStrategy {
	return &PasswordStrategy{Provider: provider}
}

func (s *PasswordStrategy) Authenticate(ctx context.Context, creds Credentials) (*AuthResult, error) {
	result, err := s.Provider.SignInWithPassword(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		User:         result.User,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}, nil
}
