package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"main/model"
)

// ProviderError carries the status and message reported by the auth
// provider so handlers can distinguish client causes from outages.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return e.Message
}

// ClientCause reports whether the provider blamed the request rather than
// failing internally.
func (e *ProviderError) ClientCause() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// SupabaseAuth talks to the Supabase GoTrue REST API. The anon key signs
// end-user flows; the service role key is only used for admin user lookup.
type SupabaseAuth struct {
	BaseURL        string
	AnonKey        string
	ServiceRoleKey string
	HTTPClient     *http.Client
}

func NewSupabaseAuth(baseURL, anonKey, serviceRoleKey string) *SupabaseAuth {
	return &SupabaseAuth{
		BaseURL:        baseURL,
		AnonKey:        anonKey,
		ServiceRoleKey: serviceRoleKey,
		HTTPClient:     &http.Client{Timeout: 10 * time.Second},
	}
}

// supabaseUser mirrors the provider's user record. Only safe fields are
// decoded; password material never reaches our types.
type supabaseUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
	UserMetadata struct {
		DisplayName string `json:"display_name"`
	} `json:"user_metadata"`
}

func (u *supabaseUser) toModel() *model.User {
	return &model.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.UserMetadata.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         supabaseUser `json:"user"`
}

// SignInResult is what a successful password sign-in yields.
type SignInResult struct {
	User         *model.User
	AccessToken  string
	RefreshToken string
}

// SignUp registers a new identity with the provider.
func (s *SupabaseAuth) SignUp(ctx context.Context, email, password, displayName string) (*model.User, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]string{"display_name": displayName},
	}

	var user supabaseUser
	if err := s.do(ctx, http.MethodPost, "/auth/v1/signup", s.AnonKey, "", body, &user); err != nil {
		return nil, err
	}
	return user.toModel(), nil
}

// SignInWithPassword exchanges credentials for tokens and the identity.
func (s *SupabaseAuth) SignInWithPassword(ctx context.Context, email, password string) (*SignInResult, error) {
	body := map[string]string{"email": email, "password": password}

	var resp tokenResponse
	if err := s.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", s.AnonKey, "", body, &resp); err != nil {
		return nil, err
	}
	return &SignInResult{
		User:         resp.User.toModel(),
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

// ResetPasswordForEmail asks the provider to dispatch a recovery email.
func (s *SupabaseAuth) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	path := "/auth/v1/recover"
	if redirectTo != "" {
		path += "?redirect_to=" + url.QueryEscape(redirectTo)
	}
	return s.do(ctx, http.MethodPost, path, s.AnonKey, "", map[string]string{"email": email}, nil)
}

// UpdateUserPassword completes a recovery flow using the tokens from the
// reset link. If the access token has expired it is refreshed once.
func (s *SupabaseAuth) UpdateUserPassword(ctx context.Context, accessToken, refreshToken, newPassword string) error {
	body := map[string]string{"password": newPassword}

	err := s.do(ctx, http.MethodPut, "/auth/v1/user", s.AnonKey, accessToken, body, nil)
	var perr *ProviderError
	if errors.As(err, &perr) && perr.StatusCode == http.StatusUnauthorized && refreshToken != "" {
		var refreshed tokenResponse
		refreshBody := map[string]string{"refresh_token": refreshToken}
		if rerr := s.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", s.AnonKey, "", refreshBody, &refreshed); rerr != nil {
			return rerr
		}
		return s.do(ctx, http.MethodPut, "/auth/v1/user", s.AnonKey, refreshed.AccessToken, body, nil)
	}
	return err
}

// GetUserByID fetches the live identity record through the admin API.
func (s *SupabaseAuth) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	var user supabaseUser
	path := "/auth/v1/admin/users/" + url.PathEscape(userID)
	if err := s.do(ctx, http.MethodGet, path, s.ServiceRoleKey, s.ServiceRoleKey, nil, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, &ProviderError{StatusCode: http.StatusNotFound, Message: "user not found"}
	}
	return user.toModel(), nil
}

// SignOut revokes the session's access token upstream. Best effort; the
// local session is destroyed regardless.
func (s *SupabaseAuth) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	return s.do(ctx, http.MethodPost, "/auth/v1/logout", s.AnonKey, accessToken, nil, nil)
}

func (s *SupabaseAuth) do(ctx context.Context, method, path, apiKey, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("apikey", apiKey)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &ProviderError{
			StatusCode: resp.StatusCode,
			Message:    providerMessage(data),
		}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode provider response: %w", err)
		}
	}
	return nil
}

// providerMessage digs the human-readable message out of the handful of
// error shapes GoTrue responds with.
func providerMessage(data []byte) string {
	var payload struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		for _, msg := range []string{payload.Msg, payload.Message, payload.ErrorDescription, payload.Error} {
			if msg != "" {
				return msg
			}
		}
	}
	return "authentication provider error"
}
