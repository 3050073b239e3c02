package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jcmexdev/bizops-dashboard/internal/domain"
)

var errMissingToken = errors.New("login response has no access_token")

type AuthService struct {
	c *Client
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login exchanges credentials for an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	in := LoginInput{Email: email, Password: password}
	if err := s.c.validateInput("auth.login", in); err != nil {
		return "", err
	}
	raw, err := s.c.send(ctx, request{method: http.MethodPost, path: "/auth/login", body: in})
	if err != nil {
		return "", err
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", &SchemaError{Resource: "auth", Err: err}
	}
	if body.AccessToken == "" {
		return "", &SchemaError{Resource: "auth", Err: errMissingToken}
	}
	return body.AccessToken, nil
}

// Profile returns the user behind the current token.
func (s *AuthService) Profile(ctx context.Context) (*domain.User, error) {
	raw, err := s.c.send(ctx, request{method: http.MethodGet, path: "/auth/profile", authRequired: true})
	if err != nil {
		return nil, err
	}
	return decodeObject[domain.User](s.c, "profile", raw)
}
