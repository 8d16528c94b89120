package connection

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/harperdb/harperdb-sdk-go/pkg/constants"
)

// Authenticator produces the Authorization header value for a request.
type Authenticator interface {
	Authorization(ctx context.Context, s RawSender) (string, error)
}

// BasicAuth sends HTTP Basic credentials with every request.
type BasicAuth struct {
	Username string
	Password string
}

// Authorization returns "Basic " followed by base64("username:password"),
// or "" unless both username and password are set.
func (a BasicAuth) Authorization(context.Context, RawSender) (string, error) {
	if a.Username == "" || a.Password == "" {
		return "", nil
	}
	token := base64.StdEncoding.EncodeToString([]byte(a.Username + ":" + a.Password))
	return "Basic " + token, nil
}

// Tokens is the body of create_authentication_tokens and refresh_operation_token.
type Tokens struct {
	OperationToken string `json:"operation_token"`
	RefreshToken   string `json:"refresh_token,omitempty"`
}

// TokenAuth authenticates with JWT operation tokens. The first request
// exchanges Username and Password for a token pair; an operation token that
// has expired, or will within constants.TokenRefreshSkew, is refreshed with
// the refresh token before use. If the refresh is rejected a new pair is
// requested.
type TokenAuth struct {
	Username string
	Password string

	mu             sync.Mutex
	operationToken string
	refreshToken   string
	now            func() time.Time
}

func NewTokenAuth(username, password string) *TokenAuth {
	return &TokenAuth{Username: username, Password: password}
}

func (a *TokenAuth) Authorization(ctx context.Context, s RawSender) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case a.operationToken == "":
		if err := a.create(ctx, s); err != nil {
			return "", err
		}
	case a.expiresSoon(a.operationToken):
		if err := a.refresh(ctx, s); err != nil {
			if !errors.Is(err, ErrServer) {
				return "", err
			}
			if err := a.create(ctx, s); err != nil {
				return "", err
			}
		}
	}

	return "Bearer " + a.operationToken, nil
}

// Tokens returns the token pair currently held.
func (a *TokenAuth) Tokens() Tokens {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Tokens{OperationToken: a.operationToken, RefreshToken: a.refreshToken}
}

func (a *TokenAuth) create(ctx context.Context, s RawSender) error {
	if a.Username == "" || a.Password == "" {
		return constants.ErrNoCredentials
	}

	req := NewRequest(constants.OpCreateAuthenticationTokens).
		With("username", a.Username).
		With("password", a.Password)

	var tokens Tokens
	if err := s.SendWithAuthorization(ctx, "", req, &tokens); err != nil {
		return fmt.Errorf("creating authentication tokens: %w", err)
	}
	if tokens.OperationToken == "" {
		return fmt.Errorf("creating authentication tokens: %w: no operation_token", constants.ErrUnexpectedResponse)
	}

	a.operationToken = tokens.OperationToken
	a.refreshToken = tokens.RefreshToken
	return nil
}

func (a *TokenAuth) refresh(ctx context.Context, s RawSender) error {
	if a.refreshToken == "" || a.expiresSoon(a.refreshToken) {
		return a.create(ctx, s)
	}

	req := NewRequest(constants.OpRefreshOperationToken).
		With("refresh_token", a.refreshToken)

	var tokens Tokens
	if err := s.SendWithAuthorization(ctx, "Bearer "+a.refreshToken, req, &tokens); err != nil {
		return fmt.Errorf("refreshing operation token: %w", err)
	}
	if tokens.OperationToken == "" {
		return fmt.Errorf("refreshing operation token: %w: no operation_token", constants.ErrUnexpectedResponse)
	}

	a.operationToken = tokens.OperationToken
	return nil
}

// expiresSoon reads the exp claim without verifying the signature; the
// server is the one that verifies. Tokens without a readable exp never expire.
func (a *TokenAuth) expiresSoon(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	now := time.Now
	if a.now != nil {
		now = a.now
	}
	return !now().Add(constants.TokenRefreshSkew).Before(exp.Time)
}
