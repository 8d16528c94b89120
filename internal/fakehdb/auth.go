package fakehdb

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTypeOperation = "operation"
	tokenTypeRefresh   = "refresh"
)

// tokenIssuer signs the operation and refresh tokens handed out by the
// token operations.
type tokenIssuer struct {
	secret []byte
}

func newTokenIssuer() *tokenIssuer {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic(err)
	}
	return &tokenIssuer{secret: secret}
}

func (t *tokenIssuer) issue(username, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"type":     tokenType,
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	})
	return token.SignedString(t.secret)
}

// verify returns the username a valid, unexpired token of tokenType was issued to.
func (t *tokenIssuer) verify(raw, tokenType string) (string, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if claims["type"] != tokenType {
		return "", errors.New("wrong token type")
	}
	username, _ := claims["username"].(string)
	return username, nil
}

func (s *Server) tokenTTL() time.Duration {
	if s.TokenTTL != 0 {
		return s.TokenTTL
	}
	return time.Hour
}

func (s *Server) authRequired() bool {
	return s.Username != "" && s.Password != ""
}

// authenticate checks the Authorization header and returns the status to
// answer with, http.StatusOK when the request may proceed.
func (s *Server) authenticate(r *http.Request, req Request) (int, string) {
	if !s.authRequired() {
		return http.StatusOK, ""
	}

	header := r.Header.Get("Authorization")
	switch {
	case req.Operation() == "create_authentication_tokens":
		// credentials travel in the body
		return http.StatusOK, ""

	case req.Operation() == "refresh_operation_token":
		if _, err := s.tokens.verify(strings.TrimPrefix(header, "Bearer "), tokenTypeRefresh); err != nil {
			return http.StatusUnauthorized, "invalid token"
		}
		return http.StatusOK, ""

	case strings.HasPrefix(header, "Basic "):
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, "Basic "))
		if err != nil {
			return http.StatusUnauthorized, "Login failed"
		}
		username, password, _ := strings.Cut(string(decoded), ":")
		if username != s.Username || password != s.Password {
			return http.StatusUnauthorized, "Login failed"
		}
		return http.StatusOK, ""

	case strings.HasPrefix(header, "Bearer "):
		if _, err := s.tokens.verify(strings.TrimPrefix(header, "Bearer "), tokenTypeOperation); err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return http.StatusForbidden, "token expired"
			}
			return http.StatusUnauthorized, "invalid token"
		}
		return http.StatusOK, ""

	default:
		return http.StatusUnauthorized, "Must login"
	}
}

func (s *Server) createTokens(req Request) (any, error) {
	username, _ := req["username"].(string)
	password, _ := req["password"].(string)
	if s.authRequired() && (username != s.Username || password != s.Password) {
		return nil, newOperationError(http.StatusUnauthorized, "invalid credentials")
	}

	operationToken, err := s.tokens.issue(username, tokenTypeOperation, s.tokenTTL())
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.issue(username, tokenTypeRefresh, 24*s.tokenTTL())
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"operation_token": operationToken,
		"refresh_token":   refreshToken,
	}, nil
}

func (s *Server) refreshToken(req Request) (any, error) {
	raw, _ := req["refresh_token"].(string)
	username, err := s.tokens.verify(raw, tokenTypeRefresh)
	if err != nil {
		return nil, newOperationError(http.StatusUnauthorized, "invalid token")
	}

	operationToken, err := s.tokens.issue(username, tokenTypeOperation, s.tokenTTL())
	if err != nil {
		return nil, err
	}
	return map[string]any{"operation_token": operationToken}, nil
}
