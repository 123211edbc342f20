package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/AsimRauf/jewellery-store-sub002/pkg/errors"
)

type contextKeyType string

const (
	subjectKey contextKeyType = "subject"
	roleKey    contextKeyType = "role"
)

// ErrInvalidToken is returned by validators rejecting a bearer token.
var ErrInvalidToken = errors.New("invalid token")

// Claims identifies the caller behind a bearer token.
type Claims struct {
	Subject string `json:"sub"`
	Role    string `json:"role"`
}

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator func(token string) (*Claims, error)

// StaticToken returns a validator accepting exactly one shared secret, which
// maps to the given subject and role. An empty secret rejects every token.
func StaticToken(secret, subject, role string) TokenValidator {
	return func(token string) (*Claims, error) {
		if secret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			return nil, ErrInvalidToken
		}
		return &Claims{Subject: subject, Role: role}, nil
	}
}

// JWTToken returns a validator accepting HMAC-signed JWTs carrying "sub" and
// "role" claims. Expiry is enforced when the token sets "exp".
func JWTToken(secret string) TokenValidator {
	return func(token string) (*Claims, error) {
		if secret == "" {
			return nil, ErrInvalidToken
		}
		var claims struct {
			Role string `json:"role"`
			jwt.RegisteredClaims
		}
		parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !parsed.Valid {
			return nil, errors.Join(ErrInvalidToken, err)
		}
		return &Claims{Subject: claims.Subject, Role: claims.Role}, nil
	}
}

// Auth validates the bearer token and stores the caller's claims in the
// request context.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAppError(w, apperrors.Unauthorized("missing authorization header"))
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
				writeAppError(w, apperrors.Unauthorized("invalid authorization header format"))
				return
			}

			claims, err := validate(token)
			if err != nil {
				writeAppError(w, apperrors.Unauthorized("invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, claims.Subject)
			ctx = context.WithValue(ctx, roleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers whose role is not one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := roleSet[RoleFromContext(r.Context())]; !ok {
				writeAppError(w, apperrors.Forbidden("insufficient permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SubjectFromContext extracts the authenticated subject from the request context.
func SubjectFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(subjectKey).(string); ok {
		return s
	}
	return ""
}

// RoleFromContext extracts the caller role from the request context.
func RoleFromContext(ctx context.Context) string {
	if role, ok := ctx.Value(roleKey).(string); ok {
		return role
	}
	return ""
}

func writeAppError(w http.ResponseWriter, appErr *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	_ = json.NewEncoder(w).Encode(map[string]map[string]string{
		"error": {"code": appErr.Code, "message": appErr.Message},
	})
}
