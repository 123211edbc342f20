package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminChain(next http.Handler) http.Handler {
	return Auth(StaticToken("s3cret", "catalog-admin", "admin"))(RequireRole("admin")(next))
}

func TestStaticToken(t *testing.T) {
	validate := StaticToken("s3cret", "catalog-admin", "admin")

	claims, err := validate("s3cret")
	require.NoError(t, err)
	assert.Equal(t, &Claims{Subject: "catalog-admin", Role: "admin"}, claims)

	_, err = validate("guess")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = StaticToken("", "x", "admin")("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestJWTToken(t *testing.T) {
	validate := JWTToken("jwt-secret")
	future := time.Now().Add(time.Hour).Unix()

	good := signToken(t, jwt.SigningMethodHS256, []byte("jwt-secret"), jwt.MapClaims{
		"sub": "ops@example.com", "role": "admin", "exp": future,
	})
	claims, err := validate(good)
	require.NoError(t, err)
	assert.Equal(t, &Claims{Subject: "ops@example.com", Role: "admin"}, claims)

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "x", "role": "admin"})},
		{"expired", signToken(t, jwt.SigningMethodHS256, []byte("jwt-secret"), jwt.MapClaims{
			"sub": "x", "role": "admin", "exp": time.Now().Add(-time.Hour).Unix(),
		})},
		{"unsigned", signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"sub": "x", "role": "admin"})},
		{"not a jwt", "s3cret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validate(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err = JWTToken("")(good)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuth_AllowsValidToken(t *testing.T) {
	var subject, role string
	h := adminChain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = SubjectFromContext(r.Context())
		role = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "catalog-admin", subject)
	assert.Equal(t, "admin", role)
}

func TestAuth_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"missing header", "", "missing authorization header"},
		{"wrong scheme", "Basic s3cret", "invalid authorization header format"},
		{"empty token", "Bearer ", "invalid authorization header format"},
		{"wrong token", "Bearer nope", "invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := adminChain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler must not run")
			}))

			req := httptest.NewRequest(http.MethodPut, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestRequireRole_Forbidden(t *testing.T) {
	h := Auth(StaticToken("s3cret", "viewer", "viewer"))(RequireRole("admin")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}),
	))

	req := httptest.NewRequest(http.MethodPut, "/", nil)
	req.Header.Set("Authorization", "bearer s3cret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"FORBIDDEN","message":"insufficient permissions"}}`, rec.Body.String())
}
