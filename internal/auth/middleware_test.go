package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/pdfchat/internal/account"
)

const testSecret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims(sub string) Claims {
	return Claims{
		Email: sub + "@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    "idp",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func serve(m *JWTMiddleware, header string) (*httptest.ResponseRecorder, *account.Principal) {
	var got *account.Principal
	h := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = account.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, got
}

func TestAuthenticate(t *testing.T) {
	m := NewJWTMiddleware(testSecret, "idp")

	rec, p := serve(m, "Bearer "+sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("user-a")))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, p)
	assert.Equal(t, "user-a", p.ID)
	assert.Equal(t, "user-a@example.com", p.Email)
}

func TestAuthenticateRejects(t *testing.T) {
	m := NewJWTMiddleware(testSecret, "idp")

	expired := validClaims("user-a")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	noExpiry := validClaims("user-a")
	noExpiry.ExpiresAt = nil

	wrongIssuer := validClaims("user-a")
	wrongIssuer.Issuer = "someone-else"

	tests := map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"garbage":        "Bearer not-a-jwt",
		"wrong secret":   "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), validClaims("user-a")),
		"expired":        "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), expired),
		"no expiry":      "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), noExpiry),
		"wrong issuer":   "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer),
		"no subject":     "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("")),
		"none alg":       "Bearer " + sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims("user-a")),
	}
	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			rec, p := serve(m, header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Nil(t, p)
		})
	}
}
