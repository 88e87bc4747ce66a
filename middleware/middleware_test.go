package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carebook/globals"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

func signToken(t *testing.T, user string, ttl time.Duration) string {
	t.Helper()
	claims := &Claims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(globals.JwtSecret)
	assert.NoError(t, err)
	return token
}

func callAuthenticate(authorization string) (*httptest.ResponseRecorder, string) {
	var seenUser string
	handler := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		seenUser, _ = r.Context().Value(globals.UserKey).(string)
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		r.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	handler(w, r, nil)
	return w, seenUser
}

func TestAuthenticateMissingToken(t *testing.T) {
	w, _ := callAuthenticate("")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Missing token")
}

func TestAuthenticateBadFormat(t *testing.T) {
	w, _ := callAuthenticate("Token abcdef")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token format")
}

func TestAuthenticateGarbageToken(t *testing.T) {
	w, _ := callAuthenticate("Bearer not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token")
}

func TestAuthenticateExpiredToken(t *testing.T) {
	token := signTokenExpired(t)
	w, _ := callAuthenticate("Bearer " + token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func signTokenExpired(t *testing.T) string {
	return signToken(t, "late@example.com", -time.Hour)
}

func TestAuthenticatePutsIdentityOnContext(t *testing.T) {
	token := signToken(t, "patient@example.com", time.Hour)
	w, user := callAuthenticate("Bearer " + token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "patient@example.com", user)
}

func TestRequireAdminRejectsUnverifiedIdentity(t *testing.T) {
	// RequireAdmin composed without Authenticate finds no identity on the
	// context and must refuse before touching the store.
	called := false
	handler := RequireAdmin(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
	})

	r := httptest.NewRequest(http.MethodPut, "/api/users/role", nil)
	w := httptest.NewRecorder()
	handler(w, r, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
}

func TestValidateJWT(t *testing.T) {
	token := signToken(t, "patient@example.com", time.Hour)

	claims, err := ValidateJWT("Bearer " + token)
	assert.NoError(t, err)
	assert.Equal(t, "patient@example.com", claims.User)

	_, err = ValidateJWT("")
	assert.Error(t, err)
}
