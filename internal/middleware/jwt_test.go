package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := tok.SignedString([]byte(secret))
	assert.NoError(t, err)
	return raw
}

func authRequest(t *testing.T, mw echo.MiddlewareFunc, authorization string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/tickets/reservations", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	assert.NoError(t, handler(c))
	return rec, c
}

func TestJWTAuthAcceptsValidTokenAndSetsClaims(t *testing.T) {
	raw := signedToken(t, testSecret, jwt.MapClaims{
		"sub":  float64(7),
		"role": "CUSTOMER",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	rec, c := authRequest(t, JWTAuth(testSecret), "Bearer "+raw)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(7), c.Get("user_id"))
	assert.Equal(t, "CUSTOMER", c.Get("role"))
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	rec, _ := authRequest(t, JWTAuth(testSecret), "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	raw := signedToken(t, "another-secret", jwt.MapClaims{"sub": float64(7)})

	rec, _ := authRequest(t, JWTAuth(testSecret), "Bearer "+raw)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	raw := signedToken(t, testSecret, jwt.MapClaims{
		"sub": float64(7),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	rec, _ := authRequest(t, JWTAuth(testSecret), "Bearer "+raw)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleAllowsListedRole(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set("role", "ADMIN")

	called := false
	handler := RequireRole("ADMIN", "CUSTOMER")(func(c echo.Context) error {
		called = true
		return nil
	})
	assert.NoError(t, handler(c))
	assert.True(t, called)
}

func TestRequireRoleRejectsOtherRole(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set("role", "CUSTOMER")

	handler := RequireRole("ADMIN")(func(c echo.Context) error { return nil })
	assert.NoError(t, handler(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
