package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func limitedRequest(t *testing.T, mw echo.MiddlewareFunc, userID string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/tickets/reserve", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	assert.NoError(t, handler(c))
	return rec
}

func TestRateLimitAllowsUnderLimit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.Regexp().ExpectIncr(`ratelimit:reserve:7:\d+`).SetVal(1)
	mock.Regexp().ExpectExpire(`ratelimit:reserve:7:\d+`, time.Minute).SetVal(true)

	rec := limitedRequest(t, RateLimit(rdb, 3), "7")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimitRejectsOverLimit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.Regexp().ExpectIncr(`ratelimit:reserve:7:\d+`).SetVal(4)

	rec := limitedRequest(t, RateLimit(rdb, 3), "7")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "too many requests")
}

func TestRateLimitLetsRequestThroughOnRedisError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.Regexp().ExpectIncr(`ratelimit:reserve:7:\d+`).SetErr(assert.AnError)

	rec := limitedRequest(t, RateLimit(rdb, 3), "7")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitNoOpWithoutRedis(t *testing.T) {
	rec := limitedRequest(t, RateLimit(nil, 3), "7")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitNoOpWithZeroLimit(t *testing.T) {
	rdb, _ := redismock.NewClientMock()

	rec := limitedRequest(t, RateLimit(rdb, 0), "7")

	assert.Equal(t, http.StatusOK, rec.Code)
}
