package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func cachedRequest(t *testing.T, mw echo.MiddlewareFunc, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/concerts/1/ticket-types", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	assert.NoError(t, mw(handler)(c))
	return rec
}

func TestCacheJSONServesHitWithoutCallingHandler(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("cache:/v1/concerts/1/ticket-types").SetVal(`[{"id":1}]`)

	rec := cachedRequest(t, CacheJSON(rdb, 30*time.Second), func(c echo.Context) error {
		t.Fatal("handler must not run on a cache hit")
		return nil
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, `[{"id":1}]`, rec.Body.String())
}

func TestCacheJSONStoresMissOnSuccess(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("cache:/v1/concerts/1/ticket-types").RedisNil()
	mock.ExpectSetEx("cache:/v1/concerts/1/ticket-types", `[{"id":1}]`, 30*time.Second).SetVal("OK")

	rec := cachedRequest(t, CacheJSON(rdb, 30*time.Second), func(c echo.Context) error {
		return c.String(http.StatusOK, `[{"id":1}]`)
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheJSONSkipsFailedResponses(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("cache:/v1/concerts/99/ticket-types").RedisNil()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/concerts/99/ticket-types", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := CacheJSON(rdb, 30*time.Second)
	assert.NoError(t, mw(func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "concert not found"})
	})(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet(), "non-200 responses are not stored")
}

func TestCacheJSONDisabledWithoutRedis(t *testing.T) {
	var rdb *redis.Client

	rec := cachedRequest(t, CacheJSON(rdb, 30*time.Second), func(c echo.Context) error {
		return c.String(http.StatusOK, "fresh")
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}
