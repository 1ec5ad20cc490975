package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvIntParsesAndFallsBack(t *testing.T) {
	t.Setenv("CONFLICT_SCAN_LIMIT", "25")
	assert.Equal(t, 25, envInt("CONFLICT_SCAN_LIMIT", 100))

	t.Setenv("CONFLICT_SCAN_LIMIT", "not-a-number")
	assert.Equal(t, 100, envInt("CONFLICT_SCAN_LIMIT", 100))

	assert.Equal(t, 100, envInt("CONFLICT_SCAN_LIMIT_UNSET", 100))
}

func TestEnvDurParsesAndFallsBack(t *testing.T) {
	t.Setenv("REAPER_INTERVAL", "90s")
	assert.Equal(t, 90*time.Second, envDur("REAPER_INTERVAL", time.Minute))

	t.Setenv("REAPER_INTERVAL", "soon")
	assert.Equal(t, time.Minute, envDur("REAPER_INTERVAL", time.Minute))

	assert.Equal(t, time.Minute, envDur("REAPER_INTERVAL_UNSET", time.Minute))
}

func TestGetenvDefault(t *testing.T) {
	t.Setenv("CART_QUEUE", "cart.custom")
	assert.Equal(t, "cart.custom", getenv("CART_QUEUE", "cart.pending"))

	assert.Equal(t, "cart.pending", getenv("CART_QUEUE_UNSET", "cart.pending"))
}
