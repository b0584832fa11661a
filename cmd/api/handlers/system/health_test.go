package system

import (
	"encoding/json"
	"testing"

	"github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	engine := route.NewEngine(config.NewOptions(nil))
	engine.GET("/health", Health)

	w := ut.PerformRequest(engine, "GET", "/health", nil)
	resp := w.Result()
	assert.Equal(t, 200, resp.StatusCode())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "memory")
}
