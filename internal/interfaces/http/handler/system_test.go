package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travelcrm/backend/internal/interfaces/http/dto"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping() error { return f.err }

func TestSystemHandler_Health(t *testing.T) {
	t.Run("healthy with reachable database", func(t *testing.T) {
		h := NewSystemHandler(&fakePinger{})

		c, w := newTestContext(t)
		h.Health(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "healthy", data["status"])
		assert.Equal(t, "ok", data["database"])
		assert.NotEmpty(t, data["go_version"])
		assert.NotEmpty(t, data["uptime"])
	})

	t.Run("degraded when database is unreachable", func(t *testing.T) {
		h := NewSystemHandler(&fakePinger{err: errors.New("connection refused")})

		c, w := newTestContext(t)
		h.Health(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "degraded", data["status"])
		assert.Equal(t, "unreachable", data["database"])
	})

	t.Run("skips database check when nil", func(t *testing.T) {
		h := NewSystemHandler(nil)

		c, w := newTestContext(t)
		h.Health(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "healthy", data["status"])
		_, hasDB := data["database"]
		assert.False(t, hasDB)
	})
}
