package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthController(t *testing.T) {
	c := NewHealthController()

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus string
		wantDeps   bool
	}{
		{"健康检查", c.Health, "ok", false},
		{"就绪检查", c.Ready, "ready", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.handler(w, httptest.NewRequest(http.MethodGet, "/", nil))

			require.Equal(t, http.StatusOK, w.Code)
			var resp HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, ServiceName, resp.Service)
			assert.NotEmpty(t, resp.Version)
			if tt.wantDeps {
				assert.Equal(t, "disabled", resp.Dependencies["redis"])
			} else {
				assert.Nil(t, resp.Dependencies)
			}
		})
	}
}
