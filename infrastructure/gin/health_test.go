package gin_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infragin "github.com/jonesrussell/north-cloud/spotlight/infrastructure/gin"
	"github.com/jonesrussell/north-cloud/spotlight/infrastructure/logger"
)

func TestHealth(t *testing.T) {
	testCases := []struct {
		name       string
		dbErr      error
		redisErr   error
		wantCode   int
		wantStatus infragin.HealthStatus
	}{
		{name: "all healthy", wantCode: http.StatusOK, wantStatus: infragin.HealthStatusHealthy},
		{name: "redis down degrades", redisErr: errors.New("down"), wantCode: http.StatusOK, wantStatus: infragin.HealthStatusDegraded},
		{name: "database down", dbErr: errors.New("down"), wantCode: http.StatusServiceUnavailable, wantStatus: infragin.HealthStatusUnhealthy},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := infragin.NewServerBuilder("spotlight", 8095).
				WithLogger(logger.NewNop()).
				WithVersion("test").
				WithDatabaseHealthCheck(func() error { return tc.dbErr }).
				WithRedisHealthCheck(func() error { return tc.redisErr }).
				Build()

			w := httptest.NewRecorder()
			server.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

			require.Equal(t, tc.wantCode, w.Code)

			var body infragin.HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.wantStatus, body.Status)
			assert.Equal(t, "spotlight", body.Service)
			assert.Len(t, body.Checks, 2)
		})
	}
}

func TestHealth_Head(t *testing.T) {
	server := infragin.NewServerBuilder("spotlight", 8095).WithLogger(logger.NewNop()).Build()

	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/health", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)
}
