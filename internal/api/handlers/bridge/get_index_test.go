package bridge_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kashguard/go-sign-bridge/internal/api"
	"github.com/kashguard/go-sign-bridge/internal/test"
)

func TestGetIndex(t *testing.T) {
	test.WithTestServer(t, &test.FakeLedger{}, func(s *api.Server) {
		res := test.PerformRequest(t, s, http.MethodGet, "/", "")

		assert.Equal(t, http.StatusOK, res.Code)
		assert.Contains(t, res.Header().Get("Content-Type"), "text/html")

		body := res.Body.String()
		assert.Contains(t, body, "/wallet")
		assert.Contains(t, body, "/payload")
		assert.Contains(t, body, "/submit")
	})
}
