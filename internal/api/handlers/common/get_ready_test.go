package common_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kashguard/go-sign-bridge/internal/api"
	"github.com/kashguard/go-sign-bridge/internal/test"
)

func TestGetReady(t *testing.T) {
	test.WithTestServer(t, &test.FakeLedger{}, func(s *api.Server) {
		res := test.PerformRequest(t, s, http.MethodGet, "/-/ready", "")

		require.Equal(t, http.StatusOK, res.Code)
		assert.Contains(t, res.Body.String(), "Ready.")
	})
}

func TestGetReadyLedgerUnreachable(t *testing.T) {
	fake := &test.FakeLedger{
		LatestHeightFn: func(_ context.Context) (int64, error) {
			return 0, errors.New("connection refused")
		},
	}

	test.WithTestServer(t, fake, func(s *api.Server) {
		res := test.PerformRequest(t, s, http.MethodGet, "/-/ready", "")

		require.Equal(t, http.StatusServiceUnavailable, res.Code)
		assert.Contains(t, res.Body.String(), "Not ready.")
	})
}
