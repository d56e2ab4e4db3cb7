package bridge_test

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kashguard/go-sign-bridge/internal/api"
	"github.com/kashguard/go-sign-bridge/internal/test"
	"github.com/kashguard/go-sign-bridge/internal/types"
)

func TestGetPayloadBeforeWallet(t *testing.T) {
	test.WithTestServer(t, &test.FakeLedger{}, func(s *api.Server) {
		res := test.PerformRequest(t, s, http.MethodGet, "/payload", "")

		require.Equal(t, http.StatusBadRequest, res.Code)
		e := decodePublicError(t, res.Body.Bytes())
		assert.Equal(t, types.PublicHTTPErrorTypePayloadNotReady, e.Type)
	})
}

func TestGetPayload(t *testing.T) {
	test.WithTestServer(t, &test.FakeLedger{}, func(s *api.Server) {
		_, body := walletBody(t)
		res := test.PerformRequest(t, s, http.MethodPost, "/wallet", body)
		require.Equal(t, http.StatusOK, res.Code, res.Body.String())

		res = test.PerformRequest(t, s, http.MethodGet, "/payload", "")
		require.Equal(t, http.StatusOK, res.Code)

		var payload types.GetSignPayloadResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))

		assert.Equal(t, "dydx-testnet-4", payload.ChainID)
		assert.Equal(t, "42", payload.AccountNumber)

		bodyBytes, err := base64.StdEncoding.DecodeString(payload.BodyBytes)
		require.NoError(t, err)
		assert.NotEmpty(t, bodyBytes)

		authInfoBytes, err := base64.StdEncoding.DecodeString(payload.AuthInfoBytes)
		require.NoError(t, err)
		assert.NotEmpty(t, authInfoBytes)
	})
}

func TestGetPayloadIsStableAcrossReads(t *testing.T) {
	test.WithTestServer(t, &test.FakeLedger{}, func(s *api.Server) {
		_, body := walletBody(t)
		res := test.PerformRequest(t, s, http.MethodPost, "/wallet", body)
		require.Equal(t, http.StatusOK, res.Code)

		first := test.PerformRequest(t, s, http.MethodGet, "/payload", "")
		second := test.PerformRequest(t, s, http.MethodGet, "/payload", "")
		require.Equal(t, http.StatusOK, first.Code)
		require.Equal(t, http.StatusOK, second.Code)

		// 重复领取不得重新生成载荷
		assert.Equal(t, first.Body.String(), second.Body.String())
	})
}
