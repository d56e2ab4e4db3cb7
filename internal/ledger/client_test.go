package ledger_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kashguard/go-sign-bridge/internal/ledger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *ledger.RESTClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return ledger.NewRESTClient(srv.URL, 5*time.Second)
}

func TestAccountBaseAccount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cosmos/auth/v1beta1/accounts/dydx1abc", r.URL.Path)
		_, _ = w.Write([]byte(`{"account":{"@type":"/dydxprotocol.accountplus.EthAccount","base_account":{"account_number":"1337","sequence":"5"}}}`))
	})

	acct, err := client.Account(context.Background(), "dydx1abc")
	require.NoError(t, err)
	assert.Equal(t, uint64(1337), acct.AccountNumber)
	assert.Equal(t, uint64(5), acct.Sequence)
}

func TestAccountFlat(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"account":{"@type":"/cosmos.auth.v1beta1.BaseAccount","account_number":"9","sequence":"2"}}`))
	})

	acct, err := client.Account(context.Background(), "dydx1abc")
	require.NoError(t, err)
	assert.Equal(t, uint64(9), acct.AccountNumber)
	assert.Equal(t, uint64(2), acct.Sequence)
}

func TestAccountFallsBackToAccountInfo(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cosmos/auth/v1beta1/accounts/dydx1new":
			w.WriteHeader(http.StatusNotFound)
		case "/cosmos/auth/v1beta1/account_info/dydx1new":
			_, _ = w.Write([]byte(`{"info":{"account_number":"77","sequence":"0"}}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	acct, err := client.Account(context.Background(), "dydx1new")
	require.NoError(t, err)
	assert.Equal(t, uint64(77), acct.AccountNumber)
	assert.Equal(t, uint64(0), acct.Sequence)
}

func TestAccountUnseenAddress(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	acct, err := client.Account(context.Background(), "dydx1unseen")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), acct.AccountNumber)
	assert.Equal(t, uint64(0), acct.Sequence)
}

func TestAccountMalformedNumber(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"account":{"@type":"/cosmos.auth.v1beta1.BaseAccount","account_number":"not-a-number","sequence":"2"}}`))
	})

	_, err := client.Account(context.Background(), "dydx1abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid account number")
}

func TestAccountInfoMalformedSequence(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cosmos/auth/v1beta1/accounts/dydx1abc":
			w.WriteHeader(http.StatusNotFound)
		case "/cosmos/auth/v1beta1/account_info/dydx1abc":
			_, _ = w.Write([]byte(`{"info":{"account_number":"4","sequence":""}}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	_, err := client.Account(context.Background(), "dydx1abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid account sequence")
}

func TestAccountRequiresAddress(t *testing.T) {
	client := ledger.NewRESTClient("http://localhost:0", time.Second)
	_, err := client.Account(context.Background(), "")
	assert.Error(t, err)
}

func TestBroadcastTx(t *testing.T) {
	txBytes := []byte{0xca, 0xfe}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cosmos/tx/v1beta1/txs", r.URL.Path)

		var req struct {
			TxBytes string `json:"tx_bytes"`
			Mode    string `json:"mode"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "BROADCAST_MODE_SYNC", req.Mode)
		assert.Equal(t, base64.StdEncoding.EncodeToString(txBytes), req.TxBytes)

		_, _ = w.Write([]byte(`{"tx_response":{"txhash":"ABC123","code":0,"raw_log":""}}`))
	})

	result, err := client.BroadcastTx(context.Background(), txBytes)
	require.NoError(t, err)
	assert.Equal(t, "ABC123", result.TxHash)
	assert.Equal(t, uint32(0), result.Code)
}

func TestBroadcastTxRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tx_response":{"txhash":"DEAD","code":5,"raw_log":"insufficient fee"}}`))
	})

	result, err := client.BroadcastTx(context.Background(), []byte{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient fee")
	require.NotNil(t, result)
	assert.Equal(t, uint32(5), result.Code)
}

func TestAuthenticators(t *testing.T) {
	cfg := base64.StdEncoding.EncodeToString([]byte("config"))

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dydxprotocol/accountplus/authenticators/dydx1abc", r.URL.Path)
		_, _ = w.Write([]byte(`{"account_authenticators":[{"id":"3","type":"AllOf","config":"` + cfg + `"}]}`))
	})

	auths, err := client.Authenticators(context.Background(), "dydx1abc")
	require.NoError(t, err)
	require.Len(t, auths, 1)
	assert.Equal(t, uint64(3), auths[0].ID)
	assert.Equal(t, "AllOf", auths[0].Type)
	assert.Equal(t, []byte("config"), auths[0].Config)
}

func TestAuthenticatorsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	auths, err := client.Authenticators(context.Background(), "dydx1abc")
	require.NoError(t, err)
	assert.Nil(t, auths)
}

func TestAuthenticatorsInvalidID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"account_authenticators":[{"id":"not-a-number","type":"AllOf","config":""}]}`))
	})

	_, err := client.Authenticators(context.Background(), "dydx1abc")
	assert.Error(t, err)
}

func TestLatestHeight(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cosmos/base/tendermint/v1beta1/blocks/latest", r.URL.Path)
		_, _ = w.Write([]byte(`{"block":{"header":{"height":"123456"}}}`))
	})

	height, err := client.LatestHeight(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(123456), height)
}

func TestLatestHeightServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.LatestHeight(context.Background())
	assert.Error(t, err)
}
