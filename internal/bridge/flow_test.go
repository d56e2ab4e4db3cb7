package bridge_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tyler-smith/go-bip39"

	"github.com/kashguard/go-sign-bridge/internal/bridge"
	"github.com/kashguard/go-sign-bridge/internal/chain"
	"github.com/kashguard/go-sign-bridge/internal/ledger"
	"github.com/kashguard/go-sign-bridge/internal/session"
	"github.com/kashguard/go-sign-bridge/internal/test"
)

const masterAddress = "dydx1master000000000000000000000000000000000"

func newTestFlow(t *testing.T, fake *test.FakeLedger) (*bridge.Flow, *session.FileStore) {
	t.Helper()

	net, err := chain.ResolveNetwork("dydx-testnet-4", "", "")
	require.NoError(t, err)

	store := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	flow := bridge.NewFlow(bridge.Options{
		Network:          net,
		SubaccountNumber: "0",
		SessionTTL:       25 * time.Minute,
		PollInterval:     time.Millisecond,
		PollMaxAttempts:  3,
	}, fake, store)
	return flow, store
}

func walletIdentity(t *testing.T) []byte {
	t.Helper()
	key, err := chain.GenerateSessionKey("dydx")
	require.NoError(t, err)
	t.Cleanup(key.Destroy)
	return key.PubKey
}

func drainEvents(flow *bridge.Flow) []bridge.Event {
	var events []bridge.Event
	for {
		select {
		case ev := <-flow.Events():
			events = append(events, ev)
		default:
			return events
		}
	}
}

func eventTypes(events []bridge.Event) []bridge.EventType {
	types := make([]bridge.EventType, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	return types
}

func TestFlowHappyPath(t *testing.T) {
	// 广播前的快照为空，首轮轮询即出现新注册的 authenticator
	fake := &test.FakeLedger{}
	fake.AuthenticatorsFn = func(_ context.Context, _ string) ([]ledger.Authenticator, error) {
		if fake.AuthenticatorCalls == 1 {
			return nil, nil
		}
		return []ledger.Authenticator{{ID: 7, Type: chain.AuthenticatorTypeAllOf}}, nil
	}
	flow, store := newTestFlow(t, fake)

	require.NoError(t, flow.HandleWallet(context.Background(), masterAddress, walletIdentity(t)))
	assert.Equal(t, bridge.StatePayloadReady, flow.State())

	payload, err := flow.Payload()
	require.NoError(t, err)
	assert.Equal(t, "dydx-testnet-4", payload.ChainID)
	assert.Equal(t, uint64(42), payload.AccountNumber)

	before := time.Now().UTC()
	txHash, err := flow.HandleSubmit(context.Background(), []byte{1, 2, 3}, payload.BodyBytes, payload.AuthInfoBytes)
	require.NoError(t, err)
	assert.Equal(t, "FAKEHASH", txHash)
	assert.Equal(t, bridge.StateSessionPersisted, flow.State())

	select {
	case <-flow.Done():
	default:
		t.Fatal("done channel must be closed after success")
	}

	rec, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, masterAddress, rec.MasterAddress)
	assert.Equal(t, uint64(7), rec.AuthenticatorID)
	assert.Equal(t, "dydx-testnet-4", rec.Network)
	assert.True(t, bip39.IsMnemonicValid(rec.SessionMnemonic))
	assert.Equal(t, 25*time.Minute, rec.ExpiresAt.Sub(rec.CreatedAt))
	assert.False(t, rec.CreatedAt.Before(before))

	types := eventTypes(drainEvents(flow))
	assert.Contains(t, types, bridge.EventWalletConnected)
	assert.Contains(t, types, bridge.EventSessionCreated)

	// 终态后一切操作都被拒绝
	err = flow.HandleWallet(context.Background(), masterAddress, walletIdentity(t))
	assert.True(t, errors.Is(err, bridge.ErrFlowTerminated))
}

func TestFlowWalletFailsWhenLedgerUnreachable(t *testing.T) {
	fake := &test.FakeLedger{
		LatestHeightFn: func(_ context.Context) (int64, error) {
			return 0, errors.New("connection refused")
		},
	}
	flow, store := newTestFlow(t, fake)

	err := flow.HandleWallet(context.Background(), masterAddress, walletIdentity(t))
	require.Error(t, err)
	assert.Equal(t, bridge.StateFailed, flow.State())

	select {
	case <-flow.Done():
	default:
		t.Fatal("done channel must be closed after failure")
	}

	rec, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, rec)

	types := eventTypes(drainEvents(flow))
	assert.Contains(t, types, bridge.EventSessionFailed)
}

func TestFlowSubmitBeforeWallet(t *testing.T) {
	flow, _ := newTestFlow(t, &test.FakeLedger{})

	_, err := flow.HandleSubmit(context.Background(), []byte{1}, []byte{2}, []byte{3})
	assert.True(t, errors.Is(err, bridge.ErrPayloadNotReady))

	// 未就绪的提交不终结流程
	assert.Equal(t, bridge.StateIdle, flow.State())
}

func TestFlowSubmitMismatchedBytes(t *testing.T) {
	fake := &test.FakeLedger{}
	fake.AuthenticatorsFn = func(_ context.Context, _ string) ([]ledger.Authenticator, error) {
		if fake.AuthenticatorCalls == 1 {
			return nil, nil
		}
		return []ledger.Authenticator{{ID: 9}}, nil
	}
	flow, _ := newTestFlow(t, fake)

	require.NoError(t, flow.HandleWallet(context.Background(), masterAddress, walletIdentity(t)))
	payload, err := flow.Payload()
	require.NoError(t, err)

	tampered := make([]byte, len(payload.BodyBytes))
	copy(tampered, payload.BodyBytes)
	tampered[0] ^= 0xff

	_, err = flow.HandleSubmit(context.Background(), []byte{1}, tampered, payload.AuthInfoBytes)
	assert.True(t, errors.Is(err, bridge.ErrPayloadMismatch))

	// 不一致的提交被拒绝但流程继续，载荷仍可领取并重新提交
	assert.Equal(t, bridge.StatePayloadReady, flow.State())
	_, err = flow.Payload()
	assert.NoError(t, err)

	_, err = flow.HandleSubmit(context.Background(), []byte{1}, payload.BodyBytes, payload.AuthInfoBytes)
	assert.NoError(t, err)
}

func TestFlowPollExhaustion(t *testing.T) {
	// authenticator 列表始终不变：轮询耗尽后流程失败
	fake := &test.FakeLedger{
		AuthenticatorsFn: func(_ context.Context, _ string) ([]ledger.Authenticator, error) {
			return []ledger.Authenticator{{ID: 1}}, nil
		},
	}
	flow, store := newTestFlow(t, fake)

	require.NoError(t, flow.HandleWallet(context.Background(), masterAddress, walletIdentity(t)))
	payload, err := flow.Payload()
	require.NoError(t, err)

	_, err = flow.HandleSubmit(context.Background(), []byte{1}, payload.BodyBytes, payload.AuthInfoBytes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not appear")
	assert.Equal(t, bridge.StateFailed, flow.State())

	// 快照 1 次 + 轮询 3 次
	assert.Equal(t, 4, fake.AuthenticatorCalls)

	rec, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestFlowBroadcastRejection(t *testing.T) {
	fake := &test.FakeLedger{
		BroadcastTxFn: func(_ context.Context, _ []byte) (*ledger.BroadcastResult, error) {
			return nil, errors.New("transaction rejected with code 32")
		},
	}
	flow, _ := newTestFlow(t, fake)

	require.NoError(t, flow.HandleWallet(context.Background(), masterAddress, walletIdentity(t)))
	payload, err := flow.Payload()
	require.NoError(t, err)

	_, err = flow.HandleSubmit(context.Background(), []byte{1}, payload.BodyBytes, payload.AuthInfoBytes)
	require.Error(t, err)
	assert.Equal(t, bridge.StateFailed, flow.State())
}

func TestFlowLastWriterWins(t *testing.T) {
	flow, _ := newTestFlow(t, &test.FakeLedger{})

	require.NoError(t, flow.HandleWallet(context.Background(), masterAddress, walletIdentity(t)))
	first, err := flow.Payload()
	require.NoError(t, err)

	require.NoError(t, flow.HandleWallet(context.Background(), masterAddress, walletIdentity(t)))
	second, err := flow.Payload()
	require.NoError(t, err)

	// 每次重连生成新的会话密钥，载荷必然不同
	assert.NotEqual(t, first.BodyBytes, second.BodyBytes)

	// 旧载荷的提交被当作不一致拒绝
	_, err = flow.HandleSubmit(context.Background(), []byte{1}, first.BodyBytes, first.AuthInfoBytes)
	assert.True(t, errors.Is(err, bridge.ErrPayloadMismatch))
}

func TestFlowAnnounceReady(t *testing.T) {
	flow, _ := newTestFlow(t, &test.FakeLedger{})

	flow.AnnounceReady("http://127.0.0.1:4242")

	events := drainEvents(flow)
	require.Len(t, events, 1)
	assert.Equal(t, bridge.EventBridgeReady, events[0].Type)
	assert.Equal(t, "http://127.0.0.1:4242", events[0].URL)
}
