package test

import (
	"context"

	"github.com/pkg/errors"

	"github.com/kashguard/go-sign-bridge/internal/ledger"
)

// FakeLedger 可编程的账本客户端假实现
// 未设置的回调返回合理的默认值，测试只需覆盖关心的行为
type FakeLedger struct {
	LatestHeightFn   func(ctx context.Context) (int64, error)
	AccountFn        func(ctx context.Context, address string) (*ledger.Account, error)
	BroadcastTxFn    func(ctx context.Context, txBytes []byte) (*ledger.BroadcastResult, error)
	AuthenticatorsFn func(ctx context.Context, address string) ([]ledger.Authenticator, error)

	// BroadcastCalls 记录每次广播的原始交易字节
	BroadcastCalls [][]byte
	// AuthenticatorCalls 记录 Authenticators 的调用次数
	AuthenticatorCalls int
}

var _ ledger.Client = (*FakeLedger)(nil)

func (f *FakeLedger) LatestHeight(ctx context.Context) (int64, error) {
	if f.LatestHeightFn != nil {
		return f.LatestHeightFn(ctx)
	}
	return 1, nil
}

func (f *FakeLedger) Account(ctx context.Context, address string) (*ledger.Account, error) {
	if f.AccountFn != nil {
		return f.AccountFn(ctx, address)
	}
	return &ledger.Account{AccountNumber: 42, Sequence: 7}, nil
}

func (f *FakeLedger) BroadcastTx(ctx context.Context, txBytes []byte) (*ledger.BroadcastResult, error) {
	f.BroadcastCalls = append(f.BroadcastCalls, txBytes)
	if f.BroadcastTxFn != nil {
		return f.BroadcastTxFn(ctx, txBytes)
	}
	if len(txBytes) == 0 {
		return nil, errors.New("empty tx")
	}
	return &ledger.BroadcastResult{TxHash: "FAKEHASH", Code: 0}, nil
}

func (f *FakeLedger) Authenticators(ctx context.Context, address string) ([]ledger.Authenticator, error) {
	f.AuthenticatorCalls++
	if f.AuthenticatorsFn != nil {
		return f.AuthenticatorsFn(ctx, address)
	}
	return nil, nil
}
