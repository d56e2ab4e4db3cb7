package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/kashguard/go-sign-bridge/internal/chain"
	"github.com/kashguard/go-sign-bridge/internal/ledger"
	"github.com/kashguard/go-sign-bridge/internal/session"
)

// State 单次开通流程的状态
type State string

const (
	StateIdle                 State = "Idle"
	StateWalletReceived       State = "WalletReceived"
	StatePayloadReady         State = "PayloadReady"
	StateSubmitted            State = "Submitted"
	StatePollingAuthenticator State = "PollingAuthenticator"
	StateSessionPersisted     State = "SessionPersisted" // 终态
	StateFailed               State = "Failed"           // 终态，所有非 Idle 状态可达
)

// 可供 HTTP 层映射为类型化错误的哨兵
var (
	// ErrFlowTerminated 流程已到终态，必须重新发起开通
	ErrFlowTerminated = errors.New("provisioning flow has already terminated")
	// ErrPayloadNotReady 尚未收到钱包身份，没有待签名载荷
	ErrPayloadNotReady = errors.New("no sign payload is ready")
	// ErrPayloadMismatch 提交的字节串与下发载荷不一致
	ErrPayloadMismatch = errors.New("submitted bytes do not match the issued sign payload")
)

// Options 开通流程配置
// 轮询边界和间隔必须显式传入，测试环境可以收紧
type Options struct {
	Network          chain.Network
	SubaccountNumber string
	SessionTTL       time.Duration
	PollInterval     time.Duration
	PollMaxAttempts  int
}

// Flow 单次会话开通流程的状态机
// HTTP 处理器共享的唯一可变状态袋，一把互斥锁全程串行化：
// 一个请求完整处理完才轮到下一个
type Flow struct {
	mu sync.Mutex

	opts   Options
	ledger ledger.Client
	store  *session.FileStore

	state         State
	walletAddress string
	walletPubKey  []byte
	payload       *chain.SignPayload
	sessionKey    *chain.SessionKey

	events   chan Event
	done     chan struct{}
	doneOnce sync.Once
}

// NewFlow 创建开通流程
func NewFlow(opts Options, ledgerClient ledger.Client, store *session.FileStore) *Flow {
	return &Flow{
		opts:   opts,
		ledger: ledgerClient,
		store:  store,
		state:  StateIdle,
		events: make(chan Event, 8),
		done:   make(chan struct{}),
	}
}

// Events 事件通道（只读）
func (f *Flow) Events() <-chan Event {
	return f.events
}

// Done 流程到达终态后关闭，服务据此停机
func (f *Flow) Done() <-chan struct{} {
	return f.done
}

// State 当前状态
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// AnnounceReady 发布配对 URL
func (f *Flow) AnnounceReady(url string) {
	f.emit(Event{Type: EventBridgeReady, URL: url})
}

// HandleWallet 接收钱包身份并构建待签名载荷
// /submit 完成前的第二次调用直接覆盖在途载荷（last-writer-wins，
// 预期只有一个浏览器标签页驱动流程）
func (f *Flow) HandleWallet(ctx context.Context, address string, pubKey []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.isTerminalLocked() {
		return ErrFlowTerminated
	}

	f.state = StateWalletReceived
	f.walletAddress = address
	f.walletPubKey = pubKey

	if err := f.buildPayloadLocked(ctx); err != nil {
		f.failLocked(err)
		return err
	}

	f.state = StatePayloadReady
	f.emit(Event{Type: EventWalletConnected, WalletAddress: address})
	log.Info().Str("master_address", address).Msg("Wallet connected, sign payload ready")
	return nil
}

// Payload 返回当前待签名载荷；尚未就绪时报错
func (f *Flow) Payload() (*chain.SignPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.payload == nil || f.state != StatePayloadReady {
		return nil, ErrPayloadNotReady
	}
	return f.payload, nil
}

// HandleSubmit 组装签名交易、广播、轮询确认、持久化会话
// 成功或失败都会终结流程；整个流程没有自动重试，调用方只能重新发起开通
func (f *Flow) HandleSubmit(ctx context.Context, signature, bodyBytes, authInfoBytes []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.isTerminalLocked() {
		return "", ErrFlowTerminated
	}
	if f.state != StatePayloadReady {
		return "", ErrPayloadNotReady
	}
	// 字节不一致说明浏览器签的不是我们下发的载荷
	// 拒绝提交但不终结流程：浏览器可以重新拉取载荷后再试
	if !f.payload.Equal(bodyBytes, authInfoBytes) {
		return "", ErrPayloadMismatch
	}

	// 广播前记录已有 authenticator，轮询时只找新增的
	known, err := f.knownAuthenticatorIDs(ctx)
	if err != nil {
		f.failLocked(errors.Wrap(err, "failed to snapshot authenticators"))
		return "", err
	}

	txRaw, err := chain.EncodeTxRaw(bodyBytes, authInfoBytes, signature)
	if err != nil {
		f.failLocked(err)
		return "", err
	}

	f.state = StateSubmitted
	result, err := f.ledger.BroadcastTx(ctx, txRaw)
	if err != nil {
		f.failLocked(errors.Wrap(err, "broadcast failed"))
		return "", err
	}
	log.Info().Str("tx_hash", result.TxHash).Msg("Registration transaction broadcast")

	f.state = StatePollingAuthenticator
	authenticatorID, err := f.pollForAuthenticator(ctx, known)
	if err != nil {
		f.failLocked(err)
		return "", err
	}

	now := time.Now().UTC()
	rec := &session.Record{
		Version:         session.RecordVersion,
		CreatedAt:       now,
		ExpiresAt:       now.Add(f.opts.SessionTTL),
		Network:         f.opts.Network.ChainID,
		RPCEndpoint:     f.opts.Network.RESTEndpoint,
		MasterAddress:   f.walletAddress,
		SessionAddress:  f.sessionKey.Address,
		SessionMnemonic: f.sessionKey.Mnemonic.Reveal(),
		AuthenticatorID: authenticatorID,
	}
	if err := f.store.Save(rec); err != nil {
		f.failLocked(errors.Wrap(err, "failed to persist session record"))
		return "", err
	}

	f.state = StateSessionPersisted
	f.emit(Event{Type: EventSessionCreated, Record: rec})
	f.finish()

	// 密钥材料已交接给记录，本地副本立即清零
	f.sessionKey.Destroy()
	f.sessionKey = nil
	log.Info().
		Str("session_address", rec.SessionAddress).
		Uint64("authenticator_id", rec.AuthenticatorID).
		Time("expires_at", rec.ExpiresAt).
		Msg("Session persisted")
	return result.TxHash, nil
}

// buildPayloadLocked 生成会话密钥并构建未签名注册交易；调用方必须已持锁
func (f *Flow) buildPayloadLocked(ctx context.Context) error {
	// 先探测账本连通性，尽早失败
	height, err := f.ledger.LatestHeight(ctx)
	if err != nil {
		return errors.Wrap(err, "ledger is unreachable")
	}
	log.Debug().Int64("height", height).Msg("Ledger reachable")

	acct, err := f.ledger.Account(ctx, f.walletAddress)
	if err != nil {
		return errors.Wrap(err, "account lookup failed")
	}

	// 覆盖在途载荷时销毁上一把会话密钥
	if f.sessionKey != nil {
		f.sessionKey.Destroy()
		f.sessionKey = nil
	}
	key, err := chain.GenerateSessionKey(f.opts.Network.Bech32Prefix)
	if err != nil {
		return errors.Wrap(err, "failed to generate session key")
	}

	spec, err := chain.BuildAuthenticatorSpec(key.PubKey, chain.TradingMsgTypeURL, f.opts.SubaccountNumber)
	if err != nil {
		key.Destroy()
		return err
	}

	payload, err := chain.BuildAddAuthenticatorPayload(
		f.opts.Network, f.walletAddress, f.walletPubKey, spec,
		acct.AccountNumber, acct.Sequence,
	)
	if err != nil {
		key.Destroy()
		return err
	}

	f.sessionKey = key
	f.payload = payload
	return nil
}

// knownAuthenticatorIDs 广播前的 authenticator 快照
func (f *Flow) knownAuthenticatorIDs(ctx context.Context) (map[uint64]struct{}, error) {
	existing, err := f.ledger.Authenticators(ctx, f.walletAddress)
	if err != nil {
		return nil, err
	}
	known := make(map[uint64]struct{}, len(existing))
	for _, a := range existing {
		known[a.ID] = struct{}{}
	}
	return known, nil
}

// pollForAuthenticator 有界轮询：固定间隔，直到出现快照之外的新 authenticator
// 重试耗尽是终结性失败，不做静默续跑
func (f *Flow) pollForAuthenticator(ctx context.Context, known map[uint64]struct{}) (uint64, error) {
	for attempt := 1; attempt <= f.opts.PollMaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return 0, errors.Wrap(ctx.Err(), "authenticator confirmation cancelled")
		case <-time.After(f.opts.PollInterval):
		}

		current, err := f.ledger.Authenticators(ctx, f.walletAddress)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("Authenticator poll failed")
			continue
		}
		for _, a := range current {
			if _, ok := known[a.ID]; !ok {
				return a.ID, nil
			}
		}
		log.Debug().Int("attempt", attempt).Int("max", f.opts.PollMaxAttempts).Msg("Authenticator not confirmed yet")
	}
	return 0, errors.Errorf("authenticator did not appear after %d attempts", f.opts.PollMaxAttempts)
}

// failLocked 进入失败终态；调用方必须已持锁
func (f *Flow) failLocked(err error) {
	f.state = StateFailed
	if f.sessionKey != nil {
		f.sessionKey.Destroy()
		f.sessionKey = nil
	}
	f.payload = nil
	f.emit(Event{Type: EventSessionFailed, Message: err.Error()})
	f.finish()
	log.Error().Err(err).Msg("Provisioning flow failed")
}

// isTerminalLocked 是否已到终态；调用方必须已持锁
func (f *Flow) isTerminalLocked() bool {
	return f.state == StateSessionPersisted || f.state == StateFailed
}

// emit 非阻塞事件发送：通道满或无人接收时直接丢弃
func (f *Flow) emit(ev Event) {
	select {
	case f.events <- ev:
	default:
	}
}

// finish 关闭 done，只执行一次
func (f *Flow) finish() {
	f.doneOnce.Do(func() {
		close(f.done)
	})
}
