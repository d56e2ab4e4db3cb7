package signer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kashguard/go-sign-bridge/internal/chain"
	"github.com/kashguard/go-sign-bridge/internal/session"
)

// activeSession 内存中的活动会话
type activeSession struct {
	id              string
	expiresAt       time.Time
	authenticatorID uint64
	key             *chain.SessionKey
}

// Manager 自动签名的唯一闸口
// 每一笔自动提交的订单都必须先通过这里；CanSign/SignRequest/Tick 构成
// check-then-act 序列，全部方法用同一把互斥锁串行化
type Manager struct {
	mu sync.Mutex

	walletConnected bool
	autoSignEnabled bool
	session         *activeSession

	// sessionExpired 记录会话是"过期被清除"还是"从未存在/被撤销"，
	// 保证过期后的签名请求报 SessionExpired 而不是 NoActiveSession
	sessionExpired bool
}

// NewManager 创建签名管理器（初始状态：未连接、未开启自动签名、无会话）
func NewManager() *Manager {
	return &Manager{}
}

// SetWalletConnected 更新钱包连接状态
// 断开连接会立即关闭自动签名（断连状态下不允许自动签名）
func (m *Manager) SetWalletConnected(connected bool, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.walletConnected = connected
	if !connected {
		m.autoSignEnabled = false
	}
}

// SetAutoSignEnabled 切换自动签名开关
// 断连状态下开启会失败（补救动作是先连接钱包）
func (m *Manager) SetAutoSignEnabled(enabled bool, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if enabled && !m.walletConnected {
		return newError(KindWalletNotConnected)
	}
	m.autoSignEnabled = enabled
	return nil
}

// CreateSession 在本地激活一个新会话（expires_at = now + ttl）
// 对应的链上 authenticator 由桥另行开通；这里只建模本地激活
// 要求钱包已连接且自动签名已开启；会生成新的会话密钥并替换旧会话
func (m *Manager) CreateSession(now time.Time, ttl time.Duration, bech32Prefix string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.walletConnected {
		return "", newError(KindWalletNotConnected)
	}
	if !m.autoSignEnabled {
		return "", newError(KindAutoSignDisabled)
	}
	if ttl <= 0 {
		return "", newInvalidRequest("ttl must be positive")
	}

	key, err := chain.GenerateSessionKey(bech32Prefix)
	if err != nil {
		return "", err
	}

	m.installSession(&activeSession{
		id:        uuid.New().String(),
		expiresAt: now.Add(ttl),
		key:       key,
	})

	log.Info().Str("session_address", key.Address).Time("expires_at", m.session.expiresAt).Msg("Session created")
	return m.session.id, nil
}

// AdoptSession 从持久化记录恢复会话（进程启动时的 rehydration）
// 记录已过期时拒绝并返回 SessionExpired；助记词派生出的地址必须与记录一致
func (m *Manager) AdoptSession(rec *session.Record, now time.Time) (string, error) {
	if rec == nil {
		return "", newError(KindNoActiveSession)
	}
	if err := rec.Validate(); err != nil {
		return "", err
	}
	if rec.Expired(now) {
		return "", newError(KindSessionExpired)
	}

	net, err := chain.ResolveNetwork(rec.Network, rec.RPCEndpoint, "")
	if err != nil {
		return "", err
	}
	key, err := chain.SessionKeyFromMnemonic(rec.SessionMnemonic, net.Bech32Prefix)
	if err != nil {
		return "", err
	}
	if key.Address != rec.SessionAddress {
		key.Destroy()
		return "", fmt.Errorf("session record mismatch: derived address %s, recorded %s", key.Address, rec.SessionAddress)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.installSession(&activeSession{
		id:              uuid.New().String(),
		expiresAt:       rec.ExpiresAt,
		authenticatorID: rec.AuthenticatorID,
		key:             key,
	})

	log.Info().Str("session_address", key.Address).Uint64("authenticator_id", rec.AuthenticatorID).Msg("Session rehydrated")
	return m.session.id, nil
}

// RevokeSession 无条件清除内存中的会话并清零密钥材料，幂等
func (m *Manager) RevokeSession() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return
	}
	m.clearSessionLocked()
	log.Info().Msg("Session revoked")
}

// CanSign 纯谓词：按前置条件顺序检查，返回第一个不满足项
// 顺序：钱包连接 → 自动签名开启 → 会话存在 → 会话未过期
func (m *Manager) CanSign(now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canSignLocked(now)
}

// SignRequest 校验全部前置条件和请求字段，成功时用会话密钥产生签名
// 除校验外无任何副作用；sequence/nonce 记账属于账本客户端层
func (m *Manager) SignRequest(req *SignRequest, now time.Time) (Signature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.canSignLocked(now); err != nil {
		return "", err
	}
	if req == nil {
		return "", newInvalidRequest("request is nil")
	}
	if req.Ticker == "" {
		return "", newInvalidRequest("ticker must not be empty")
	}
	if req.Side != SideBuy && req.Side != SideSell {
		return "", newInvalidRequest("side must be BUY or SELL")
	}
	if req.Size <= 0 {
		return "", newInvalidRequest("size must be positive")
	}

	digest := orderDigest(req)
	sig := ecdsa.Sign(m.session.key.PrivKey, digest[:])
	return Signature(hex.EncodeToString(sig.Serialize())), nil
}

// Tick 周期调用；会话恰好越过过期边界时清除它并返回 true（边沿触发）
// 返回 true 后，后续 SignRequest 一律报 SessionExpired，直到创建新会话
func (m *Manager) Tick(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil || now.Before(m.session.expiresAt) {
		return false
	}

	m.clearSessionLocked()
	m.sessionExpired = true
	log.Info().Msg("Session expired")
	return true
}

// State 返回状态快照（不含密钥材料）
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := State{
		WalletConnected: m.walletConnected,
		AutoSignEnabled: m.autoSignEnabled,
	}
	if m.session != nil {
		st.Session = &SessionInfo{
			ID:              m.session.id,
			SessionAddress:  m.session.key.Address,
			AuthenticatorID: m.session.authenticatorID,
			ExpiresAt:       m.session.expiresAt,
		}
	}
	return st
}

// canSignLocked 前置条件检查，调用方必须已持锁
func (m *Manager) canSignLocked(now time.Time) error {
	if !m.walletConnected {
		return newError(KindWalletNotConnected)
	}
	if !m.autoSignEnabled {
		return newError(KindAutoSignDisabled)
	}
	if m.session == nil {
		if m.sessionExpired {
			return newError(KindSessionExpired)
		}
		return newError(KindNoActiveSession)
	}
	if !now.Before(m.session.expiresAt) {
		return newError(KindSessionExpired)
	}
	return nil
}

// installSession 替换当前会话，旧密钥材料清零；调用方必须已持锁
func (m *Manager) installSession(s *activeSession) {
	if m.session != nil {
		m.session.key.Destroy()
	}
	m.session = s
	m.sessionExpired = false
}

// clearSessionLocked 清除会话并清零密钥；调用方必须已持锁
func (m *Manager) clearSessionLocked() {
	m.session.key.Destroy()
	m.session = nil
}

// orderDigest 计算订单的规范摘要
func orderDigest(req *SignRequest) [32]byte {
	doc := req.Ticker + "|" + req.Side + "|" +
		strconv.FormatFloat(req.Size, 'f', 8, 64) + "|" +
		strconv.FormatUint(uint64(req.Leverage), 10) + "|" +
		strconv.FormatInt(req.Timestamp, 10)
	return sha256.Sum256([]byte(doc))
}
