package session

import (
	"time"

	"github.com/pkg/errors"
)

// RecordVersion 当前会话记录的 schema 版本
const RecordVersion = 1

// ErrUnsupportedVersion 记录版本未知/超前，按"无会话"处理（fail closed）
var ErrUnsupportedVersion = errors.New("unsupported session record version")

// Record 持久化的委托签名会话
// 注意：ExpiresAt 只是客户端软边界，链上 authenticator 本身没有过期机制，
// 撤销是唯一的硬停止
type Record struct {
	Version         int       `json:"version"`
	CreatedAt       time.Time `json:"created_at"`
	ExpiresAt       time.Time `json:"expires_at"`
	Network         string    `json:"network"`
	RPCEndpoint     string    `json:"rpc_endpoint"`
	MasterAddress   string    `json:"master_address"`
	SessionAddress  string    `json:"session_address"`
	SessionMnemonic string    `json:"session_mnemonic"`
	AuthenticatorID uint64    `json:"authenticator_id"`
}

// Validate 校验记录完整性，版本不符直接拒绝
func (r *Record) Validate() error {
	if r.Version != RecordVersion {
		return errors.Wrapf(ErrUnsupportedVersion, "got version %d, want %d", r.Version, RecordVersion)
	}
	if r.Network == "" {
		return errors.New("session record has no network")
	}
	if r.MasterAddress == "" {
		return errors.New("session record has no master address")
	}
	if r.SessionAddress == "" {
		return errors.New("session record has no session address")
	}
	if r.SessionMnemonic == "" {
		return errors.New("session record has no session mnemonic")
	}
	if r.AuthenticatorID == 0 {
		return errors.New("session record has no authenticator id")
	}
	if r.ExpiresAt.IsZero() || !r.ExpiresAt.After(r.CreatedAt) {
		return errors.New("session record has an invalid expiry")
	}
	return nil
}

// Expired 判断软过期
func (r *Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
