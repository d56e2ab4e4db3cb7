package signer

import "fmt"

// ErrorKind 签名门控错误类别
// 按前置条件顺序排列，调用方据此展示最相关的一条补救提示
type ErrorKind int

const (
	KindWalletNotConnected ErrorKind = iota + 1
	KindAutoSignDisabled
	KindNoActiveSession
	KindSessionExpired
	KindInvalidRequest
)

// SignerError 每笔交易签名前的门控错误
// 这些错误是预期内的高频错误，必须可直接指导用户操作
type SignerError struct {
	Kind   ErrorKind
	Reason string
}

func (e *SignerError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.kindString(), e.Reason)
	}
	return e.kindString()
}

func (e *SignerError) kindString() string {
	switch e.Kind {
	case KindWalletNotConnected:
		return "wallet not connected"
	case KindAutoSignDisabled:
		return "auto-sign disabled"
	case KindNoActiveSession:
		return "no active session"
	case KindSessionExpired:
		return "session expired"
	case KindInvalidRequest:
		return "invalid request"
	default:
		return "unknown signer error"
	}
}

// Remediation 返回该错误对应的唯一补救动作（给状态栏/弹窗用）
func (e *SignerError) Remediation() string {
	switch e.Kind {
	case KindWalletNotConnected:
		return "Connect a wallet to enable trading."
	case KindAutoSignDisabled:
		return "Enable auto-sign to submit orders automatically."
	case KindNoActiveSession:
		return "Create a signing session to start trading."
	case KindSessionExpired:
		return "Session expired. Create a new signing session."
	case KindInvalidRequest:
		return "Fix the order parameters and try again."
	default:
		return ""
	}
}

func newError(kind ErrorKind) *SignerError {
	return &SignerError{Kind: kind}
}

func newInvalidRequest(reason string) *SignerError {
	return &SignerError{Kind: KindInvalidRequest, Reason: reason}
}

// IsKind 判断错误是否为指定类别的 SignerError
func IsKind(err error, kind ErrorKind) bool {
	se, ok := err.(*SignerError)
	return ok && se.Kind == kind
}
