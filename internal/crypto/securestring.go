package crypto

import (
	"crypto/subtle"
	"runtime"
	"sync"
)

// ZeroBytes 安全清零字节切片
// 使用 constant-time 拷贝，防止编译器把清零优化掉
func ZeroBytes(b []byte) {
	if len(b) == 0 {
		return
	}
	subtle.ConstantTimeCopy(1, b, make([]byte, len(b)))
	runtime.KeepAlive(b)
}

// SecureString 包装助记词、口令等敏感字符串
// 默认格式化输出一律脱敏，销毁时清零底层内存
type SecureString struct {
	data []byte
	lock sync.RWMutex
}

// NewSecureString 从字符串创建 SecureString
// 注意：Go 字符串本身不可清零，调用方应尽快丢弃原始字符串
func NewSecureString(s string) *SecureString {
	return NewSecureStringFromBytes([]byte(s))
}

// NewSecureStringFromBytes 从字节切片创建 SecureString（内部拷贝，调用方可自行清零原件）
func NewSecureStringFromBytes(b []byte) *SecureString {
	if b == nil {
		return &SecureString{data: nil}
	}
	data := make([]byte, len(b))
	copy(data, b)
	return &SecureString{data: data}
}

// WithBytes 在回调内以只读方式访问底层字节，避免产生字符串副本
// 回调外不得保留该切片
func (s *SecureString) WithBytes(fn func([]byte) error) error {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.data == nil {
		return fn(nil)
	}
	return fn(s.data)
}

// Reveal 返回明文字符串
// 仅用于持久化等确实需要明文的场合，禁止传入任何日志路径
func (s *SecureString) Reveal() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return string(s.data)
}

// Destroy 清零并失效，之后不应再使用
func (s *SecureString) Destroy() {
	s.lock.Lock()
	defer s.lock.Unlock()
	ZeroBytes(s.data)
	s.data = nil
}

// IsEmpty 是否为空
func (s *SecureString) IsEmpty() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.data) == 0
}

// String 实现 fmt.Stringer，输出脱敏占位符
func (s *SecureString) String() string {
	return "[REDACTED]"
}

// GoString 实现 fmt.GoStringer，%#v 同样脱敏
func (s *SecureString) GoString() string {
	return "crypto.SecureString{[REDACTED]}"
}

// MarshalJSON 防止被意外序列化出明文
func (s *SecureString) MarshalJSON() ([]byte, error) {
	return []byte(`"[REDACTED]"`), nil
}
