package session

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FileStore 单文件 JSON 会话存储
// 文件权限 0600；写入先落临时文件再原子重命名
type FileStore struct {
	path string
}

// NewFileStore 创建会话文件存储
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path 返回存储文件路径
func (s *FileStore) Path() string {
	return s.path
}

// Load 读取会话记录
// 文件不存在返回 (nil, nil)；版本未知返回 ErrUnsupportedVersion（调用方按无会话处理）
func (s *FileStore) Load() (*Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to read session file")
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(err, "failed to parse session file")
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Save 原子写入会话记录（覆盖同一主地址的旧会话）
func (s *FileStore) Save(rec *Record) error {
	if rec == nil {
		return errors.New("session record is nil")
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "failed to create session directory")
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode session record")
	}

	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temp session file")
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if err := tmp.Chmod(0o600); err != nil {
		cleanup()
		return errors.Wrap(err, "failed to restrict session file permissions")
	}
	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return errors.Wrap(err, "failed to write session file")
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return errors.Wrap(err, "failed to sync session file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrap(err, "failed to close session file")
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrap(err, "failed to replace session file")
	}
	return nil
}

// Delete 删除会话记录，幂等
func (s *FileStore) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to delete session file")
	}
	return nil
}
