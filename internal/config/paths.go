package config

import (
	"os"
	"path/filepath"
)

// defaultSessionFilePath 默认会话文件位置（用户主目录下，权限受限）
func defaultSessionFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "signbridge-session.json")
	}
	return filepath.Join(home, ".signbridge", "session.json")
}
