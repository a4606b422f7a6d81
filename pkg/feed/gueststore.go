package feed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// GuestStore 在本地文件里按房间保存访客昵称。
// 访客身份只存在于客户端：换一台设备或清掉文件，身份即丢失，
// 找回访客条目的唯一途径是注册账号后发起认领。
type GuestStore struct {
	path string

	mu    sync.Mutex
	names map[string]string // roomID -> 访客昵称
}

// NewGuestStore 加载（或初始化）指定路径的访客昵称文件
func NewGuestStore(path string) (*GuestStore, error) {
	s := &GuestStore{
		path:  path,
		names: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read guest store file: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.names); err != nil {
		return nil, fmt.Errorf("failed to parse guest store file: %w", err)
	}
	return s, nil
}

// Name 返回某房间保存的访客昵称，没有则返回空串
func (s *GuestStore) Name(roomID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names[roomID]
}

// SetName 记录某房间的访客昵称并立即落盘
func (s *GuestStore) SetName(roomID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names[roomID] = name
	return s.save()
}

// Forget 删除某房间的访客昵称（认领完成后调用）
func (s *GuestStore) Forget(roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.names, roomID)
	return s.save()
}

// save 把当前映射写回文件，调用方必须持有锁
func (s *GuestStore) save() error {
	data, err := json.MarshalIndent(s.names, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal guest store: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create guest store directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write guest store file: %w", err)
	}
	return nil
}
