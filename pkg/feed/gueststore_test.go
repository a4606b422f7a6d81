package feed_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zittiandbuoni/taskino/pkg/feed"
)

func TestGuestStore_RoundTrip(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "guests.json")
	store, err := feed.NewGuestStore(path)
	require.NoError(t, err)

	// Act
	require.NoError(t, store.SetName("room-1", "小明"))
	require.NoError(t, store.SetName("room-2", "路人甲"))

	// Assert: 重新加载后昵称仍在
	reloaded, err := feed.NewGuestStore(path)
	require.NoError(t, err)
	assert.Equal(t, "小明", reloaded.Name("room-1"))
	assert.Equal(t, "路人甲", reloaded.Name("room-2"))
	assert.Empty(t, reloaded.Name("room-3"), "未知房间应返回空昵称")
}

func TestGuestStore_Forget(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "guests.json")
	store, err := feed.NewGuestStore(path)
	require.NoError(t, err)
	require.NoError(t, store.SetName("room-1", "小明"))

	// Act: 认领完成后遗忘访客身份
	require.NoError(t, store.Forget("room-1"))

	// Assert
	assert.Empty(t, store.Name("room-1"))
	reloaded, err := feed.NewGuestStore(path)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Name("room-1"), "遗忘应落盘")
}

func TestGuestStore_MissingFileIsEmpty(t *testing.T) {
	// Arrange & Act: 文件不存在时应初始化为空存储
	path := filepath.Join(t.TempDir(), "does-not-exist.json")
	store, err := feed.NewGuestStore(path)

	// Assert
	require.NoError(t, err)
	assert.Empty(t, store.Name("room-1"))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "只读操作不应创建文件")
}
