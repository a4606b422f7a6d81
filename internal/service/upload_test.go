package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zittiandbuoni/taskino/internal/service"
)

func newUploadServiceForTest(handler http.HandlerFunc) (*service.UploadService, *httptest.Server) {
	server := httptest.NewServer(handler)
	svc := service.NewUploadService(service.UploadConfig{
		CloudName: "test-cloud",
		APIKey:    "key",
		APISecret: "secret",
		BaseURL:   server.URL,
	}, server.Client())
	return svc, server
}

func TestUploadService_Upload_Success(t *testing.T) {
	// Arrange: 模拟存储端返回 secure_url
	var gotPath string
	var gotForm map[string][]string
	svc, server := newUploadServiceForTest(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		json.NewEncoder(w).Encode(map[string]string{
			"secure_url": "https://cdn.example.com/test-cloud/12345.jpg",
		})
	})
	defer server.Close()

	// Act
	imageURL, err := svc.Upload(context.Background(), "data:image/jpeg;base64,aGVsbG8=", "photo.jpg")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/test-cloud/12345.jpg", imageURL)
	assert.Equal(t, "/v1_1/test-cloud/image/upload", gotPath)
	assert.NotEmpty(t, gotForm["signature"], "请求应带签名")
	assert.NotEmpty(t, gotForm["timestamp"])
	// data URL 前缀应被剥掉后重新拼装
	require.Len(t, gotForm["file"], 1)
	assert.True(t, strings.HasSuffix(gotForm["file"][0], "aGVsbG8="))
}

func TestUploadService_Upload_RemoteError(t *testing.T) {
	// Arrange: 存储端拒绝上传
	svc, server := newUploadServiceForTest(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "Invalid signature"},
		})
	})
	defer server.Close()

	// Act
	_, err := svc.Upload(context.Background(), "aGVsbG8=", "photo.jpg")

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrUploadFailed))
}

func TestUploadService_Upload_EmptyData(t *testing.T) {
	// Arrange
	svc := service.NewUploadService(service.UploadConfig{
		CloudName: "test-cloud", APIKey: "key", APISecret: "secret",
	}, nil)

	// Act
	_, err := svc.Upload(context.Background(), "", "photo.jpg")

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidInput))
}

func TestUploadService_Delete_Success(t *testing.T) {
	// Arrange
	var gotPath string
	var gotPublicID string
	svc, server := newUploadServiceForTest(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		gotPublicID = r.PostForm.Get("public_id")
		json.NewEncoder(w).Encode(map[string]string{"result": "ok"})
	})
	defer server.Close()

	// Act
	err := svc.Delete(context.Background(), "https://cdn.example.com/test-cloud/1699999999.jpg")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "/v1_1/test-cloud/image/destroy", gotPath)
	assert.Equal(t, "1699999999", gotPublicID, "public id 应为 URL 末段去掉扩展名")
}

func TestUploadService_Delete_AlreadyGone(t *testing.T) {
	// Arrange: 图片已不存在时视为删除成功，保证回收任务幂等
	svc, server := newUploadServiceForTest(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"result": "not found"})
	})
	defer server.Close()

	// Act
	err := svc.Delete(context.Background(), "https://cdn.example.com/test-cloud/gone.jpg")

	// Assert
	assert.NoError(t, err)
}
