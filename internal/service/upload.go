package service

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// UploadConfig 是图片存储 (Cloudinary 签名上传 API) 的配置。
type UploadConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string // 可选的目标目录
	BaseURL   string // 默认 https://api.cloudinary.com，测试时可替换
}

// UploadService 负责把图片上传到对象存储并解析出公开 URL。
// 上传失败不做任何部分写入的清理，由调用方直接把错误抛给用户。
type UploadService struct {
	cfg        UploadConfig
	httpClient *http.Client
}

// NewUploadService 创建 UploadService 实例。
func NewUploadService(cfg UploadConfig, httpClient *http.Client) *UploadService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.cloudinary.com"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &UploadService{cfg: cfg, httpClient: httpClient}
}

// Upload 上传一张 base64 编码的图片，返回公开可达的 URL。
// 存储路径由当前时间戳加原始扩展名生成。
func (s *UploadService) Upload(ctx context.Context, base64Data, filename string) (string, error) {
	logCtx := logrus.WithField("filename", filename)

	if base64Data == "" {
		return "", ErrInvalidInput
	}
	if s.cfg.CloudName == "" || s.cfg.APIKey == "" || s.cfg.APISecret == "" {
		logCtx.Error("Upload storage credentials are not configured")
		return "", ErrUploadFailed
	}

	// data URL 形式时剥掉前缀
	payload := base64Data
	if i := strings.Index(base64Data, ","); i != -1 {
		payload = base64Data[i+1:]
	}

	publicID := fmt.Sprintf("%d%s", time.Now().UnixMilli(), path.Ext(filename))
	if s.cfg.Folder != "" {
		publicID = s.cfg.Folder + "/" + publicID
	}

	form := url.Values{}
	form.Add("file", "data:image/jpeg;base64,"+payload)
	form.Add("api_key", s.cfg.APIKey)
	form.Add("public_id", publicID)
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	form.Add("timestamp", timestamp)
	form.Add("signature", s.sign(publicID, timestamp))

	endpoint := fmt.Sprintf("%s/v1_1/%s/image/upload", s.cfg.BaseURL, s.cfg.CloudName)
	body, err := s.post(ctx, endpoint, form)
	if err != nil {
		logCtx.WithError(err).Error("Image upload request failed")
		return "", ErrUploadFailed
	}

	var uploadRes struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &uploadRes); err != nil {
		logCtx.WithError(err).Error("Failed to parse upload response")
		return "", ErrUploadFailed
	}
	if uploadRes.Error.Message != "" {
		logCtx.WithField("remote_error", uploadRes.Error.Message).Error("Image storage rejected upload")
		return "", ErrUploadFailed
	}

	publicURL := uploadRes.SecureURL
	if publicURL == "" {
		publicURL = uploadRes.URL
	}
	if publicURL == "" {
		logCtx.Error("Image storage returned no URL")
		return "", ErrUploadFailed
	}

	logCtx.WithField("url", publicURL).Info("Image uploaded")
	return publicURL, nil
}

// Delete 按公开 URL 删除存储中的图片，供条目删除后的回收任务使用。
func (s *UploadService) Delete(ctx context.Context, imageURL string) error {
	// URL 末段去掉扩展名即为 public id
	parts := strings.Split(imageURL, "/")
	if len(parts) < 2 {
		return fmt.Errorf("upload: invalid image url: %s", imageURL)
	}
	publicID := strings.TrimSuffix(parts[len(parts)-1], path.Ext(parts[len(parts)-1]))
	if s.cfg.Folder != "" {
		publicID = s.cfg.Folder + "/" + publicID
	}

	form := url.Values{}
	form.Add("public_id", publicID)
	form.Add("api_key", s.cfg.APIKey)
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	form.Add("timestamp", timestamp)
	form.Add("signature", s.sign(publicID, timestamp))

	endpoint := fmt.Sprintf("%s/v1_1/%s/image/destroy", s.cfg.BaseURL, s.cfg.CloudName)
	body, err := s.post(ctx, endpoint, form)
	if err != nil {
		return fmt.Errorf("upload: destroy request: %w", err)
	}

	var deleteRes struct {
		Result string `json:"result"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &deleteRes); err != nil {
		return fmt.Errorf("upload: parse destroy response: %w", err)
	}
	if deleteRes.Error.Message != "" {
		return fmt.Errorf("upload: destroy rejected: %s", deleteRes.Error.Message)
	}
	if deleteRes.Result != "ok" && deleteRes.Result != "not found" {
		return fmt.Errorf("upload: unexpected destroy result: %s", deleteRes.Result)
	}

	logrus.WithField("public_id", publicID).Info("Image deleted from storage")
	return nil
}

// sign 生成 Cloudinary 风格的 SHA1 请求签名
func (s *UploadService) sign(publicID, timestamp string) string {
	signatureString := fmt.Sprintf("public_id=%s&timestamp=%s%s", publicID, timestamp, s.cfg.APISecret)
	return fmt.Sprintf("%x", sha1.Sum([]byte(signatureString)))
}

// post 发送表单请求并返回响应体，非 200 视为错误
func (s *UploadService) post(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", res.StatusCode, string(body))
	}
	return body, nil
}
