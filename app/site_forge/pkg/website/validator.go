package website

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/logger"
)

// BrowserUserAgent 探测和抓取时使用的浏览器 UA
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Status URL 校验结果
type Status string

const (
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
	StatusNone    Status = "none"
)

// Validator 通过一次 HEAD 请求判断网站是否可用
type Validator struct {
	client *http.Client
}

// NewValidator 创建校验器，timeout 为 0 时使用 5 秒
func NewValidator(timeout time.Duration) *Validator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Validator{
		client: &http.Client{Timeout: timeout},
	}
}

// Validate 校验 URL，不返回错误，所有网络失败都视为 invalid
func (v *Validator) Validate(ctx context.Context, rawURL string) (bool, Status) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return false, StatusNone
	}

	target, ok := normalizeURL(rawURL)
	if !ok {
		return false, StatusInvalid
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return false, StatusInvalid
	}
	req.Header.Set("User-Agent", BrowserUserAgent)

	resp, err := v.client.Do(req)
	if err != nil {
		logger.Log.Debugf("网站校验失败 [%s]: %v", target, err)
		return false, StatusInvalid
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return true, StatusValid
	}
	return false, StatusInvalid
}

// normalizeURL 补全 https:// 并要求 scheme 和 host 都存在
func normalizeURL(raw string) (string, bool) {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return "", false
	}
	return u.String(), true
}
