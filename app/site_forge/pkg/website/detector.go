package website

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/logger"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/model"
)

// listingPatterns 商户目录页 (Google 商家资料、地图) 不算真正的网站
var listingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`https?://(www\.)?google\.com/maps/place/`),
	regexp.MustCompile(`https?://maps\.google\.com/`),
	regexp.MustCompile(`https?://g\.page/`),
	regexp.MustCompile(`https?://.*google\.com/maps`),
	regexp.MustCompile(`https?://.*google\.com/business`),
}

var errTooManyRedirects = errors.New("too many redirects")

// IsListingURL 判断 URL 是否为第三方商户目录页
func IsListingURL(rawURL string) bool {
	u := strings.ToLower(strings.TrimSpace(rawURL))
	if u == "" {
		return false
	}
	for _, p := range listingPatterns {
		if p.MatchString(u) {
			return true
		}
	}
	return false
}

// Detector 重新计算商户的 has_website
type Detector struct {
	client *http.Client
}

// NewDetector 创建检测器，maxRedirects 为允许跟随的最大重定向次数
func NewDetector(timeout time.Duration, maxRedirects int) *Detector {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxRedirects <= 0 {
		maxRedirects = 3
	}
	return &Detector{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return errTooManyRedirects
				}
				return nil
			},
		},
	}
}

// Detect 返回 has_website 已更新的商户副本，内部任何异常都降级为 false
func (d *Detector) Detect(ctx context.Context, b model.Business) (out model.Business) {
	out = b
	out.HasWebsite = false

	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorf("网站检测异常 [%s]: %v", b.Name, r)
			out.HasWebsite = false
		}
	}()

	url := strings.TrimSpace(b.WebsiteURL)
	if url == "" {
		return out
	}
	if IsListingURL(url) {
		logger.Log.Debugf("商户目录链接，不算网站 [%s]: %s", b.Name, url)
		return out
	}

	out.HasWebsite = d.Accessible(ctx, url)
	return out
}

// DetectAll 逐个检测，单个商户的失败不影响其他商户
func (d *Detector) DetectAll(ctx context.Context, businesses []model.Business) []model.Business {
	out := make([]model.Business, 0, len(businesses))
	for _, b := range businesses {
		out = append(out, d.Detect(ctx, b))
	}

	found := 0
	for _, b := range out {
		if b.HasWebsite {
			found++
		}
	}
	logger.Log.Infof("网站检测完成: %d/%d 个商户有网站", found, len(out))
	return out
}

// Accessible HEAD 探测，405 时改用 GET，仅 2xx 视为可访问
func (d *Detector) Accessible(ctx context.Context, rawURL string) bool {
	target, ok := normalizeURL(rawURL)
	if !ok {
		logger.Log.Warnf("URL 格式无效: %s", rawURL)
		return false
	}

	status, err := d.probe(ctx, http.MethodHead, target)
	if err == nil && status == http.StatusMethodNotAllowed {
		status, err = d.probe(ctx, http.MethodGet, target)
	}
	if err != nil {
		logger.Log.Warnf("URL 不可访问 [%s]: %v", target, err)
		return false
	}
	return status >= 200 && status < 300
}

func (d *Detector) probe(ctx context.Context, method, target string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("User-Agent", BrowserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
