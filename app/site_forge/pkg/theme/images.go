package theme

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/logger"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/model"
)

const maxSlotKeywords = 3

// ImageSearch 图片搜索服务
type ImageSearch interface {
	Search(ctx context.Context, query string, width, height int) (string, error)
}

// ImageURLs 各个位置的图片地址
type ImageURLs struct {
	Hero     string   `json:"hero"`
	About    string   `json:"about"`
	Services []string `json:"services"`
}

// ImageResolver 为站点解析图片，search 为 nil 时只使用占位图
type ImageResolver struct {
	search ImageSearch
}

// NewImageResolver 创建图片解析器
func NewImageResolver(search ImageSearch) *ImageResolver {
	return &ImageResolver{search: search}
}

// Resolve 为 hero、about 和每个服务解析图片，每个位置独立回退到占位图
func (r *ImageResolver) Resolve(ctx context.Context, kw model.ImageKeywords, businessName, industry string, serviceNames []string) ImageURLs {
	industry = strings.TrimSpace(industry)
	if industry == "" {
		industry = "business"
	}
	count := max(len(serviceNames), 1)

	hero := capKeywords(kw.Hero, []string{industry, "professional", "quality service"})
	about := capKeywords(kw.About, []string{industry, "team", "local business"})

	services := []string(kw.Services)
	if len(services) == 0 {
		for _, name := range serviceNames {
			services = append(services, industry+" "+name)
		}
	}
	if len(services) == 0 {
		services = []string{industry}
	}

	seed := PlaceholderSeed(businessName)
	urls := ImageURLs{
		Hero:  r.lookup(ctx, strings.Join(hero, " "), 1200, 600, placeholder(seed+"a", 1200, 600)),
		About: r.lookup(ctx, strings.Join(about, " "), 800, 500, placeholder(seed+"b", 800, 500)),
	}
	for i := 0; i < count; i++ {
		q := services[0]
		if i < len(services) {
			q = services[i]
		}
		urls.Services = append(urls.Services, r.lookup(ctx, q, 600, 400, placeholder(fmt.Sprintf("%ss%d", seed, i), 600, 400)))
	}
	return urls
}

func (r *ImageResolver) lookup(ctx context.Context, query string, width, height int, fallback string) string {
	if r.search == nil || strings.TrimSpace(query) == "" {
		return fallback
	}
	u, err := r.search.Search(ctx, query, width, height)
	if err != nil || u == "" {
		if err != nil {
			logger.Log.Warnf("图片搜索失败 [%s]，使用占位图: %v", query, err)
		}
		return fallback
	}
	return u
}

// PlaceholderSeed 占位图种子，取商户名 md5 前 12 位
func PlaceholderSeed(businessName string) string {
	sum := md5.Sum([]byte(businessName))
	return hex.EncodeToString(sum[:])[:12]
}

func placeholder(seed string, width, height int) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/%d/%d", seed, width, height)
}

func capKeywords(list model.StringList, fallback []string) []string {
	out := []string(list)
	if len(out) == 0 {
		out = fallback
	}
	if len(out) > maxSlotKeywords {
		out = out[:maxSlotKeywords]
	}
	return out
}

// Unsplash 基于 Unsplash 搜索接口的 ImageSearch
type Unsplash struct {
	accessKey string
	baseURL   string
	client    *http.Client
}

// Ensure Unsplash implements ImageSearch
var _ ImageSearch = (*Unsplash)(nil)

// NewUnsplash 创建 Unsplash 客户端
func NewUnsplash(accessKey string, opts ...UnsplashOption) *Unsplash {
	u := &Unsplash{
		accessKey: accessKey,
		baseURL:   "https://api.unsplash.com",
		client:    &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// UnsplashOption Unsplash 客户端选项
type UnsplashOption func(*Unsplash)

// WithUnsplashBaseURL 替换接口地址
func WithUnsplashBaseURL(baseURL string) UnsplashOption {
	return func(u *Unsplash) { u.baseURL = strings.TrimRight(baseURL, "/") }
}

type unsplashResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}

// Search 返回第一张图片并附带裁剪参数，没有结果时返回空字符串
func (u *Unsplash) Search(ctx context.Context, query string, width, height int) (string, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.baseURL+"/search/photos?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Client-ID "+u.accessKey)

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("unsplash request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unsplash status %d: %s", resp.StatusCode, string(body))
	}

	var result unsplashResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if len(result.Results) == 0 || result.Results[0].URLs.Regular == "" {
		return "", nil
	}

	regular := result.Results[0].URLs.Regular
	sep := "?"
	if strings.Contains(regular, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%sw=%d&h=%d&fit=crop", regular, sep, width, height), nil
}
