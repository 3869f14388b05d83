package gplaces

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/logger"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/places"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// detailFields 详情接口只请求需要的字段
var detailFields = []string{
	"place_id",
	"name",
	"formatted_address",
	"international_phone_number",
	"formatted_phone_number",
	"website",
	"rating",
	"user_ratings_total",
	"reviews",
	"geometry",
	"business_status",
	"price_level",
	"types",
}

var errRateLimited = errors.New("google places rate limited")

// Client Google Places API 客户端
type Client struct {
	apiKey         string
	baseURL        string
	client         *http.Client
	retryDelay     time.Duration
	pageTokenDelay time.Duration
}

// Option 客户端选项
type Option func(*Client)

// WithBaseURL 替换 API 地址
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithDelays 设置限流重试和翻页等待时间
func WithDelays(retry, pageToken time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = retry
		c.pageTokenDelay = pageToken
	}
}

// NewClient 创建一个新的 Google Places 客户端
func NewClient(apiKey string, timeout int, opts ...Option) *Client {
	t := time.Duration(timeout) * time.Second
	if t == 0 {
		t = 10 * time.Second
	}
	c := &Client{
		apiKey:         apiKey,
		baseURL:        defaultBaseURL,
		client:         &http.Client{Timeout: t},
		retryDelay:     time.Second,
		pageTokenDelay: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ensure Client implements places.Directory
var _ places.Directory = (*Client)(nil)

type searchResponse struct {
	Status        string         `json:"status"`
	ErrorMessage  string         `json:"error_message"`
	Results       []places.Place `json:"results"`
	NextPageToken string         `json:"next_page_token"`
}

type detailsResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
	Result       *places.Place `json:"result"`
}

// Search implements places.Directory
func (c *Client) Search(ctx context.Context, query string, limit int) ([]places.Place, error) {
	var results []places.Place
	pageToken := ""

	for {
		params := url.Values{}
		params.Set("key", c.apiKey)
		if pageToken != "" {
			params.Set("pagetoken", pageToken)
		} else {
			params.Set("query", query)
		}

		var resp searchResponse
		if err := c.getWithRetry(ctx, "/textsearch/json", params, &resp); err != nil {
			return nil, err
		}
		if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
			return nil, err
		}

		results = append(results, resp.Results...)
		if limit > 0 && len(results) >= limit {
			return results[:limit], nil
		}
		if resp.NextPageToken == "" {
			return results, nil
		}

		// next_page_token 需要等待一段时间才生效
		pageToken = resp.NextPageToken
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		case <-time.After(c.pageTokenDelay):
		}
	}
}

// Details implements places.Directory
func (c *Client) Details(ctx context.Context, placeID string) (*places.Place, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("place_id", placeID)
	params.Set("fields", strings.Join(detailFields, ","))

	var resp detailsResponse
	if err := c.getWithRetry(ctx, "/details/json", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status == "NOT_FOUND" {
		return nil, nil
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// getWithRetry 遇到限流时等待后重试一次
func (c *Client) getWithRetry(ctx context.Context, path string, params url.Values, out any) error {
	err := c.get(ctx, path, params, out)
	if !errors.Is(err, errRateLimited) {
		return err
	}

	logger.Log.Warnf("Google Places 限流，%v 后重试: %s", c.retryDelay, path)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.retryDelay):
	}
	return c.get(ctx, path, params, out)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}

	res, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read body failed: %w", err)
	}

	if res.StatusCode == http.StatusTooManyRequests {
		return errRateLimited
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("google places api error (status %d): %s", res.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response failed: %w", err)
	}

	// 业务层面的限流状态
	var probe struct {
		Status string `json:"status"`
	}
	if json.Unmarshal(body, &probe) == nil && probe.Status == "OVER_QUERY_LIMIT" {
		return errRateLimited
	}
	return nil
}

func checkStatus(status, message string) error {
	switch status {
	case "OK", "ZERO_RESULTS", "":
		return nil
	default:
		return fmt.Errorf("google places status %s: %s", status, message)
	}
}
