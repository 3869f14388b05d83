package placefile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/places"
)

// Client 从本地 JSON 文件读取商户数据，用于离线运行和演示
type Client struct {
	places []places.Place
	byID   map[string]places.Place
}

// Load 读取文件，文件内容为 places.Place 数组
func Load(path string) (*Client, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read places file failed: %w", err)
	}

	var list []places.Place
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("unmarshal places file failed: %w", err)
	}
	return New(list), nil
}

// New 使用内存中的数据创建客户端
func New(list []places.Place) *Client {
	byID := make(map[string]places.Place, len(list))
	for _, p := range list {
		if p.PlaceID != "" {
			byID[p.PlaceID] = p
		}
	}
	return &Client{places: list, byID: byID}
}

// Ensure Client implements places.Directory
var _ places.Directory = (*Client)(nil)

// Search 返回全部记录，query 中带 "in" 时只做粗略的城市过滤
func (c *Client) Search(ctx context.Context, query string, limit int) ([]places.Place, error) {
	city := ""
	if _, after, ok := strings.Cut(query, " in "); ok {
		city, _, _ = strings.Cut(after, ",")
		city = strings.ToLower(strings.TrimSpace(city))
	}

	var out []places.Place
	for _, p := range c.places {
		if city != "" && !strings.Contains(strings.ToLower(p.FormattedAddress), city) {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Details 按 place_id 查找
func (c *Client) Details(ctx context.Context, placeID string) (*places.Place, error) {
	p, ok := c.byID[placeID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}
