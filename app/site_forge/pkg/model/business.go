package model

import (
	"encoding/json"
	"strings"
)

// Review 商户评价
type Review struct {
	Author string  `json:"author"`
	Rating float64 `json:"rating"`
	Text   string  `json:"text"`
	Time   int64   `json:"time"` // unix 秒
}

// Coordinates 经纬度
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Business 从商户目录发现的商户记录，PlaceID 为唯一标识
type Business struct {
	Name           string       `json:"name"`
	Address        string       `json:"address"`
	Phone          string       `json:"phone,omitempty"`
	Industry       string       `json:"industry"`
	City           string       `json:"city"`
	State          string       `json:"state,omitempty"`
	WebsiteURL     string       `json:"website_url,omitempty"`
	HasWebsite     bool         `json:"has_website"`
	PlaceID        string       `json:"google_place_id"`
	Reviews        []Review     `json:"reviews,omitempty"`
	Rating         *float64     `json:"rating,omitempty"`
	Coordinates    *Coordinates `json:"coordinates,omitempty"`
	BusinessStatus string       `json:"business_status,omitempty"`
	PriceLevel     *int         `json:"price_level,omitempty"`
	Types          []string     `json:"types,omitempty"`
}

// RatingOrZero 缺失评分按 0 处理
func (b *Business) RatingOrZero() float64 {
	if b.Rating == nil {
		return 0
	}
	return *b.Rating
}

// SameIdentity 按 PlaceID 判断是否同一商户
func (b *Business) SameIdentity(other *Business) bool {
	return b.PlaceID != "" && b.PlaceID == other.PlaceID
}

// Location 返回 "City, ST" 形式的地点，州为空时只返回城市
func (b *Business) Location() string {
	if b.State == "" {
		return b.City
	}
	return b.City + ", " + b.State
}

// StringList 兼容 LLM 返回单个字符串或字符串数组的情况
type StringList []string

// UnmarshalJSON 实现 json.Unmarshaler
func (s *StringList) UnmarshalJSON(data []byte) error {
	if strings.TrimSpace(string(data)) == "null" {
		*s = nil
		return nil
	}

	var list []any
	if err := json.Unmarshal(data, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, v := range list {
			if str, ok := v.(string); ok && strings.TrimSpace(str) != "" {
				out = append(out, str)
			}
		}
		*s = out
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if strings.TrimSpace(single) == "" {
			*s = nil
		} else {
			*s = StringList{single}
		}
		return nil
	}

	// 其他类型 (null, number, object) 视为缺失
	*s = nil
	return nil
}
