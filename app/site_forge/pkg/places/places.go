package places

import "context"

// Directory 定义通用的商户目录接口
type Directory interface {
	// Search 按文本查询商户，最多返回 limit 条
	Search(ctx context.Context, query string, limit int) ([]Place, error)
	// Details 获取单个商户详情，不存在时返回 nil
	Details(ctx context.Context, placeID string) (*Place, error)
}

// Place 商户目录中的原始记录，字段与 Google Places 保持一致
type Place struct {
	PlaceID                  string   `json:"place_id"`
	Name                     string   `json:"name"`
	FormattedAddress         string   `json:"formatted_address"`
	FormattedPhoneNumber     string   `json:"formatted_phone_number,omitempty"`
	InternationalPhoneNumber string   `json:"international_phone_number,omitempty"`
	Website                  string   `json:"website,omitempty"`
	Rating                   *float64 `json:"rating,omitempty"`
	UserRatingsTotal         int      `json:"user_ratings_total,omitempty"`
	Reviews                  []Review `json:"reviews,omitempty"`
	Geometry                 Geometry `json:"geometry"`
	BusinessStatus           string   `json:"business_status,omitempty"`
	PriceLevel               *int     `json:"price_level,omitempty"`
	Types                    []string `json:"types,omitempty"`
}

// Review 原始评价
type Review struct {
	AuthorName string  `json:"author_name"`
	Rating     float64 `json:"rating"`
	Text       string  `json:"text"`
	Time       int64   `json:"time"`
}

// Geometry 位置信息
type Geometry struct {
	Location *LatLng `json:"location,omitempty"`
}

// LatLng 经纬度
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Merge 用详情覆盖搜索结果中的非空字段
func Merge(base Place, details *Place) Place {
	if details == nil {
		return base
	}
	out := base
	if details.PlaceID != "" {
		out.PlaceID = details.PlaceID
	}
	if details.Name != "" {
		out.Name = details.Name
	}
	if details.FormattedAddress != "" {
		out.FormattedAddress = details.FormattedAddress
	}
	if details.FormattedPhoneNumber != "" {
		out.FormattedPhoneNumber = details.FormattedPhoneNumber
	}
	if details.InternationalPhoneNumber != "" {
		out.InternationalPhoneNumber = details.InternationalPhoneNumber
	}
	if details.Website != "" {
		out.Website = details.Website
	}
	if details.Rating != nil {
		out.Rating = details.Rating
	}
	if details.UserRatingsTotal != 0 {
		out.UserRatingsTotal = details.UserRatingsTotal
	}
	if len(details.Reviews) > 0 {
		out.Reviews = details.Reviews
	}
	if details.Geometry.Location != nil {
		out.Geometry = details.Geometry
	}
	if details.BusinessStatus != "" {
		out.BusinessStatus = details.BusinessStatus
	}
	if details.PriceLevel != nil {
		out.PriceLevel = details.PriceLevel
	}
	if len(details.Types) > 0 {
		out.Types = details.Types
	}
	return out
}
