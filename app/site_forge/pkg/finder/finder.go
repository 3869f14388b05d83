package finder

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/logger"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/model"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/places"
)

// genericTypes 过于宽泛的分类，不保留
var genericTypes = map[string]bool{
	"establishment":     true,
	"point_of_interest": true,
	"premise":           true,
	"subpremise":        true,
}

const maxReviews = 5

// Finder 查询商户目录并转换为 Business
type Finder struct {
	dir         places.Directory
	maxResults  int
	detailDelay time.Duration
}

// New 创建 Finder，detailDelay 为相邻两次详情请求之间的间隔
func New(dir places.Directory, maxResults int, detailDelay time.Duration) *Finder {
	if maxResults <= 0 {
		maxResults = 20
	}
	return &Finder{dir: dir, maxResults: maxResults, detailDelay: detailDelay}
}

// Query 构造搜索文本
func Query(industry, city, state string) string {
	if state == "" {
		return fmt.Sprintf("%s in %s", industry, city)
	}
	return fmt.Sprintf("%s in %s, %s", industry, city, state)
}

// Find 搜索并逐个获取详情，目录错误被记录并视为没有结果，只有 ctx 取消会返回错误
func (f *Finder) Find(ctx context.Context, industry, city, state string) ([]model.Business, error) {
	query := Query(industry, city, state)
	logger.Log.Infof("正在搜索商户: %s", query)

	results, err := f.dir.Search(ctx, query, f.maxResults)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Log.Errorf("搜索商户失败 [%s]: %v", query, err)
		return nil, nil
	}
	if len(results) > f.maxResults {
		results = results[:f.maxResults]
	}

	businesses := make([]model.Business, 0, len(results))
	for i, p := range results {
		if b, ok := f.resolve(ctx, p, industry, city, state); ok {
			businesses = append(businesses, b)
		}

		// 详情接口限流，最后一个之后不再等待
		if i < len(results)-1 && f.detailDelay > 0 {
			select {
			case <-ctx.Done():
				return businesses, ctx.Err()
			case <-time.After(f.detailDelay):
			}
		}
	}

	logger.Log.Infof("商户搜索完成 [%s]: %d 个", query, len(businesses))
	return businesses, nil
}

func (f *Finder) resolve(ctx context.Context, p places.Place, industry, city, state string) (model.Business, bool) {
	if p.PlaceID == "" {
		logger.Log.Warn("商户缺少 place_id，跳过")
		return model.Business{}, false
	}

	details, err := f.dir.Details(ctx, p.PlaceID)
	if err != nil {
		logger.Log.Warnf("获取商户详情失败 [%s]: %v", p.PlaceID, err)
	}
	merged := places.Merge(p, details)

	if merged.Name == "" {
		logger.Log.Warnf("商户 [%s] 缺少名称，跳过", p.PlaceID)
		return model.Business{}, false
	}
	return ToBusiness(merged, industry, city, state), true
}

// ToBusiness 将目录记录转换为 Business，has_website 初始为 false
func ToBusiness(p places.Place, industry, city, state string) model.Business {
	phone := p.InternationalPhoneNumber
	if phone == "" {
		phone = p.FormattedPhoneNumber
	}

	b := model.Business{
		Name:           p.Name,
		Address:        p.FormattedAddress,
		Phone:          phone,
		Industry:       industry,
		City:           city,
		State:          state,
		WebsiteURL:     p.Website,
		HasWebsite:     false,
		PlaceID:        p.PlaceID,
		Rating:         p.Rating,
		BusinessStatus: p.BusinessStatus,
		PriceLevel:     p.PriceLevel,
	}
	if p.Geometry.Location != nil {
		b.Coordinates = &model.Coordinates{Lat: p.Geometry.Location.Lat, Lng: p.Geometry.Location.Lng}
	}

	for _, t := range p.Types {
		if !genericTypes[strings.ToLower(t)] {
			b.Types = append(b.Types, t)
		}
	}

	reviews := make([]places.Review, len(p.Reviews))
	copy(reviews, p.Reviews)
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].Time > reviews[j].Time
	})
	if len(reviews) > maxReviews {
		reviews = reviews[:maxReviews]
	}
	for _, r := range reviews {
		b.Reviews = append(b.Reviews, model.Review{
			Author: r.AuthorName,
			Rating: r.Rating,
			Text:   r.Text,
			Time:   r.Time,
		})
	}

	return b
}
