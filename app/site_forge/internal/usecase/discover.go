package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/engine"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/model"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/website"
)

// URLValidator 校验官网地址是否可访问
type URLValidator interface {
	Validate(ctx context.Context, rawURL string) (bool, website.Status)
}

// Ensure
var _ URLValidator = (*website.Validator)(nil)

// maxConcurrentValidations 同时进行的官网校验数
const maxConcurrentValidations = 4

// DiscoveredBusiness 商户及其官网校验结果
type DiscoveredBusiness struct {
	PlaceID       string         `json:"place_id"`
	Name          string         `json:"name"`
	Lat           float64        `json:"lat"`
	Lng           float64        `json:"lng"`
	Address       string         `json:"address"`
	Phone         string         `json:"phone,omitempty"`
	Rating        float64        `json:"rating"`
	Reviews       int            `json:"reviews"`
	Website       string         `json:"website,omitempty"`
	HasWebsite    bool           `json:"has_website"`
	WebsiteStatus website.Status `json:"website_status"`
}

// DiscoverUseCase 只发现商户并校验官网，不创建生成任务
type DiscoverUseCase struct {
	finder    engine.Discoverer
	validator URLValidator
	log       *log.Helper
}

// NewDiscoverUseCase 创建商户发现业务逻辑实例
func NewDiscoverUseCase(finder engine.Discoverer, validator URLValidator, logger log.Logger) *DiscoverUseCase {
	return &DiscoverUseCase{finder: finder, validator: validator, log: log.NewHelper(logger)}
}

// Discover 按行业和城市查找商户，逐个校验官网；limit 为 0 表示不限
func (uc *DiscoverUseCase) Discover(ctx context.Context, industry, city, state string, limit int) ([]DiscoveredBusiness, error) {
	industry = strings.TrimSpace(industry)
	city = strings.TrimSpace(city)
	state = strings.TrimSpace(state)
	if industry == "" || city == "" {
		return nil, ErrInvalidRequest
	}

	businesses, err := uc.finder.Find(ctx, industry, city, state)
	if err != nil {
		return nil, fmt.Errorf("find businesses failed: %w", err)
	}
	if limit > 0 && len(businesses) > limit {
		businesses = businesses[:limit]
	}

	out := make([]DiscoveredBusiness, len(businesses))
	sem := make(chan struct{}, maxConcurrentValidations)
	var wg sync.WaitGroup
	for i := range businesses {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			out[i] = uc.describe(ctx, businesses[i])
		}(i)
	}
	wg.Wait()

	uc.log.Infof("discovered %d businesses for %s in %s", len(out), industry, city)
	return out, nil
}

func (uc *DiscoverUseCase) describe(ctx context.Context, b model.Business) DiscoveredBusiness {
	d := DiscoveredBusiness{
		PlaceID: b.PlaceID,
		Name:    b.Name,
		Address: b.Address,
		Phone:   b.Phone,
		Rating:  b.RatingOrZero(),
		Reviews: len(b.Reviews),
		Website: b.WebsiteURL,
	}
	if b.Coordinates != nil {
		d.Lat, d.Lng = b.Coordinates.Lat, b.Coordinates.Lng
	}
	d.HasWebsite, d.WebsiteStatus = uc.validator.Validate(ctx, b.WebsiteURL)
	return d
}
