package competitor

import (
	"sort"
	"strings"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/model"
)

// Select 从已发现的商户中挑选目标商户的竞品：
// 同行业同城市（双方都有州时同州）、有网站、且不是目标本身，
// 按评分降序、评论数降序排序后截取前 maxN 个
func Select(all []model.Business, target model.Business, industry, city, state string, maxN int) []model.Business {
	if maxN <= 0 {
		return nil
	}

	var candidates []model.Business
	for i := range all {
		b := all[i]
		if b.SameIdentity(&target) || !b.HasWebsite {
			continue
		}
		if !strings.EqualFold(b.Industry, industry) || !strings.EqualFold(b.City, city) {
			continue
		}
		if state != "" && b.State != "" && !strings.EqualFold(b.State, state) {
			continue
		}
		candidates = append(candidates, b)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ri, rj := candidates[i].RatingOrZero(), candidates[j].RatingOrZero()
		if ri != rj {
			return ri > rj
		}
		return len(candidates[i].Reviews) > len(candidates[j].Reviews)
	})

	if len(candidates) > maxN {
		candidates = candidates[:maxN]
	}
	return candidates
}
