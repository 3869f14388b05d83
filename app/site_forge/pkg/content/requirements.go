package content

import (
	"strings"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/logger"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/model"
)

const (
	maxPrimaryServices = 5
	maxSEOKeywords     = 10
	defaultBrandTone   = "professional"
)

// PrepareRequirements 由商户、竞品分析和调用方覆盖项构造内容生成需求
func PrepareRequirements(b model.Business, analysis *model.CompetitorAnalysis, o model.RequirementOverrides) model.WebsiteRequirements {
	services := nonBlank(o.PrimaryServices)
	if len(services) == 0 && analysis != nil {
		services = nonBlank(analysis.KeyServices)
	}
	if len(services) > maxPrimaryServices {
		services = services[:maxPrimaryServices]
	}

	keywords := nonBlank(o.SEOFocusKeywords)
	if len(keywords) == 0 && analysis != nil {
		keywords = nonBlank(analysis.SEOKeywords)
	}
	if len(keywords) > maxSEOKeywords {
		keywords = keywords[:maxSEOKeywords]
	}

	tone := strings.TrimSpace(o.BrandTone)
	if tone == "" {
		tone = defaultBrandTone
	}

	audience := strings.TrimSpace(o.TargetAudience)
	if audience == "" {
		audience = defaultAudience(b.Industry)
	}

	req := model.WebsiteRequirements{
		Business:            b,
		CompetitorAnalysis:  analysis,
		TargetAudience:      audience,
		PrimaryServices:     services,
		BrandTone:           tone,
		ColorScheme:         o.ColorScheme,
		SEOFocusKeywords:    keywords,
		IncludeContactForm:  boolOr(o.IncludeContactForm, true),
		IncludeTestimonials: boolOr(o.IncludeTestimonials, true),
		IncludeBlog:         boolOr(o.IncludeBlog, false),
		CustomPages:         nonBlank(o.CustomPages),
		GenerationNotes:     strings.TrimSpace(o.GenerationNotes),
	}

	logger.Log.Infof("站点需求已准备 [%s]: %d 个服务, %d 个 SEO 关键词", b.Name, len(req.PrimaryServices), len(req.SEOFocusKeywords))
	return req
}

func defaultAudience(industry string) string {
	switch strings.ToLower(strings.TrimSpace(industry)) {
	case "roofing", "plumbing", "electrical", "hvac":
		return "Homeowners and property managers"
	case "restaurant", "cafe", "food":
		return "Local residents and visitors"
	default:
		return "Local customers and businesses"
	}
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func nonBlank(list []string) []string {
	var out []string
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
