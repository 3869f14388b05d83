package content

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/model"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/theme"
)

const maxCallToActions = 7

var (
	defaultCTAs         = []string{"Get Your Free Quote Today", "Contact Us for Expert Service", "Schedule Your Consultation"}
	defaultValues       = []string{"Quality", "Integrity", "Customer Service"}
	defaultFeatures     = []string{"Expert Service", "Quality Work", "Customer Satisfaction"}
	fallbackFeatures    = []string{"Expert Service", "Quality Workmanship", "Customer Satisfaction", "Competitive Pricing"}
	fallbackPalette     = model.ColorPalette{Primary: "#0f766e", Secondary: "#0d9488", Accent: "#f59e0b", Background: "#f8fafc", Text: "#1e293b", TextMuted: "#64748b"}
	defaultFormTitle    = "Get In Touch"
	defaultFormDesc     = "Have a question or ready to get started? Contact us today and we'll be happy to help."
	defaultThemeName    = "Professional"
	defaultTestimonials = "What Our Customers Say"
)

// Complete 补全文案中所有缺失或为空的字段，补全后每个字段都非空
func Complete(c *model.GeneratedContent, req model.WebsiteRequirements, now time.Time) {
	b := req.Business
	industry := industryOf(b)
	location := b.Location()

	info := &c.BusinessInfo
	setIfBlank(&info.Name, b.Name)
	setIfBlank(&info.Description, fmt.Sprintf("%s is a %s business located in %s. We provide quality services to our customers.", b.Name, industry, location))
	setIfBlank(&info.Tagline, fmt.Sprintf("Quality %s services in %s", industry, b.City))

	about := &c.AboutContent
	setIfBlank(&about.Title, "About "+b.Name)
	setIfBlank(&about.Description, aboutDescription(b, industry))
	setIfBlank(&about.History, fmt.Sprintf("Founded to serve the %s community, %s has built a reputation for quality and reliability.", b.City, b.Name))
	about.Values = listOr(about.Values, defaultValues)

	c.Services = completeServices(c.Services, req, industry)

	seo := &c.SEO
	setIfBlank(&seo.MetaTitle, fmt.Sprintf("%s | %s Services in %s", b.Name, titleCase(industry), location))
	setIfBlank(&seo.MetaDescription, fmt.Sprintf("Professional %s services in %s. Contact %s for quality service and customer satisfaction.", industry, location, b.Name))
	seo.MetaKeywords = listOr(seo.MetaKeywords, defaultKeywords(req, industry))
	setIfBlank(&seo.OGTitle, fmt.Sprintf("%s - %s Services", b.Name, titleCase(industry)))
	setIfBlank(&seo.OGDescription, fmt.Sprintf("Professional %s services in %s", industry, location))

	c.CallToActions = listOr(c.CallToActions, defaultCTAs)
	if len(c.CallToActions) > maxCallToActions {
		c.CallToActions = c.CallToActions[:maxCallToActions]
	}

	setIfBlank(&c.TestimonialsSection.Title, defaultTestimonials)
	setIfBlank(&c.TestimonialsSection.Subtitle, "Trusted by customers in "+b.City)

	contact := &c.Contact
	setIfBlank(&contact.FormTitle, defaultFormTitle)
	setIfBlank(&contact.FormDescription, defaultFormDesc)
	setIfBlank(&contact.PhoneDisplay, orNA(b.Phone))
	setIfBlank(&contact.AddressDisplay, firstNonBlank(b.Address, location))

	setIfBlank(&c.Footer.Description, fmt.Sprintf("%s - Your trusted partner for %s services in %s.", b.Name, industry, location))
	setIfBlank(&c.Footer.CopyrightText, fmt.Sprintf("© %d %s. All rights reserved.", now.Year(), b.Name))

	// 模型没给配色时按商户名落到预设上，保证不同站点配色不同
	dt := &c.DesignTheme
	preset := theme.ResolveDesignTheme(b.Name)
	setIfBlank(&dt.ThemeName, defaultThemeName)
	dt.ColorPalette = theme.CompletePalette(dt.ColorPalette, preset.ColorPalette)
	dt.FontHeading = theme.NormalizeFont(dt.FontHeading)
	dt.FontBody = theme.NormalizeFont(dt.FontBody)
	dt.LayoutStyle = theme.NormalizeLayout(dt.LayoutStyle)

	ik := &c.ImageKeywords
	ik.Hero = listOr(ik.Hero, []string{industry, "professional", "quality"})
	ik.About = listOr(ik.About, []string{industry, "team", "local business"})
	if len(ik.Services) == 0 {
		for range c.Services {
			ik.Services = append(ik.Services, industry)
		}
	}
}

// DefaultContent 完全由需求推导出的文案，用于 LLM 完全失败的情况
func DefaultContent(req model.WebsiteRequirements, now time.Time) model.GeneratedContent {
	b := req.Business
	industry := industryOf(b)
	location := b.Location()

	var services []model.Service
	for _, name := range req.PrimaryServices {
		services = append(services, model.Service{
			Name:        name,
			Description: fmt.Sprintf("Professional %s services. We provide quality workmanship and excellent customer service.", strings.ToLower(name)),
			Features:    model.StringList(append([]string(nil), fallbackFeatures...)),
		})
	}
	if len(services) == 0 {
		services = append(services, model.Service{
			Name:        titleCase(industry) + " Services",
			Description: fmt.Sprintf("Professional %s services. We provide quality workmanship and excellent customer service.", industry),
			Features:    model.StringList(append([]string(nil), fallbackFeatures[:3]...)),
		})
	}

	ctas := append([]string(nil), defaultCTAs...)
	if a := req.CompetitorAnalysis; a != nil {
		extra := []string(a.CallToActions)
		if len(extra) > 3 {
			extra = extra[:3]
		}
		ctas = append(ctas, extra...)
	}

	c := model.GeneratedContent{
		BusinessInfo: model.BusinessInfo{
			Name: b.Name,
			Description: fmt.Sprintf("%s is a trusted %s business serving %s and surrounding areas. "+
				"With a commitment to quality and customer satisfaction, we provide professional services tailored to meet your needs.",
				b.Name, industry, location),
			Tagline: fmt.Sprintf("Quality %s Services in %s", titleCase(industry), location),
		},
		AboutContent: model.AboutContent{
			Title: "About " + b.Name,
			Description: fmt.Sprintf("%s has been serving the %s area with quality %s services. We are committed to excellence and customer satisfaction.",
				b.Name, b.City, industry),
			History: fmt.Sprintf("Founded to serve the %s community, %s has built a reputation for quality and reliability.", b.City, b.Name),
			Values:  model.StringList(append(append([]string(nil), defaultValues...), "Excellence")),
		},
		Services: services,
		SEO: model.SEO{
			MetaKeywords: defaultKeywords(req, industry),
		},
		CallToActions: ctas,
		Contact: model.Contact{
			FormTitle:       defaultFormTitle,
			FormDescription: defaultFormDesc,
		},
		DesignTheme: model.DesignTheme{
			ThemeName:    defaultThemeName,
			ColorPalette: fallbackPalette,
			FontHeading:  "Playfair Display",
			FontBody:     "Source Sans 3",
			LayoutStyle:  theme.DefaultLayout,
		},
		ImageKeywords: model.ImageKeywords{
			About: model.StringList{industry, "team", "local"},
		},
	}

	// 剩余字段与补全规则一致
	Complete(&c, req, now)
	return c
}

func completeServices(services []model.Service, req model.WebsiteRequirements, industry string) []model.Service {
	var out []model.Service
	for _, s := range services {
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			continue
		}
		setIfBlank(&s.Description, fmt.Sprintf("Professional %s services.", strings.ToLower(s.Name)))
		s.Features = listOr(s.Features, defaultFeatures)
		out = append(out, s)
	}
	if len(out) > 0 {
		return out
	}

	for _, name := range req.PrimaryServices {
		out = append(out, model.Service{
			Name:        name,
			Description: fmt.Sprintf("Professional %s services.", strings.ToLower(name)),
			Features:    model.StringList(append([]string(nil), defaultFeatures...)),
		})
	}
	if len(out) > 0 {
		return out
	}

	return []model.Service{{
		Name:        titleCase(industry) + " Services",
		Description: fmt.Sprintf("Professional %s services.", industry),
		Features:    model.StringList(append([]string(nil), defaultFeatures...)),
	}}
}

func defaultKeywords(req model.WebsiteRequirements, industry string) []string {
	if len(req.SEOFocusKeywords) > 0 {
		return append([]string(nil), req.SEOFocusKeywords...)
	}
	if a := req.CompetitorAnalysis; a != nil && len(a.SEOKeywords) > 0 {
		kw := []string(a.SEOKeywords)
		if len(kw) > maxSEOKeywords {
			kw = kw[:maxSEOKeywords]
		}
		return append([]string(nil), kw...)
	}
	b := req.Business
	return []string{industry, industry + " " + b.City, b.Name}
}

func aboutDescription(b model.Business, industry string) string {
	area := b.City
	if b.State != "" {
		area += ", " + b.State
	}
	return fmt.Sprintf("%s has been serving the %s area with reliable %s services. "+
		"We focus on quality, transparency, and customer satisfaction on every job.", b.Name, area, industry)
}

func industryOf(b model.Business) string {
	if s := strings.TrimSpace(b.Industry); s != "" {
		return s
	}
	return "business"
}

func setIfBlank(dst *string, v string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = v
	}
}

// listOr 去掉空白项，为空时返回 def 的副本
func listOr(list model.StringList, def []string) model.StringList {
	var out model.StringList
	for _, s := range list {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		out = append(model.StringList(nil), def...)
	}
	return out
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return "N/A"
}

// titleCase 每个单词首字母大写，其余小写
func titleCase(s string) string {
	prev := ' '
	return strings.Map(func(r rune) rune {
		out := unicode.ToTitle(r)
		if unicode.IsLetter(prev) {
			out = unicode.ToLower(r)
		}
		prev = r
		return out
	}, s)
}
