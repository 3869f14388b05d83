package site

import (
	"fmt"
	"time"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/model"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/theme"
)

// Design 站点的视觉选择：主题、设计预设和图片
type Design struct {
	ThemeID string
	Theme   model.DesignTheme
	Images  theme.ImageURLs

	HideContactForm  bool
	HideTestimonials bool
}

// BusinessData 模板中使用的商户字段
type BusinessData struct {
	Name     string
	Address  string
	Phone    string
	City     string
	State    string
	Industry string
	Rating   string
}

// ServiceData 服务卡片数据，以 JSON 字面量嵌入页面
type ServiceData struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Image       string   `json:"image,omitempty"`
}

// Data 模板渲染上下文
//
// Business、Info 等字段用于 JSX 文本；*Escaped 字段只用于 JS/TS 字符串字面量。
// 列表类数据通过 json 函数嵌入，不需要转义。
type Data struct {
	Slug    string
	Year    int
	ThemeID string

	Business        BusinessData
	BusinessEscaped BusinessData
	ContactEscaped  model.Contact
	SEOEscaped      model.SEO
	AboutEscaped    model.AboutContent

	Info         model.BusinessInfo
	About        model.AboutContent
	Services     []ServiceData
	SEO          model.SEO
	CTAs         []string
	PrimaryCTA   string
	Testimonials model.TestimonialsSection
	Reviews      []model.Review
	Contact      model.Contact
	Footer       model.Footer

	ShowContactForm  bool
	ShowTestimonials bool

	Design model.DesignTheme
	CSS    theme.Variables
	Images theme.ImageURLs
}

const maxReviews = 3

// NewData 组装模板上下文，文本字段原样保留，字面量字段转义
func NewData(b model.Business, c model.GeneratedContent, d Design, slug string, now time.Time) *Data {
	biz := BusinessData{
		Name:     b.Name,
		Address:  b.Address,
		Phone:    b.Phone,
		City:     b.City,
		State:    b.State,
		Industry: b.Industry,
	}
	if b.Rating != nil {
		biz.Rating = fmt.Sprintf("%.1f", *b.Rating)
	}

	services := make([]ServiceData, 0, len(c.Services))
	for i, s := range c.Services {
		sd := ServiceData{Name: s.Name, Description: s.Description, Features: append([]string{}, s.Features...)}
		if i < len(d.Images.Services) {
			sd.Image = d.Images.Services[i]
		}
		services = append(services, sd)
	}

	reviews := []model.Review{}
	for _, r := range b.Reviews {
		if r.Text == "" {
			continue
		}
		reviews = append(reviews, r)
		if len(reviews) == maxReviews {
			break
		}
	}

	ctas := append([]string{}, c.CallToActions...)
	primary := "Contact Us"
	if len(ctas) > 0 {
		primary = ctas[0]
	}

	return &Data{
		Slug:    slug,
		Year:    now.Year(),
		ThemeID: d.ThemeID,

		Business:        biz,
		BusinessEscaped: escapeBusiness(biz),
		ContactEscaped: model.Contact{
			FormTitle:       EscapeJS(c.Contact.FormTitle),
			FormDescription: EscapeJS(c.Contact.FormDescription),
			PhoneDisplay:    EscapeJS(c.Contact.PhoneDisplay),
			AddressDisplay:  EscapeJS(c.Contact.AddressDisplay),
		},
		SEOEscaped: model.SEO{
			MetaTitle:       EscapeJS(c.SEO.MetaTitle),
			MetaDescription: EscapeJS(c.SEO.MetaDescription),
			MetaKeywords:    c.SEO.MetaKeywords,
			OGTitle:         EscapeJS(c.SEO.OGTitle),
			OGDescription:   EscapeJS(c.SEO.OGDescription),
		},
		AboutEscaped: model.AboutContent{Title: EscapeJS(c.AboutContent.Title)},

		Info:         c.BusinessInfo,
		About:        c.AboutContent,
		Services:     services,
		SEO:          c.SEO,
		CTAs:         ctas,
		PrimaryCTA:   primary,
		Testimonials: c.TestimonialsSection,
		Reviews:      reviews,
		Contact:      c.Contact,
		Footer:       c.Footer,

		ShowContactForm:  !d.HideContactForm,
		ShowTestimonials: !d.HideTestimonials && len(reviews) > 0,

		Design: d.Theme,
		CSS:    theme.CSSVariables(d.ThemeID),
		Images: d.Images,
	}
}

func escapeBusiness(b BusinessData) BusinessData {
	return BusinessData{
		Name:     EscapeJS(b.Name),
		Address:  EscapeJS(b.Address),
		Phone:    EscapeJS(b.Phone),
		City:     EscapeJS(b.City),
		State:    EscapeJS(b.State),
		Industry: EscapeJS(b.Industry),
		Rating:   b.Rating,
	}
}
