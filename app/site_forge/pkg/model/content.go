package model

// GeneratedContent 站点文案，补全之后所有字段都非空
type GeneratedContent struct {
	BusinessInfo        BusinessInfo        `json:"business_info"`
	AboutContent        AboutContent        `json:"about_content"`
	Services            []Service           `json:"services"`
	SEO                 SEO                 `json:"seo"`
	CallToActions       StringList          `json:"call_to_actions"`
	TestimonialsSection TestimonialsSection `json:"testimonials_section"`
	Contact             Contact             `json:"contact"`
	Footer              Footer              `json:"footer"`
	DesignTheme         DesignTheme         `json:"design_theme"`
	ImageKeywords       ImageKeywords       `json:"image_keywords"`
}

// BusinessInfo 首页商户信息
type BusinessInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Tagline     string `json:"tagline"`
}

// AboutContent 关于页
type AboutContent struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	History     string     `json:"history"`
	Values      StringList `json:"values"`
}

// Service 服务项
type Service struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Features    StringList `json:"features"`
}

// SEO 元信息
type SEO struct {
	MetaTitle       string     `json:"meta_title"`
	MetaDescription string     `json:"meta_description"`
	MetaKeywords    StringList `json:"meta_keywords"`
	OGTitle         string     `json:"og_title"`
	OGDescription   string     `json:"og_description"`
}

// TestimonialsSection 评价区块
type TestimonialsSection struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// Contact 联系区块
type Contact struct {
	FormTitle       string `json:"form_title"`
	FormDescription string `json:"form_description"`
	PhoneDisplay    string `json:"phone_display"`
	AddressDisplay  string `json:"address_display"`
}

// Footer 页脚
type Footer struct {
	Description   string `json:"description"`
	CopyrightText string `json:"copyright_text"`
}

// DesignTheme 视觉主题
type DesignTheme struct {
	ThemeName    string       `json:"theme_name"`
	ColorPalette ColorPalette `json:"color_palette"`
	FontHeading  string       `json:"font_heading"`
	FontBody     string       `json:"font_body"`
	LayoutStyle  string       `json:"layout_style"`
}

// ColorPalette 配色
type ColorPalette struct {
	Primary      string `json:"primary"`
	Secondary    string `json:"secondary"`
	Accent       string `json:"accent"`
	Background   string `json:"background"`
	Text         string `json:"text"`
	TextMuted    string `json:"text_muted"`
	GradientFrom string `json:"gradient_from,omitempty"`
	GradientTo   string `json:"gradient_to,omitempty"`
}

// ImageKeywords 图片搜索关键词
type ImageKeywords struct {
	Hero     StringList `json:"hero"`
	About    StringList `json:"about"`
	Services StringList `json:"services"`
}
