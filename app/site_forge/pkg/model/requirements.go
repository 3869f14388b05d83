package model

// WebsiteRequirements 内容生成的输入
type WebsiteRequirements struct {
	Business            Business
	CompetitorAnalysis  *CompetitorAnalysis
	TargetAudience      string
	PrimaryServices     []string // 最多 5 个
	BrandTone           string
	ColorScheme         string
	SEOFocusKeywords    []string // 最多 10 个
	IncludeContactForm  bool
	IncludeTestimonials bool
	IncludeBlog         bool
	CustomPages         []string
	GenerationNotes     string
}

// RequirementOverrides 调用方对需求的覆盖项，零值表示使用默认值
type RequirementOverrides struct {
	BrandTone           string   `json:"brand_tone,omitempty" yaml:"brand_tone"`
	TargetAudience      string   `json:"target_audience,omitempty" yaml:"target_audience"`
	PrimaryServices     []string `json:"primary_services,omitempty" yaml:"primary_services"`
	SEOFocusKeywords    []string `json:"seo_focus_keywords,omitempty" yaml:"seo_focus_keywords"`
	IncludeContactForm  *bool    `json:"include_contact_form,omitempty" yaml:"include_contact_form"`
	IncludeTestimonials *bool    `json:"include_testimonials,omitempty" yaml:"include_testimonials"`
	IncludeBlog         *bool    `json:"include_blog,omitempty" yaml:"include_blog"`
	ColorScheme         string   `json:"color_scheme,omitempty" yaml:"color_scheme"`
	CustomPages         []string `json:"custom_pages,omitempty" yaml:"custom_pages"`
	GenerationNotes     string   `json:"generation_notes,omitempty" yaml:"generation_notes"`
}
