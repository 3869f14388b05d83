package content

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/llm"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/logger"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/model"
)

// Synthesizer 调用 LLM 生成站点文案
type Synthesizer struct {
	llm         llm.Completer
	temperature float32
	now         func() time.Time
}

// NewSynthesizer 创建文案生成器
func NewSynthesizer(completer llm.Completer, temperature float32) *Synthesizer {
	return &Synthesizer{llm: completer, temperature: temperature, now: time.Now}
}

// Synthesize 生成文案，LLM 调用或解析失败时返回完全由默认值构成的文案，从不失败
func (s *Synthesizer) Synthesize(ctx context.Context, req model.WebsiteRequirements) (content model.GeneratedContent) {
	now := s.now()
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorf("文案生成异常 [%s]: %v", req.Business.Name, r)
			content = DefaultContent(req, now)
		}
	}()

	logger.Log.Infof("开始生成站点文案: %s", req.Business.Name)

	var generated model.GeneratedContent
	if err := s.llm.CompleteJSON(ctx, systemPrompt, buildPrompt(req), s.temperature, &generated); err != nil {
		logger.Log.Errorf("文案生成失败 [%s]，使用默认文案: %v", req.Business.Name, err)
		return DefaultContent(req, now)
	}

	Complete(&generated, req, now)
	logger.Log.Infof("站点文案生成完成 [%s]: %d 个服务", req.Business.Name, len(generated.Services))
	return generated
}

const systemPrompt = "You are a professional website content writer for local businesses. Respond with a single JSON object only."

func buildPrompt(req model.WebsiteRequirements) string {
	b := req.Business
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are writing website content for a %s business.\n\n", b.Industry)
	sb.WriteString("Business Information:\n")
	fmt.Fprintf(&sb, "- Name: %s\n", b.Name)
	fmt.Fprintf(&sb, "- Location: %s, %s\n", b.City, orNA(b.State))
	fmt.Fprintf(&sb, "- Address: %s\n", b.Address)
	fmt.Fprintf(&sb, "- Phone: %s\n", orNA(b.Phone))
	fmt.Fprintf(&sb, "- Industry: %s\n", b.Industry)
	if b.Rating != nil {
		fmt.Fprintf(&sb, "- Rating: %.1f stars\n", *b.Rating)
	}

	if a := req.CompetitorAnalysis; a != nil {
		sb.WriteString("\nCompetitor Insights:\n")
		fmt.Fprintf(&sb, "- Key Services: %s\n", joinOrNA(a.KeyServices))
		fmt.Fprintf(&sb, "- SEO Keywords: %s\n", joinOrNA(a.SEOKeywords))
		fmt.Fprintf(&sb, "- Messaging Themes: %s\n", joinOrNA(a.MessagingThemes))
		fmt.Fprintf(&sb, "- CTAs: %s\n", joinOrNA(a.CallToActions))
	}

	sb.WriteString("\nRequirements:\n")
	fmt.Fprintf(&sb, "- Brand Tone: %s\n", req.BrandTone)
	fmt.Fprintf(&sb, "- Primary Services: %s\n", joinOrNA(req.PrimaryServices))
	fmt.Fprintf(&sb, "- SEO Keywords: %s\n", joinOrNA(req.SEOFocusKeywords))
	fmt.Fprintf(&sb, "- Target Audience: %s\n", req.TargetAudience)
	fmt.Fprintf(&sb, "- Include Contact Form: %t\n", req.IncludeContactForm)
	fmt.Fprintf(&sb, "- Include Testimonials: %t\n", req.IncludeTestimonials)
	fmt.Fprintf(&sb, "- Include Blog: %t\n", req.IncludeBlog)
	if req.ColorScheme != "" {
		fmt.Fprintf(&sb, "- Preferred Colors: %s\n", req.ColorScheme)
	}
	if req.GenerationNotes != "" {
		fmt.Fprintf(&sb, "- Additional Notes: %s\n", req.GenerationNotes)
	}

	sb.WriteString(contentInstructions)
	return sb.String()
}

const contentInstructions = `
Write original, location-aware, benefit-focused content. Use the competitor insights as inspiration only.
Do not use apostrophes or single quotes in meta_title, meta_description, og_title or og_description.
layout_style must be one of: hero-centered, hero-split, hero-full-image, card-heavy, minimal-stripes.
Fonts must be Google Fonts names. Colors must be hex codes.
Write one service entry per primary service, 5-7 call to actions, and 3-5 company values.

Return JSON with this structure:
{
  "business_info": {"name": "", "description": "2-3 paragraphs", "tagline": "10-15 words"},
  "about_content": {"title": "", "description": "", "history": "", "values": [""]},
  "services": [{"name": "", "description": "", "features": [""]}],
  "seo": {"meta_title": "50-60 chars", "meta_description": "150-160 chars", "meta_keywords": [""], "og_title": "", "og_description": ""},
  "call_to_actions": [""],
  "testimonials_section": {"title": "", "subtitle": ""},
  "contact": {"form_title": "", "form_description": "", "phone_display": "", "address_display": ""},
  "footer": {"description": "", "copyright_text": ""},
  "design_theme": {
    "theme_name": "",
    "color_palette": {"primary": "#hex", "secondary": "#hex", "accent": "#hex", "background": "#hex", "text": "#hex", "text_muted": "#hex"},
    "font_heading": "", "font_body": "", "layout_style": ""
  },
  "image_keywords": {"hero": [""], "about": [""], "services": ["one entry per service"]}
}`

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func joinOrNA(list []string) string {
	if len(list) == 0 {
		return "N/A"
	}
	return strings.Join(list, ", ")
}
