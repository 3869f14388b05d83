package competitor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/llm"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/logger"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/model"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/scraper"
)

const (
	scrapeFailedMarker = "[Website scraping failed - using business data only]"
	maxPromptHeadings  = 10
	maxPromptContent   = 1000
)

// Fetcher 批量抓取竞品网站
type Fetcher interface {
	FetchAll(ctx context.Context, urls []string) map[string]*scraper.Site
}

// Analyzer 抓取竞品网站并用 LLM 提炼洞察
type Analyzer struct {
	fetcher     Fetcher
	llm         llm.Completer
	temperature float32
}

// NewAnalyzer 创建竞品分析器
func NewAnalyzer(fetcher Fetcher, completer llm.Completer, temperature float32) *Analyzer {
	return &Analyzer{fetcher: fetcher, llm: completer, temperature: temperature}
}

// insights LLM 返回的结构
type insights struct {
	KeyServices      model.StringList `json:"key_services"`
	ContentStructure json.RawMessage  `json:"content_structure"`
	SEOKeywords      model.StringList `json:"seo_keywords"`
	DesignPatterns   model.StringList `json:"design_patterns"`
	MessagingThemes  model.StringList `json:"messaging_themes"`
	CallToActions    model.StringList `json:"call_to_actions"`
	IndustryInsights json.RawMessage  `json:"industry_insights"`
}

// Analyze 分析竞品，任何失败都退化为洞察为空的结果，返回值始终携带原始竞品列表
func (a *Analyzer) Analyze(ctx context.Context, competitors []model.Business, industry, city, state string) (result *model.CompetitorAnalysis) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorf("竞品分析异常: %v", r)
			result = model.EmptyAnalysis(competitors)
		}
	}()

	logger.Log.Infof("开始竞品分析: %d 个竞品, 行业=%s, 城市=%s, 州=%s", len(competitors), industry, city, state)

	var withSites []model.Business
	for _, c := range competitors {
		if c.HasWebsite && c.WebsiteURL != "" {
			withSites = append(withSites, c)
		}
	}
	if len(withSites) == 0 {
		logger.Log.Warn("没有带网站的竞品，返回空分析")
		return model.EmptyAnalysis(competitors)
	}

	urls := make([]string, 0, len(withSites))
	for _, c := range withSites {
		urls = append(urls, c.WebsiteURL)
	}
	scraped := a.fetcher.FetchAll(ctx, urls)
	logger.Log.Infof("竞品网站抓取完成: %d/%d", len(scraped), len(withSites))

	var parsed insights
	prompt := buildPrompt(withSites, scraped, industry, city, state)
	if err := a.llm.CompleteJSON(ctx, analysisSystemPrompt, prompt, a.temperature, &parsed); err != nil {
		logger.Log.Errorf("竞品洞察提取失败: %v", err)
		return model.EmptyAnalysis(competitors)
	}

	analysis := model.EmptyAnalysis(competitors)
	analysis.KeyServices = append(analysis.KeyServices, parsed.KeyServices...)
	analysis.SEOKeywords = append(analysis.SEOKeywords, parsed.SEOKeywords...)
	analysis.DesignPatterns = append(analysis.DesignPatterns, parsed.DesignPatterns...)
	analysis.MessagingThemes = append(analysis.MessagingThemes, parsed.MessagingThemes...)
	analysis.CallToActions = append(analysis.CallToActions, parsed.CallToActions...)
	if len(parsed.ContentStructure) > 0 {
		var cs map[string]any
		if err := json.Unmarshal(parsed.ContentStructure, &cs); err == nil && cs != nil {
			analysis.ContentStructure = cs
		}
	}
	analysis.IndustryInsights = flattenText(parsed.IndustryInsights)
	analysis.AnalyzedAt = time.Now()

	logger.Log.Infof("竞品分析完成: %d 个服务, %d 个 SEO 关键词, %d 个设计模式",
		len(analysis.KeyServices), len(analysis.SEOKeywords), len(analysis.DesignPatterns))
	return analysis
}

// flattenText 兼容 industry_insights 返回字符串、数组或对象
func flattenText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list model.StringList
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return strings.Join(list, " ")
	}
	if string(raw) == "null" {
		return ""
	}
	return string(raw)
}

const analysisSystemPrompt = "You are a competitive analyst for local business websites. Respond with a single JSON object only."

func buildPrompt(competitors []model.Business, scraped map[string]*scraper.Site, industry, city, state string) string {
	var sb strings.Builder
	for i, c := range competitors {
		fmt.Fprintf(&sb, "\n[Competitor %d: %s]\n", i+1, c.Name)
		fmt.Fprintf(&sb, "Website: %s\n", c.WebsiteURL)
		fmt.Fprintf(&sb, "Address: %s\n", c.Address)
		if c.Rating != nil {
			fmt.Fprintf(&sb, "Rating: %.1f/5.0\n", *c.Rating)
		}

		site := scraped[c.WebsiteURL]
		if site == nil {
			fmt.Fprintf(&sb, "Content: %s\n", scrapeFailedMarker)
			continue
		}
		fmt.Fprintf(&sb, "Title: %s\n", orNA(site.Title))
		fmt.Fprintf(&sb, "Meta Description: %s\n", orNA(site.MetaDescription))
		if len(site.MetaKeywords) > 0 {
			fmt.Fprintf(&sb, "Meta Keywords: %s\n", strings.Join(site.MetaKeywords, ", "))
		}
		if len(site.Headings) > 0 {
			headings := site.Headings
			if len(headings) > maxPromptHeadings {
				headings = headings[:maxPromptHeadings]
			}
			fmt.Fprintf(&sb, "Headings: %s\n", strings.Join(headings, ", "))
		}
		if site.Content != "" {
			fmt.Fprintf(&sb, "Content Preview: %s\n", preview(site.Content, maxPromptContent))
		}
	}

	location := city
	if state != "" {
		location = city + ", " + state
	}

	return fmt.Sprintf(`You are analyzing competitor websites in the %[1]s industry located in %[2]s.

Here is the content from %[3]d competitor websites:
%[4]s

Extract the patterns that are common across these competitors and return JSON with these fields:
{
  "key_services": ["most common services offered"],
  "content_structure": {"pages": ["typical pages"], "sections": ["typical sections"]},
  "seo_keywords": ["location and service keywords, e.g. \"%[1]s %[5]s\""],
  "design_patterns": ["visual, layout and UX patterns"],
  "messaging_themes": ["value propositions and selling points"],
  "call_to_actions": ["button and contact prompt phrases"],
  "industry_insights": "positioning strategies, competitive advantages and visible trends"
}`, industry, location, len(competitors), sb.String(), city)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
