package model

import "time"

// CompetitorAnalysis 单个目标商户的竞品分析结果，只在本次流水线中使用
type CompetitorAnalysis struct {
	Competitors      []Business     `json:"competitors"`
	KeyServices      StringList     `json:"key_services"`
	SEOKeywords      StringList     `json:"seo_keywords"`
	DesignPatterns   StringList     `json:"design_patterns"`
	MessagingThemes  StringList     `json:"messaging_themes"`
	CallToActions    StringList     `json:"call_to_actions"`
	ContentStructure map[string]any `json:"content_structure"`
	IndustryInsights string         `json:"industry_insights,omitempty"`
	AnalyzedAt       time.Time      `json:"analysis_timestamp"`
}

// EmptyAnalysis 构造洞察为空但结构完整的分析结果
func EmptyAnalysis(competitors []Business) *CompetitorAnalysis {
	return &CompetitorAnalysis{
		Competitors:      competitors,
		KeyServices:      StringList{},
		SEOKeywords:      StringList{},
		DesignPatterns:   StringList{},
		MessagingThemes:  StringList{},
		CallToActions:    StringList{},
		ContentStructure: map[string]any{},
		AnalyzedAt:       time.Now(),
	}
}

// HasInsights 是否提取到了任何洞察
func (a *CompetitorAnalysis) HasInsights() bool {
	if a == nil {
		return false
	}
	return len(a.KeyServices) > 0 || len(a.SEOKeywords) > 0 || len(a.DesignPatterns) > 0 ||
		len(a.MessagingThemes) > 0 || len(a.CallToActions) > 0 || len(a.ContentStructure) > 0 ||
		a.IndustryInsights != ""
}
