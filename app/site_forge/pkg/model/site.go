package model

// SiteArtifact 站点生成结果
type SiteArtifact struct {
	BusinessName string   `json:"business_name"`
	Slug         string   `json:"slug"`
	Dir          string   `json:"dir"`
	ThemeID      string   `json:"theme_id"`
	Written      []string `json:"written"`   // 模板渲染成功的文件
	Fallbacks    []string `json:"fallbacks"` // 由兜底内容写出的必需文件
	Skipped      []string `json:"skipped"`   // 渲染失败且非必需的文件
}
