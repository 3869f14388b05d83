package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/competitor"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/config"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/content"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/finder"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/llm"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/logger"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/model"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/places/factory"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/scraper"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/site"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/theme"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/website"
)

// ErrCancelled 任务在两个商户之间被取消
var ErrCancelled = errors.New("run cancelled")

// Discoverer 发现商户
type Discoverer interface {
	Find(ctx context.Context, industry, city, state string) ([]model.Business, error)
}

// WebsiteDetector 重新计算 has_website
type WebsiteDetector interface {
	DetectAll(ctx context.Context, businesses []model.Business) []model.Business
}

// CompetitorAnalyzer 竞品分析
type CompetitorAnalyzer interface {
	Analyze(ctx context.Context, competitors []model.Business, industry, city, state string) *model.CompetitorAnalysis
}

// ContentSynthesizer 文案生成
type ContentSynthesizer interface {
	Synthesize(ctx context.Context, req model.WebsiteRequirements) model.GeneratedContent
}

// ImageResolver 图片解析
type ImageResolver interface {
	Resolve(ctx context.Context, kw model.ImageKeywords, businessName, industry string, serviceNames []string) theme.ImageURLs
}

// SiteMaterializer 站点落盘
type SiteMaterializer interface {
	Materialize(b model.Business, c model.GeneratedContent, design site.Design, slug string) (*model.SiteArtifact, error)
}

// Ensure implementations satisfy the engine's collaborators
var (
	_ Discoverer         = (*finder.Finder)(nil)
	_ WebsiteDetector    = (*website.Detector)(nil)
	_ CompetitorAnalyzer = (*competitor.Analyzer)(nil)
	_ ContentSynthesizer = (*content.Synthesizer)(nil)
	_ ImageResolver      = (*theme.ImageResolver)(nil)
	_ SiteMaterializer   = (*site.Materializer)(nil)
)

// Deps 引擎依赖
type Deps struct {
	Finder         Discoverer
	Detector       WebsiteDetector
	Analyzer       CompetitorAnalyzer
	Synthesizer    ContentSynthesizer
	Images         ImageResolver
	Materializer   SiteMaterializer
	MaxCompetitors int
	// EnsureBuild 站点落盘后的构建文件检查，为空时跳过
	EnsureBuild func(dir string) ([]string, error)
}

// Engine 串行执行整条站点生成流水线
type Engine struct {
	Deps
}

// New 使用给定依赖创建引擎
func New(deps Deps) *Engine {
	if deps.MaxCompetitors <= 0 {
		deps.MaxCompetitors = 5
	}
	return &Engine{Deps: deps}
}

const (
	detectTimeout = 10 * time.Second
	maxRedirects  = 3
)

// NewEngine 根据配置组装全部组件
func NewEngine(ctx context.Context, cfg *config.Config) (*Engine, error) {
	dir, err := factory.NewDirectory(cfg)
	if err != nil {
		return nil, fmt.Errorf("商户目录初始化失败: %w", err)
	}

	client, err := llm.New(ctx, cfg.LLM, cfg.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}

	materializer, err := site.NewMaterializer(cfg.Output.Dir)
	if err != nil {
		return nil, fmt.Errorf("站点模板初始化失败: %w", err)
	}

	var search theme.ImageSearch
	if cfg.Images.UnsplashAccessKey != "" {
		search = theme.NewUnsplash(cfg.Images.UnsplashAccessKey)
	}

	g := cfg.Places.Google
	sc := scraper.New(time.Duration(cfg.Scraper.Timeout)*time.Second, time.Duration(cfg.Scraper.DelayMS)*time.Millisecond)

	return New(Deps{
		Finder:         finder.New(dir, g.MaxResults, time.Duration(g.DetailDelayMS)*time.Millisecond),
		Detector:       website.NewDetector(detectTimeout, maxRedirects),
		Analyzer:       competitor.NewAnalyzer(sc, client, cfg.LLM.AnalysisTemperature),
		Synthesizer:    content.NewSynthesizer(client, cfg.LLM.ContentTemperature),
		Images:         theme.NewImageResolver(search),
		Materializer:   materializer,
		MaxCompetitors: cfg.Competitors.Max,
		EnsureBuild:    site.EnsureBuildFiles,
	}), nil
}

// ProgressFunc 进度回调，progress 取值 0-100 且单调不减
type ProgressFunc func(step string, progress float64, details map[string]any)

// RunOptions 运行选项
type RunOptions struct {
	Industry  string
	City      string
	State     string
	Limit     int
	Overrides model.RequirementOverrides
	Progress  ProgressFunc
	// Cancelled 在每个商户开始前检查
	Cancelled func() bool
}

// 进度节点
const (
	StepDiscovering      = "discovering_businesses"
	StepDetecting        = "detecting_websites"
	StepFiltering        = "filtering_businesses"
	StepProcessing       = "processing_business"
	StepFindCompetitors  = "finding_competitors"
	StepAnalyzing        = "analyzing_competitors"
	StepGeneratingText   = "generating_content"
	StepGeneratingSite   = "generating_site"
	StepBusinessComplete = "business_completed"
	StepBusinessSkipped  = "business_skipped"
	StepCompleted        = "completed"
)

const (
	businessBase  = 45.0
	businessRange = 50.0
)

// Run 执行一次完整的生成流程，返回实际生成的站点
//
// 单个商户的任何失败只会跳过该商户；只有流程级别的异常、ctx 取消或任务取消才返回错误，
// 此时同时返回已经生成的站点。
func (e *Engine) Run(ctx context.Context, opts RunOptions) (sites []*model.SiteArtifact, err error) {
	report := opts.Progress
	if report == nil {
		report = func(string, float64, map[string]any) {}
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorf("流水线异常: %v", r)
			err = fmt.Errorf("pipeline panic: %v", r)
		}
	}()

	logger.Log.Infof("开始生成站点: industry=%s, city=%s, state=%s, limit=%d", opts.Industry, opts.City, opts.State, opts.Limit)

	// 1. 发现商户
	report(StepDiscovering, 5, map[string]any{"message": "Discovering businesses..."})
	businesses, err := e.Finder.Find(ctx, opts.Industry, opts.City, opts.State)
	if err != nil {
		return nil, fmt.Errorf("discover businesses failed: %w", err)
	}
	if len(businesses) == 0 {
		logger.Log.Warnf("未发现任何商户")
		report(StepCompleted, 100, map[string]any{"message": "No businesses found"})
		return nil, nil
	}
	report(StepDiscovering, 20, map[string]any{"businesses_found": len(businesses)})

	// 2. 网站检测
	report(StepDetecting, 25, map[string]any{"message": "Detecting existing websites..."})
	detected := e.Detector.DetectAll(ctx, businesses)
	var without []model.Business
	for _, b := range detected {
		if !b.HasWebsite {
			without = append(without, b)
		}
	}
	logger.Log.Infof("网站检测完成: %d/%d 个商户已有网站", len(detected)-len(without), len(detected))
	report(StepDetecting, 35, map[string]any{
		"businesses_with_websites": len(detected) - len(without),
		"total_businesses":         len(detected),
	})

	// 3. 过滤
	report(StepFiltering, 40, map[string]any{"message": "Filtering businesses without websites..."})
	if len(without) == 0 {
		logger.Log.Infof("所有商户都已有网站")
		report(StepCompleted, 100, map[string]any{"message": "All businesses have websites"})
		return nil, nil
	}
	if opts.Limit > 0 && len(without) > opts.Limit {
		without = without[:opts.Limit]
	}
	report(StepFiltering, 45, map[string]any{"businesses_to_process": len(without)})

	// 4. 逐个商户处理
	total := len(without)
	per := businessRange / float64(total)
	skipped := []string{}
	slugs := make(map[string]bool, total)
	for i, b := range without {
		if err := ctx.Err(); err != nil {
			return sites, err
		}
		if opts.Cancelled != nil && opts.Cancelled() {
			logger.Log.Warnf("任务已取消，已生成 %d 个站点", len(sites))
			return sites, ErrCancelled
		}

		current := businessBase + float64(i)*per
		report(StepProcessing, current, map[string]any{
			"business_index":   i + 1,
			"total_businesses": total,
			"business_name":    b.Name,
		})
		logger.Log.Infof("处理商户 %d/%d: %s", i+1, total, b.Name)

		at := func(step string, frac float64, details map[string]any) {
			details["business_name"] = b.Name
			report(step, current+per*frac, details)
		}

		slug := uniqueSlug(slugs, b, i)
		artifact, err := e.processBusiness(ctx, opts, detected, b, slug, at)
		if err != nil {
			logger.Log.Errorf("商户处理失败，已跳过 [%s]: %v", b.Name, err)
			skipped = append(skipped, b.Name)
			at(StepBusinessSkipped, 1, map[string]any{
				"error":   err.Error(),
				"message": fmt.Sprintf("Skipped %s: %v", b.Name, err),
			})
			continue
		}
		sites = append(sites, artifact)
		at(StepBusinessComplete, 1, map[string]any{
			"site_path":          artifact.Dir,
			"slug":               artifact.Slug,
			"theme_id":           artifact.ThemeID,
			"websites_generated": len(sites),
		})
	}

	logger.Log.Infof("站点生成完成: %d/%d", len(sites), total)
	report(StepCompleted, 100, map[string]any{
		"websites_generated": len(sites),
		"total_businesses":   total,
		"skipped":            skipped,
		"message":            fmt.Sprintf("Successfully generated %d websites", len(sites)),
	})
	return sites, nil
}

// processBusiness 处理单个商户，panic 转换为错误
func (e *Engine) processBusiness(ctx context.Context, opts RunOptions, all []model.Business, b model.Business, slug string,
	at func(step string, frac float64, details map[string]any)) (artifact *model.SiteArtifact, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	at(StepFindCompetitors, 0.1, map[string]any{"message": fmt.Sprintf("Finding competitors for %s...", b.Name)})
	competitors := competitor.Select(all, b, opts.Industry, opts.City, opts.State, e.MaxCompetitors)
	logger.Log.Infof("找到 %d 个竞品: %s", len(competitors), b.Name)

	var analysis *model.CompetitorAnalysis
	if len(competitors) > 0 {
		at(StepAnalyzing, 0.2, map[string]any{
			"competitors_count": len(competitors),
			"message":           fmt.Sprintf("Analyzing %d competitors...", len(competitors)),
		})
		analysis = e.Analyzer.Analyze(ctx, competitors, opts.Industry, opts.City, opts.State)
	}

	at(StepGeneratingText, 0.5, map[string]any{"message": fmt.Sprintf("Generating content for %s...", b.Name)})
	req := content.PrepareRequirements(b, analysis, opts.Overrides)
	generated := e.Synthesizer.Synthesize(ctx, req)

	at(StepGeneratingSite, 0.8, map[string]any{"message": fmt.Sprintf("Generating Next.js site for %s...", b.Name)})
	seed := site.Slugify(b.Name) + b.Name
	serviceNames := make([]string, 0, len(generated.Services))
	for _, s := range generated.Services {
		serviceNames = append(serviceNames, s.Name)
	}
	design := site.Design{
		ThemeID:          theme.Select(seed),
		Theme:            theme.Apply(generated.DesignTheme, seed),
		Images:           e.Images.Resolve(ctx, generated.ImageKeywords, b.Name, b.Industry, serviceNames),
		HideContactForm:  !req.IncludeContactForm,
		HideTestimonials: !req.IncludeTestimonials,
	}

	artifact, err = e.Materializer.Materialize(b, generated, design, slug)
	if err != nil {
		return nil, err
	}
	if e.EnsureBuild != nil {
		if _, err := e.EnsureBuild(artifact.Dir); err != nil {
			return nil, fmt.Errorf("ensure build files failed: %w", err)
		}
	}
	return artifact, nil
}

// uniqueSlug 同一次运行中目录名重复时追加 place id（缺失时用序号），并登记到 used
func uniqueSlug(used map[string]bool, b model.Business, index int) string {
	slug := site.Slugify(b.Name)
	if used[slug] {
		suffix := site.Slugify(b.PlaceID)
		if b.PlaceID == "" {
			suffix = fmt.Sprintf("%d", index+1)
		}
		next := slug + "-" + suffix
		logger.Log.Warnf("目录名重复 [%s]，改用 %s", slug, next)
		slug = next
	}
	used[slug] = true
	return slug
}

// Dirs 返回站点目录列表
func Dirs(sites []*model.SiteArtifact) []string {
	dirs := make([]string, 0, len(sites))
	for _, s := range sites {
		dirs = append(dirs, s.Dir)
	}
	return dirs
}
