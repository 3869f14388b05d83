package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/job"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/site"
)

// ErrWebsiteNotFound 站点不存在
var ErrWebsiteNotFound = errors.New("website not found")

var timeNow = time.Now

// WebsiteUseCase 已生成站点的查询
type WebsiteUseCase struct {
	tracker   *job.Tracker
	outputDir string
	log       *log.Helper
}

// NewWebsiteUseCase 创建站点查询业务逻辑实例
func NewWebsiteUseCase(tracker *job.Tracker, outputDir string, logger log.Logger) *WebsiteUseCase {
	return &WebsiteUseCase{tracker: tracker, outputDir: outputDir, log: log.NewHelper(logger)}
}

// List 合并任务记录的站点和输出目录中的站点，按创建时间倒序
func (uc *WebsiteUseCase) List(ctx context.Context) ([]job.WebsiteInfo, error) {
	jobs, err := uc.tracker.List(ctx, "")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	out := []job.WebsiteInfo{}
	for _, j := range jobs {
		for _, w := range j.Websites {
			if seen[w.Slug] {
				continue
			}
			seen[w.Slug] = true
			out = append(out, w)
		}
	}

	for _, w := range uc.scanOutputDir() {
		if seen[w.Slug] {
			continue
		}
		seen[w.Slug] = true
		out = append(out, w)
	}

	sort.SliceStable(out, func(i, k int) bool {
		return out[i].CreatedAt.After(out[k].CreatedAt)
	})
	return out, nil
}

// Get 按 ID 或 slug 查找站点
func (uc *WebsiteUseCase) Get(ctx context.Context, id string) (*job.WebsiteInfo, error) {
	all, err := uc.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id || all[i].Slug == id {
			return &all[i], nil
		}
	}
	return nil, ErrWebsiteNotFound
}

// scanOutputDir 输出目录下每个子目录视为一个站点
func (uc *WebsiteUseCase) scanOutputDir() []job.WebsiteInfo {
	if uc.outputDir == "" {
		return nil
	}
	entries, err := os.ReadDir(uc.outputDir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			uc.log.Warnf("scan output dir %s failed: %v", uc.outputDir, err)
		}
		return nil
	}

	var out []job.WebsiteInfo
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		slug := e.Name()
		out = append(out, job.WebsiteInfo{
			ID:           slug,
			BusinessName: site.NameFromSlug(slug),
			Slug:         slug,
			Path:         filepath.Join(uc.outputDir, slug),
			CreatedAt:    info.ModTime(),
		})
	}
	return out
}
