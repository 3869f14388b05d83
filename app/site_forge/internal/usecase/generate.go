package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/engine"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/job"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/model"
)

// ErrInvalidRequest 生成请求缺少行业或城市
var ErrInvalidRequest = errors.New("industry and city are required")

// Runner 执行一次生成流程
type Runner interface {
	Run(ctx context.Context, opts engine.RunOptions) ([]*model.SiteArtifact, error)
}

// Ensure engine.Engine implements Runner
var _ Runner = (*engine.Engine)(nil)

// GenerateUseCase 生成任务业务逻辑
type GenerateUseCase struct {
	tracker *job.Tracker
	runner  Runner
	log     *log.Helper
	// done 在后台任务结束时收到任务 ID，测试使用
	done chan<- string
}

// NewGenerateUseCase 创建生成任务业务逻辑实例
func NewGenerateUseCase(tracker *job.Tracker, runner Runner, logger log.Logger) *GenerateUseCase {
	return &GenerateUseCase{tracker: tracker, runner: runner, log: log.NewHelper(logger)}
}

// Start 登记任务并在后台执行
func (uc *GenerateUseCase) Start(ctx context.Context, req job.Request) (*job.Job, error) {
	req.Industry = strings.TrimSpace(req.Industry)
	req.City = strings.TrimSpace(req.City)
	req.State = strings.TrimSpace(req.State)
	if req.Industry == "" || req.City == "" {
		return nil, ErrInvalidRequest
	}
	if req.Limit < 0 {
		req.Limit = 0
	}

	j, err := uc.tracker.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create job failed: %w", err)
	}

	// 后台任务不跟随请求的生命周期
	go uc.execute(context.Background(), j.ID, req)
	return j, nil
}

func (uc *GenerateUseCase) execute(ctx context.Context, id string, req job.Request) {
	defer func() {
		if r := recover(); r != nil {
			uc.log.Errorf("job %s panicked: %v", id, r)
			_ = uc.tracker.SetFailed(ctx, id, fmt.Errorf("job panic: %v", r))
		}
		if uc.done != nil {
			uc.done <- id
		}
	}()

	if err := uc.tracker.SetRunning(ctx, id); err != nil {
		uc.log.Errorf("set job %s running failed: %v", id, err)
		return
	}
	uc.log.Infof("job %s started: %s in %s %s", id, req.Industry, req.City, req.State)

	sites, err := uc.runner.Run(ctx, engine.RunOptions{
		Industry: req.Industry,
		City:     req.City,
		State:    req.State,
		Limit:    req.Limit,
		Progress: func(step string, progress float64, details map[string]any) {
			if err := uc.tracker.UpdateProgress(ctx, id, step, progress, details); err != nil {
				uc.log.Warnf("update job %s progress failed: %v", id, err)
			}
		},
		Cancelled: func() bool {
			return uc.tracker.IsCancelled(ctx, id)
		},
	})

	for _, s := range sites {
		w := job.WebsiteInfo{
			ID:           s.Slug,
			BusinessName: s.BusinessName,
			Slug:         s.Slug,
			Path:         s.Dir,
			ThemeID:      s.ThemeID,
			CreatedAt:    timeNow(),
		}
		if err := uc.tracker.AddWebsite(ctx, id, w); err != nil {
			uc.log.Warnf("record website %s for job %s failed: %v", s.Slug, id, err)
		}
	}

	switch {
	case errors.Is(err, engine.ErrCancelled):
		uc.log.Infof("job %s cancelled after %d websites", id, len(sites))
	case err != nil:
		uc.log.Errorf("job %s failed: %v", id, err)
		if err := uc.tracker.SetFailed(ctx, id, err); err != nil {
			uc.log.Errorf("set job %s failed failed: %v", id, err)
		}
	default:
		uc.log.Infof("job %s completed with %d websites", id, len(sites))
		if err := uc.tracker.SetCompleted(ctx, id); err != nil {
			uc.log.Errorf("set job %s completed failed: %v", id, err)
		}
	}
}

// Get 获取任务
func (uc *GenerateUseCase) Get(ctx context.Context, id string) (*job.Job, error) {
	return uc.tracker.Get(ctx, id)
}

// List 列出任务，status 为空时返回全部
func (uc *GenerateUseCase) List(ctx context.Context, status job.Status) ([]*job.Job, error) {
	return uc.tracker.List(ctx, status)
}

// Cancel 取消任务
func (uc *GenerateUseCase) Cancel(ctx context.Context, id string) (*job.Job, error) {
	return uc.tracker.Cancel(ctx, id)
}

// Subscribe 订阅任务进度
func (uc *GenerateUseCase) Subscribe(id string) (<-chan job.Progress, func()) {
	return uc.tracker.Subscribe(id)
}
