package service

import (
	"context"
	"errors"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/site_forge/app/site_forge/internal/usecase"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/job"
)

// 错误原因，前端按此区分
const (
	ReasonJobNotFound       = "JOB_NOT_FOUND"
	ReasonJobNotCancellable = "JOB_NOT_CANCELLABLE"
	ReasonInvalidRequest    = "INVALID_REQUEST"
	ReasonWebsiteNotFound   = "WEBSITE_NOT_FOUND"
)

// CreateJobRequest 创建任务请求
type CreateJobRequest struct {
	Industry string `json:"industry"`
	City     string `json:"city"`
	State    string `json:"state"`
	Limit    int    `json:"limit,omitempty"`
}

// DiscoverRequest 商户发现请求
type DiscoverRequest struct {
	Industry string `json:"industry"`
	City     string `json:"city"`
	State    string `json:"state"`
	Limit    int    `json:"limit,omitempty"`
}

// DiscoverReply 商户发现结果
type DiscoverReply struct {
	Businesses []usecase.DiscoveredBusiness `json:"businesses"`
	Total      int                          `json:"total"`
}

// ListJobsReply 任务列表
type ListJobsReply struct {
	Jobs  []*job.Job `json:"jobs"`
	Total int        `json:"total"`
}

// ListWebsitesReply 站点列表
type ListWebsitesReply struct {
	Websites []job.WebsiteInfo `json:"websites"`
	Total    int               `json:"total"`
}

// HealthReply 健康检查
type HealthReply struct {
	Status string `json:"status"`
}

type ForgeService struct {
	ucGenerate *usecase.GenerateUseCase
	ucWebsite  *usecase.WebsiteUseCase
	ucDiscover *usecase.DiscoverUseCase
	log        *log.Helper
}

func NewForgeService(ucGenerate *usecase.GenerateUseCase, ucWebsite *usecase.WebsiteUseCase, ucDiscover *usecase.DiscoverUseCase, logger log.Logger) *ForgeService {
	return &ForgeService{
		ucGenerate: ucGenerate,
		ucWebsite:  ucWebsite,
		ucDiscover: ucDiscover,
		log:        log.NewHelper(logger),
	}
}

func (s *ForgeService) CreateJob(ctx context.Context, req *CreateJobRequest) (*job.Job, error) {
	j, err := s.ucGenerate.Start(ctx, job.Request{
		Industry: req.Industry,
		City:     req.City,
		State:    req.State,
		Limit:    req.Limit,
	})
	if err != nil {
		return nil, s.mapError(err)
	}
	return j, nil
}

// Discover 同步查找商户并校验官网
func (s *ForgeService) Discover(ctx context.Context, req *DiscoverRequest) (*DiscoverReply, error) {
	list, err := s.ucDiscover.Discover(ctx, req.Industry, req.City, req.State, req.Limit)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &DiscoverReply{Businesses: list, Total: len(list)}, nil
}

func (s *ForgeService) ListJobs(ctx context.Context, status string) (*ListJobsReply, error) {
	switch job.Status(status) {
	case "", job.StatusPending, job.StatusRunning, job.StatusCompleted, job.StatusFailed, job.StatusCancelled:
	default:
		return nil, kerrors.BadRequest(ReasonInvalidRequest, "unknown status: "+status)
	}

	jobs, err := s.ucGenerate.List(ctx, job.Status(status))
	if err != nil {
		return nil, s.mapError(err)
	}
	if jobs == nil {
		jobs = []*job.Job{}
	}
	return &ListJobsReply{Jobs: jobs, Total: len(jobs)}, nil
}

func (s *ForgeService) GetJob(ctx context.Context, id string) (*job.Job, error) {
	j, err := s.ucGenerate.Get(ctx, id)
	if err != nil {
		return nil, s.mapError(err)
	}
	return j, nil
}

func (s *ForgeService) CancelJob(ctx context.Context, id string) (*job.Job, error) {
	j, err := s.ucGenerate.Cancel(ctx, id)
	if err != nil {
		return nil, s.mapError(err)
	}
	return j, nil
}

// WatchJob 订阅任务进度；任务已结束时返回的通道为空
func (s *ForgeService) WatchJob(ctx context.Context, id string) (*job.Job, <-chan job.Progress, func(), error) {
	// 先订阅再查询，避免错过两者之间的终态事件
	ch, cancel := s.ucGenerate.Subscribe(id)
	j, err := s.ucGenerate.Get(ctx, id)
	if err != nil {
		cancel()
		return nil, nil, nil, s.mapError(err)
	}
	if j.Status.Finished() {
		cancel()
		return j, nil, func() {}, nil
	}
	return j, ch, cancel, nil
}

func (s *ForgeService) ListWebsites(ctx context.Context) (*ListWebsitesReply, error) {
	list, err := s.ucWebsite.List(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &ListWebsitesReply{Websites: list, Total: len(list)}, nil
}

func (s *ForgeService) GetWebsite(ctx context.Context, id string) (*job.WebsiteInfo, error) {
	w, err := s.ucWebsite.Get(ctx, id)
	if err != nil {
		return nil, s.mapError(err)
	}
	return w, nil
}

func (s *ForgeService) Health(ctx context.Context) (*HealthReply, error) {
	return &HealthReply{Status: "ok"}, nil
}

func (s *ForgeService) mapError(err error) error {
	switch {
	case errors.Is(err, job.ErrNotFound):
		return kerrors.NotFound(ReasonJobNotFound, err.Error())
	case errors.Is(err, job.ErrNotCancellable):
		return kerrors.BadRequest(ReasonJobNotCancellable, err.Error())
	case errors.Is(err, usecase.ErrInvalidRequest):
		return kerrors.BadRequest(ReasonInvalidRequest, err.Error())
	case errors.Is(err, usecase.ErrWebsiteNotFound):
		return kerrors.NotFound(ReasonWebsiteNotFound, err.Error())
	}
	s.log.Errorf("request failed: %v", err)
	return kerrors.InternalServer("INTERNAL", err.Error())
}
