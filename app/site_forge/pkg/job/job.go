package job

import (
	"errors"
	"time"
)

var (
	// ErrNotFound 任务不存在
	ErrNotFound = errors.New("job not found")
	// ErrNotCancellable 已完成或失败的任务不能取消
	ErrNotCancellable = errors.New("job cannot be cancelled")
)

// Status 任务状态
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Finished 任务是否已经结束
func (s Status) Finished() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Request 生成请求
type Request struct {
	Industry string `json:"industry"`
	City     string `json:"city"`
	State    string `json:"state"`
	Limit    int    `json:"limit,omitempty"`
}

// Progress 进度事件
type Progress struct {
	JobID     string         `json:"job_id"`
	Step      string         `json:"step"`
	Progress  float64        `json:"progress"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// WebsiteInfo 已生成的站点
type WebsiteInfo struct {
	ID           string    `json:"id"`
	JobID        string    `json:"job_id,omitempty"`
	BusinessName string    `json:"business_name"`
	Slug         string    `json:"slug"`
	Path         string    `json:"path"`
	ThemeID      string    `json:"theme_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Job 生成任务
type Job struct {
	ID          string        `json:"id"`
	Status      Status        `json:"status"`
	Request     Request       `json:"request"`
	Progress    *Progress     `json:"progress,omitempty"`
	Websites    []WebsiteInfo `json:"websites"`
	Error       string        `json:"error,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	StartedAt   *time.Time    `json:"started_at,omitempty"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// Clone 深拷贝，Store 返回的任务与内部状态互不影响
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	c := *j
	c.Websites = append([]WebsiteInfo{}, j.Websites...)
	if j.Progress != nil {
		p := *j.Progress
		if j.Progress.Details != nil {
			p.Details = make(map[string]any, len(j.Progress.Details))
			for k, v := range j.Progress.Details {
				p.Details[k] = v
			}
		}
		c.Progress = &p
	}
	if j.StartedAt != nil {
		t := *j.StartedAt
		c.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
