package job

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/logger"
)

const subscriberBuffer = 32

// Tracker 任务登记与进度分发，可并发使用
type Tracker struct {
	store Store
	now   func() time.Time

	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan Progress
}

// NewTracker 创建任务登记器，store 为空时使用内存存储
func NewTracker(store Store) *Tracker {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Tracker{store: store, now: time.Now, subs: make(map[string]map[int]chan Progress)}
}

// NewID 生成任务 ID：job- 加 8 位十六进制
func NewID() string {
	return "job-" + uuid.NewString()[:8]
}

// Create 登记新任务
func (t *Tracker) Create(ctx context.Context, req Request) (*Job, error) {
	now := t.now()
	j := &Job{
		ID:        NewID(),
		Status:    StatusPending,
		Request:   req,
		Websites:  []WebsiteInfo{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.store.Create(ctx, j); err != nil {
		return nil, err
	}
	logger.Log.Infof("任务已创建 [%s]: %s in %s, %s", j.ID, req.Industry, req.City, req.State)
	return j, nil
}

func (t *Tracker) Get(ctx context.Context, id string) (*Job, error) {
	return t.store.Get(ctx, id)
}

func (t *Tracker) List(ctx context.Context, status Status) ([]*Job, error) {
	return t.store.List(ctx, status)
}

// SetRunning 标记任务开始执行
func (t *Tracker) SetRunning(ctx context.Context, id string) error {
	_, err := t.store.Update(ctx, id, func(j *Job) error {
		if j.Status == StatusCancelled {
			return nil
		}
		now := t.now()
		j.Status = StatusRunning
		j.StartedAt = &now
		j.UpdatedAt = now
		return nil
	})
	return err
}

// SetCompleted 标记任务完成，已取消的任务保持取消状态
func (t *Tracker) SetCompleted(ctx context.Context, id string) error {
	return t.finish(ctx, id, StatusCompleted, "")
}

// SetFailed 标记任务失败，已取消的任务保持取消状态
func (t *Tracker) SetFailed(ctx context.Context, id string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return t.finish(ctx, id, StatusFailed, msg)
}

func (t *Tracker) finish(ctx context.Context, id string, status Status, msg string) error {
	j, err := t.store.Update(ctx, id, func(j *Job) error {
		if j.Status == StatusCancelled {
			return nil
		}
		now := t.now()
		j.Status = status
		j.Error = msg
		j.CompletedAt = &now
		j.UpdatedAt = now
		return nil
	})
	if err != nil {
		return err
	}
	t.closeSubscribers(j)
	return nil
}

// Cancel 取消任务；已取消的任务原样返回，已完成或失败的任务返回 ErrNotCancellable
func (t *Tracker) Cancel(ctx context.Context, id string) (*Job, error) {
	j, err := t.store.Update(ctx, id, func(j *Job) error {
		switch j.Status {
		case StatusCompleted, StatusFailed:
			return ErrNotCancellable
		case StatusCancelled:
			return nil
		}
		now := t.now()
		j.Status = StatusCancelled
		j.CompletedAt = &now
		j.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Log.Infof("任务已取消 [%s]", id)
	t.closeSubscribers(j)
	return j, nil
}

// IsCancelled 任务是否已被取消，查询失败视为未取消
func (t *Tracker) IsCancelled(ctx context.Context, id string) bool {
	j, err := t.store.Get(ctx, id)
	return err == nil && j.Status == StatusCancelled
}

// UpdateProgress 记录进度并分发给订阅者
func (t *Tracker) UpdateProgress(ctx context.Context, id, step string, progress float64, details map[string]any) error {
	p := Progress{JobID: id, Step: step, Progress: progress, Details: details, Timestamp: t.now()}
	_, err := t.store.Update(ctx, id, func(j *Job) error {
		cp := p
		j.Progress = &cp
		j.UpdatedAt = p.Timestamp
		return nil
	})
	if err != nil {
		return err
	}
	t.publish(p)
	return nil
}

// AddWebsite 记录任务生成的站点
func (t *Tracker) AddWebsite(ctx context.Context, id string, w WebsiteInfo) error {
	_, err := t.store.Update(ctx, id, func(j *Job) error {
		w.JobID = id
		j.Websites = append(j.Websites, w)
		j.UpdatedAt = t.now()
		return nil
	})
	return err
}

// Subscribe 订阅任务进度，任务结束时通道关闭；调用返回的函数取消订阅
func (t *Tracker) Subscribe(id string) (<-chan Progress, func()) {
	ch := make(chan Progress, subscriberBuffer)

	t.mu.Lock()
	t.nextID++
	key := t.nextID
	if t.subs[id] == nil {
		t.subs[id] = make(map[int]chan Progress)
	}
	t.subs[id][key] = ch
	t.mu.Unlock()

	return ch, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if c, ok := t.subs[id][key]; ok {
			delete(t.subs[id], key)
			close(c)
		}
	}
}

// publish 非阻塞发送，订阅者处理不过来时丢弃
func (t *Tracker) publish(p Progress) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, ch := range t.subs[p.JobID] {
		select {
		case ch <- p:
		default:
			logger.Log.Debugf("进度订阅者繁忙，丢弃事件 [%s] %s", p.JobID, p.Step)
		}
	}
}

// closeSubscribers 推送终态后关闭全部订阅
func (t *Tracker) closeSubscribers(j *Job) {
	final := Progress{JobID: j.ID, Step: string(j.Status), Timestamp: t.now()}
	if j.Progress != nil {
		final.Progress = j.Progress.Progress
	}
	if j.Status == StatusCompleted {
		final.Progress = 100
	}
	if j.Error != "" {
		final.Details = map[string]any{"error": j.Error}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, ch := range t.subs[j.ID] {
		select {
		case ch <- final:
		default:
		}
		close(ch)
	}
	delete(t.subs, j.ID)
}
