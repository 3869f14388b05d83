package job

import (
	"context"
	"sort"
	"sync"
)

// Store 任务持久化，单个任务的 Update 必须是原子的
type Store interface {
	Create(ctx context.Context, j *Job) error
	// Get 不存在时返回 ErrNotFound
	Get(ctx context.Context, id string) (*Job, error)
	// List 按创建时间倒序，status 为空时返回全部
	List(ctx context.Context, status Status) ([]*Job, error)
	// Update 读取任务并交给 fn 修改，fn 返回错误时不写回
	Update(ctx context.Context, id string, fn func(j *Job) error) (*Job, error)
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)

// MemoryStore 进程内任务存储
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*Job)}
}

func (s *MemoryStore) Create(ctx context.Context, j *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[j.ID] = j.Clone()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return j.Clone(), nil
}

func (s *MemoryStore) List(ctx context.Context, status Status) ([]*Job, error) {
	s.mu.RLock()
	out := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if status == "" || j.Status == status {
			out = append(out, j.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, k int) bool {
		return out[i].CreatedAt.After(out[k].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, fn func(j *Job) error) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	next := cur.Clone()
	if err := fn(next); err != nil {
		return cur.Clone(), err
	}
	s.jobs[id] = next
	return next.Clone(), nil
}
