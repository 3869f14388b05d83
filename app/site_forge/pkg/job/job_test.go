package job

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func newTracker() *Tracker {
	tr := NewTracker(nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	tick := 0
	tr.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return tr
}

func TestNewID(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^job-[0-9a-f]{8}$`), NewID())
	assert.NotEqual(t, NewID(), NewID())
}

func TestTracker_Lifecycle(t *testing.T) {
	tr := newTracker()
	j, err := tr.Create(ctx, Request{Industry: "roofing", City: "Austin", State: "TX"})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, j.Status)

	require.NoError(t, tr.SetRunning(ctx, j.ID))
	require.NoError(t, tr.UpdateProgress(ctx, j.ID, "discovering_businesses", 5, map[string]any{"message": "x"}))
	require.NoError(t, tr.AddWebsite(ctx, j.ID, WebsiteInfo{ID: "abc", BusinessName: "ABC", Slug: "abc"}))
	require.NoError(t, tr.SetCompleted(ctx, j.ID))

	got, err := tr.Get(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.NotNil(t, got.StartedAt)
	assert.NotNil(t, got.CompletedAt)
	require.NotNil(t, got.Progress)
	assert.Equal(t, "discovering_businesses", got.Progress.Step)
	require.Len(t, got.Websites, 1)
	assert.Equal(t, j.ID, got.Websites[0].JobID)

	_, err = tr.Cancel(ctx, j.ID)
	assert.ErrorIs(t, err, ErrNotCancellable)

	_, err = tr.Get(ctx, "job-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTracker_CancelKeepsStatus(t *testing.T) {
	tr := newTracker()
	j, err := tr.Create(ctx, Request{Industry: "roofing", City: "Austin"})
	require.NoError(t, err)
	require.NoError(t, tr.SetRunning(ctx, j.ID))

	cancelled, err := tr.Cancel(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.True(t, tr.IsCancelled(ctx, j.ID))

	// 取消后的完成和失败都不改变状态
	require.NoError(t, tr.SetCompleted(ctx, j.ID))
	require.NoError(t, tr.SetFailed(ctx, j.ID, errors.New("boom")))
	got, err := tr.Get(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.Empty(t, got.Error)

	again, err := tr.Cancel(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, again.Status)

	_, err = tr.Cancel(ctx, "job-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTracker_SetFailed(t *testing.T) {
	tr := newTracker()
	j, err := tr.Create(ctx, Request{Industry: "roofing", City: "Austin"})
	require.NoError(t, err)
	require.NoError(t, tr.SetFailed(ctx, j.ID, errors.New("llm unavailable")))

	got, err := tr.Get(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "llm unavailable", got.Error)

	_, err = tr.Cancel(ctx, j.ID)
	assert.ErrorIs(t, err, ErrNotCancellable)
}

func TestTracker_ListNewestFirst(t *testing.T) {
	tr := newTracker()
	a, _ := tr.Create(ctx, Request{City: "A"})
	b, _ := tr.Create(ctx, Request{City: "B"})
	c, _ := tr.Create(ctx, Request{City: "C"})
	require.NoError(t, tr.SetCompleted(ctx, b.ID))

	all, err := tr.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{c.ID, b.ID, a.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	done, err := tr.List(ctx, StatusCompleted)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, b.ID, done[0].ID)
}

func TestTracker_SubscribeFanOut(t *testing.T) {
	tr := newTracker()
	j, _ := tr.Create(ctx, Request{City: "Austin"})

	first, cancelFirst := tr.Subscribe(j.ID)
	second, _ := tr.Subscribe(j.ID)
	defer cancelFirst()

	require.NoError(t, tr.UpdateProgress(ctx, j.ID, "detecting_websites", 25, nil))
	for _, ch := range []<-chan Progress{first, second} {
		p := <-ch
		assert.Equal(t, "detecting_websites", p.Step)
		assert.Equal(t, 25.0, p.Progress)
	}

	require.NoError(t, tr.SetCompleted(ctx, j.ID))
	final, ok := <-second
	require.True(t, ok)
	assert.Equal(t, string(StatusCompleted), final.Step)
	assert.Equal(t, 100.0, final.Progress)
	_, ok = <-second
	assert.False(t, ok)
}

func TestTracker_SlowSubscriberNeverBlocks(t *testing.T) {
	tr := newTracker()
	j, _ := tr.Create(ctx, Request{City: "Austin"})
	ch, cancel := tr.Subscribe(j.ID)

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			_ = tr.UpdateProgress(ctx, j.ID, "processing_business", float64(i), nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
	assert.Len(t, ch, subscriberBuffer)

	cancel()
	cancel()
}

func TestMemoryStore_UpdateErrorDoesNotWrite(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Create(ctx, &Job{ID: "job-1", Status: StatusPending}))

	_, err := s.Update(ctx, "job-1", func(j *Job) error {
		j.Status = StatusRunning
		return errors.New("nope")
	})
	assert.Error(t, err)

	got, err := s.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)

	// 返回值是副本
	got.Status = StatusFailed
	again, _ := s.Get(ctx, "job-1")
	assert.Equal(t, StatusPending, again.Status)
}

func TestMemoryStore_ConcurrentUpdates(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Create(ctx, &Job{ID: "job-1"}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Update(ctx, "job-1", func(j *Job) error {
				j.Websites = append(j.Websites, WebsiteInfo{})
				return nil
			})
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Len(t, got.Websites, 50)
}
