package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/site_forge/app/site_forge/internal/service"
	"github.com/iWorld-y/site_forge/app/site_forge/internal/usecase"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/engine"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/job"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/model"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/website"
)

// gateRunner 阻塞到 release 关闭后返回
type gateRunner struct {
	release chan struct{}
}

func (r *gateRunner) Run(ctx context.Context, opts engine.RunOptions) ([]*model.SiteArtifact, error) {
	opts.Progress(engine.StepDiscovering, 5, nil)
	<-r.release
	if opts.Cancelled() {
		return nil, engine.ErrCancelled
	}
	return []*model.SiteArtifact{{BusinessName: "Alpha Roofing", Slug: "alpha-roofing", Dir: "out/alpha-roofing"}}, nil
}

type stubFinder struct{}

func (stubFinder) Find(ctx context.Context, industry, city, state string) ([]model.Business, error) {
	return []model.Business{
		{Name: "Alpha Roofing", PlaceID: "p1", WebsiteURL: "https://alpha.example"},
		{Name: "Beta Roofing", PlaceID: "p2"},
	}, nil
}

type stubValidator struct{}

func (stubValidator) Validate(ctx context.Context, rawURL string) (bool, website.Status) {
	if rawURL == "" {
		return false, website.StatusNone
	}
	return true, website.StatusValid
}

type testServer struct {
	handler http.Handler
	runner  *gateRunner
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := log.DefaultLogger
	tr := job.NewTracker(nil)
	runner := &gateRunner{release: make(chan struct{})}
	svc := service.NewForgeService(
		usecase.NewGenerateUseCase(tr, runner, logger),
		usecase.NewWebsiteUseCase(tr, t.TempDir(), logger),
		usecase.NewDiscoverUseCase(stubFinder{}, stubValidator{}, logger),
		logger,
	)
	return &testServer{handler: NewHTTPServer(nil, svc, logger), runner: runner}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestIndexPage(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Site Forge")
}

func TestDiscover(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/discover", `{"industry":"roofing","city":"Austin","limit":5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var reply service.DiscoverReply
	decodeBody(t, rec, &reply)
	require.Equal(t, 2, reply.Total)
	assert.Equal(t, website.StatusValid, reply.Businesses[0].WebsiteStatus)
	assert.True(t, reply.Businesses[0].HasWebsite)
	assert.Equal(t, website.StatusNone, reply.Businesses[1].WebsiteStatus)

	rec = s.do(t, http.MethodPost, "/api/discover", `{"city":"Austin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), service.ReasonInvalidRequest)
}

func TestJobLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/jobs", `{"industry":"roofing","city":"Austin","state":"TX"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created job.Job
	decodeBody(t, rec, &created)
	assert.Regexp(t, `^job-[0-9a-f]{8}$`, created.ID)

	rec = s.do(t, http.MethodGet, "/api/jobs/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	close(s.runner.release)
	assert.Eventually(t, func() bool {
		rec := s.do(t, http.MethodGet, "/api/jobs/"+created.ID, "")
		var got job.Job
		_ = json.Unmarshal(rec.Body.Bytes(), &got)
		return got.Status == job.StatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	rec = s.do(t, http.MethodDelete, "/api/jobs/"+created.ID, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), service.ReasonJobNotCancellable)

	rec = s.do(t, http.MethodGet, "/api/jobs?status=completed", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list service.ListJobsReply
	decodeBody(t, rec, &list)
	assert.Equal(t, 1, list.Total)

	rec = s.do(t, http.MethodGet, "/api/websites/alpha-roofing", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var w job.WebsiteInfo
	decodeBody(t, rec, &w)
	assert.Equal(t, "Alpha Roofing", w.BusinessName)
	assert.Equal(t, created.ID, w.JobID)
}

func TestCancelJob(t *testing.T) {
	s := newTestServer(t)
	defer close(s.runner.release)

	rec := s.do(t, http.MethodPost, "/api/jobs", `{"industry":"roofing","city":"Austin"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created job.Job
	decodeBody(t, rec, &created)

	rec = s.do(t, http.MethodDelete, "/api/jobs/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/jobs/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/jobs/"+created.ID, "")
	var got job.Job
	decodeBody(t, rec, &got)
	assert.Equal(t, job.StatusCancelled, got.Status)
}

func TestErrors(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/jobs/job-missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), service.ReasonJobNotFound)

	rec = s.do(t, http.MethodDelete, "/api/jobs/job-missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/jobs", `{"industry":"roofing"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), service.ReasonInvalidRequest)

	rec = s.do(t, http.MethodGet, "/api/jobs?status=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/websites/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), service.ReasonWebsiteNotFound)
}

func TestStreamEvents(t *testing.T) {
	ch := make(chan job.Progress, 2)
	ch <- job.Progress{JobID: "job-1", Step: engine.StepDetecting, Progress: 25}
	ch <- job.Progress{JobID: "job-1", Step: "completed", Progress: 100}
	close(ch)

	rec := httptest.NewRecorder()
	err := streamEvents(rec, &job.Job{ID: "job-1", Status: job.StatusRunning}, ch, time.Hour)
	require.NoError(t, err)

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "event: job\ndata: "))
	assert.Contains(t, body, `"step":"detecting_websites"`)
	assert.Equal(t, 2, strings.Count(body, "event: progress\n"))
	assert.Contains(t, body, "event: end\n")
}

func TestStreamEvents_FinishedJob(t *testing.T) {
	rec := httptest.NewRecorder()
	err := streamEvents(rec, &job.Job{ID: "job-1", Status: job.StatusCompleted}, nil, time.Hour)
	require.NoError(t, err)
	assert.Contains(t, rec.Body.String(), `event: end`+"\n"+`data: {"status":"completed"}`)
}
