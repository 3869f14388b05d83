package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/content"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/model"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/site"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/theme"
)

type fakeFinder struct {
	businesses []model.Business
	err        error
}

func (f *fakeFinder) Find(ctx context.Context, industry, city, state string) ([]model.Business, error) {
	return f.businesses, f.err
}

// fakeDetector 以 WebsiteURL 是否为空判断
type fakeDetector struct{}

func (fakeDetector) DetectAll(ctx context.Context, businesses []model.Business) []model.Business {
	out := make([]model.Business, len(businesses))
	for i, b := range businesses {
		b.HasWebsite = b.WebsiteURL != ""
		out[i] = b
	}
	return out
}

type fakeAnalyzer struct {
	calls int
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, competitors []model.Business, industry, city, state string) *model.CompetitorAnalysis {
	f.calls++
	a := model.EmptyAnalysis(competitors)
	a.KeyServices = model.StringList{"Roof Repair"}
	return a
}

type fakeSynthesizer struct {
	panicOn string
	seen    []model.WebsiteRequirements
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, req model.WebsiteRequirements) model.GeneratedContent {
	if req.Business.Name == f.panicOn {
		panic("llm exploded")
	}
	f.seen = append(f.seen, req)
	return content.DefaultContent(req, time.Now())
}

type event struct {
	step     string
	progress float64
	details  map[string]any
}

func recorder(events *[]event) ProgressFunc {
	return func(step string, progress float64, details map[string]any) {
		*events = append(*events, event{step, progress, details})
	}
}

func newBusiness(name, website string) model.Business {
	return model.Business{
		Name:       name,
		Address:    "1 Main St",
		Industry:   "roofing",
		City:       "Austin",
		State:      "TX",
		PlaceID:    "id-" + name,
		WebsiteURL: website,
	}
}

func newTestEngine(t *testing.T, businesses []model.Business, synth *fakeSynthesizer) (*Engine, string) {
	t.Helper()
	out := t.TempDir()
	m, err := site.NewMaterializer(out)
	require.NoError(t, err)
	return New(Deps{
		Finder:       &fakeFinder{businesses: businesses},
		Detector:     fakeDetector{},
		Analyzer:     &fakeAnalyzer{},
		Synthesizer:  synth,
		Images:       theme.NewImageResolver(nil),
		Materializer: m,
		EnsureBuild:  site.EnsureBuildFiles,
	}), out
}

func assertMonotonic(t *testing.T, events []event) {
	t.Helper()
	last := 0.0
	for _, e := range events {
		assert.GreaterOrEqual(t, e.progress, last, e.step)
		assert.LessOrEqual(t, e.progress, 100.0, e.step)
		last = e.progress
	}
}

func TestRun_PerBusinessIsolation(t *testing.T) {
	businesses := []model.Business{
		newBusiness("Alpha Roofing", ""),
		newBusiness("Beta Roofing", ""),
		newBusiness("Gamma Roofing", ""),
		newBusiness("Delta Roofing", "https://delta.example"),
	}
	synth := &fakeSynthesizer{panicOn: "Beta Roofing"}
	e, out := newTestEngine(t, businesses, synth)

	var events []event
	sites, err := e.Run(context.Background(), RunOptions{Industry: "roofing", City: "Austin", State: "TX", Progress: recorder(&events)})
	require.NoError(t, err)

	require.Len(t, sites, 2)
	assert.Equal(t, []string{filepath.Join(out, "alpha-roofing"), filepath.Join(out, "gamma-roofing")}, Dirs(sites))
	for _, s := range sites {
		assert.FileExists(t, filepath.Join(s.Dir, "src", "app", "page.tsx"))
		assert.Contains(t, theme.IDs, s.ThemeID)
	}

	// 竞品分析结果进入需求
	require.Len(t, synth.seen, 2)
	assert.Equal(t, []string{"Roof Repair"}, synth.seen[0].PrimaryServices)

	assertMonotonic(t, events)
	last := events[len(events)-1]
	assert.Equal(t, StepCompleted, last.step)
	assert.Equal(t, 100.0, last.progress)
	assert.Equal(t, 2, last.details["websites_generated"])
	assert.Equal(t, []string{"Beta Roofing"}, last.details["skipped"])

	var skippedEvents []event
	for _, ev := range events {
		if ev.step == StepBusinessSkipped {
			skippedEvents = append(skippedEvents, ev)
		}
	}
	require.Len(t, skippedEvents, 1)
	assert.Equal(t, "Beta Roofing", skippedEvents[0].details["business_name"])
	assert.Contains(t, skippedEvents[0].details["error"], "llm exploded")

	var completed []string
	for _, ev := range events {
		if ev.step == StepBusinessComplete {
			completed = append(completed, ev.details["business_name"].(string))
		}
	}
	assert.Equal(t, []string{"Alpha Roofing", "Gamma Roofing"}, completed)
}

func TestRun_DuplicateSlugsGetDistinctDirs(t *testing.T) {
	businesses := []model.Business{
		newBusiness("Alpha Roofing", ""),
		newBusiness("Alpha Roofing!", ""),
	}
	e, out := newTestEngine(t, businesses, &fakeSynthesizer{})

	sites, err := e.Run(context.Background(), RunOptions{Industry: "roofing", City: "Austin", State: "TX"})
	require.NoError(t, err)
	require.Len(t, sites, 2)
	assert.Equal(t, []string{
		filepath.Join(out, "alpha-roofing"),
		filepath.Join(out, "alpha-roofing-id-alpha-roofing"),
	}, Dirs(sites))
}

func TestUniqueSlug(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "abc", uniqueSlug(used, model.Business{Name: "ABC", PlaceID: "p1"}, 0))
	assert.Equal(t, "abc-p2", uniqueSlug(used, model.Business{Name: "abc", PlaceID: "p2"}, 1))
	assert.Equal(t, "abc-3", uniqueSlug(used, model.Business{Name: "A.B.C"}, 2))
}

func TestRun_ProgressCheckpoints(t *testing.T) {
	e, _ := newTestEngine(t, []model.Business{newBusiness("Solo Roofing", "")}, &fakeSynthesizer{})

	var events []event
	_, err := e.Run(context.Background(), RunOptions{Industry: "roofing", City: "Austin", Progress: recorder(&events)})
	require.NoError(t, err)

	var got []float64
	for _, ev := range events {
		got = append(got, ev.progress)
	}
	// 没有竞品时跳过分析节点
	assert.Equal(t, []float64{5, 20, 25, 35, 40, 45, 45, 50, 70, 85, 95, 100}, got)
}

func TestRun_NoBusinessesExitsEarly(t *testing.T) {
	e, _ := newTestEngine(t, nil, &fakeSynthesizer{})

	var events []event
	sites, err := e.Run(context.Background(), RunOptions{Industry: "roofing", City: "Nowhere", Progress: recorder(&events)})
	require.NoError(t, err)
	assert.Empty(t, sites)

	require.Len(t, events, 2)
	assert.Equal(t, StepCompleted, events[1].step)
	assert.Equal(t, 100.0, events[1].progress)
	assert.Equal(t, "No businesses found", events[1].details["message"])
}

func TestRun_AllHaveWebsites(t *testing.T) {
	e, _ := newTestEngine(t, []model.Business{newBusiness("A", "https://a.example")}, &fakeSynthesizer{})

	var events []event
	sites, err := e.Run(context.Background(), RunOptions{Industry: "roofing", City: "Austin", Progress: recorder(&events)})
	require.NoError(t, err)
	assert.Empty(t, sites)

	last := events[len(events)-1]
	assert.Equal(t, StepCompleted, last.step)
	assert.Equal(t, "All businesses have websites", last.details["message"])
	for _, ev := range events {
		assert.NotEqual(t, StepProcessing, ev.step)
	}
}

func TestRun_Limit(t *testing.T) {
	synth := &fakeSynthesizer{}
	e, _ := newTestEngine(t, []model.Business{newBusiness("One", ""), newBusiness("Two", ""), newBusiness("Three", "")}, synth)

	sites, err := e.Run(context.Background(), RunOptions{Industry: "roofing", City: "Austin", Limit: 2})
	require.NoError(t, err)
	require.Len(t, sites, 2)
	assert.Equal(t, "One", sites[0].BusinessName)
	assert.Equal(t, "Two", sites[1].BusinessName)
}

func TestRun_Cancelled(t *testing.T) {
	e, _ := newTestEngine(t, []model.Business{newBusiness("One", ""), newBusiness("Two", "")}, &fakeSynthesizer{})

	checks := 0
	sites, err := e.Run(context.Background(), RunOptions{
		Industry: "roofing",
		City:     "Austin",
		Cancelled: func() bool {
			checks++
			return checks > 1
		},
	})
	assert.ErrorIs(t, err, ErrCancelled)
	require.Len(t, sites, 1)
	assert.Equal(t, "One", sites[0].BusinessName)
}

func TestRun_DiscoveryError(t *testing.T) {
	e, _ := newTestEngine(t, nil, &fakeSynthesizer{})
	e.Finder = &fakeFinder{err: context.Canceled}

	_, err := e.Run(context.Background(), RunOptions{Industry: "roofing", City: "Austin"})
	assert.True(t, errors.Is(err, context.Canceled))
}
