package competitor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/model"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/scraper"
)

func ptr[T any](v T) *T { return &v }

func biz(id string, rating *float64, reviews int) model.Business {
	b := model.Business{
		Name:       id,
		PlaceID:    id,
		Industry:   "roofing",
		City:       "Austin",
		State:      "TX",
		WebsiteURL: "https://" + id + ".example",
		HasWebsite: true,
		Rating:     rating,
	}
	for i := 0; i < reviews; i++ {
		b.Reviews = append(b.Reviews, model.Review{Author: "r"})
	}
	return b
}

func names(list []model.Business) []string {
	var out []string
	for _, b := range list {
		out = append(out, b.Name)
	}
	return out
}

func TestSelect_Ordering(t *testing.T) {
	a := biz("A", ptr(4.8), 1)
	b := biz("B", ptr(4.8), 5)
	c := biz("C", ptr(4.9), 0)
	target := model.Business{Name: "T", PlaceID: "T", Industry: "roofing", City: "Austin", State: "TX"}

	got := Select([]model.Business{a, b, c}, target, "roofing", "Austin", "TX", 5)
	assert.Equal(t, []string{"C", "B", "A"}, names(got))
}

func TestSelect_Filters(t *testing.T) {
	target := biz("T", ptr(5.0), 0)

	noSite := biz("NoSite", ptr(4.0), 0)
	noSite.HasWebsite = false
	otherIndustry := biz("Plumber", ptr(4.0), 0)
	otherIndustry.Industry = "plumbing"
	otherCity := biz("Dallas", ptr(4.0), 0)
	otherCity.City = "Dallas"
	otherState := biz("OtherState", ptr(4.0), 0)
	otherState.State = "CA"
	noState := biz("NoState", ptr(3.0), 0)
	noState.State = ""
	caseMix := biz("CaseMix", nil, 0)
	caseMix.Industry = "ROOFING"
	caseMix.City = "austin"

	all := []model.Business{target, noSite, otherIndustry, otherCity, otherState, noState, caseMix}
	got := Select(all, target, "Roofing", "AUSTIN", "tx", 10)
	assert.Equal(t, []string{"NoState", "CaseMix"}, names(got))
}

func TestSelect_Truncates(t *testing.T) {
	all := []model.Business{biz("A", ptr(1.0), 0), biz("B", ptr(2.0), 0), biz("C", ptr(3.0), 0)}
	target := model.Business{PlaceID: "T"}

	assert.Equal(t, []string{"C", "B"}, names(Select(all, target, "roofing", "Austin", "TX", 2)))
	assert.Empty(t, Select(all, target, "roofing", "Austin", "TX", 0))
}

type fakeFetcher struct {
	sites map[string]*scraper.Site
	urls  []string
}

func (f *fakeFetcher) FetchAll(ctx context.Context, urls []string) map[string]*scraper.Site {
	f.urls = urls
	out := make(map[string]*scraper.Site)
	for _, u := range urls {
		if s, ok := f.sites[u]; ok {
			out[u] = s
		}
	}
	return out
}

type fakeCompleter struct {
	response string
	err      error
	prompt   string
	temp     float32
}

func (f *fakeCompleter) CompleteJSON(ctx context.Context, system, user string, temperature float32, out any) error {
	f.prompt = user
	f.temp = temperature
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.response), out)
}

func TestAnalyzer_Analyze(t *testing.T) {
	a := biz("a", ptr(4.5), 0)
	b := biz("b", nil, 0)
	noSite := biz("c", nil, 0)
	noSite.HasWebsite = false
	competitors := []model.Business{a, b, noSite}

	fetcher := &fakeFetcher{sites: map[string]*scraper.Site{
		a.WebsiteURL: {Title: "A Roofing", Headings: []string{"Roof Repair"}, Content: "We fix roofs"},
	}}
	completer := &fakeCompleter{response: `{
		"key_services": ["Roof Repair", "Inspections"],
		"content_structure": {"pages": ["home", "services"]},
		"seo_keywords": "roofing austin",
		"design_patterns": null,
		"call_to_actions": ["Get a Quote"],
		"industry_insights": ["Speed matters", "Trust matters"]
	}`}

	got := NewAnalyzer(fetcher, completer, 0.3).Analyze(context.Background(), competitors, "roofing", "Austin", "TX")

	assert.Equal(t, []string{a.WebsiteURL, b.WebsiteURL}, fetcher.urls)
	assert.Equal(t, competitors, got.Competitors)
	assert.Equal(t, model.StringList{"Roof Repair", "Inspections"}, got.KeyServices)
	assert.Equal(t, model.StringList{"roofing austin"}, got.SEOKeywords)
	assert.NotNil(t, got.DesignPatterns)
	assert.Empty(t, got.DesignPatterns)
	assert.Equal(t, "Speed matters Trust matters", got.IndustryInsights)
	assert.Contains(t, got.ContentStructure, "pages")
	assert.False(t, got.AnalyzedAt.IsZero())

	assert.Equal(t, float32(0.3), completer.temp)
	assert.Contains(t, completer.prompt, "Title: A Roofing")
	assert.Contains(t, completer.prompt, "Rating: 4.5/5.0")
	assert.Contains(t, completer.prompt, scrapeFailedMarker)
	assert.NotContains(t, completer.prompt, "[Competitor 3")
}

func TestAnalyzer_NoWebsitesReturnsEmpty(t *testing.T) {
	noSite := biz("c", nil, 0)
	noSite.WebsiteURL = ""
	completer := &fakeCompleter{}

	got := NewAnalyzer(&fakeFetcher{}, completer, 0.3).Analyze(context.Background(), []model.Business{noSite}, "roofing", "Austin", "TX")
	require.NotNil(t, got)
	assert.Equal(t, []model.Business{noSite}, got.Competitors)
	assert.False(t, got.HasInsights())
	assert.Empty(t, completer.prompt)
}

func TestAnalyzer_LLMFailureFallsBack(t *testing.T) {
	competitors := []model.Business{biz("a", nil, 0)}
	completer := &fakeCompleter{err: errors.New("provider down")}

	got := NewAnalyzer(&fakeFetcher{}, completer, 0.3).Analyze(context.Background(), competitors, "roofing", "Austin", "TX")
	require.NotNil(t, got)
	assert.Equal(t, competitors, got.Competitors)
	assert.False(t, got.HasInsights())
}
