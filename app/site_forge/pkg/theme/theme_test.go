package theme

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/model"
)

func TestSelect_Deterministic(t *testing.T) {
	assert.Equal(t, Select("abc-roofing"), Select("abc-roofing"))

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := Select(fmt.Sprintf("business-%d", i))
		assert.Contains(t, IDs, id)
		seen[id] = true
	}
	assert.Len(t, seen, len(IDs))
}

func TestCSSVariables(t *testing.T) {
	for _, id := range IDs {
		v := CSSVariables(id)
		assert.NotEmpty(t, v.Light["primary"], id)
		assert.NotNil(t, v.Dark, id)
	}

	assert.Equal(t, CSSVariables("aurora"), CSSVariables("no-such-theme"))
	assert.Empty(t, CSSVariables("midnight").Dark)

	// 返回值是副本
	v := CSSVariables("mono")
	v.Light["primary"] = "changed"
	assert.Equal(t, "rgb(0 0 0)", CSSVariables("mono").Light["primary"])
}

func TestResolveDesignTheme(t *testing.T) {
	a := ResolveDesignTheme("abc-roofingABC Roofing")
	assert.Equal(t, a, ResolveDesignTheme("abc-roofingABC Roofing"))
	assert.Contains(t, LayoutStyles, a.LayoutStyle)
	assert.NotEmpty(t, a.ColorPalette.Primary)
}

func TestApply(t *testing.T) {
	dt := model.DesignTheme{
		ThemeName:    "Custom",
		ColorPalette: model.ColorPalette{Primary: "#123456"},
		FontHeading:  "Playfair Display",
		FontBody:     "Wingdings",
		LayoutStyle:  "minimal-stripes",
	}
	got := Apply(dt, "seed")
	preset := ResolveDesignTheme("seed")

	assert.Equal(t, preset.ThemeName, got.ThemeName)
	assert.Equal(t, preset.ColorPalette, got.ColorPalette)
	assert.Equal(t, preset.LayoutStyle, got.LayoutStyle)
	assert.Equal(t, "Playfair Display", got.FontHeading)
	assert.Equal(t, DefaultFont, got.FontBody)
}

func TestNormalizeHex(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"#0F766E", "#0f766e"},
		{"0f766e", "#0f766e"},
		{"#abc", "#abc"},
		{"#11223344", "#11223344"},
		{"abc", "#fallback"},
		{"#12345", "#fallback"},
		{"#zzzzzz", "#fallback"},
		{"", "#fallback"},
		{"  #ffffff ", "#ffffff"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeHex(tt.in, "#fallback"), tt.in)
	}
}

func TestNormalizeLayoutAndFont(t *testing.T) {
	assert.Equal(t, "hero-split", NormalizeLayout("Hero-Split"))
	assert.Equal(t, DefaultLayout, NormalizeLayout("diagonal"))
	assert.Equal(t, "Playfair Display", NormalizeFont("playfair display"))
	assert.Equal(t, DefaultFont, NormalizeFont("Comic Sans"))
}

func TestCompletePalette(t *testing.T) {
	base := Presets[0].ColorPalette
	got := CompletePalette(model.ColorPalette{Primary: "123456", Accent: "bad"}, base)
	assert.Equal(t, "#123456", got.Primary)
	assert.Equal(t, base.Accent, got.Accent)
	assert.Equal(t, base.Secondary, got.Secondary)
	assert.Equal(t, "#123456", got.GradientFrom)
	assert.Equal(t, base.Secondary, got.GradientTo)
}

type stubSearch struct {
	fail    map[string]bool
	queries []string
}

func (s *stubSearch) Search(ctx context.Context, query string, width, height int) (string, error) {
	s.queries = append(s.queries, query)
	if s.fail[query] {
		return "", errors.New("boom")
	}
	return fmt.Sprintf("https://img.example/%s/%dx%d", strings.ReplaceAll(query, " ", "_"), width, height), nil
}

func TestImageResolver_PlaceholdersWithoutSearch(t *testing.T) {
	urls := NewImageResolver(nil).Resolve(context.Background(), model.ImageKeywords{}, "ABC Roofing", "roofing", []string{"Repair", "Install"})

	seed := PlaceholderSeed("ABC Roofing")
	assert.Len(t, seed, 12)
	assert.Equal(t, "https://picsum.photos/seed/"+seed+"a/1200/600", urls.Hero)
	assert.Equal(t, "https://picsum.photos/seed/"+seed+"b/800/500", urls.About)
	assert.Equal(t, []string{
		"https://picsum.photos/seed/" + seed + "s0/600/400",
		"https://picsum.photos/seed/" + seed + "s1/600/400",
	}, urls.Services)
}

func TestImageResolver_PerSlotFallback(t *testing.T) {
	search := &stubSearch{fail: map[string]bool{"roofing Install": true}}
	kw := model.ImageKeywords{Hero: model.StringList{"roof", "crew", "sunny", "extra"}}

	urls := NewImageResolver(search).Resolve(context.Background(), kw, "ABC Roofing", "roofing", []string{"Repair", "Install"})

	assert.Equal(t, "https://img.example/roof_crew_sunny/1200x600", urls.Hero)
	assert.Equal(t, "https://img.example/roofing_team_local_business/800x500", urls.About)
	assert.Equal(t, "https://img.example/roofing_Repair/600x400", urls.Services[0])
	assert.True(t, strings.HasPrefix(urls.Services[1], "https://picsum.photos/seed/"))
}

func TestUnsplash_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/photos", r.URL.Path)
		assert.Equal(t, "Client-ID key", r.Header.Get("Authorization"))
		assert.Equal(t, "1", r.URL.Query().Get("per_page"))
		switch r.URL.Query().Get("query") {
		case "roofing":
			fmt.Fprint(w, `{"results":[{"urls":{"regular":"https://images.example/photo?ixid=1"}}]}`)
		case "empty":
			fmt.Fprint(w, `{"results":[]}`)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	u := NewUnsplash("key", WithUnsplashBaseURL(srv.URL))
	got, err := u.Search(context.Background(), "roofing", 600, 400)
	require.NoError(t, err)
	assert.Equal(t, "https://images.example/photo?ixid=1&w=600&h=400&fit=crop", got)

	got, err = u.Search(context.Background(), "empty", 600, 400)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = u.Search(context.Background(), "denied", 600, 400)
	assert.Error(t, err)
}
