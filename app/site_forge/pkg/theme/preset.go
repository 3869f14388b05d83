package theme

import (
	"strings"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/model"
)

// LayoutStyles 可用的布局
var LayoutStyles = []string{"hero-centered", "hero-split", "hero-full-image", "card-heavy", "minimal-stripes"}

// DefaultLayout 默认布局
const DefaultLayout = "hero-centered"

// Fonts 站点可加载的 Google 字体
var Fonts = []string{
	"Inter", "Source Sans 3", "DM Sans", "Outfit", "Manrope", "Sora",
	"Playfair Display", "DM Serif Display", "Plus Jakarta Sans", "Clash Display",
	"Poppins", "Montserrat", "Lato", "Roboto", "Open Sans", "Raleway", "Merriweather",
}

// DefaultFont 默认字体
const DefaultFont = "Inter"

// Presets 设计预设，顺序参与种子取模
var Presets = []model.DesignTheme{
	{
		ThemeName: "Apple Light",
		ColorPalette: model.ColorPalette{
			Primary: "#1d1d1f", Secondary: "#424245", Accent: "#0071e3",
			Background: "#ffffff", Text: "#1d1d1f", TextMuted: "#86868b",
			GradientFrom: "#1d1d1f", GradientTo: "#424245",
		},
		FontHeading: "Inter", FontBody: "Inter", LayoutStyle: "hero-centered",
	},
	{
		ThemeName: "Apple Blue",
		ColorPalette: model.ColorPalette{
			Primary: "#0071e3", Secondary: "#0077ed", Accent: "#00c7be",
			Background: "#f5f5f7", Text: "#1d1d1f", TextMuted: "#6e6e73",
			GradientFrom: "#0071e3", GradientTo: "#00c7be",
		},
		FontHeading: "Inter", FontBody: "Inter", LayoutStyle: "hero-split",
	},
	{
		ThemeName: "Apple Dark",
		ColorPalette: model.ColorPalette{
			Primary: "#f5f5f7", Secondary: "#d2d2d7", Accent: "#0a84ff",
			Background: "#000000", Text: "#f5f5f7", TextMuted: "#86868b",
			GradientFrom: "#f5f5f7", GradientTo: "#0a84ff",
		},
		FontHeading: "Inter", FontBody: "Inter", LayoutStyle: "hero-full-image",
	},
	{
		ThemeName: "Apple Warm",
		ColorPalette: model.ColorPalette{
			Primary: "#bf4800", Secondary: "#d97706", Accent: "#0071e3",
			Background: "#fafafa", Text: "#1d1d1f", TextMuted: "#6e6e73",
			GradientFrom: "#bf4800", GradientTo: "#d97706",
		},
		FontHeading: "Inter", FontBody: "Inter", LayoutStyle: "hero-centered",
	},
	{
		ThemeName: "Apple Green",
		ColorPalette: model.ColorPalette{
			Primary: "#248a3d", Secondary: "#30d158", Accent: "#0071e3",
			Background: "#f5f5f7", Text: "#1d1d1f", TextMuted: "#6e6e73",
			GradientFrom: "#248a3d", GradientTo: "#30d158",
		},
		FontHeading: "Inter", FontBody: "Inter", LayoutStyle: "card-heavy",
	},
}

// ResolveDesignTheme 按种子从预设中选一个设计主题
func ResolveDesignTheme(seed string) model.DesignTheme {
	return Presets[seedIndex(seed, len(Presets))]
}

// Apply 用种子对应的预设覆盖配色、布局和主题名，字体沿用 dt 并约束到可用集合
func Apply(dt model.DesignTheme, seed string) model.DesignTheme {
	out := ResolveDesignTheme(seed)
	out.FontHeading = NormalizeFont(dt.FontHeading)
	out.FontBody = NormalizeFont(dt.FontBody)
	return out
}

// NormalizeLayout 把布局约束到可用集合
func NormalizeLayout(s string) string {
	return pick(LayoutStyles, s, DefaultLayout)
}

// NormalizeFont 把字体约束到可用集合
func NormalizeFont(s string) string {
	return pick(Fonts, s, DefaultFont)
}

func pick(set []string, s, fallback string) string {
	s = strings.TrimSpace(s)
	for _, v := range set {
		if strings.EqualFold(v, s) {
			return v
		}
	}
	return fallback
}

// NormalizeHex 规范化颜色值为带 # 的十六进制，非法时返回 fallback
func NormalizeHex(s, fallback string) string {
	s = strings.TrimSpace(s)
	digits := strings.TrimPrefix(s, "#")
	switch len(digits) {
	case 3, 6, 8:
	default:
		return fallback
	}
	for _, c := range digits {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return fallback
		}
	}
	// 不带 # 时只接受 6 位
	if !strings.HasPrefix(s, "#") && len(digits) != 6 {
		return fallback
	}
	return "#" + strings.ToLower(digits)
}

// CompletePalette 用 base 补全缺失或非法的颜色，渐变缺失时取补全后的主色和辅色
func CompletePalette(p, base model.ColorPalette) model.ColorPalette {
	out := model.ColorPalette{
		Primary:    NormalizeHex(p.Primary, base.Primary),
		Secondary:  NormalizeHex(p.Secondary, base.Secondary),
		Accent:     NormalizeHex(p.Accent, base.Accent),
		Background: NormalizeHex(p.Background, base.Background),
		Text:       NormalizeHex(p.Text, base.Text),
		TextMuted:  NormalizeHex(p.TextMuted, base.TextMuted),
	}
	out.GradientFrom = NormalizeHex(p.GradientFrom, out.Primary)
	out.GradientTo = NormalizeHex(p.GradientTo, out.Secondary)
	return out
}
