package theme

import (
	"crypto/md5"
	"encoding/hex"
	"maps"
	"strconv"
)

// IDs 可选主题，顺序参与种子取模，不能调整
var IDs = []string{"aurora", "midnight", "horizon", "mono", "gradient"}

// DefaultID 未知主题回退
const DefaultID = "aurora"

// Select 根据种子确定性地选择主题，同一种子始终得到同一主题
func Select(seed string) string {
	return IDs[seedIndex(seed, len(IDs))]
}

// seedIndex 取种子 md5 的前 8 位十六进制对 n 取模
func seedIndex(seed string, n int) int {
	sum := md5.Sum([]byte(seed))
	v, _ := strconv.ParseUint(hex.EncodeToString(sum[:])[:8], 16, 64)
	return int(v % uint64(n))
}

// Variables 主题的 CSS 变量，Light 对应 :root，Dark 对应 .dark
type Variables struct {
	Light map[string]string
	Dark  map[string]string
}

// CSSVariables 返回主题的 CSS 变量，未知主题回退到默认主题
func CSSVariables(id string) Variables {
	v, ok := cssVars[id]
	if !ok {
		v = cssVars[DefaultID]
	}
	return Variables{Light: maps.Clone(v.Light), Dark: maps.Clone(v.Dark)}
}

const white = "rgb(255 255 255)"

var cssVars = map[string]Variables{
	"aurora": {
		Light: map[string]string{
			"primary":         "rgb(49 46 129)",
			"secondary":       "rgb(67 56 202)",
			"accent":          "rgb(99 102 241)",
			"background":      white,
			"backgroundAlt":   "rgb(248 250 252)",
			"text":            "rgb(15 23 42)",
			"textMuted":       "rgb(100 116 139)",
			"border":          "rgb(226 232 240)",
			"gradientFrom":    "rgb(79 70 229)",
			"gradientTo":      "rgb(99 102 241)",
			"maxWidth":        "72rem",
			"sectionPaddingX": "1.5rem",
			"sectionPaddingY": "5rem",
			"borderRadius":    "1rem",
			"onPrimary":       white,
		},
		Dark: map[string]string{
			"primary":       "rgb(165 180 252)",
			"secondary":     "rgb(129 140 248)",
			"accent":        "rgb(129 140 248)",
			"background":    "rgb(15 23 42)",
			"backgroundAlt": "rgb(30 41 59)",
			"text":          "rgb(248 250 252)",
			"textMuted":     "rgb(148 163 184)",
			"border":        "rgb(51 65 85)",
			"gradientFrom":  "rgb(129 140 248)",
			"gradientTo":    "rgb(165 180 252)",
			"onPrimary":     "rgb(15 23 42)",
		},
	},
	// midnight 本身就是深色
	"midnight": {
		Light: map[string]string{
			"primary":         "rgb(139 92 246)",
			"secondary":       "rgb(124 58 237)",
			"accent":          "rgb(167 139 250)",
			"background":      "rgb(15 23 42)",
			"backgroundAlt":   "rgb(30 41 59)",
			"text":            "rgb(248 250 252)",
			"textMuted":       "rgb(148 163 184)",
			"border":          "rgba(148 163 184 / 0.2)",
			"gradientFrom":    "rgb(79 70 229)",
			"gradientTo":      "rgb(139 92 246)",
			"maxWidth":        "72rem",
			"sectionPaddingX": "1.5rem",
			"sectionPaddingY": "5rem",
			"borderRadius":    "1.25rem",
			"onPrimary":       white,
		},
		Dark: map[string]string{},
	},
	"horizon": {
		Light: map[string]string{
			"primary":         "rgb(41 37 36)",
			"secondary":       "rgb(68 64 60)",
			"accent":          "rgb(120 113 108)",
			"background":      "rgb(245 245 244)",
			"backgroundAlt":   white,
			"text":            "rgb(28 25 23)",
			"textMuted":       "rgb(87 83 78)",
			"border":          "rgb(214 211 209)",
			"gradientFrom":    "rgb(41 37 36)",
			"gradientTo":      "rgb(68 64 60)",
			"maxWidth":        "80rem",
			"sectionPaddingX": "2rem",
			"sectionPaddingY": "6rem",
			"borderRadius":    "0.5rem",
			"onPrimary":       white,
		},
		Dark: map[string]string{
			"primary":       "rgb(250 250 249)",
			"secondary":     "rgb(231 229 228)",
			"accent":        "rgb(168 162 158)",
			"background":    "rgb(28 25 23)",
			"backgroundAlt": "rgb(41 37 36)",
			"text":          "rgb(250 250 249)",
			"textMuted":     "rgb(168 162 158)",
			"border":        "rgb(64 61 59)",
			"gradientFrom":  "rgb(250 250 249)",
			"gradientTo":    "rgb(214 211 209)",
			"onPrimary":     "rgb(28 25 23)",
		},
	},
	"mono": {
		Light: map[string]string{
			"primary":         "rgb(0 0 0)",
			"secondary":       "rgb(38 38 38)",
			"accent":          "rgb(115 115 115)",
			"background":      white,
			"backgroundAlt":   "rgb(250 250 250)",
			"text":            "rgb(0 0 0)",
			"textMuted":       "rgb(82 82 82)",
			"border":          "rgb(229 229 229)",
			"gradientFrom":    "rgb(0 0 0)",
			"gradientTo":      "rgb(64 64 64)",
			"maxWidth":        "64rem",
			"sectionPaddingX": "2rem",
			"sectionPaddingY": "6rem",
			"borderRadius":    "0",
			"onPrimary":       white,
		},
		Dark: map[string]string{
			"primary":       white,
			"secondary":     "rgb(245 245 245)",
			"accent":        "rgb(163 163 163)",
			"background":    "rgb(0 0 0)",
			"backgroundAlt": "rgb(10 10 10)",
			"text":          white,
			"textMuted":     "rgb(163 163 163)",
			"border":        "rgb(38 38 38)",
			"gradientFrom":  white,
			"gradientTo":    "rgb(212 212 212)",
			"onPrimary":     "rgb(0 0 0)",
		},
	},
	"gradient": {
		Light: map[string]string{
			"primary":         "rgb(99 102 241)",
			"secondary":       "rgb(139 92 246)",
			"accent":          "rgb(236 72 153)",
			"background":      "rgb(250 250 252)",
			"backgroundAlt":   white,
			"text":            "rgb(30 27 75)",
			"textMuted":       "rgb(100 100 120)",
			"border":          "rgb(230 230 240)",
			"gradientFrom":    "rgb(99 102 241)",
			"gradientTo":      "rgb(236 72 153)",
			"maxWidth":        "72rem",
			"sectionPaddingX": "1.5rem",
			"sectionPaddingY": "5rem",
			"borderRadius":    "1.5rem",
			"onPrimary":       white,
		},
		Dark: map[string]string{
			"primary":       "rgb(165 180 252)",
			"secondary":     "rgb(196 181 253)",
			"accent":        "rgb(251 207 232)",
			"background":    "rgb(15 15 25)",
			"backgroundAlt": "rgb(30 27 75)",
			"text":          "rgb(250 250 255)",
			"textMuted":     "rgb(180 180 200)",
			"border":        "rgb(60 60 90)",
			"gradientFrom":  "rgb(99 102 241)",
			"gradientTo":    "rgb(236 72 153)",
			"onPrimary":     "rgb(15 15 25)",
		},
	},
}
