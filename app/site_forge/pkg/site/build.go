package site

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/logger"
)

const contactFormPath = "src/components/ContactForm.tsx"

// EnsureBuildFiles 检查站点能否构建：缺失或为空的必需文件用兜底内容重写，
// 缺失的 ContactForm.tsx 补齐，tsconfig.json 的 baseUrl 修正为 "."。
// 返回被修复的文件列表。
func EnsureBuildFiles(dir string) ([]string, error) {
	slug := filepath.Base(dir)
	d := &Data{Slug: slug}
	d.BusinessEscaped.Name = EscapeJS(NameFromSlug(slug))

	var repaired []string
	for _, e := range Manifest {
		if !e.Required && e.Path != contactFormPath {
			continue
		}
		path := filepath.Join(dir, filepath.FromSlash(e.Path))
		if !missingOrEmpty(path) {
			continue
		}
		if err := writeFile(path, e.Fallback(d)); err != nil {
			return repaired, fmt.Errorf("repair %s failed: %w", e.Path, err)
		}
		repaired = append(repaired, e.Path)
	}

	fixed, err := patchTSConfig(filepath.Join(dir, "tsconfig.json"))
	if err != nil {
		return repaired, err
	}
	if fixed {
		repaired = append(repaired, "tsconfig.json")
	}

	if len(repaired) > 0 {
		logger.Log.Warnf("站点 %s 修复了构建文件: %s", slug, strings.Join(repaired, ", "))
	}
	return repaired, nil
}

// NameFromSlug 把目录名还原为展示用名称
func NameFromSlug(slug string) string {
	words := strings.Fields(strings.ReplaceAll(slug, "-", " "))
	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[:1])) + string(r[1:])
	}
	return strings.Join(words, " ")
}

func missingOrEmpty(path string) bool {
	info, err := os.Stat(path)
	return err != nil || info.Size() == 0
}

// patchTSConfig 保证 compilerOptions.baseUrl 为 "."，文件缺失或无法解析时整体重写
func patchTSConfig(path string) (bool, error) {
	raw, err := os.ReadFile(path)
	var cfg map[string]any
	if err == nil && len(raw) > 0 {
		err = json.Unmarshal(raw, &cfg)
	}
	if err != nil || cfg == nil {
		if werr := writeFile(path, fallbackTSConfig(nil)); werr != nil {
			return false, fmt.Errorf("write tsconfig.json failed: %w", werr)
		}
		return true, nil
	}

	opts, _ := cfg["compilerOptions"].(map[string]any)
	if opts == nil {
		opts = map[string]any{}
	}
	if opts["baseUrl"] == "." {
		return false, nil
	}
	opts["baseUrl"] = "."
	cfg["compilerOptions"] = opts

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return false, fmt.Errorf("marshal tsconfig.json failed: %w", err)
	}
	if err := writeFile(path, string(out)+"\n"); err != nil {
		return false, fmt.Errorf("write tsconfig.json failed: %w", err)
	}
	return true, nil
}
