package site

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/logger"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var funcs = template.FuncMap{
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
	"fontParam": func(font string) string {
		return strings.ReplaceAll(font, " ", "+")
	},
}

// Materializer 把文案渲染为 Next.js 项目
type Materializer struct {
	outputDir string
	tmpl      *template.Template
	now       func() time.Time
	// render 渲染单个模板，测试中可替换
	render func(name string, d *Data) (string, error)
}

// NewMaterializer 加载内嵌模板
func NewMaterializer(outputDir string) (*Materializer, error) {
	// JSX 大量使用 {{ }}，模板改用 [[ ]] 作为分隔符
	tmpl, err := template.New("site").Delims("[[", "]]").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates failed: %w", err)
	}
	m := &Materializer{outputDir: outputDir, tmpl: tmpl, now: time.Now}
	m.render = m.execute
	return m, nil
}

func (m *Materializer) execute(name string, d *Data) (string, error) {
	var buf bytes.Buffer
	if err := m.tmpl.ExecuteTemplate(&buf, name, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Materialize 在 outputDir/slug 下生成站点
//
// 非必需文件渲染失败时记录并跳过；必需文件渲染失败时写入兜底内容，兜底也失败才返回错误。
// 重复执行会覆盖已有文件。
func (m *Materializer) Materialize(b model.Business, c model.GeneratedContent, design Design, slug string) (*model.SiteArtifact, error) {
	if slug == "" {
		slug = Slugify(b.Name)
	}
	dir := filepath.Join(m.outputDir, slug)
	logger.Log.Infof("开始生成站点: %s -> %s", b.Name, dir)

	for _, sub := range Dirs {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s failed: %w", sub, err)
		}
	}

	data := NewData(b, c, design, slug, m.now())
	artifact := &model.SiteArtifact{BusinessName: b.Name, Slug: slug, Dir: dir, ThemeID: design.ThemeID}

	for _, e := range Manifest {
		out := filepath.Join(dir, filepath.FromSlash(e.Path))

		text, err := m.render(e.Template, data)
		if err == nil {
			err = writeFile(out, text)
		}
		if err == nil {
			artifact.Written = append(artifact.Written, e.Path)
			continue
		}

		if !e.Required {
			logger.Log.Warnf("站点文件生成失败，已跳过 [%s]: %v", e.Path, err)
			artifact.Skipped = append(artifact.Skipped, e.Path)
			continue
		}

		logger.Log.Warnf("必需文件模板渲染失败，使用兜底内容 [%s]: %v", e.Path, err)
		if err := writeFile(out, e.Fallback(data)); err != nil {
			return nil, fmt.Errorf("write fallback %s failed: %w", e.Path, err)
		}
		artifact.Fallbacks = append(artifact.Fallbacks, e.Path)
	}

	logger.Log.Infof("站点生成完成 [%s]: 写入 %d 个文件, 兜底 %d 个, 跳过 %d 个",
		slug, len(artifact.Written), len(artifact.Fallbacks), len(artifact.Skipped))
	return artifact, nil
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
