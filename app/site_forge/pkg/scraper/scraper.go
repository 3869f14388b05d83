package scraper

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/logger"
)

const (
	maxContentLength = 5000
	maxLinks         = 20
	maxImages        = 20
	maxBodyBytes     = 5 << 20
	userAgent        = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Site 抓取到的网站结构化内容
type Site struct {
	URL             string         `json:"url"`
	Title           string         `json:"title"`
	MetaDescription string         `json:"meta_description"`
	MetaKeywords    []string       `json:"meta_keywords"`
	Headings        []string       `json:"headings"`
	Content         string         `json:"content"`
	Links           []string       `json:"links"`
	Images          []string       `json:"images"`
	Structure       map[string]any `json:"structure"`
}

// Scraper 抓取竞品网站
type Scraper struct {
	client *http.Client
	delay  time.Duration
}

// New 创建抓取器，delay 为 FetchAll 中相邻请求的间隔
func New(timeout, delay time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Scraper{
		client: &http.Client{Timeout: timeout},
		delay:  delay,
	}
}

// Fetch 抓取单个网站，任何失败都返回 nil
func (s *Scraper) Fetch(ctx context.Context, rawURL string) *Site {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}
	pageURL, err := url.Parse(rawURL)
	if err != nil || pageURL.Host == "" {
		logger.Log.Warnf("URL 格式无效: %s", rawURL)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Log.Warnf("抓取网站失败 [%s]: %v", rawURL, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Log.Warnf("网站返回非 200 状态 [%s]: %d", rawURL, resp.StatusCode)
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		logger.Log.Warnf("读取网站内容失败 [%s]: %v", rawURL, err)
		return nil
	}

	site, err := Parse(body, pageURL)
	if err != nil {
		logger.Log.Warnf("解析网站失败 [%s]: %v", rawURL, err)
		return nil
	}
	logger.Log.Infof("抓取网站成功 [%s] (内容长度: %d)", rawURL, len(site.Content))
	return site
}

// FetchAll 顺序抓取多个网站，结果按请求的 URL 索引，失败的网站不在结果中
func (s *Scraper) FetchAll(ctx context.Context, urls []string) map[string]*Site {
	out := make(map[string]*Site, len(urls))
	for i, u := range urls {
		if i > 0 && s.delay > 0 {
			select {
			case <-ctx.Done():
				return out
			case <-time.After(s.delay):
			}
		}
		if site := s.Fetch(ctx, u); site != nil {
			out[u] = site
		}
	}
	return out
}

// Parse 从 HTML 中提取结构化内容
func Parse(body []byte, pageURL *url.URL) (*Site, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	site := &Site{URL: pageURL.String()}
	site.Title = strings.TrimSpace(doc.Find("title").First().Text())
	site.MetaDescription = strings.TrimSpace(metaContent(doc, "description"))
	for _, kw := range strings.Split(metaContent(doc, "keywords"), ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			site.MetaKeywords = append(site.MetaKeywords, kw)
		}
	}

	for _, tag := range []string{"h1", "h2", "h3"} {
		doc.Find(tag).Each(func(_ int, h *goquery.Selection) {
			if text := collapse(h.Text()); text != "" {
				site.Headings = append(site.Headings, text)
			}
		})
	}

	hasNav := doc.Find("nav").Length() > 0
	hasFooter := doc.Find("footer").Length() > 0
	hasHeader := doc.Find("header").Length() > 0
	hasForm := doc.Find("form").Length() > 0

	// 图片和链接在去除导航之前收集
	doc.Find("img[alt]").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		if alt := strings.TrimSpace(img.AttrOr("alt", "")); alt != "" {
			site.Images = append(site.Images, alt)
		}
		return len(site.Images) < maxImages
	})

	doc.Find("script, style, nav, footer, header, aside").Remove()

	paragraphs := doc.Find("p")
	var parts []string
	paragraphs.Each(func(_ int, p *goquery.Selection) {
		if text := collapse(p.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	content := strings.Join(parts, " ")

	// 段落过少时用 readability 提取正文
	if len(content) < 500 {
		if article, err := readability.FromReader(bytes.NewReader(body), pageURL); err == nil {
			if text := collapse(article.TextContent); len(text) > len(content) {
				content = text
			}
		}
	}
	site.Content = truncate(content, maxContentLength)

	site.Links = internalLinks(doc, pageURL)

	site.Structure = map[string]any{
		"has_nav":         hasNav,
		"has_footer":      hasFooter,
		"has_header":      hasHeader,
		"has_form":        hasForm,
		"heading_count":   len(site.Headings),
		"paragraph_count": paragraphs.Length(),
		"link_count":      len(site.Links),
		"image_count":     len(site.Images),
	}
	return site, nil
}

func metaContent(doc *goquery.Document, name string) string {
	var content string
	doc.Find("meta").EachWithBreak(func(_ int, m *goquery.Selection) bool {
		if strings.EqualFold(m.AttrOr("name", ""), name) {
			content = m.AttrOr("content", "")
			return false
		}
		return true
	})
	return content
}

func internalLinks(doc *goquery.Document, pageURL *url.URL) []string {
	base := pageURL.Scheme + "://" + pageURL.Host
	seen := make(map[string]bool)
	var links []string

	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		switch {
		case strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "//"):
			href = base + href
		case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		default:
			return true
		}
		if !strings.HasPrefix(href, base) || collapse(a.Text()) == "" || seen[href] {
			return true
		}
		seen[href] = true
		links = append(links, href)
		return len(links) < maxLinks
	})
	return links
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// 按 rune 截断，避免切断多字节字符
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
