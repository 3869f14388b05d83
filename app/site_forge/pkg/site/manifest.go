package site

// Entry 渲染清单中的一项
type Entry struct {
	Template string
	Path     string // 相对站点根目录
	Required bool
	// Fallback 模板渲染失败时直接写出的最小内容，非必需文件可以为空
	Fallback func(d *Data) string
}

// Manifest 按顺序渲染：配置文件、样式、页面、组件
var Manifest = []Entry{
	{Template: "package.json.tmpl", Path: "package.json"},
	{Template: "next.config.js.tmpl", Path: "next.config.js"},
	{Template: "tailwind.config.js.tmpl", Path: "tailwind.config.js"},
	{Template: "postcss.config.js.tmpl", Path: "postcss.config.js"},
	{Template: "tsconfig.json.tmpl", Path: "tsconfig.json", Fallback: fallbackTSConfig},

	{Template: "globals.css.tmpl", Path: "src/styles/globals.css", Required: true, Fallback: fallbackGlobalsCSS},

	{Template: "layout.tsx.tmpl", Path: "src/app/layout.tsx"},
	{Template: "page.tsx.tmpl", Path: "src/app/page.tsx", Required: true, Fallback: fallbackHomePage},
	{Template: "about_page.tsx.tmpl", Path: "src/app/about/page.tsx"},
	{Template: "services_page.tsx.tmpl", Path: "src/app/services/page.tsx", Required: true, Fallback: fallbackServicesPage},
	{Template: "contact_page.tsx.tmpl", Path: "src/app/contact/page.tsx"},

	{Template: "Header.tsx.tmpl", Path: "src/components/Header.tsx"},
	{Template: "Footer.tsx.tmpl", Path: "src/components/Footer.tsx"},
	{Template: "ServiceCard.tsx.tmpl", Path: "src/components/ServiceCard.tsx"},
	{Template: "SEO.tsx.tmpl", Path: "src/components/SEO.tsx", Required: true, Fallback: fallbackSEO},
	{Template: "ContactForm.tsx.tmpl", Path: "src/components/ContactForm.tsx", Fallback: fallbackContactForm},
}

// Dirs 站点目录骨架
var Dirs = []string{
	"public",
	"src/app",
	"src/app/about",
	"src/app/services",
	"src/app/contact",
	"src/components",
	"src/styles",
}
