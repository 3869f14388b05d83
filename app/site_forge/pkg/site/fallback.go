package site

import "fmt"

// 兜底内容绕过模板引擎直接生成，只包含构建所需的最小结构

func fallbackGlobalsCSS(d *Data) string {
	p := d.Design.ColorPalette
	return fmt.Sprintf(`@tailwind base;
@tailwind components;
@tailwind utilities;

:root {
  --theme-primary: %s;
  --theme-background: %s;
  --theme-text: %s;
}

body {
  background: var(--theme-background);
  color: var(--theme-text);
}
`, orDefault(p.Primary, "#0f766e"), orDefault(p.Background, "#ffffff"), orDefault(p.Text, "#1e293b"))
}

func fallbackHomePage(d *Data) string {
	return fmt.Sprintf(`const businessName = '%s'

export default function Home() {
  return (
    <section className="section text-center">
      <h1 className="text-4xl font-bold mb-4">{businessName}</h1>
      <p>Welcome to {businessName}.</p>
    </section>
  )
}
`, d.BusinessEscaped.Name)
}

func fallbackServicesPage(d *Data) string {
	return fmt.Sprintf(`const businessName = '%s'

export default function Services() {
  return (
    <section className="section">
      <h1 className="text-4xl font-bold mb-4">Our Services</h1>
      <p>Contact {businessName} to learn more about our services.</p>
    </section>
  )
}
`, d.BusinessEscaped.Name)
}

func fallbackSEO(d *Data) string {
	return fmt.Sprintf(`const schema = {
  '@context': 'https://schema.org',
  '@type': 'LocalBusiness',
  name: '%s',
}

export default function SEO() {
  return <script type="application/ld+json" dangerouslySetInnerHTML={{ __html: JSON.stringify(schema) }} />
}
`, d.BusinessEscaped.Name)
}

func fallbackContactForm(*Data) string {
	return `'use client'

export default function ContactForm() {
  return (
    <form className="space-y-4" onSubmit={(e) => e.preventDefault()}>
      <input name="name" required placeholder="Your name" className="w-full border rounded-lg px-4 py-3" />
      <input name="email" type="email" required placeholder="Email" className="w-full border rounded-lg px-4 py-3" />
      <textarea name="message" rows={5} placeholder="How can we help?" className="w-full border rounded-lg px-4 py-3" />
      <button type="submit" className="btn-primary w-full">Send Message</button>
    </form>
  )
}
`
}

func fallbackTSConfig(*Data) string {
	return `{
  "compilerOptions": {
    "target": "es2017",
    "lib": ["dom", "dom.iterable", "esnext"],
    "allowJs": true,
    "skipLibCheck": true,
    "strict": true,
    "noEmit": true,
    "esModuleInterop": true,
    "module": "esnext",
    "moduleResolution": "bundler",
    "resolveJsonModule": true,
    "isolatedModules": true,
    "jsx": "preserve",
    "incremental": true,
    "baseUrl": ".",
    "plugins": [{ "name": "next" }],
    "paths": { "@/*": ["./src/*"] }
  },
  "include": ["next-env.d.ts", "**/*.ts", "**/*.tsx", ".next/types/**/*.ts"],
  "exclude": ["node_modules"]
}
`
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
