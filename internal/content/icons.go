package content

import "strings"

const deviconBase = "https://cdn.jsdelivr.net/gh/devicons/devicon/icons/"

type Icon struct {
	Name string
	URL  string
	// Invert marks monochrome logos that need inverting on a dark background.
	Invert bool
	// Placeholder is set instead of URL for unknown technologies.
	Placeholder string
}

func (i Icon) Found() bool { return i.URL != "" }

var techIcons = []Icon{
	{Name: "React", URL: deviconBase + "react/react-original.svg"},
	{Name: "Next.js", URL: deviconBase + "nextjs/nextjs-original.svg", Invert: true},
	{Name: "TypeScript", URL: deviconBase + "typescript/typescript-original.svg"},
	{Name: "Tailwind CSS", URL: deviconBase + "tailwindcss/tailwindcss-plain.svg"},
	{Name: "Node.js", URL: deviconBase + "nodejs/nodejs-original.svg"},
	{Name: "Express", URL: deviconBase + "express/express-original.svg", Invert: true},
	{Name: "MongoDB", URL: deviconBase + "mongodb/mongodb-original.svg"},
	{Name: "Laravel", URL: deviconBase + "laravel/laravel-original.svg"},
	{Name: "PHP", URL: deviconBase + "php/php-original.svg"},
	{Name: "Python", URL: deviconBase + "python/python-original.svg"},
	{Name: "MySQL", URL: deviconBase + "mysql/mysql-original.svg"},
	{Name: "Three.js", URL: deviconBase + "threejs/threejs-original.svg", Invert: true},
	{Name: "HTML", URL: deviconBase + "html5/html5-original.svg"},
	{Name: "CSS", URL: deviconBase + "css3/css3-original.svg"},
	{Name: "JavaScript", URL: deviconBase + "javascript/javascript-original.svg"},
	{Name: "Vite", URL: deviconBase + "vitejs/vitejs-original.svg"},
	{Name: "Framer Motion", URL: "https://cdn.jsdelivr.net/gh/devicons/devicon@latest/icons/framermotion/framermotion-original.svg"},
}

var iconIndex = func() map[string]Icon {
	m := make(map[string]Icon, len(techIcons))
	for _, ic := range techIcons {
		m[strings.ToLower(ic.Name)] = ic
	}
	return m
}()

// TechIcon looks name up case-insensitively. Unknown names get a placeholder glyph made
// of their first two characters.
func TechIcon(name string) Icon {
	if ic, ok := iconIndex[strings.ToLower(strings.TrimSpace(name))]; ok {
		return ic
	}
	r := []rune(name)
	if len(r) > 2 {
		r = r[:2]
	}
	return Icon{Name: name, Placeholder: string(r)}
}

// TechStack is the static list of known technologies.
func TechStack() []Icon { return append([]Icon(nil), techIcons...) }
