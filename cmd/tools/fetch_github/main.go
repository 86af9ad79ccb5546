package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"portfolio/internal/content"
)

const endpoint = "https://api.github.com/users/%s/repos?sort=updated&per_page=%d&page=%d"

type repo struct {
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	HTMLURL     string    `json:"html_url"`
	Homepage    *string   `json:"homepage"`
	Language    *string   `json:"language"`
	Topics      []string  `json:"topics"`
	Stars       int       `json:"stargazers_count"`
	Fork        bool      `json:"fork"`
	Archived    bool      `json:"archived"`
	CreatedAt   time.Time `json:"created_at"`
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "project"
	}
	return out
}

func title(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// category guesses the portfolio category from the repo language.
func category(lang string) string {
	switch strings.ToLower(lang) {
	case "kotlin", "swift", "dart", "java", "objective-c":
		return content.CategoryApps
	case "jupyter notebook", "r", "python":
		return content.CategoryData
	}
	return content.CategoryWeb
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func main() {
	user := flag.String("user", "", "github user whose public repos become projects")
	outPath := flag.String("out", "data/seed.json", "output seed json path")
	n := flag.Int("n", 30, "number of repos to fetch")
	page := flag.Int("page", 1, "page number")
	forks := flag.Bool("forks", false, "include forked repos")
	flag.Parse()
	if *user == "" {
		fmt.Fprintln(os.Stderr, "-user is required")
		os.Exit(2)
	}

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf(endpoint, *user, *n, *page), nil)
	if err != nil {
		panic(err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if tok := os.Getenv("GITHUB_TOKEN"); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		fmt.Println(string(raw))
		panic(fmt.Errorf("github http status: %s", resp.Status))
	}

	var repos []repo
	if err := json.Unmarshal(raw, &repos); err != nil {
		panic(err)
	}

	projects := make([]map[string]any, 0, len(repos))
	used := map[string]int{}
	for _, r := range repos {
		if r.Archived || (r.Fork && !*forks) {
			continue
		}
		id := slugify(r.Name)
		used[id]++
		if used[id] > 1 {
			id = fmt.Sprintf("%s-%d", id, used[id])
		}

		lang := str(r.Language)
		tech := make([]string, 0, len(r.Topics)+1)
		if lang != "" {
			tech = append(tech, lang)
		}
		tech = append(tech, r.Topics...)

		link := str(r.Homepage)
		if link == "" {
			link = r.HTMLURL
		}
		desc := str(r.Description)

		projects = append(projects, map[string]any{
			"id":          id,
			"title":       title(r.Name),
			"category":    category(lang),
			"tech":        tech,
			"link":        link,
			"description": map[string]any{"id": desc, "en": desc},
			"isFeatured":  r.Stars > 0,
			"createdAt":   map[string]any{"$time": r.CreatedAt.UTC().Format(time.RFC3339Nano)},
		})
	}

	// Other collections in an existing seed file are kept.
	set := map[string]any{}
	if b, err := os.ReadFile(*outPath); err == nil {
		if err := json.Unmarshal(b, &set); err != nil {
			panic(fmt.Errorf("existing seed %s: %w", *outPath, err))
		}
	}
	set[content.Projects] = projects

	_ = os.MkdirAll(filepath.Dir(*outPath), 0755)
	j, _ := json.MarshalIndent(set, "", "  ")
	if err := os.WriteFile(*outPath, j, 0644); err != nil {
		panic(err)
	}

	fmt.Printf("Wrote %d projects -> %s\n", len(projects), *outPath)
}
