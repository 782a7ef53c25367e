package content

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

var frontMatterDelim = []byte("---")

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

type frontMatter struct {
	ID      string `yaml:"id"`
	Title   string `yaml:"title"`
	Type    string `yaml:"type"`
	Slug    string `yaml:"slug"`
	Status  string `yaml:"status"`
	Date    string `yaml:"date"`
	Excerpt string `yaml:"excerpt"`
}

// LoadDir reads every markdown file below dir. Files are returned in path
// order so repeated loads of an unchanged tree produce identical output.
func LoadDir(dir string) ([]Document, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if isMarkdown(p) {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(paths)

	docs := make([]Document, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return nil, err
		}
		doc, err := ParseFile(filepath.ToSlash(rel), data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", rel, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func isMarkdown(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// ParseFile builds a Document from a markdown file with optional YAML front
// matter. rel is the slash-separated path relative to the content root; it
// supplies the type (first directory) and slug when the front matter omits
// them.
func ParseFile(rel string, data []byte) (Document, error) {
	fm, body, err := splitFrontMatter(data)
	if err != nil {
		return Document{}, err
	}

	vis, err := ParseVisibility(fm.Status)
	if err != nil {
		return Document{}, err
	}

	docType, slug := typeAndSlug(rel)
	if fm.Type != "" {
		docType = strings.ToLower(strings.TrimSpace(fm.Type))
	}
	if fm.Slug != "" {
		slug = strings.Trim(fm.Slug, "/")
	}

	doc := Document{
		ID:         fm.ID,
		Type:       docType,
		Slug:       slug,
		Title:      strings.TrimSpace(fm.Title),
		RawBody:    strings.TrimSpace(body),
		Excerpt:    strings.TrimSpace(fm.Excerpt),
		Visibility: vis,
		Path:       rel,
	}

	if fm.Date != "" {
		t, err := parseDate(fm.Date)
		if err != nil {
			return Document{}, err
		}
		doc.PublishedAt = &t
	}
	if doc.Title == "" {
		doc.Title = firstHeading(doc.RawBody)
	}
	if doc.Title == "" {
		doc.Title = path.Base(slug)
	}
	if doc.ID == "" {
		doc.ID = StableID(doc.Type, doc.Slug)
	}
	return doc, nil
}

// StableID derives a name-based UUID from type and slug, so re-importing the
// same file keeps its identity.
func StableID(docType, slug string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("docsearch:"+docType+"/"+slug)).String()
}

func splitFrontMatter(data []byte) (frontMatter, string, error) {
	var fm frontMatter
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	normalized := bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))

	if !bytes.HasPrefix(normalized, append(frontMatterDelim, '\n')) {
		return fm, string(normalized), nil
	}

	rest := normalized[len(frontMatterDelim)+1:]
	end := bytes.Index(rest, append([]byte("\n"), frontMatterDelim...))
	if end < 0 {
		return fm, "", fmt.Errorf("unterminated front matter")
	}

	if err := yaml.Unmarshal(rest[:end], &fm); err != nil {
		return fm, "", fmt.Errorf("decoding front matter: %w", err)
	}

	body := rest[end+1+len(frontMatterDelim):]
	return fm, string(body), nil
}

func typeAndSlug(rel string) (string, string) {
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	parts := strings.Split(rel, "/")

	docType := "page"
	if len(parts) > 1 {
		docType = strings.TrimSuffix(strings.ToLower(parts[0]), "s")
		parts = parts[1:]
	}
	if len(parts) > 1 && parts[len(parts)-1] == "index" {
		parts = parts[:len(parts)-1]
	}
	return docType, strings.Join(parts, "/")
}

func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
