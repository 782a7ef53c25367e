// Package content holds the document model the search subsystem reads, the
// URL resolver that maps documents to public links, and the loader that turns
// a directory of markdown files into documents.
package content

import (
	"fmt"
	"strings"
	"time"
)

// Visibility controls whether a document can appear in search results.
type Visibility string

const (
	Published Visibility = "published"
	Draft     Visibility = "draft"
	// Unlisted documents are routable but excluded from the index.
	Unlisted Visibility = "unlisted"
)

// ParseVisibility maps a front-matter status to a Visibility. An empty status
// means published.
func ParseVisibility(s string) (Visibility, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "published":
		return Published, nil
	case "draft":
		return Draft, nil
	case "unlisted", "hidden", "noindex":
		return Unlisted, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// Document is a single piece of site content. It is immutable once loaded;
// the search engine only reads it for the duration of one query.
type Document struct {
	ID          string
	Type        string
	Slug        string
	Title       string
	RawBody     string
	Excerpt     string
	PublishedAt *time.Time
	Visibility  Visibility
	// Path is the source file relative to the content directory, if any.
	Path string
}

// IsPublished reports whether the document is visible to search.
func (d Document) IsPublished() bool {
	return d.Visibility == Published
}

// PublishedTime returns the publication time, or the zero time when unset.
func (d Document) PublishedTime() time.Time {
	if d.PublishedAt == nil {
		return time.Time{}
	}
	return *d.PublishedAt
}
