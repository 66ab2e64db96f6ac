// Package format resolves localized display strings and normalizes the
// heterogeneous source attributions delivered by the remote content API.
package format

import (
	"net/url"
	"strings"
	"time"

	"github.com/Zhihong0321/ATAP-solar/internal/models"
)

// TitleByLang selects the title field for the requested language. All three
// fields are mandatory at creation time, so no fallback chain is applied; an
// empty field stays empty.
func TitleByLang(n models.NewsItem, lang models.Language) string {
	switch lang {
	case models.LangCN:
		return n.TitleCN
	case models.LangMY:
		return n.TitleMY
	default:
		return n.TitleEN
	}
}

// ContentByLang selects the content field for the requested language.
func ContentByLang(n models.NewsItem, lang models.Language) string {
	switch lang {
	case models.LangCN:
		return n.ContentCN
	case models.LangMY:
		return n.ContentMY
	default:
		return n.ContentEN
	}
}

// Date renders an ISO-8601 news date for display ("Dec 31, 2025"). The raw
// value is returned unchanged when it does not parse.
func Date(iso string) string {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, iso); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return iso
}

// SourceLabel derives a display label for a source. The function is total:
// a nil or empty source yields the "Source" placeholder, a URL-only source
// yields its hostname with a leading "www." stripped, and an unparseable URL
// falls back to the raw string.
func SourceLabel(s *models.Source) string {
	if s == nil {
		return "Source"
	}
	if s.Name != "" {
		return s.Name
	}
	if s.URL != "" {
		if host := hostLabel(s.URL); host != "" {
			return host
		}
		return s.URL
	}
	return "Source"
}

// SourceURL returns the clickable URL for a source, or "" when none exists.
func SourceURL(s *models.Source) string {
	if s == nil {
		return ""
	}
	return s.URL
}

func hostLabel(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
