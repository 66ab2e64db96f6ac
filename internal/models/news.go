package models

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Language identifies one of the three site languages.
type Language string

const (
	LangEN Language = "en"
	LangCN Language = "cn"
	LangMY Language = "my"
)

// ParseLanguage maps a raw query value to a Language, defaulting to English.
func ParseLanguage(raw string) Language {
	switch Language(strings.ToLower(strings.TrimSpace(raw))) {
	case LangCN:
		return LangCN
	case LangMY:
		return LangMY
	default:
		return LangEN
	}
}

// ContentStatus values derived by the remote API from the rewrite pipeline.
const (
	ContentStatusEmpty  = "empty"
	ContentStatusFilled = "filled"
)

// NewsItem is a single editorial unit as delivered by the remote content API.
// Title and content exist in three parallel language fields; no single field is
// authoritative. Category may arrive as a denormalized object, an id reference,
// or both, and the two are not guaranteed to agree.
type NewsItem struct {
	ID            string    `json:"id"`
	TitleEN       string    `json:"title_en"`
	TitleCN       string    `json:"title_cn"`
	TitleMY       string    `json:"title_my"`
	ContentEN     string    `json:"content_en"`
	ContentCN     string    `json:"content_cn"`
	ContentMY     string    `json:"content_my"`
	NewsDate      string    `json:"news_date"`
	Sources       []Source  `json:"sources,omitempty"`
	IsPublished   bool      `json:"is_published"`
	IsHighlight   bool      `json:"is_highlight"`
	Category      *Category `json:"category,omitempty"`
	CategoryID    string    `json:"category_id,omitempty"`
	Tags          []Tag     `json:"tags,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	ContentStatus string    `json:"content_status,omitempty"`
}

// Date parses news_date for ordering. Unparseable dates sort last.
func (n NewsItem) Date() time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, n.NewsDate); err == nil {
			return t
		}
	}
	return time.Time{}
}

// InCategory reports whether the item belongs to the given category id,
// matching the denormalized object or the bare reference, whichever is set.
func (n NewsItem) InCategory(categoryID string) bool {
	if n.Category != nil && n.Category.ID == categoryID {
		return true
	}
	return n.CategoryID != "" && n.CategoryID == categoryID
}

// Source is one attribution on a news item. The remote API delivers sources
// either as a bare string (a URL or a plain name, ambiguous) or as an object
// {name, url}; both wire shapes normalize into this struct on ingest.
type Source struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

func (s *Source) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*s = sourceFromString(raw)
		return nil
	}

	var obj struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		*s = Source{Name: strings.TrimSpace(obj.Name), URL: strings.TrimSpace(obj.URL)}
		return nil
	}

	// Last resort for any other wire type: stringify.
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*s = Source{}
		return nil
	}
	*s = Source{Name: fmt.Sprint(v)}
	return nil
}

func sourceFromString(raw string) Source {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Source{}
	}
	if isHTTPURL(raw) {
		return Source{URL: raw}
	}
	return Source{Name: raw}
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// SourceList is the sources field on inbound editorial payloads. The admin
// form submits either a JSON array of sources or a single comma separated
// string ("Reuters, The Star"); both shapes normalize on unmarshal.
type SourceList []Source

func (l *SourceList) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*l = SourceList(ParseSourceList(raw))
		return nil
	}
	var list []Source
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*l = SourceList(list)
	return nil
}

// ParseSourceList splits a comma separated input ("Reuters, The Star") into
// sources, dropping empty and whitespace-only entries.
func ParseSourceList(input string) []Source {
	parts := strings.Split(input, ",")
	sources := make([]Source, 0, len(parts))
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if name == "" {
			continue
		}
		sources = append(sources, sourceFromString(name))
	}
	return sources
}
