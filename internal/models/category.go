package models

// FeaturedTagName is the sentinel tag marking the homepage's main category.
// At most one category should carry it; the admin surface enforces this
// best-effort by deleting any existing featured tag before creating a new one.
const FeaturedTagName = "Featured"

// Category groups news items and owns zero or more tags. The name_* overrides
// are forward-compatible multilingual fields and are usually absent.
type Category struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	NameEN string `json:"name_en,omitempty"`
	NameCN string `json:"name_cn,omitempty"`
	NameMY string `json:"name_my,omitempty"`
	Tags   []Tag  `json:"tags,omitempty"`
}

// HasFeaturedTag reports whether the category carries the featured sentinel.
func (c Category) HasFeaturedTag() bool {
	for _, t := range c.Tags {
		if t.Name == FeaturedTagName {
			return true
		}
	}
	return false
}

// Tag has the same localized-name shape as Category.
type Tag struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	NameEN string `json:"name_en,omitempty"`
	NameCN string `json:"name_cn,omitempty"`
	NameMY string `json:"name_my,omitempty"`
}
