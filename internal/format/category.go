package format

import "github.com/Zhihong0321/ATAP-solar/internal/models"

// CategoryName resolves a category display name for the requested language,
// trying the language-specific override first and falling back to the base
// name. A category with only the base name set resolves correctly for every
// language; one with neither yields an empty string, never an error.
func CategoryName(c models.Category, lang models.Language) string {
	switch lang {
	case models.LangCN:
		if c.NameCN != "" {
			return c.NameCN
		}
	case models.LangMY:
		if c.NameMY != "" {
			return c.NameMY
		}
	default:
		if c.NameEN != "" {
			return c.NameEN
		}
	}
	return c.Name
}

// TagName resolves a tag display name with the same fallback rule as
// CategoryName.
func TagName(t models.Tag, lang models.Language) string {
	switch lang {
	case models.LangCN:
		if t.NameCN != "" {
			return t.NameCN
		}
	case models.LangMY:
		if t.NameMY != "" {
			return t.NameMY
		}
	default:
		if t.NameEN != "" {
			return t.NameEN
		}
	}
	return t.Name
}
