// Package homepage derives the public landing page layout from the raw
// category and news lists: which category leads, how the remaining sections
// wrap around the ticker, and which published items fall through to the
// uncategorized safety net.
package homepage

import (
	"sort"

	"github.com/Zhihong0321/ATAP-solar/internal/models"
)

// Section is one category block with its date-ordered news bucket.
type Section struct {
	Category models.Category   `json:"category"`
	News     []models.NewsItem `json:"news"`
}

// Page is the partitioned homepage.
type Page struct {
	// Main is nil when no categories exist at all; MainNews then holds every
	// published item with no filtering applied.
	Main       *models.Category  `json:"main,omitempty"`
	MainNews   []models.NewsItem `json:"main_news"`
	Highlights []models.NewsItem `json:"highlights"`
	// Above and Below are the two layout halves of the non-main sections,
	// split at ceil(n/2) around an interstitial widget. The split carries no
	// semantic meaning. Sections with empty buckets are suppressed.
	Above         []Section         `json:"above"`
	Below         []Section         `json:"below"`
	Uncategorized []models.NewsItem `json:"uncategorized"`
}

// Build partitions the published news across the category sections.
//
// Main-category precedence: the category carrying the featured sentinel tag
// wins over one literally named "Featured", which wins over the first category
// in the server-defined order. Every published item lands in exactly one of
// main, a section bucket, or the uncategorized remainder.
func Build(categories []models.Category, news []models.NewsItem) Page {
	published := make([]models.NewsItem, 0, len(news))
	for _, n := range news {
		if n.IsPublished {
			published = append(published, n)
		}
	}

	main := pickMain(categories)
	if main == nil {
		all := sortByDateDesc(published)
		return Page{
			MainNews:   all,
			Highlights: highlightsOf(all),
		}
	}

	others := make([]models.Category, 0, len(categories))
	for _, c := range categories {
		if c.ID != main.ID {
			others = append(others, c)
		}
	}

	mainNews := sortByDateDesc(filterByCategory(published, main.ID))

	seen := make(map[string]struct{}, len(published))
	for _, n := range mainNews {
		seen[n.ID] = struct{}{}
	}

	buildSections := func(cats []models.Category) []Section {
		sections := make([]Section, 0, len(cats))
		for _, cat := range cats {
			bucket := sortByDateDesc(filterByCategory(published, cat.ID))
			for _, n := range bucket {
				seen[n.ID] = struct{}{}
			}
			if len(bucket) == 0 {
				continue
			}
			sections = append(sections, Section{Category: cat, News: bucket})
		}
		return sections
	}

	mid := (len(others) + 1) / 2
	above := buildSections(others[:mid])
	below := buildSections(others[mid:])

	var uncategorized []models.NewsItem
	for _, n := range published {
		if _, ok := seen[n.ID]; !ok {
			uncategorized = append(uncategorized, n)
		}
	}
	uncategorized = sortByDateDesc(uncategorized)

	return Page{
		Main:          main,
		MainNews:      mainNews,
		Highlights:    highlightsOf(mainNews),
		Above:         above,
		Below:         below,
		Uncategorized: uncategorized,
	}
}

func pickMain(categories []models.Category) *models.Category {
	if len(categories) == 0 {
		return nil
	}
	for i, c := range categories {
		if c.HasFeaturedTag() {
			return &categories[i]
		}
	}
	for i, c := range categories {
		if c.Name == models.FeaturedTagName {
			return &categories[i]
		}
	}
	return &categories[0]
}

func filterByCategory(news []models.NewsItem, categoryID string) []models.NewsItem {
	var out []models.NewsItem
	for _, n := range news {
		if n.InCategory(categoryID) {
			out = append(out, n)
		}
	}
	return out
}

func highlightsOf(news []models.NewsItem) []models.NewsItem {
	var out []models.NewsItem
	for _, n := range news {
		if n.IsHighlight {
			out = append(out, n)
		}
	}
	return out
}

func sortByDateDesc(news []models.NewsItem) []models.NewsItem {
	sorted := make([]models.NewsItem, len(news))
	copy(sorted, news)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date().After(sorted[j].Date())
	})
	return sorted
}
