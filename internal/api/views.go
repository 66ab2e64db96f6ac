package api

import (
	"github.com/Zhihong0321/ATAP-solar/internal/format"
	"github.com/Zhihong0321/ATAP-solar/internal/homepage"
	"github.com/Zhihong0321/ATAP-solar/internal/models"
)

// Payload shapes returned to the public site, with all localized fields
// already resolved for the requested language.

type newsView struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	NewsDate     string   `json:"news_date"`
	DisplayDate  string   `json:"display_date"`
	ImageURL     string   `json:"image_url,omitempty"`
	CategoryName string   `json:"category_name,omitempty"`
	TagNames     []string `json:"tag_names,omitempty"`
	IsHighlight  bool     `json:"is_highlight"`
}

type sourceView struct {
	Label string `json:"label"`
	URL   string `json:"url,omitempty"`
}

type categoryView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type sectionView struct {
	Category categoryView `json:"category"`
	News     []newsView   `json:"news"`
}

type homeView struct {
	Language        models.Language `json:"language"`
	CountdownTarget string          `json:"countdown_target"`
	Main            *categoryView   `json:"main,omitempty"`
	Highlights      []newsView      `json:"highlights"`
	MainNews        []newsView      `json:"main_news"`
	Above           []sectionView   `json:"above"`
	Below           []sectionView   `json:"below"`
	Uncategorized   []newsView      `json:"uncategorized"`
}

type detailView struct {
	newsView
	Sources       []sourceView `json:"sources"`
	PrimarySource *sourceView  `json:"primary_source,omitempty"`
}

func toNewsView(n models.NewsItem, lang models.Language) newsView {
	v := newsView{
		ID:          n.ID,
		Title:       format.TitleByLang(n, lang),
		Content:     format.ContentByLang(n, lang),
		NewsDate:    n.NewsDate,
		DisplayDate: format.Date(n.NewsDate),
		ImageURL:    n.ImageURL,
		IsHighlight: n.IsHighlight,
	}
	if n.Category != nil {
		v.CategoryName = format.CategoryName(*n.Category, lang)
	}
	for _, t := range n.Tags {
		// The featured sentinel is layout metadata, not reader-facing.
		if t.Name == models.FeaturedTagName {
			continue
		}
		v.TagNames = append(v.TagNames, format.TagName(t, lang))
	}
	return v
}

func toNewsViews(items []models.NewsItem, lang models.Language) []newsView {
	views := make([]newsView, 0, len(items))
	for _, n := range items {
		views = append(views, toNewsView(n, lang))
	}
	return views
}

func toSectionViews(sections []homepage.Section, lang models.Language) []sectionView {
	views := make([]sectionView, 0, len(sections))
	for _, s := range sections {
		views = append(views, sectionView{
			Category: categoryView{ID: s.Category.ID, Name: format.CategoryName(s.Category, lang)},
			News:     toNewsViews(s.News, lang),
		})
	}
	return views
}

func toDetailView(n models.NewsItem, lang models.Language) detailView {
	v := detailView{newsView: toNewsView(n, lang)}
	for i := range n.Sources {
		s := n.Sources[i]
		v.Sources = append(v.Sources, sourceView{
			Label: format.SourceLabel(&s),
			URL:   format.SourceURL(&s),
		})
	}
	if len(v.Sources) > 0 {
		v.PrimarySource = &v.Sources[0]
	}
	return v
}
