package atap

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Zhihong0321/ATAP-solar/internal/models"
)

// NewsQuery filters the news listing. Nil fields are omitted from the query.
type NewsQuery struct {
	Published     *bool
	Highlight     *bool
	Limit         int
	Offset        *int
	ContentStatus string
}

func (q NewsQuery) encode() string {
	v := url.Values{}
	if q.Published != nil {
		v.Set("published", strconv.FormatBool(*q.Published))
	}
	if q.Highlight != nil {
		v.Set("highlight", strconv.FormatBool(*q.Highlight))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset != nil {
		v.Set("offset", strconv.Itoa(*q.Offset))
	}
	if q.ContentStatus != "" {
		v.Set("content_status", q.ContentStatus)
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// FetchNews lists news items. Public, no credentials.
func (c *Client) FetchNews(ctx context.Context, q NewsQuery) ([]models.NewsItem, error) {
	body, err := c.request(ctx, http.MethodGet, "/api/v1/news"+q.encode(), "", nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrapList[models.NewsItem](body)
}

// FetchNewsByID returns a single item, or (nil, nil) when the API says 404.
func (c *Client) FetchNewsByID(ctx context.Context, id string) (*models.NewsItem, error) {
	body, err := c.request(ctx, http.MethodGet, "/api/v1/news/"+id, "", nil, nil)
	if err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	item, err := unwrapItem[models.NewsItem](body)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// NewsPayload is the create/update body for a news item. All six localized
// fields are mandatory at creation time.
type NewsPayload struct {
	TitleEN     string            `json:"title_en" validate:"required"`
	TitleCN     string            `json:"title_cn" validate:"required"`
	TitleMY     string            `json:"title_my" validate:"required"`
	ContentEN   string            `json:"content_en" validate:"required"`
	ContentCN   string            `json:"content_cn" validate:"required"`
	ContentMY   string            `json:"content_my" validate:"required"`
	NewsDate    string            `json:"news_date" validate:"required"`
	ImageURL    string            `json:"image_url,omitempty"`
	Sources     models.SourceList `json:"sources,omitempty"`
	IsPublished bool              `json:"is_published"`
	IsHighlight bool              `json:"is_highlight"`
	CategoryID  *string           `json:"category_id"`
	TagIDs      []string          `json:"tag_ids,omitempty"`
}

// dualCasing duplicates category_id under categoryId; the backend has accepted
// either casing at different points and the write must tolerate both.
func dualCasing(p NewsPayload) map[string]interface{} {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	m["categoryId"] = m["category_id"]
	return m
}

// CreateNews submits a new item and returns the server's representation.
func (c *Client) CreateNews(ctx context.Context, token string, p NewsPayload) (models.NewsItem, error) {
	body, err := c.request(ctx, http.MethodPost, "/api/v1/news", token, dualCasing(p), nil)
	if err != nil {
		return models.NewsItem{}, err
	}
	return unwrapItem[models.NewsItem](body)
}

// UpdateNews replaces an item and returns the server's representation. The
// response may omit the denormalized category object even when category_id was
// set; callers reconcile against their own category list.
func (c *Client) UpdateNews(ctx context.Context, token, id string, p NewsPayload) (models.NewsItem, error) {
	body, err := c.request(ctx, http.MethodPut, "/api/v1/news/"+id, token, dualCasing(p), nil)
	if err != nil {
		return models.NewsItem{}, err
	}
	return unwrapItem[models.NewsItem](body)
}

// PublishPayload flips the two independent publication flags. Nil fields are
// left untouched by the API.
type PublishPayload struct {
	IsPublished *bool `json:"is_published,omitempty"`
	IsHighlight *bool `json:"is_highlight,omitempty"`
}

// PublishNews toggles publish/highlight state on a single item.
func (c *Client) PublishNews(ctx context.Context, token, id string, p PublishPayload) (models.NewsItem, error) {
	body, err := c.request(ctx, http.MethodPatch, "/api/v1/news/"+id+"/publish", token, p, nil)
	if err != nil {
		return models.NewsItem{}, err
	}
	return unwrapItem[models.NewsItem](body)
}

// DeleteNews removes an item permanently.
func (c *Client) DeleteNews(ctx context.Context, token, id string) error {
	_, err := c.request(ctx, http.MethodDelete, "/api/v1/news/"+id, token, map[string]interface{}{}, nil)
	return err
}
