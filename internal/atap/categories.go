package atap

import (
	"context"
	"net/http"
	"strings"

	"github.com/Zhihong0321/ATAP-solar/internal/logger"
	"github.com/Zhihong0321/ATAP-solar/internal/models"
)

// FallbackCategories is the hardcoded taxonomy used when the category fetch
// fails. The remote schema has drifted from this client's expectations at
// least once (missing name_* columns), so the public pages must never depend
// on that endpoint succeeding.
func FallbackCategories() []models.Category {
	return []models.Category{
		{ID: "1", Name: "Solar Policy", Tags: []models.Tag{}},
		{ID: "2", Name: "Renewable Energy", Tags: []models.Tag{}},
		{ID: "3", Name: "Industry News", Tags: []models.Tag{}},
		{ID: "4", Name: "ATAP Updates", Tags: []models.Tag{}},
	}
}

func isSchemaDrift(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "name_en") ||
		strings.Contains(msg, "name_cn") ||
		strings.Contains(msg, "name_my")
}

// FetchCategories lists the taxonomy. It never returns an error: any failure
// degrades to the fallback taxonomy, with schema drift logged distinctly.
func (c *Client) FetchCategories(ctx context.Context) []models.Category {
	body, err := c.request(ctx, http.MethodGet, "/api/v1/categories", "", nil, nil)
	if err == nil {
		categories, parseErr := unwrapList[models.Category](body)
		if parseErr == nil {
			return categories
		}
		err = parseErr
	}

	if isSchemaDrift(err) {
		logger.Warn().Err(err).Msg("Category schema mismatch, using fallback taxonomy")
	} else {
		logger.WithError(err).Msg("Failed to fetch categories, using fallback taxonomy")
	}
	return FallbackCategories()
}

// CreateCategory adds a category with the base name only.
func (c *Client) CreateCategory(ctx context.Context, token, name string) (models.Category, error) {
	body, err := c.request(ctx, http.MethodPost, "/api/v1/categories", token, map[string]string{"name": name}, nil)
	if err != nil {
		return models.Category{}, err
	}
	return unwrapItem[models.Category](body)
}

// UpdateCategory renames a category.
func (c *Client) UpdateCategory(ctx context.Context, token, id, name string) (models.Category, error) {
	body, err := c.request(ctx, http.MethodPut, "/api/v1/categories/"+id, token, map[string]string{"name": name}, nil)
	if err != nil {
		return models.Category{}, err
	}
	return unwrapItem[models.Category](body)
}

// DeleteCategory removes a category and everything tagged under it. The
// schema-version header tells the backend this client only speaks the base
// name schema.
func (c *Client) DeleteCategory(ctx context.Context, token, id string) error {
	headers := map[string]string{"X-Schema-Version": "base-name-only"}
	_, err := c.request(ctx, http.MethodDelete, "/api/v1/categories/"+id, token, map[string]interface{}{}, headers)
	return err
}

// CreateTag attaches a tag to a category.
func (c *Client) CreateTag(ctx context.Context, token, categoryID, name string) (models.Tag, error) {
	body, err := c.request(ctx, http.MethodPost, "/api/v1/categories/"+categoryID+"/tags", token, map[string]string{"name": name}, nil)
	if err != nil {
		return models.Tag{}, err
	}
	return unwrapItem[models.Tag](body)
}

// DeleteTag removes a tag.
func (c *Client) DeleteTag(ctx context.Context, token, tagID string) error {
	_, err := c.request(ctx, http.MethodDelete, "/api/v1/tags/"+tagID, token, map[string]interface{}{}, nil)
	return err
}
