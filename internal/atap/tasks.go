package atap

import (
	"context"
	"net/http"

	"github.com/Zhihong0321/ATAP-solar/internal/models"
)

// TaskPayload is the create/update body for a discovery task.
type TaskPayload struct {
	Query          string `json:"query" validate:"required"`
	AccountName    string `json:"account_name,omitempty"`
	CollectionUUID string `json:"collection_uuid,omitempty"`
	CategoryID     string `json:"category_id,omitempty"`
}

// FetchTasks lists the saved discovery tasks.
func (c *Client) FetchTasks(ctx context.Context, token string) ([]models.NewsTask, error) {
	body, err := c.request(ctx, http.MethodGet, "/api/v1/news-tasks", token, nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrapList[models.NewsTask](body)
}

func (c *Client) CreateTask(ctx context.Context, token string, p TaskPayload) (models.NewsTask, error) {
	body, err := c.request(ctx, http.MethodPost, "/api/v1/news-tasks", token, p, nil)
	if err != nil {
		return models.NewsTask{}, err
	}
	return unwrapItem[models.NewsTask](body)
}

func (c *Client) UpdateTask(ctx context.Context, token, id string, p TaskPayload) (models.NewsTask, error) {
	body, err := c.request(ctx, http.MethodPut, "/api/v1/news-tasks/"+id, token, p, nil)
	if err != nil {
		return models.NewsTask{}, err
	}
	return unwrapItem[models.NewsTask](body)
}

func (c *Client) DeleteTask(ctx context.Context, token, id string) error {
	_, err := c.request(ctx, http.MethodDelete, "/api/v1/news-tasks/"+id, token, nil, nil)
	return err
}

// RunTask enqueues an asynchronous discovery pass. There is no completion
// signal; results surface in the pending news pool eventually.
func (c *Client) RunTask(ctx context.Context, token, id string) error {
	_, err := c.request(ctx, http.MethodPost, "/api/v1/news-tasks/"+id+"/run", token, nil, nil)
	return err
}

// ProcessRewrites enqueues the AI rewrite batch over pending leads. Like
// RunTask, the work is asynchronous with no completion callback.
func (c *Client) ProcessRewrites(ctx context.Context, token string) error {
	_, err := c.request(ctx, http.MethodPost, "/api/v1/news-leads/process-rewrites", token, map[string]interface{}{}, nil)
	return err
}
