// Package newsroom owns the admin dashboard's working state: the in-memory
// news, task, and category collections, the optimistic merges applied after
// each mutation, and the delayed reloads that follow fire-and-forget pipeline
// triggers.
package newsroom

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Zhihong0321/ATAP-solar/internal/atap"
	"github.com/Zhihong0321/ATAP-solar/internal/logger"
	"github.com/Zhihong0321/ATAP-solar/internal/models"
)

// ErrConfirmationRequired guards destructive actions: deletes are refused
// until the caller passes explicit confirmation.
var ErrConfirmationRequired = errors.New("destructive action requires confirmation")

const (
	runReloadDelay     = 2 * time.Second
	rewriteReloadDelay = 3 * time.Second
	listLimit          = 100
)

// Coordinator mediates every admin action against the remote API and keeps
// the local collections consistent by merge-by-id rather than re-fetching
// after each write. Racing edits resolve last-response-wins; a generation
// counter keeps a stale in-flight load from overwriting newer state.
type Coordinator struct {
	client *atap.Client

	mu           sync.RWMutex
	news         []models.NewsItem
	tasks        []models.NewsTask
	categories   []models.Category
	pendingCount int
	lastError    string

	loadGen atomic.Uint64

	// schedule is swapped out in tests to avoid real timers.
	schedule func(d time.Duration, fn func())
}

func NewCoordinator(client *atap.Client) *Coordinator {
	return &Coordinator{
		client: client,
		schedule: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
	}
}

// Snapshot is a copy of the coordinator's collections for rendering.
type Snapshot struct {
	News         []models.NewsItem `json:"news"`
	Tasks        []models.NewsTask `json:"tasks"`
	Categories   []models.Category `json:"categories"`
	PendingCount int               `json:"pending_count"`
	LastError    string            `json:"last_error,omitempty"`
}

func (c *Coordinator) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		News:         append([]models.NewsItem(nil), c.news...),
		Tasks:        append([]models.NewsTask(nil), c.tasks...),
		Categories:   append([]models.Category(nil), c.categories...),
		PendingCount: c.pendingCount,
		LastError:    c.lastError,
	}
}

// Load issues the four collection fetches concurrently. Each failure degrades
// to an empty result for that one collection so a single failing endpoint
// cannot blank the others. If a newer Load starts while this one is in
// flight, the stale results are discarded instead of applied.
func (c *Coordinator) Load(ctx context.Context, token string) Snapshot {
	gen := c.loadGen.Add(1)

	var (
		news       []models.NewsItem
		tasks      []models.NewsTask
		pending    []models.NewsItem
		categories []models.Category
		wg         sync.WaitGroup
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		var err error
		news, err = c.client.FetchNews(ctx, atap.NewsQuery{Limit: listLimit, ContentStatus: models.ContentStatusFilled})
		if err != nil {
			logger.WithError(err).Msg("Failed to fetch filled news")
			news = nil
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		tasks, err = c.client.FetchTasks(ctx, token)
		if err != nil {
			logger.WithError(err).Msg("Failed to fetch tasks")
			tasks = nil
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		pending, err = c.client.FetchNews(ctx, atap.NewsQuery{Limit: listLimit, ContentStatus: models.ContentStatusEmpty})
		if err != nil {
			logger.WithError(err).Msg("Failed to fetch pending news")
			pending = nil
		}
	}()
	go func() {
		defer wg.Done()
		categories = c.client.FetchCategories(ctx)
	}()
	wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.loadGen.Load() {
		logger.Debug().Uint64("generation", gen).Msg("Discarding stale load result")
		return c.snapshotLocked()
	}
	c.news = news
	c.tasks = tasks
	c.categories = categories
	c.pendingCount = len(pending)
	return c.snapshotLocked()
}

func (c *Coordinator) snapshotLocked() Snapshot {
	return Snapshot{
		News:         append([]models.NewsItem(nil), c.news...),
		Tasks:        append([]models.NewsTask(nil), c.tasks...),
		Categories:   append([]models.Category(nil), c.categories...),
		PendingCount: c.pendingCount,
		LastError:    c.lastError,
	}
}

// recordError fills the single shared error slot shown in the admin banner.
// It is overwritten by the next failure and cleared explicitly, never queued.
func (c *Coordinator) recordError(err error) {
	c.mu.Lock()
	c.lastError = err.Error()
	c.mu.Unlock()
}

// ClearError dismisses the error banner.
func (c *Coordinator) ClearError() {
	c.mu.Lock()
	c.lastError = ""
	c.mu.Unlock()
}

// scheduleReload picks up the eventual results of an asynchronous pipeline
// trigger. The remote work has no completion callback, so a delayed full
// reload is a best-effort heuristic, not a guarantee the work has finished.
func (c *Coordinator) scheduleReload(token string, delay time.Duration) {
	c.schedule(delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		c.Load(ctx, token)
	})
}

// --- News actions ---

func (c *Coordinator) CreateNews(ctx context.Context, token string, p atap.NewsPayload) (models.NewsItem, error) {
	created, err := c.client.CreateNews(ctx, token, p)
	if err != nil {
		c.recordError(err)
		return models.NewsItem{}, err
	}
	c.mu.Lock()
	c.news = append([]models.NewsItem{created}, c.news...)
	c.mu.Unlock()
	return created, nil
}

// UpdateNews replaces the matching local item with the server's response.
// When the payload carried a category_id but the response left the
// denormalized category object unpopulated, the category is patched in from
// the locally held list so display names stay correct without a re-fetch.
func (c *Coordinator) UpdateNews(ctx context.Context, token, id string, p atap.NewsPayload) (models.NewsItem, error) {
	updated, err := c.client.UpdateNews(ctx, token, id, p)
	if err != nil {
		c.recordError(err)
		return models.NewsItem{}, err
	}

	c.mu.Lock()
	if p.CategoryID != nil && *p.CategoryID != "" && updated.Category == nil {
		for i := range c.categories {
			if c.categories[i].ID == *p.CategoryID {
				cat := c.categories[i]
				updated.Category = &cat
				break
			}
		}
	}
	c.replaceNewsLocked(updated)
	c.mu.Unlock()
	return updated, nil
}

func (c *Coordinator) TogglePublish(ctx context.Context, token, id string, p atap.PublishPayload) (models.NewsItem, error) {
	updated, err := c.client.PublishNews(ctx, token, id, p)
	if err != nil {
		c.recordError(err)
		return models.NewsItem{}, err
	}
	c.mu.Lock()
	c.replaceNewsLocked(updated)
	c.mu.Unlock()
	return updated, nil
}

func (c *Coordinator) DeleteNews(ctx context.Context, token, id string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := c.client.DeleteNews(ctx, token, id); err != nil {
		c.recordError(err)
		return err
	}
	c.mu.Lock()
	c.news = removeNewsByID(c.news, id)
	c.mu.Unlock()
	return nil
}

// RefreshNews re-fetches a single item from the remote API, preferring the
// server's truth over the mutation response when the two are known to diverge.
func (c *Coordinator) RefreshNews(ctx context.Context, id string) (*models.NewsItem, error) {
	fresh, err := c.client.FetchNewsByID(ctx, id)
	if err != nil {
		c.recordError(err)
		return nil, err
	}
	if fresh == nil {
		return nil, nil
	}
	c.mu.Lock()
	c.replaceNewsLocked(*fresh)
	c.mu.Unlock()
	return fresh, nil
}

func (c *Coordinator) replaceNewsLocked(item models.NewsItem) {
	for i := range c.news {
		if c.news[i].ID == item.ID {
			c.news[i] = item
			return
		}
	}
}

func removeNewsByID(news []models.NewsItem, id string) []models.NewsItem {
	out := news[:0]
	for _, n := range news {
		if n.ID != id {
			out = append(out, n)
		}
	}
	return out
}

// --- Task actions ---

func (c *Coordinator) CreateTask(ctx context.Context, token string, p atap.TaskPayload) (models.NewsTask, error) {
	created, err := c.client.CreateTask(ctx, token, p)
	if err != nil {
		c.recordError(err)
		return models.NewsTask{}, err
	}
	c.mu.Lock()
	c.tasks = append([]models.NewsTask{created}, c.tasks...)
	c.mu.Unlock()
	return created, nil
}

func (c *Coordinator) UpdateTask(ctx context.Context, token, id string, p atap.TaskPayload) (models.NewsTask, error) {
	updated, err := c.client.UpdateTask(ctx, token, id, p)
	if err != nil {
		c.recordError(err)
		return models.NewsTask{}, err
	}
	c.mu.Lock()
	for i := range c.tasks {
		if c.tasks[i].ID == updated.ID {
			c.tasks[i] = updated
			break
		}
	}
	c.mu.Unlock()
	return updated, nil
}

func (c *Coordinator) DeleteTask(ctx context.Context, token, id string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := c.client.DeleteTask(ctx, token, id); err != nil {
		c.recordError(err)
		return err
	}
	c.mu.Lock()
	out := c.tasks[:0]
	for _, t := range c.tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	c.tasks = out
	c.mu.Unlock()
	return nil
}

// RunTask triggers a discovery pass and schedules a reload to pick up the
// eventual pending items.
func (c *Coordinator) RunTask(ctx context.Context, token, id string) error {
	if err := c.client.RunTask(ctx, token, id); err != nil {
		c.recordError(err)
		return err
	}
	c.scheduleReload(token, runReloadDelay)
	return nil
}

// ProcessRewrites triggers the AI rewrite batch and schedules a reload so the
// drafts list eventually reflects the filled items.
func (c *Coordinator) ProcessRewrites(ctx context.Context, token string) error {
	if err := c.client.ProcessRewrites(ctx, token); err != nil {
		c.recordError(err)
		return err
	}
	c.scheduleReload(token, rewriteReloadDelay)
	return nil
}

// --- Category and tag actions ---

func (c *Coordinator) CreateCategory(ctx context.Context, token, name string) (models.Category, error) {
	created, err := c.client.CreateCategory(ctx, token, name)
	if err != nil {
		c.recordError(err)
		return models.Category{}, err
	}
	c.mu.Lock()
	c.categories = append(c.categories, created)
	c.mu.Unlock()
	return created, nil
}

func (c *Coordinator) UpdateCategory(ctx context.Context, token, id, name string) (models.Category, error) {
	updated, err := c.client.UpdateCategory(ctx, token, id, name)
	if err != nil {
		c.recordError(err)
		return models.Category{}, err
	}
	c.mu.Lock()
	for i := range c.categories {
		if c.categories[i].ID == updated.ID {
			// The rename response carries no tags; keep the ones we hold.
			if updated.Tags == nil {
				updated.Tags = c.categories[i].Tags
			}
			c.categories[i] = updated
			break
		}
	}
	c.mu.Unlock()
	return updated, nil
}

func (c *Coordinator) DeleteCategory(ctx context.Context, token, id string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := c.client.DeleteCategory(ctx, token, id); err != nil {
		c.recordError(err)
		return err
	}
	c.mu.Lock()
	out := c.categories[:0]
	for _, cat := range c.categories {
		if cat.ID != id {
			out = append(out, cat)
		}
	}
	c.categories = out
	c.mu.Unlock()
	return nil
}

// CreateTag attaches a tag to a category. Creating the featured sentinel tag
// first deletes any existing featured tag on another category, keeping the
// at-most-one convention. This is best-effort client-side enforcement, not a
// server constraint; concurrent admins could still violate it.
func (c *Coordinator) CreateTag(ctx context.Context, token, categoryID, name string) (models.Tag, error) {
	if name == models.FeaturedTagName {
		c.mu.RLock()
		stale := make([]string, 0, 1)
		for _, cat := range c.categories {
			if cat.ID == categoryID {
				continue
			}
			for _, t := range cat.Tags {
				if t.Name == models.FeaturedTagName {
					stale = append(stale, t.ID)
				}
			}
		}
		c.mu.RUnlock()
		for _, tagID := range stale {
			if err := c.client.DeleteTag(ctx, token, tagID); err != nil {
				logger.WithError(err).Str("tag_id", tagID).Msg("Failed to clear previous featured tag")
				continue
			}
			c.removeTagLocally(tagID)
		}
	}

	created, err := c.client.CreateTag(ctx, token, categoryID, name)
	if err != nil {
		c.recordError(err)
		return models.Tag{}, err
	}
	c.mu.Lock()
	for i := range c.categories {
		if c.categories[i].ID == categoryID {
			c.categories[i].Tags = append(c.categories[i].Tags, created)
			break
		}
	}
	c.mu.Unlock()
	return created, nil
}

func (c *Coordinator) DeleteTag(ctx context.Context, token, tagID string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := c.client.DeleteTag(ctx, token, tagID); err != nil {
		c.recordError(err)
		return err
	}
	c.removeTagLocally(tagID)
	return nil
}

func (c *Coordinator) removeTagLocally(tagID string) {
	c.mu.Lock()
	for i := range c.categories {
		tags := c.categories[i].Tags[:0]
		for _, t := range c.categories[i].Tags {
			if t.ID != tagID {
				tags = append(tags, t)
			}
		}
		c.categories[i].Tags = tags
	}
	c.mu.Unlock()
}
