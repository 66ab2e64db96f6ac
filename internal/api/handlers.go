package api

import (
	"encoding/json"
	"net/url"
	"sync"
	"time"

	"github.com/Zhihong0321/ATAP-solar/internal/atap"
	"github.com/Zhihong0321/ATAP-solar/internal/config"
	"github.com/Zhihong0321/ATAP-solar/internal/format"
	"github.com/Zhihong0321/ATAP-solar/internal/homepage"
	"github.com/Zhihong0321/ATAP-solar/internal/logger"
	"github.com/Zhihong0321/ATAP-solar/internal/media"
	"github.com/Zhihong0321/ATAP-solar/internal/middleware"
	"github.com/Zhihong0321/ATAP-solar/internal/models"
	"github.com/Zhihong0321/ATAP-solar/internal/newsroom"
	"github.com/Zhihong0321/ATAP-solar/internal/stocks"
	"github.com/gofiber/fiber/v2"
)

// CountdownTarget is the NEM 3.0 quota deadline shown on the homepage.
const CountdownTarget = "2025-12-31T12:00:00+08:00"

const settingsCookieName = "solar-atap-settings"

type Handlers struct {
	config      *config.Config
	content     *atap.Client
	coordinator *newsroom.Coordinator
	stocks      *stocks.Service
	uploader    *media.Uploader // nil when R2 is not configured
	validator   *middleware.Validator
}

func NewHandlers(cfg *config.Config, content *atap.Client, coordinator *newsroom.Coordinator, stockService *stocks.Service, uploader *media.Uploader) *Handlers {
	return &Handlers{
		config:      cfg,
		content:     content,
		coordinator: coordinator,
		stocks:      stockService,
		uploader:    uploader,
		validator:   middleware.NewValidator(),
	}
}

// HealthCheck handles GET /api/health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Home handles GET /api/home. Remote read failures degrade to empty lists;
// the public page never sees a 5xx from this endpoint.
func (h *Handlers) Home(c *fiber.Ctx) error {
	lang := models.ParseLanguage(c.Query("lang"))
	published := true

	var (
		news       []models.NewsItem
		categories []models.Category
		wg         sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		news, err = h.content.FetchNews(c.Context(), atap.NewsQuery{Published: &published})
		if err != nil {
			logger.WithError(err).Msg("Failed to fetch news for homepage")
			news = nil
		}
	}()
	go func() {
		defer wg.Done()
		categories = h.content.FetchCategories(c.Context())
	}()
	wg.Wait()

	page := homepage.Build(categories, news)

	view := homeView{
		Language:        lang,
		CountdownTarget: CountdownTarget,
		Highlights:      toNewsViews(page.Highlights, lang),
		MainNews:        toNewsViews(page.MainNews, lang),
		Above:           toSectionViews(page.Above, lang),
		Below:           toSectionViews(page.Below, lang),
		Uncategorized:   toNewsViews(page.Uncategorized, lang),
	}
	if page.Main != nil {
		view.Main = &categoryView{ID: page.Main.ID, Name: format.CategoryName(*page.Main, lang)}
	}
	// The carousel falls back to the five freshest main items when nothing is
	// explicitly highlighted.
	if len(view.Highlights) == 0 {
		limit := 5
		if len(view.MainNews) < limit {
			limit = len(view.MainNews)
		}
		view.Highlights = view.MainNews[:limit]
	}

	return c.JSON(view)
}

// NewsDetail handles GET /api/news/:id
func (h *Handlers) NewsDetail(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "News ID is required",
		})
	}
	lang := models.ParseLanguage(c.Query("lang"))

	item, err := h.content.FetchNewsByID(c.Context(), id)
	if err != nil {
		// A transport failure is not a missing item: the reader page shows a
		// retryable error state instead of a permanent not-found.
		logger.Get().Error().Err(err).Str("id", id).Msg("Error fetching news item")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to fetch news item",
		})
	}
	if item == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "News not found",
		})
	}

	return c.JSON(toDetailView(*item, lang))
}

// Stocks handles GET /api/stocks
func (h *Handlers) Stocks(c *fiber.Ctx) error {
	quotes, err := h.stocks.Quotes(c.Context())
	if err != nil {
		logger.WithError(err).Msg("Error fetching stock data")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch stock data",
		})
	}
	return c.JSON(quotes)
}

// GetSettings handles GET /api/settings
func (h *Handlers) GetSettings(c *fiber.Ctx) error {
	return c.JSON(readSettings(c))
}

// UpdateSettings handles PUT /api/settings
func (h *Handlers) UpdateSettings(c *fiber.Ctx) error {
	var body models.UserSettings
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if !body.FontSize.Valid() {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": fiber.Map{"fontSize": "oneof=small medium large"},
		})
	}

	settings := readSettings(c)
	settings.FontSize = body.FontSize
	writeSettings(c, settings)
	return c.JSON(settings)
}

func readSettings(c *fiber.Ctx) models.UserSettings {
	settings := models.DefaultSettings()
	raw := c.Cookies(settingsCookieName)
	if raw == "" {
		return settings
	}
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return settings
	}
	var stored models.UserSettings
	if err := json.Unmarshal([]byte(decoded), &stored); err != nil {
		return settings
	}
	if stored.FontSize.Valid() {
		settings.FontSize = stored.FontSize
	}
	return settings
}

func writeSettings(c *fiber.Ctx, settings models.UserSettings) {
	raw, err := json.Marshal(settings)
	if err != nil {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     settingsCookieName,
		Value:    url.QueryEscape(string(raw)),
		Expires:  time.Now().AddDate(1, 0, 0),
		Path:     "/",
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
