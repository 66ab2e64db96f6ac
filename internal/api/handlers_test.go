package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Zhihong0321/ATAP-solar/internal/atap"
	"github.com/Zhihong0321/ATAP-solar/internal/cache"
	"github.com/Zhihong0321/ATAP-solar/internal/config"
	"github.com/Zhihong0321/ATAP-solar/internal/middleware"
	"github.com/Zhihong0321/ATAP-solar/internal/newsroom"
	"github.com/Zhihong0321/ATAP-solar/internal/stocks"
	"github.com/gofiber/fiber/v2"
)

// testApp wires the full route table against one fake remote server standing
// in for both the content API and the quote provider.
func testApp(t *testing.T, remote http.HandlerFunc) *fiber.App {
	t.Helper()
	srv := httptest.NewServer(remote)
	t.Cleanup(srv.Close)

	client := atap.NewClient(srv.URL, 5*time.Second)
	coordinator := newsroom.NewCoordinator(client)
	stockService := stocks.NewService(srv.URL, cache.NewMemoryQuoteCache(15*time.Minute))

	handlers := NewHandlers(&config.Config{}, client, coordinator, stockService, nil)
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	SetupRoutes(app, handlers)
	return app
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("response is not a JSON object: %v", err)
	}
	return body
}

func TestHealthCheck(t *testing.T) {
	app := testApp(t, func(w http.ResponseWriter, r *http.Request) {})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["status"] != "ok" {
		t.Errorf("body = %+v", body)
	}
}

func TestHomeRendersLocalizedPage(t *testing.T) {
	app := testApp(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/news":
			if r.URL.Query().Get("published") != "true" {
				t.Errorf("homepage fetched without published filter: %q", r.URL.RawQuery)
			}
			w.Write([]byte(`{"data": [
				{"id": "n1", "title_en": "Quota raised", "title_cn": "配额上调", "title_my": "Kuota naik",
				 "news_date": "2025-06-01", "is_published": true, "category_id": "c1"}
			]}`))
		case "/api/v1/categories":
			w.Write([]byte(`{"data": [{"id": "c1", "name": "Featured"}]}`))
		default:
			http.NotFound(w, r)
		}
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/home?lang=cn", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["language"] != "cn" {
		t.Errorf("language = %v", body["language"])
	}
	if body["countdown_target"] != CountdownTarget {
		t.Errorf("countdown_target = %v", body["countdown_target"])
	}
	mainNews, _ := body["main_news"].([]interface{})
	if len(mainNews) != 1 {
		t.Fatalf("main_news = %+v", body["main_news"])
	}
	item := mainNews[0].(map[string]interface{})
	if item["title"] != "配额上调" {
		t.Errorf("title = %v, want the cn field", item["title"])
	}
	// Nothing is explicitly highlighted, so the carousel falls back to the
	// freshest main items.
	highlights, _ := body["highlights"].([]interface{})
	if len(highlights) != 1 {
		t.Errorf("highlights = %+v", body["highlights"])
	}
}

func TestHomeDegradesWhenRemoteIsDown(t *testing.T) {
	app := testApp(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "remote down", http.StatusInternalServerError)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/home", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("public homepage returned %d, must never 5xx", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	// The fallback taxonomy still yields a main category.
	main, _ := body["main"].(map[string]interface{})
	if main == nil || main["name"] != "Solar Policy" {
		t.Errorf("main = %+v, want first fallback category", body["main"])
	}
	if news, _ := body["main_news"].([]interface{}); len(news) != 0 {
		t.Errorf("main_news = %+v, want empty", news)
	}
}

func TestNewsDetailNotFound(t *testing.T) {
	app := testApp(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/news/missing", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestNewsDetailUpstreamFailure(t *testing.T) {
	app := testApp(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "remote down", http.StatusInternalServerError)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/news/n1", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	// A failing upstream is distinguished from a missing item.
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
}

func TestNewsDetailRendersSources(t *testing.T) {
	app := testApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"id": "n1", "title_en": "Quota raised", "news_date": "2025-06-01",
			"sources": ["https://www.thestar.com.my/x", {"name": "Bernama", "url": "https://bernama.com/y"}]}}`))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/news/n1", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	sources, _ := body["sources"].([]interface{})
	if len(sources) != 2 {
		t.Fatalf("sources = %+v", body["sources"])
	}
	first := sources[0].(map[string]interface{})
	if first["label"] != "thestar.com.my" {
		t.Errorf("label = %v, want hostname-derived label", first["label"])
	}
	second := sources[1].(map[string]interface{})
	if second["label"] != "Bernama" {
		t.Errorf("label = %v", second["label"])
	}
}

func TestStocksFailure(t *testing.T) {
	app := testApp(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/stocks", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["error"] != "Failed to fetch stock data" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestSettingsDefaultAndUpdate(t *testing.T) {
	app := testApp(t, func(w http.ResponseWriter, r *http.Request) {})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if body := decodeBody(t, resp); body["fontSize"] != "medium" {
		t.Errorf("default fontSize = %v", body["fontSize"])
	}

	req := httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(`{"fontSize": "large"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["fontSize"] != "large" {
		t.Errorf("updated fontSize = %v", body["fontSize"])
	}

	var cookie string
	for _, c := range resp.Cookies() {
		if c.Name == "solar-atap-settings" {
			cookie = c.Value
		}
	}
	if cookie == "" {
		t.Fatal("settings cookie not set")
	}
	// The cookie value is URL-escaped JSON.
	if !strings.Contains(cookie, "%22large%22") {
		t.Errorf("cookie = %q, want escaped JSON", cookie)
	}
}

func TestSettingsRejectsUnknownFontSize(t *testing.T) {
	app := testApp(t, func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(`{"fontSize": "enormous"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
}

func TestAdminRequiresBearerToken(t *testing.T) {
	app := testApp(t, func(w http.ResponseWriter, r *http.Request) {})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/admin/state", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/state", nil)
	req.Header.Set("Authorization", "Bearer operator-token")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status with token = %d", resp.StatusCode)
	}
}

func TestAdminDeleteNeedsConfirmQuery(t *testing.T) {
	var remoteDeletes int
	app := testApp(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			remoteDeletes++
			w.WriteHeader(http.StatusNoContent)
		}
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/news/n1", nil)
	req.Header.Set("Authorization", "Bearer tok")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unconfirmed delete status = %d, want 400", resp.StatusCode)
	}
	if remoteDeletes != 0 {
		t.Error("unconfirmed delete reached the remote API")
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/admin/news/n1?confirm=true", nil)
	req.Header.Set("Authorization", "Bearer tok")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("confirmed delete status = %d, want 204", resp.StatusCode)
	}
	if remoteDeletes != 1 {
		t.Errorf("remote deletes = %d", remoteDeletes)
	}
}

func TestAdminCreateNewsValidation(t *testing.T) {
	app := testApp(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid payload must not reach the remote API")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/news", strings.NewReader(`{"title_en": "only english"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer tok")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	fields, _ := body["fields"].(map[string]interface{})
	if _, ok := fields["TitleCN"]; !ok {
		t.Errorf("fields = %+v, want TitleCN flagged", fields)
	}
}

func TestAdminCreateNewsCommaSourcesNormalized(t *testing.T) {
	var captured map[string]interface{}
	app := testApp(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("remote body is not JSON: %v", err)
		}
		w.Write([]byte(`{"data": {"id": "n1"}}`))
	})

	payload := `{"title_en": "t", "title_cn": "t", "title_my": "t",
		"content_en": "c", "content_cn": "c", "content_my": "c",
		"news_date": "2025-06-01", "sources": "A, B"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/news", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer tok")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	sources, _ := captured["sources"].([]interface{})
	if len(sources) != 2 {
		t.Fatalf("remote received sources = %+v, want the normalized pair", captured["sources"])
	}
	first, _ := sources[0].(map[string]interface{})
	second, _ := sources[1].(map[string]interface{})
	if first["name"] != "A" || second["name"] != "B" {
		t.Errorf("sources = %+v, want [{name:A} {name:B}]", sources)
	}
}

func TestAdminUpstreamAuthErrorPassthrough(t *testing.T) {
	app := testApp(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/categories", strings.NewReader(`{"name": "New"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer stale-token")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want upstream 401 passed through", resp.StatusCode)
	}
	if body := decodeBody(t, resp); !strings.Contains(body["error"].(string), "token expired") {
		t.Errorf("error = %v, want upstream wording preserved", body["error"])
	}
}

func TestAdminUploadMediaUnconfigured(t *testing.T) {
	app := testApp(t, func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/media", nil)
	req.Header.Set("Authorization", "Bearer tok")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501 when R2 is not configured", resp.StatusCode)
	}
}
