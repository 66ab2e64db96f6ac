package atap

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Zhihong0321/ATAP-solar/internal/models"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second), srv
}

func TestFetchNewsUnwrapsEnvelope(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("public read carried credentials")
		}
		w.Write([]byte(`{"data": [{"id": "n1", "title_en": "A"}]}`))
	})

	news, err := client.FetchNews(context.Background(), NewsQuery{})
	if err != nil {
		t.Fatalf("FetchNews failed: %v", err)
	}
	if len(news) != 1 || news[0].ID != "n1" {
		t.Fatalf("news = %+v", news)
	}
}

func TestFetchNewsBareArray(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": "n1"}, {"id": "n2"}]`))
	})

	news, err := client.FetchNews(context.Background(), NewsQuery{})
	if err != nil {
		t.Fatalf("FetchNews failed: %v", err)
	}
	if len(news) != 2 {
		t.Fatalf("got %d items, want 2", len(news))
	}
}

func TestFetchNewsNullDataEnvelope(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": null}`))
	})

	news, err := client.FetchNews(context.Background(), NewsQuery{})
	if err != nil {
		t.Fatalf("enveloped null should mean empty, got error: %v", err)
	}
	if len(news) != 0 {
		t.Fatalf("news = %+v, want empty", news)
	}
}

func TestFetchNewsQueryEncoding(t *testing.T) {
	published := true
	offset := 20
	var gotQuery string
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	})

	_, err := client.FetchNews(context.Background(), NewsQuery{
		Published: &published,
		Limit:     100,
		Offset:    &offset,
	})
	if err != nil {
		t.Fatalf("FetchNews failed: %v", err)
	}
	for _, want := range []string{"published=true", "limit=100", "offset=20"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
	if strings.Contains(gotQuery, "highlight") {
		t.Errorf("nil highlight filter leaked into query %q", gotQuery)
	}
}

func TestFetchNewsByIDNotFound(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such item", http.StatusNotFound)
	})

	item, err := client.FetchNewsByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("404 should not be an error, got %v", err)
	}
	if item != nil {
		t.Fatalf("item = %+v, want nil", item)
	}
}

func TestRequestErrorKeepsServerWording(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error": "slug already exists"}`))
	})

	_, err := client.CreateCategory(context.Background(), "tok", "Dup")
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *RequestError, got %T: %v", err, err)
	}
	if reqErr.StatusCode != http.StatusConflict {
		t.Errorf("StatusCode = %d", reqErr.StatusCode)
	}
	if !strings.Contains(reqErr.Error(), "slug already exists") {
		t.Errorf("error message lost the server body: %q", reqErr.Error())
	}
}

func TestCreateNewsDualCasingAndToken(t *testing.T) {
	var captured map[string]interface{}
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer admin-token" {
			t.Errorf("Authorization = %q", got)
		}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &captured); err != nil {
			t.Errorf("body is not JSON: %v", err)
		}
		w.Write([]byte(`{"data": {"id": "n1"}}`))
	})

	catID := "c7"
	_, err := client.CreateNews(context.Background(), "admin-token", NewsPayload{
		TitleEN: "t", TitleCN: "t", TitleMY: "t",
		ContentEN: "c", ContentCN: "c", ContentMY: "c",
		NewsDate:   "2025-06-01",
		CategoryID: &catID,
	})
	if err != nil {
		t.Fatalf("CreateNews failed: %v", err)
	}
	if captured["category_id"] != "c7" {
		t.Errorf("category_id = %v", captured["category_id"])
	}
	if captured["categoryId"] != "c7" {
		t.Errorf("categoryId = %v (both casings must be sent)", captured["categoryId"])
	}
}

func TestCreateNewsNullCategorySerialized(t *testing.T) {
	var rawBody string
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		rawBody = string(raw)
		w.Write([]byte(`{"id": "n1"}`))
	})

	_, err := client.CreateNews(context.Background(), "tok", NewsPayload{
		TitleEN: "t", TitleCN: "t", TitleMY: "t",
		ContentEN: "c", ContentCN: "c", ContentMY: "c",
		NewsDate: "2025-06-01",
	})
	if err != nil {
		t.Fatalf("CreateNews failed: %v", err)
	}
	// An explicit null tells the backend to clear the assignment; omitting the
	// key would leave it unchanged.
	if !strings.Contains(rawBody, `"category_id":null`) {
		t.Errorf("body %q does not carry the explicit null category", rawBody)
	}
}

func TestDeleteNewsNoContent(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.DeleteNews(context.Background(), "tok", "n1"); err != nil {
		t.Fatalf("DeleteNews failed on 204: %v", err)
	}
}

func TestFetchCategoriesFallbackOnFailure(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	categories := client.FetchCategories(context.Background())
	if len(categories) != 4 {
		t.Fatalf("got %d fallback categories, want 4", len(categories))
	}
	if categories[0].Name != "Solar Policy" || categories[3].Name != "ATAP Updates" {
		t.Errorf("fallback taxonomy changed: %+v", categories)
	}
}

func TestFetchCategoriesFallbackOnSchemaDrift(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "column \"name_en\" does not exist"}`, http.StatusBadRequest)
	})

	categories := client.FetchCategories(context.Background())
	if len(categories) != 4 {
		t.Fatalf("schema drift did not degrade to fallback: %+v", categories)
	}
}

func TestFetchCategoriesSuccess(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [{"id": "c1", "name": "Solar Policy", "tags": [{"id": "t1", "name": "NEM"}]}]}`))
	})

	categories := client.FetchCategories(context.Background())
	if len(categories) != 1 || categories[0].ID != "c1" || len(categories[0].Tags) != 1 {
		t.Fatalf("categories = %+v", categories)
	}
}

func TestDeleteCategorySchemaVersionHeader(t *testing.T) {
	var gotHeader string
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Schema-Version")
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.DeleteCategory(context.Background(), "tok", "c1"); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}
	if gotHeader != "base-name-only" {
		t.Errorf("X-Schema-Version = %q", gotHeader)
	}
}

func TestCreateTagPath(t *testing.T) {
	var gotPath string
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"id": "t1", "name": "Featured"}`))
	})

	tag, err := client.CreateTag(context.Background(), "tok", "c1", models.FeaturedTagName)
	if err != nil {
		t.Fatalf("CreateTag failed: %v", err)
	}
	if gotPath != "/api/v1/categories/c1/tags" {
		t.Errorf("path = %q", gotPath)
	}
	if tag.Name != models.FeaturedTagName {
		t.Errorf("tag = %+v", tag)
	}
}

func TestRunTaskAndProcessRewrites(t *testing.T) {
	var paths []string
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{}`))
	})

	if err := client.RunTask(context.Background(), "tok", "task1"); err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	if err := client.ProcessRewrites(context.Background(), "tok"); err != nil {
		t.Fatalf("ProcessRewrites failed: %v", err)
	}
	if len(paths) != 2 ||
		paths[0] != "POST /api/v1/news-tasks/task1/run" ||
		paths[1] != "POST /api/v1/news-leads/process-rewrites" {
		t.Errorf("paths = %v", paths)
	}
}
