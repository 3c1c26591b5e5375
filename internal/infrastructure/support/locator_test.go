package support

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"updatescout/internal/domain"
)

const assetFixture = `{
  "links": [
    {"level": 1, "text": "Windows 10, version 1709 (OS Build 16299)", "articleID": "0"},
    {"level": 2, "text": "October 17, 2017 - KB4043961 (OS Build 16299.15)", "articleID": "4043961"},
    {"level": 2, "text": "October 31, 2017 - KB4048955 (OS Build 16299.19)", "articleID": "4048955"}
  ]
}`

func TestLocateFirstLevelTwoMatch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(assetFixture))
	}))
	defer server.Close()

	locator := NewLocator(server.Client(), nil)
	article, err := locator.Locate(context.Background(), server.URL, "16299")
	if err != nil {
		t.Fatalf("Locate returned error: %v", err)
	}

	// The level-1 header also mentions 16299 but must be skipped; the first
	// level-2 match wins over the later one.
	if article.ArticleNumber != "4043961" {
		t.Fatalf("unexpected article: %s", article.ArticleNumber)
	}
	if article.KB() != "KB4043961" {
		t.Fatalf("unexpected KB form: %s", article.KB())
	}
}

func TestLocateNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(assetFixture))
	}))
	defer server.Close()

	locator := NewLocator(server.Client(), nil)
	_, err := locator.Locate(context.Background(), server.URL, "99999")
	if !errors.Is(err, domain.ErrArticleNotFound) {
		t.Fatalf("expected ErrArticleNotFound, got %v", err)
	}
}

func TestLocateTransportFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	locator := NewLocator(server.Client(), nil)
	_, err := locator.Locate(context.Background(), server.URL, "16299")
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if errors.Is(err, domain.ErrArticleNotFound) {
		t.Fatalf("transport failure must not read as not-found: %v", err)
	}
}
