package usecase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"updatescout/internal/config"
	"updatescout/internal/domain"
	"updatescout/internal/extract"
	"updatescout/internal/infrastructure/catalog"
	"updatescout/internal/infrastructure/support"
)

func TestCorrelateSingleNoteAppliesToAll(t *testing.T) {
	t.Parallel()

	article := domain.ArticleReference{ArticleNumber: "4567890"}
	urls := []string{"https://d/1.msu", "https://d/2.msu", "https://d/3.msu"}

	downloads, warnings := Correlate(article, []string{"2024-05 Cumulative Update (KB4567890)"}, urls)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(downloads) != 3 {
		t.Fatalf("expected 3 records, got %d", len(downloads))
	}
	for _, d := range downloads {
		if d.Note != "2024-05 Cumulative Update (KB4567890)" {
			t.Fatalf("single note must apply to every url, got %q", d.Note)
		}
		if d.KB != "KB4567890" {
			t.Fatalf("all records must share the run KB, got %s", d.KB)
		}
	}
}

func TestCorrelatePairsByIndex(t *testing.T) {
	t.Parallel()

	article := domain.ArticleReference{ArticleNumber: "4567890"}
	notes := []string{"note a", "note b", "note c"}
	urls := []string{"https://d/1.msu", "https://d/2.msu", "https://d/3.msu"}

	downloads, warnings := Correlate(article, notes, urls)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	for i, d := range downloads {
		if d.Note != notes[i] {
			t.Fatalf("record %d: expected %q, got %q", i, notes[i], d.Note)
		}
	}
}

func TestCorrelateCountMismatch(t *testing.T) {
	t.Parallel()

	article := domain.ArticleReference{ArticleNumber: "4567890"}
	notes := []string{"note a", "note b"}
	urls := []string{"https://d/1.msu", "https://d/2.msu", "https://d/3.msu"}

	downloads, warnings := Correlate(article, notes, urls)
	if len(warnings) != 1 || warnings[0].Kind != domain.WarnNoteCorrelationMismatch {
		t.Fatalf("expected a note-correlation mismatch warning, got %v", warnings)
	}
	if len(downloads) != 3 {
		t.Fatalf("mismatch must not drop urls, got %d records", len(downloads))
	}
	if downloads[0].Note != "note a" || downloads[1].Note != "note b" {
		t.Fatalf("covered indices must still pair positionally: %v", downloads)
	}
	if downloads[2].Note != "" {
		t.Fatalf("uncovered index must not reuse a note, got %q", downloads[2].Note)
	}
}

func TestCorrelateNoURLs(t *testing.T) {
	t.Parallel()

	downloads, warnings := Correlate(domain.ArticleReference{ArticleNumber: "1"}, []string{"note"}, nil)
	if downloads != nil || warnings != nil {
		t.Fatalf("expected empty result, got %v / %v", downloads, warnings)
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	t.Parallel()

	supportSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"links":[{"level":2,"text":"Cumulative Update","articleID":"4567890"}]}`))
	}))
	defer supportSrv.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/Search.aspx", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "KB4567890" {
			t.Errorf("unexpected catalog query: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`
		<input id="abc123" type="Button" value="Download"/>
		<a id="abc123_link">2024-05 Cumulative Update (KB4567890) x64</a>`))
	})
	mux.HandleFunc("/DownloadDialog.aspx", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`url = 'https://download.windowsupdate.com/x/y/update.msu';`))
	})
	catalogSrv := httptest.NewServer(mux)
	defer catalogSrv.Close()

	cfg := config.CatalogConfig{
		SearchURL:         catalogSrv.URL + "/Search.aspx",
		DownloadDialogURL: catalogSrv.URL + "/DownloadDialog.aspx",
	}

	pipeline := NewPipeline(PipelineDeps{
		Locator:   support.NewLocator(supportSrv.Client(), nil),
		Catalog:   catalog.NewClient(cfg, catalogSrv.Client(), nil),
		Extractor: extract.ForEnvironment(true),
	})

	profile := domain.VersionProfile{
		Version:            "Windows10",
		StartEndpointURL:   supportSrv.URL,
		ArticleFilterLabel: "Cumulative Update",
		SearchPattern:      "Cumulative.*x64",
	}

	result, err := pipeline.LatestUpdate(context.Background(), profile)
	if err != nil {
		t.Fatalf("LatestUpdate returned error: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", result.Warnings)
	}
	if len(result.Downloads) != 1 {
		t.Fatalf("expected 1 download, got %d", len(result.Downloads))
	}

	got := result.Downloads[0]
	if got.KB != "KB4567890" {
		t.Fatalf("unexpected KB: %s", got.KB)
	}
	if got.Note != "2024-05 Cumulative Update (KB4567890)" {
		t.Fatalf("unexpected note: %s", got.Note)
	}
	if got.URL != "https://download.windowsupdate.com/x/y/update.msu" {
		t.Fatalf("unexpected url: %s", got.URL)
	}
}

func TestPipelineDegradesToWarnings(t *testing.T) {
	t.Parallel()

	supportSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"links":[{"level":1,"text":"Cumulative Update","articleID":"4567890"}]}`))
	}))
	defer supportSrv.Close()

	pipeline := NewPipeline(PipelineDeps{
		Locator:   support.NewLocator(supportSrv.Client(), nil),
		Catalog:   catalog.NewClient(config.CatalogConfig{}, nil, nil),
		Extractor: extract.ForEnvironment(false),
	})

	profile := domain.VersionProfile{
		StartEndpointURL:   supportSrv.URL,
		ArticleFilterLabel: "Cumulative Update",
		SearchPattern:      "Cumulative",
	}

	// The only matching link is level 1, so the run must end with an
	// article-not-found warning and an empty result, not an error.
	result, err := pipeline.LatestUpdate(context.Background(), profile)
	if err != nil {
		t.Fatalf("LatestUpdate returned error: %v", err)
	}
	if len(result.Downloads) != 0 {
		t.Fatalf("expected no downloads, got %v", result.Downloads)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Kind != domain.WarnArticleNotFound {
		t.Fatalf("expected article-not-found warning, got %v", result.Warnings)
	}
}
