package support

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"updatescout/internal/domain"
	"updatescout/internal/ports"
)

// referenceLinkLevel is the nesting level of per-update entries in the
// support-content asset; level-1 links are section headers.
const referenceLinkLevel = 2

// Locator resolves the current reference article from the support-content
// endpoint of a version family.
type Locator struct {
	client *http.Client
	logger *slog.Logger
}

var _ ports.ArticleLocator = (*Locator)(nil)

// NewLocator wires an HTTP client; a nil client gets a 20s-timeout default.
func NewLocator(client *http.Client, logger *slog.Logger) *Locator {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Locator{client: client, logger: logger}
}

type linkEntry struct {
	Level     int    `json:"level"`
	Text      string `json:"text"`
	ArticleID string `json:"articleID"`
}

type assetDocument struct {
	Links []linkEntry `json:"links"`
}

// Locate fetches the endpoint, keeps level-2 links whose label matches
// filterLabel (case-insensitive), and returns the first match in document
// order. Later matches are newer-to-older duplicates of the same listing and
// are ignored.
func (l *Locator) Locate(ctx context.Context, endpointURL, filterLabel string) (domain.ArticleReference, error) {
	pattern, err := regexp.Compile("(?i)" + filterLabel)
	if err != nil {
		return domain.ArticleReference{}, fmt.Errorf("invalid filter label %q: %w", filterLabel, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpointURL, nil)
	if err != nil {
		return domain.ArticleReference{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "updatescout/1.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return domain.ArticleReference{}, fmt.Errorf("request asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ArticleReference{}, fmt.Errorf("support endpoint returned %s", resp.Status)
	}

	var doc assetDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return domain.ArticleReference{}, fmt.Errorf("decode asset: %w", err)
	}

	for _, link := range doc.Links {
		if link.Level != referenceLinkLevel {
			continue
		}
		if !pattern.MatchString(link.Text) {
			continue
		}
		l.debug("reference article located", "articleID", link.ArticleID, "text", link.Text)
		return domain.ArticleReference{ArticleNumber: link.ArticleID}, nil
	}

	return domain.ArticleReference{}, fmt.Errorf("filter %q: %w", filterLabel, domain.ErrArticleNotFound)
}

func (l *Locator) debug(msg string, args ...interface{}) {
	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}
