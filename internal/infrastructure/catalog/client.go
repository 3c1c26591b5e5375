package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"updatescout/internal/config"
	"updatescout/internal/extract"
	"updatescout/internal/ports"
)

// downloadURLExpr matches direct package URLs embedded in the download-dialog
// response. Any URL outside the download service host is discarded.
var downloadURLExpr = regexp.MustCompile(`https?://download\.windowsupdate\.com/[^'"]*`)

// Client talks to the public update catalog: the search page and the
// download dialog.
type Client struct {
	searchURL string
	dialogURL string
	client    *http.Client
	logger    *slog.Logger
}

var _ ports.CatalogClient = (*Client)(nil)

// NewClient builds a catalog client from configuration; a nil HTTP client
// gets a 30s-timeout default.
func NewClient(cfg config.CatalogConfig, client *http.Client, logger *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		searchURL: cfg.SearchURL,
		dialogURL: cfg.DownloadDialogURL,
		client:    client,
		logger:    logger,
	}
}

// Search fetches the catalog results page for one KB article number.
func (c *Client) Search(ctx context.Context, articleNumber string) (*extract.Page, error) {
	pageURL, err := buildSearchURL(c.searchURL, articleNumber)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	page, err := extract.ParsePage(body)
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}

	c.debug("catalog search done", "kb", articleNumber, "links", len(page.Links()), "controls", len(page.InputControls()))
	return page, nil
}

// ResolveDownloads posts a single-candidate batch to the download dialog and
// scans the response for download-service URLs, preserving their order of
// appearance.
func (c *Client) ResolveDownloads(ctx context.Context, candidateID string) ([]string, error) {
	form := url.Values{}
	form.Set("updateIDs", dialogPayload(candidateID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.dialogURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "updatescout/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request download dialog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download dialog returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read dialog response: %w", err)
	}

	urls := downloadURLExpr.FindAllString(string(body), -1)
	c.debug("candidate resolved", "candidate", candidateID, "urls", len(urls))
	return urls, nil
}

// dialogPayload encodes the single-candidate batch the dialog expects:
// a JSON array inside a form field, update id and UI-info id both set to the
// candidate id and the size hint zeroed.
func dialogPayload(candidateID string) string {
	return fmt.Sprintf(`[{"size":0,"updateID":%q,"uidInfo":%q}]`, candidateID, candidateID)
}

func (c *Client) get(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "updatescout/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	return body, nil
}

func buildSearchURL(base, articleNumber string) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid search url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("q", "KB"+articleNumber)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (c *Client) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
