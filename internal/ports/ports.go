package ports

import (
	"context"
	"time"

	"updatescout/internal/domain"
	"updatescout/internal/extract"
)

// ArticleLocator finds the current reference article for a version profile.
// Implementations return domain.ErrArticleNotFound when no level-2 link
// matches the filter label.
type ArticleLocator interface {
	Locate(ctx context.Context, endpointURL, filterLabel string) (domain.ArticleReference, error)
}

// CatalogClient queries the public update catalog.
type CatalogClient interface {
	// Search fetches the results page for one KB article number.
	Search(ctx context.Context, articleNumber string) (*extract.Page, error)
	// ResolveDownloads posts one candidate to the download dialog and
	// returns every embedded download-service URL in order of appearance.
	ResolveDownloads(ctx context.Context, candidateID string) ([]string, error)
}

// Notifier streams resolved-download digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
