package domain

import "errors"

// ErrArticleNotFound signals that no reference article matched the profile filter.
var ErrArticleNotFound = errors.New("no matching reference article")

// VersionProfile pins the discovery inputs for one OS version family.
type VersionProfile struct {
	Version            string
	Build              string // populated for Windows 10 only
	StartEndpointURL   string
	ArticleFilterLabel string
	SearchPattern      string
}

// ArticleReference identifies the current reference KB article for one run.
type ArticleReference struct {
	ArticleNumber string
}

// KB returns the display form of the article number, e.g. "KB4567890".
func (a ArticleReference) KB() string {
	return "KB" + a.ArticleNumber
}

// CandidateUpdate is one selectable package on the catalog results page.
type CandidateUpdate struct {
	ID string
}

// ResolvedDownload pairs one direct download URL with its release note.
type ResolvedDownload struct {
	KB   string
	Note string
	URL  string
}

// WarningKind enumerates the non-fatal shortfalls a run can report.
type WarningKind string

const (
	WarnEndpointUnreachable      WarningKind = "endpoint_unreachable"
	WarnArticleNotFound          WarningKind = "article_not_found"
	WarnCatalogUnavailable       WarningKind = "catalog_unavailable"
	WarnNoCandidatesFound        WarningKind = "no_candidates_found"
	WarnDownloadResolutionFailed WarningKind = "download_resolution_failed"
	WarnNoteCorrelationMismatch  WarningKind = "note_correlation_mismatch"
)

// Warning records a recoverable shortfall; the run continues with less data.
type Warning struct {
	Kind   WarningKind
	Detail string
}
