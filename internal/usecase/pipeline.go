package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"updatescout/internal/domain"
	"updatescout/internal/extract"
	"updatescout/internal/ports"
)

// PipelineDeps wires all driven adapters into the resolution pipeline.
type PipelineDeps struct {
	Locator   ports.ArticleLocator
	Catalog   ports.CatalogClient
	Extractor extract.Extractor
	Notifier  ports.Notifier
	Logger    *slog.Logger
}

// Pipeline implements the update-resolution workflow: locate the reference
// article, search the catalog, filter candidates, resolve download URLs, and
// correlate each URL with a release note.
type Pipeline struct {
	locator   ports.ArticleLocator
	catalog   ports.CatalogClient
	extractor extract.Extractor
	notifier  ports.Notifier
	logger    *slog.Logger
}

// Result is the report of one pipeline run. Every stage shortfall is carried
// as a warning; a run with warnings and zero downloads is still a completed
// run.
type Result struct {
	Downloads []domain.ResolvedDownload
	Warnings  []domain.Warning
}

// runState threads intermediate values between pipeline stages.
type runState struct {
	profile    domain.VersionProfile
	pattern    *regexp.Regexp
	article    domain.ArticleReference
	page       *extract.Page
	candidates []domain.CandidateUpdate
	notes      []string
	urls       []string
	result     Result
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	if deps.Logger != nil && deps.Extractor != nil {
		deps.Logger.Debug("link text extractor selected", "extractor", deps.Extractor.Name())
	}
	return &Pipeline{
		locator:   deps.Locator,
		catalog:   deps.Catalog,
		extractor: deps.Extractor,
		notifier:  deps.Notifier,
		logger:    deps.Logger,
	}
}

// LatestUpdate resolves the current cumulative/quality-rollup update for the
// given profile. Missing data at any stage degrades to an empty result with
// warnings; only a profile invalid enough to prevent the run from starting
// is returned as an error.
func (p *Pipeline) LatestUpdate(ctx context.Context, profile domain.VersionProfile) (Result, error) {
	pattern, err := regexp.Compile("(?i)" + profile.SearchPattern)
	if err != nil {
		return Result{}, fmt.Errorf("compile search pattern: %w", err)
	}

	state := &runState{profile: profile, pattern: pattern}

	stages := []func(ctx context.Context, s *runState) bool{
		p.locateArticle,
		p.fetchCatalogPage,
		p.selectCandidates,
		p.extractNotes,
		p.resolveDownloads,
		p.correlate,
	}
	for _, stage := range stages {
		if !stage(ctx, state) {
			break
		}
	}

	if p.notifier != nil && len(state.result.Downloads) > 0 {
		if err := p.notifier.PublishDigest(ctx, buildDigest(state.result.Downloads)); err != nil && p.logger != nil {
			p.logger.Warn("publish digest failed", "error", err)
		}
	}

	return state.result, nil
}

func (p *Pipeline) locateArticle(ctx context.Context, s *runState) bool {
	article, err := p.locator.Locate(ctx, s.profile.StartEndpointURL, s.profile.ArticleFilterLabel)
	if err != nil {
		if errors.Is(err, domain.ErrArticleNotFound) {
			p.warn(s, domain.WarnArticleNotFound, err.Error())
		} else {
			p.warn(s, domain.WarnEndpointUnreachable, err.Error())
		}
		return false
	}

	s.article = article
	return true
}

func (p *Pipeline) fetchCatalogPage(ctx context.Context, s *runState) bool {
	page, err := p.catalog.Search(ctx, s.article.ArticleNumber)
	if err != nil {
		p.warn(s, domain.WarnCatalogUnavailable, err.Error())
		return false
	}
	if page == nil || (len(page.Links()) == 0 && len(page.InputControls()) == 0) {
		p.warn(s, domain.WarnCatalogUnavailable, fmt.Sprintf("empty results page for %s", s.article.KB()))
		return false
	}

	s.page = page
	return true
}

func (p *Pipeline) selectCandidates(_ context.Context, s *runState) bool {
	s.candidates = extract.FilterCandidates(s.page, s.pattern, p.extractor)
	if len(s.candidates) == 0 {
		p.warn(s, domain.WarnNoCandidatesFound,
			fmt.Sprintf("no available update on %s matches %q", s.article.KB(), s.profile.SearchPattern))
		return false
	}
	return true
}

func (p *Pipeline) extractNotes(_ context.Context, s *runState) bool {
	s.notes = p.extractor.Notes(s.page, s.pattern)
	return true
}

// resolveDownloads posts each candidate to the download dialog in document
// order. A failing candidate contributes zero URLs and does not abort the
// others.
func (p *Pipeline) resolveDownloads(ctx context.Context, s *runState) bool {
	s.urls = make([]string, 0, len(s.candidates))
	for _, candidate := range s.candidates {
		urls, err := p.catalog.ResolveDownloads(ctx, candidate.ID)
		if err != nil {
			p.warn(s, domain.WarnDownloadResolutionFailed,
				fmt.Sprintf("candidate %s: %v", candidate.ID, err))
			continue
		}
		if len(urls) == 0 {
			p.warn(s, domain.WarnDownloadResolutionFailed,
				fmt.Sprintf("candidate %s yielded no download URLs", candidate.ID))
			continue
		}
		s.urls = append(s.urls, urls...)
	}
	return true
}

func (p *Pipeline) correlate(_ context.Context, s *runState) bool {
	downloads, warnings := Correlate(s.article, s.notes, s.urls)
	s.result.Downloads = downloads
	for _, w := range warnings {
		p.warn(s, w.Kind, w.Detail)
	}
	return true
}

// Correlate pairs each download URL with a release note. A single note
// applies to every URL; otherwise notes zip to URLs by position. Note and URL
// counts are independently derived, so a count divergence is reported as a
// mismatch warning and the uncovered URLs carry an empty note rather than a
// wrong one.
func Correlate(article domain.ArticleReference, notes, urls []string) ([]domain.ResolvedDownload, []domain.Warning) {
	if len(urls) == 0 {
		return nil, nil
	}

	var warnings []domain.Warning
	if len(notes) != 1 && len(notes) != len(urls) {
		warnings = append(warnings, domain.Warning{
			Kind:   domain.WarnNoteCorrelationMismatch,
			Detail: fmt.Sprintf("%d notes for %d urls on %s", len(notes), len(urls), article.KB()),
		})
	}

	downloads := make([]domain.ResolvedDownload, 0, len(urls))
	for i, u := range urls {
		var note string
		switch {
		case len(notes) == 1:
			note = notes[0]
		case i < len(notes):
			note = notes[i]
		}
		downloads = append(downloads, domain.ResolvedDownload{
			KB:   article.KB(),
			Note: note,
			URL:  u,
		})
	}

	return downloads, warnings
}

func (p *Pipeline) warn(s *runState, kind domain.WarningKind, detail string) {
	s.result.Warnings = append(s.result.Warnings, domain.Warning{Kind: kind, Detail: detail})
	if p.logger != nil {
		p.logger.Warn(detail, "kind", string(kind))
	}
}

func buildDigest(downloads []domain.ResolvedDownload) string {
	var formatted string
	for _, d := range downloads {
		formatted += fmt.Sprintf("%s\n%s\n%s\n\n", d.KB, d.Note, d.URL)
	}
	return formatted
}
