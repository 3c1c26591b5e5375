package extract

import (
	"regexp"
	"strings"

	"updatescout/internal/domain"
)

// detailLinkSuffix marks anchors that point at a KB detail view; stripping it
// recovers the raw candidate identifier used by the download dialog.
const detailLinkSuffix = "_link"

// noteExpr matches release-note strings of the form "2024-05 ... (KB4567890)".
var noteExpr = regexp.MustCompile(`\d{4}-\d{2}.*?\(KB\d{7}\)`)

// Extractor reconciles the two page renderings a host environment may
// produce: some renderers expose only the outer markup of each anchor,
// others the parsed inner text. One variant is selected at pipeline start
// and used for both candidate matching and note extraction.
type Extractor interface {
	Name() string
	LinkText(l Link) string
	Notes(p *Page, pattern *regexp.Regexp) []string
}

// ForEnvironment selects the extractor matching the host renderer capability.
func ForEnvironment(outerMarkupOnly bool) Extractor {
	if outerMarkupOnly {
		return outerMarkup{}
	}
	return innerText{}
}

type innerText struct{}

func (innerText) Name() string { return "inner-text" }

func (innerText) LinkText(l Link) string { return l.Text }

// Notes keeps the inner text of every anchor matching the search pattern.
func (innerText) Notes(p *Page, pattern *regexp.Regexp) []string {
	var notes []string
	for _, l := range p.Links() {
		if l.Text == "" {
			continue
		}
		if pattern.MatchString(l.Text) {
			notes = append(notes, l.Text)
		}
	}
	return notes
}

type outerMarkup struct{}

func (outerMarkup) Name() string { return "outer-markup" }

func (outerMarkup) LinkText(l Link) string { return l.Markup }

// Notes scans the raw body for date/KB strings; renderers that only expose
// outer markup do not give reliable access to parsed anchor text.
func (outerMarkup) Notes(p *Page, _ *regexp.Regexp) []string {
	return noteExpr.FindAllString(p.RawBody(), -1)
}

// AvailableIDs projects the ids of controls rendering an enabled Download action.
func AvailableIDs(p *Page) []string {
	ids := make([]string, 0, len(p.InputControls()))
	for _, c := range p.InputControls() {
		if strings.EqualFold(c.Type, "button") && strings.EqualFold(c.Value, "download") {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// FilterCandidates intersects pattern-matching detail links with the
// available-download set, preserving the link collection's document order.
func FilterCandidates(p *Page, pattern *regexp.Regexp, ex Extractor) []domain.CandidateUpdate {
	available := make(map[string]struct{})
	for _, id := range AvailableIDs(p) {
		available[id] = struct{}{}
	}

	candidates := make([]domain.CandidateUpdate, 0, len(available))
	for _, l := range p.Links() {
		if !strings.HasSuffix(l.ID, detailLinkSuffix) {
			continue
		}
		if !pattern.MatchString(ex.LinkText(l)) {
			continue
		}
		id := strings.TrimSuffix(l.ID, detailLinkSuffix)
		if _, ok := available[id]; !ok {
			continue
		}
		candidates = append(candidates, domain.CandidateUpdate{ID: id})
	}
	return candidates
}
