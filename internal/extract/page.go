package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Link is one anchor projected from the catalog results page.
type Link struct {
	ID     string
	Text   string // inner text, whitespace-trimmed
	Markup string // outer HTML including attributes
}

// InputControl is one form control projected from the catalog results page.
type InputControl struct {
	ID    string
	Type  string
	Value string
}

// Page is a parsed catalog results document. It exposes the two projections
// the pipeline consumes plus the raw body for regex-based extraction, keeping
// markup details out of the pipeline stages.
type Page struct {
	links    []Link
	controls []InputControl
	raw      string
}

// ParsePage builds the link and input-control projections from a fetched body.
func ParsePage(body []byte) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	page := &Page{raw: string(body)}

	doc.Find("a").Each(func(i int, sel *goquery.Selection) {
		id, _ := sel.Attr("id")
		markup, mErr := goquery.OuterHtml(sel)
		if mErr != nil {
			markup = ""
		}
		page.links = append(page.links, Link{
			ID:     id,
			Text:   strings.TrimSpace(sel.Text()),
			Markup: markup,
		})
	})

	doc.Find("input").Each(func(i int, sel *goquery.Selection) {
		id, _ := sel.Attr("id")
		typ, _ := sel.Attr("type")
		value, _ := sel.Attr("value")
		page.controls = append(page.controls, InputControl{ID: id, Type: typ, Value: value})
	})

	return page, nil
}

// Links returns the page anchors in document order.
func (p *Page) Links() []Link {
	return p.links
}

// InputControls returns the page form controls in document order.
func (p *Page) InputControls() []InputControl {
	return p.controls
}

// RawBody returns the unparsed response body.
func (p *Page) RawBody() string {
	return p.raw
}
