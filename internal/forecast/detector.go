package forecast

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
)

// RenderDetector decides whether statically fetched HTML already carries the
// forecast table or whether the page needs a headless render. Used only in
// "auto" fetch mode.
type RenderDetector struct {
	minHTMLBytes int
	selector     string
}

// NewRenderDetector constructs a detector with the configured thresholds.
// selector is a CSS group selector; the page counts as rendered when any
// alternative matches.
func NewRenderDetector(minBytes int, selector string) *RenderDetector {
	return &RenderDetector{
		minHTMLBytes: minBytes,
		selector:     selector,
	}
}

// NeedsRender inspects the static HTML for signals that a browser render is
// required.
func (d *RenderDetector) NeedsRender(body []byte) bool {
	if d == nil {
		return false
	}
	if d.minHTMLBytes > 0 && len(body) < d.minHTMLBytes {
		return true
	}
	if d.selector == "" {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return true
	}
	return doc.Find(d.selector).Length() == 0
}
