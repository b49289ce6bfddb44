package forecast

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors for the forecast page. The page is semi-structured and drifts;
// every lookup below is optional and absence degrades to a null field or a
// skipped block, never to an error.
const (
	locationBlockSelector = ".forecast-location, .pronostico-ciudad"
	locationNameSelector  = ".location-name, .ciudad"
	locationNameFallback  = "h2, h3"
	dayRowSelector        = ".forecast-day, tr.dia"
	dayDateSelector       = ".date, .fecha"
	dayHighSelector       = ".temp-max, .max"
	dayLowSelector        = ".temp-min, .min"
	dayDescSelector       = ".description, .descripcion"
)

// ParseDocument builds a goquery document from raw HTML.
func ParseDocument(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, NewFetchError(FetchKindParse, err)
	}
	return doc, nil
}

// ExtractLocations walks the already-loaded document and returns every
// location block in document order. It is pure over the document: no network,
// no clock, no failure path. Blocks without a readable name are skipped; rows
// are always emitted, even when all four fields are missing.
func ExtractLocations(doc *goquery.Document) []LocationForecast {
	locations := make([]LocationForecast, 0)
	if doc == nil {
		return locations
	}

	doc.Find(locationBlockSelector).Each(func(_ int, block *goquery.Selection) {
		name := blockName(block)
		if name == "" {
			return
		}
		days := make([]ForecastDay, 0)
		block.Find(dayRowSelector).Each(func(_ int, row *goquery.Selection) {
			days = append(days, ForecastDay{
				Date:        optionalText(row, dayDateSelector),
				HighTemp:    optionalText(row, dayHighSelector),
				LowTemp:     optionalText(row, dayLowSelector),
				Description: optionalText(row, dayDescSelector),
			})
		})
		locations = append(locations, LocationForecast{Name: name, Days: days})
	})

	return locations
}

func blockName(block *goquery.Selection) string {
	if name := strings.TrimSpace(block.Find(locationNameSelector).First().Text()); name != "" {
		return name
	}
	return strings.TrimSpace(block.Find(locationNameFallback).First().Text())
}

func optionalText(row *goquery.Selection, selector string) *string {
	node := row.Find(selector).First()
	if node.Length() == 0 {
		return nil
	}
	text := strings.TrimSpace(node.Text())
	if text == "" {
		return nil
	}
	return &text
}
