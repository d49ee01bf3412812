package extractor

import (
	"errors"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/web-scraper/internal/scrape"
)

// Parser turns a parsed page into T.
type Parser[T any] interface {
	Parse(webpage Webpage, doc *goquery.Document) (T, error)
}

type ParserFunc[T any] func(webpage Webpage, doc *goquery.Document) (T, error)

func (f ParserFunc[T]) Parse(webpage Webpage, doc *goquery.Document) (T, error) {
	return f(webpage, doc)
}

// ScrapeParser parses with a selection function over the document root.
type ScrapeParser[T any] func(s scrape.Scraper) (T, error)

func (f ScrapeParser[T]) Parse(_ Webpage, doc *goquery.Document) (T, error) {
	return f(scrape.FromDocument(doc))
}

// parse runs parser over content and classifies the failure.
func parse[T any](parser Parser[T], webpage Webpage) (Extract[T], error) {
	doc, err := scrape.ParseDocument(webpage.Content)
	if err != nil {
		return Extract[T]{}, &ExtractionError{
			Message: err.Error(),
			Cause:   ErrCauseParse,
			URL:     webpage.URL,
			Err:     err,
		}
	}
	data, err := parser.Parse(webpage, doc)
	if err != nil {
		var extractionErr *ExtractionError
		if errors.As(err, &extractionErr) {
			return Extract[T]{}, extractionErr
		}
		return Extract[T]{}, &ExtractionError{
			Message: err.Error(),
			Cause:   ErrCauseExecution,
			URL:     webpage.URL,
			Err:     err,
		}
	}
	return Extract[T]{Webpage: webpage, Data: data}, nil
}
