package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/rohmanhakim/web-scraper/internal/mdconvert"
	"golang.org/x/net/html"
)

/*
Scraper is a read-only view of one element of a parsed document.

Every combinator takes a CSS selector and declares how many matches it
expects:
  - All / AllFlat: zero or more
  - Only: exactly one
  - Optional: zero or one

Selectors are compiled before any element is visited, so a malformed
selector fails the same way whatever the markup. Matches are the
descendants of the wrapped element, in document order.

A Scraper is valid as long as its document is; it never mutates it.
*/
type Scraper struct {
	selection *goquery.Selection
}

// ParseDocument parses text as an HTML document.
func ParseDocument(text string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil, &ScrapeError{
			Message: err.Error(),
			Cause:   ErrCauseParseFailure,
			Err:     err,
		}
	}
	return doc, nil
}

// Parse parses text and wraps the document root.
func Parse(text string) (Scraper, error) {
	doc, err := ParseDocument(text)
	if err != nil {
		return Scraper{}, err
	}
	return FromDocument(doc), nil
}

func FromDocument(doc *goquery.Document) Scraper {
	return Scraper{selection: doc.Selection}
}

// FromSelection wraps the first node of selection.
func FromSelection(selection *goquery.Selection) Scraper {
	return Scraper{selection: selection.First()}
}

func (s Scraper) Selection() *goquery.Selection {
	return s.selection
}

// Node returns the wrapped node, or nil for an empty Scraper.
func (s Scraper) Node() *html.Node {
	if s.selection == nil || len(s.selection.Nodes) == 0 {
		return nil
	}
	return s.selection.Nodes[0]
}

// Text concatenates every descendant text node.
func (s Scraper) Text() string {
	if s.selection == nil {
		return ""
	}
	return s.selection.Text()
}

func (s Scraper) Attr(name string) (string, bool) {
	if s.selection == nil {
		return "", false
	}
	return s.selection.Attr(name)
}

// HTML serializes the inner markup of the element.
func (s Scraper) HTML() (string, error) {
	if s.selection == nil {
		return "", nil
	}
	inner, err := s.selection.Html()
	if err != nil {
		return "", &ScrapeError{Message: err.Error(), Cause: ErrCauseRenderFailure, Err: err}
	}
	return inner, nil
}

// Markdown renders the element and its descendants as Markdown.
func (s Scraper) Markdown() (string, error) {
	markdown, err := mdconvert.Convert(s.Node())
	if err != nil {
		return "", &ScrapeError{Message: err.Error(), Cause: ErrCauseRenderFailure, Err: err}
	}
	return markdown, nil
}

func compile(selector string) (cascadia.Selector, error) {
	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return nil, &ScrapeError{
			Message:  err.Error(),
			Cause:    ErrCauseInvalidSelection,
			Selector: selector,
			Err:      err,
		}
	}
	return matcher, nil
}

// matches returns the descendants of s matching selector, in document order.
func (s Scraper) matches(selector string) (*goquery.Selection, error) {
	matcher, err := compile(selector)
	if err != nil {
		return nil, err
	}
	if s.selection == nil {
		return &goquery.Selection{}, nil
	}
	return s.selection.FindMatcher(matcher), nil
}
