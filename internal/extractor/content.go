package extractor

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/web-scraper/internal/mdconvert"
	"golang.org/x/net/html"
)

/*
Main content lookup, in priority order:
  - semantic containers: main, article, [role=main]
  - caller selectors, then common documentation containers
The first candidate that carries meaningful content wins.
*/

//nolint:gochecknoglobals // static lookup table
var semanticContainers = []string{"main", "article", "[role='main']"}

//nolint:gochecknoglobals // static lookup table
var knownContainers = []string{
	".content",
	".markdown-body",
	".theme-doc-markdown",
	".md-content",
	".rst-content",
	"#content",
}

// MarkdownParser renders the main content of a page as Markdown, without
// navigation, scripts or other page chrome.
type MarkdownParser struct {
	selectors []string
}

// NewMarkdownParser tries selectors after the semantic containers and
// before the built-in ones. Duplicates are ignored.
func NewMarkdownParser(selectors ...string) MarkdownParser {
	return MarkdownParser{selectors: mergeSelectors(semanticContainers, selectors, knownContainers)}
}

func (m MarkdownParser) Parse(webpage Webpage, doc *goquery.Document) (string, error) {
	content, ok := m.MainContent(doc)
	if !ok {
		return "", &ExtractionError{
			Message: "no meaningful content container found",
			Cause:   ErrCauseNoContent,
			URL:     webpage.URL,
		}
	}
	markdown, err := mdconvert.ConvertSelection(clean(content))
	if err != nil {
		return "", &ExtractionError{
			Message: err.Error(),
			Cause:   ErrCauseExecution,
			URL:     webpage.URL,
			Err:     err,
		}
	}
	return markdown, nil
}

// MainContent returns the first meaningful container of doc.
func (m MarkdownParser) MainContent(doc *goquery.Document) (*goquery.Selection, bool) {
	selectors := m.selectors
	if selectors == nil {
		selectors = mergeSelectors(semanticContainers, knownContainers)
	}
	for _, selector := range selectors {
		found := doc.Find(selector).First()
		if found.Length() > 0 && isMeaningful(found.Nodes[0]) {
			return found, true
		}
	}
	return nil, false
}

func mergeSelectors(groups ...[]string) []string {
	seen := map[string]struct{}{}
	merged := []string{}
	for _, group := range groups {
		for _, selector := range group {
			selector = strings.TrimSpace(selector)
			if selector == "" {
				continue
			}
			if _, dup := seen[selector]; dup {
				continue
			}
			seen[selector] = struct{}{}
			merged = append(merged, selector)
		}
	}
	return merged
}

type contentStats struct {
	textLength     int
	nonWhitespace  int
	headings       int
	paragraphs     int
	codeBlocks     int
	links          int
	linkTextLength int
}

func (s *contentStats) collect(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		s.textLength += len(n.Data)
		for _, r := range n.Data {
			if !unicode.IsSpace(r) {
				s.nonWhitespace++
			}
		}
	case html.ElementNode:
		switch n.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			s.headings++
		case "p":
			s.paragraphs++
		case "code":
			s.codeBlocks++
		case "a":
			s.links++
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					s.linkTextLength += len(strings.TrimSpace(c.Data))
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		s.collect(c)
	}
}

// isMeaningful rejects containers that are too short or mostly links.
func isMeaningful(node *html.Node) bool {
	if node == nil {
		return false
	}
	var stats contentStats
	stats.collect(node)

	const minNonWhitespace = 50
	const maxLinkDensity = 0.8

	if stats.nonWhitespace < minNonWhitespace {
		return false
	}
	if stats.textLength > 0 && stats.links > 2 {
		density := float64(stats.linkTextLength) / float64(stats.textLength)
		if density > maxLinkDensity {
			return false
		}
	}
	return stats.paragraphs > 0 || stats.codeBlocks > 0 || (stats.headings > 0 && stats.nonWhitespace >= 20)
}
