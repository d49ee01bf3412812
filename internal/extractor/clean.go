package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// chromeSelector matches page furniture that never belongs in the output.
const chromeSelector = "script, style, noscript, template, iframe, nav, aside, footer, form, button"

// keptWhenEmpty are elements that carry meaning without children.
//
//nolint:gochecknoglobals // static lookup table
var keptWhenEmpty = map[string]bool{
	"area": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "source": true, "track": true, "wbr": true,
	"td": true, "th": true,
}

// clean returns a copy of content without chrome and without elements
// left empty after that. The document itself is not modified.
func clean(content *goquery.Selection) *goquery.Selection {
	cleaned := content.Clone()
	cleaned.Find(chromeSelector).Remove()
	for _, node := range cleaned.Nodes {
		removeEmptyBottomUp(node)
	}
	return cleaned
}

// removeEmptyBottomUp visits children first so nested empty containers
// disappear in one pass.
func removeEmptyBottomUp(node *html.Node) {
	var children []*html.Node
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		children = append(children, child)
	}
	for _, child := range children {
		removeEmptyBottomUp(child)
	}

	if node.Type != html.ElementNode || node.Parent == nil || keptWhenEmpty[node.Data] {
		return
	}
	if isEmpty(node) {
		node.Parent.RemoveChild(node)
	}
}

func isEmpty(node *html.Node) bool {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.ElementNode:
			return false
		case html.TextNode:
			if strings.TrimSpace(child.Data) != "" {
				return false
			}
		}
	}
	return true
}
