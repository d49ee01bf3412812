package extractor

import (
	"fmt"
	"net/http"
)

// Webpage is a downloaded page before parsing.
type Webpage struct {
	URL     string
	Status  int
	Headers http.Header
	Content string
}

// String summarizes the page without dumping its body.
func (w Webpage) String() string {
	return fmt.Sprintf(
		"Webpage{url: %s, status: %d, headers: %v, content-len: %d}",
		w.URL, w.Status, w.Headers, len(w.Content),
	)
}

// Extract pairs a page with what was parsed out of it.
type Extract[T any] struct {
	Webpage Webpage
	Data    T
}
