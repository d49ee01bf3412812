package extractor

import (
	"context"
	"errors"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/rohmanhakim/web-scraper/internal/fetcher"
	"github.com/rohmanhakim/web-scraper/internal/metadata"
	"github.com/rohmanhakim/web-scraper/internal/scrape"
	"github.com/rohmanhakim/web-scraper/pkg/failure"
)

/*
Responsibilities
- Download one page
- Parse it into a DOM
- Hand the DOM to a Parser and return its output with the page

Extractors are safe for concurrent use when their Parser is. Every call
blocks until done or until ctx is canceled.
*/

type Extractor[T any] interface {
	Extract(ctx context.Context, url string) (Extract[T], error)
}

// HTTPExtractor performs a single GET with no cache and no status check.
// The page keeps whatever status the server answered with.
type HTTPExtractor[T any] struct {
	client       fetcher.HttpClient
	parser       Parser[T]
	metadataSink metadata.MetadataSink
}

func NewHTTPExtractor[T any](
	client fetcher.HttpClient,
	parser Parser[T],
	metadataSink metadata.MetadataSink,
) (*HTTPExtractor[T], error) {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	if client == nil || parser == nil {
		return nil, &ExtractionError{
			Message: "client and parser are required",
			Cause:   ErrCauseSetup,
		}
	}
	return &HTTPExtractor[T]{
		client:       client,
		parser:       parser,
		metadataSink: metadataSink,
	}, nil
}

func (h *HTTPExtractor[T]) Extract(ctx context.Context, url string) (Extract[T], error) {
	startTime := time.Now()
	resp, err := h.client.Execute(ctx, http.MethodGet, url, http.Header{})
	if err != nil {
		return Extract[T]{}, record(h.metadataSink, "HTTPExtractor.Extract", &ExtractionError{
			Message:   err.Error(),
			Retryable: !errors.Is(err, context.Canceled),
			Cause:     ErrCauseDownload,
			URL:       url,
			Err:       err,
		})
	}
	h.metadataSink.RecordFetch(url, resp.StatusCode, time.Since(startTime), resp.Headers.Get("Content-Type"), len(resp.Body))

	webpage := Webpage{
		URL:     url,
		Status:  resp.StatusCode,
		Headers: resp.Headers,
		Content: string(resp.Body),
	}
	result, err := parse(h.parser, webpage)
	if err != nil {
		return Extract[T]{}, record(h.metadataSink, "HTTPExtractor.Extract", err)
	}
	return result, nil
}

// FetcherExtractor downloads through a Fetcher, so pages come from the
// web cache when present.
type FetcherExtractor[T any] struct {
	fetcher      *fetcher.Fetcher
	parser       Parser[T]
	metadataSink metadata.MetadataSink
}

func NewFetcherExtractor[T any](
	f *fetcher.Fetcher,
	parser Parser[T],
	metadataSink metadata.MetadataSink,
) (*FetcherExtractor[T], error) {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	if f == nil || parser == nil {
		return nil, &ExtractionError{
			Message: "fetcher and parser are required",
			Cause:   ErrCauseSetup,
		}
	}
	return &FetcherExtractor[T]{
		fetcher:      f,
		parser:       parser,
		metadataSink: metadataSink,
	}, nil
}

func (e *FetcherExtractor[T]) Extract(ctx context.Context, url string) (Extract[T], error) {
	result, fetchErr := e.fetcher.Fetch(ctx, http.MethodGet, url)
	if fetchErr != nil {
		return Extract[T]{}, record(e.metadataSink, "FetcherExtractor.Extract", &ExtractionError{
			Message:   fetchErr.Error(),
			Retryable: failure.IsRecoverable(fetchErr),
			Cause:     ErrCauseDownload,
			URL:       url,
			Err:       fetchErr,
		})
	}
	if !utf8.Valid(result.Body()) {
		return Extract[T]{}, record(e.metadataSink, "FetcherExtractor.Extract", &ExtractionError{
			Message: "body is not valid UTF-8",
			Cause:   ErrCauseParse,
			URL:     url,
		})
	}

	webpage := Webpage{
		URL:     url,
		Status:  result.Code(),
		Headers: result.Headers(),
		Content: string(result.Body()),
	}
	extract, err := parse(e.parser, webpage)
	if err != nil {
		return Extract[T]{}, record(e.metadataSink, "FetcherExtractor.Extract", err)
	}
	return extract, nil
}

// Scrape fetches url as text, parses it and runs f on the document root.
func Scrape[T any](ctx context.Context, f *fetcher.Fetcher, url string, fn func(scrape.Scraper) (T, error)) (T, error) {
	var zero T
	text, err := f.GetText(ctx, url)
	if err != nil {
		return zero, err
	}
	s, parseErr := scrape.Parse(text)
	if parseErr != nil {
		return zero, parseErr
	}
	return fn(s)
}

// record reports err to sink and returns it unchanged.
func record(sink metadata.MetadataSink, action string, err error) error {
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		return err
	}
	attrs := []metadata.Attribute{}
	if extractionErr.URL != "" {
		attrs = append(attrs, metadata.NewAttr(metadata.AttrURL, extractionErr.URL))
	}
	var scrapeErr *scrape.ScrapeError
	if errors.As(err, &scrapeErr) && scrapeErr.Selector != "" {
		attrs = append(attrs, metadata.NewAttr(metadata.AttrSelector, scrapeErr.Selector))
	}
	sink.RecordError(
		time.Now(),
		"extractor",
		action,
		mapExtractionErrorToMetadataCause(extractionErr),
		err.Error(),
		attrs,
	)
	return err
}
