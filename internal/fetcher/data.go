package fetcher

import (
	"net/http"
)

// Response is what an HttpClient hands back: the status code is passed
// through uninterpreted.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

type FetchResult struct {
	url      string
	cacheKey string
	body     []byte
	meta     ResponseMeta
}

type ResponseMeta struct {
	statusCode      int
	responseHeaders http.Header
	cacheHit        bool
}

func (f FetchResult) URL() string {
	return f.url
}

func (f FetchResult) CacheKey() string {
	return f.cacheKey
}

func (f FetchResult) Body() []byte {
	return f.body
}

// Code is the response status; a cache hit reports 200.
func (f FetchResult) Code() int {
	return f.meta.statusCode
}

func (f FetchResult) SizeByte() uint64 {
	return uint64(len(f.body))
}

// Headers are the response headers. They are empty on a cache hit since
// entries store the body only.
func (f FetchResult) Headers() http.Header {
	return f.meta.responseHeaders
}

func (f FetchResult) CacheHit() bool {
	return f.meta.cacheHit
}

// NewFetchResultForTest creates a FetchResult for testing purposes.
// This allows test packages to construct FetchResult values without
// accessing unexported fields directly.
func NewFetchResultForTest(
	url string,
	body []byte,
	statusCode int,
	responseHeaders http.Header,
	cacheHit bool,
) FetchResult {
	return FetchResult{
		url:  url,
		body: body,
		meta: ResponseMeta{
			statusCode:      statusCode,
			responseHeaders: responseHeaders,
			cacheHit:        cacheHit,
		},
	}
}
