package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrMalformedURL      = errors.New("malformed url")
	ErrUnsupportedScheme = errors.New("scheme must be http or https")
	ErrFragment          = errors.New("url must not carry a fragment")
)

// ValidateRequestURL parses rawURL and checks that it can be sent to a server:
//   - the scheme is "http" or "https" once parsed
//   - the host is not empty
//   - there is no fragment, not even an empty trailing "#"
//
// Errors wrap one of ErrMalformedURL, ErrUnsupportedScheme or ErrFragment.
func ValidateRequestURL(rawURL string) (*url.URL, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: got %q", ErrUnsupportedScheme, parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: missing host in %q", ErrMalformedURL, rawURL)
	}
	// url.Parse drops an empty fragment, so look at the raw text too
	if parsed.Fragment != "" || parsed.RawFragment != "" || strings.Contains(rawURL, "#") {
		return nil, fmt.Errorf("%w: %q", ErrFragment, rawURL)
	}
	return parsed, nil
}

// CacheKey builds the cache identity of a request. The URL text is kept
// as given. With includeMethod the key is "<METHOD> <URL>" and the method
// is upper-cased so "get" and "GET" share one entry.
func CacheKey(method string, rawURL string, includeMethod bool) string {
	if !includeMethod {
		return rawURL
	}
	if method == "" {
		method = "GET"
	}
	return upperASCII(method) + " " + rawURL
}

// upperASCII converts ASCII characters to uppercase without allocating
// when the input is already upper-case.
func upperASCII(s string) string {
	var needsUpper bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'a' && s[i] <= 'z' {
			needsUpper = true
			break
		}
	}
	if !needsUpper {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'a' && b[i] <= 'z' {
			b[i] -= 'a' - 'A'
		}
	}
	return string(b)
}
