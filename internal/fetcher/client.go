package fetcher

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// HttpClient performs one request. It fails only on transport problems;
// every status code is returned as is.
type HttpClient interface {
	Execute(ctx context.Context, method string, url string, headers http.Header) (Response, error)
}

// sharedTransport is the connection pool of every client built here.
var sharedTransport = http.DefaultTransport.(*http.Transport).Clone()

// NetHTTPClient is an HttpClient over net/http.
type NetHTTPClient struct {
	httpClient *http.Client
}

func NewNetHTTPClient(timeout time.Duration) *NetHTTPClient {
	return &NetHTTPClient{
		httpClient: &http.Client{
			Transport: sharedTransport,
			Timeout:   timeout,
		},
	}
}

// NewNetHTTPClientFrom wraps an existing *http.Client, e.g. one from httptest.
func NewNetHTTPClientFrom(httpClient *http.Client) *NetHTTPClient {
	return &NetHTTPClient{httpClient: httpClient}
}

func (c *NetHTTPClient) Execute(
	ctx context.Context,
	method string,
	url string,
	headers http.Header,
) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return Response{}, err
	}
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}

	return Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}, nil
}

// RestyClient is an HttpClient over go-resty. Resty retries are turned
// off; retry policy belongs to the caller.
type RestyClient struct {
	resty *resty.Client
}

func NewRestyClient(timeout time.Duration) *RestyClient {
	restyClient := resty.New().
		SetTransport(sharedTransport).
		SetTimeout(timeout).
		SetRetryCount(0)
	return &RestyClient{resty: restyClient}
}

// NewRestyClientFrom wraps a configured resty client as is.
func NewRestyClientFrom(restyClient *resty.Client) *RestyClient {
	return &RestyClient{resty: restyClient}
}

func (c *RestyClient) Execute(
	ctx context.Context,
	method string,
	url string,
	headers http.Header,
) (Response, error) {
	resp, err := c.resty.R().
		SetContext(ctx).
		SetHeaderMultiValues(headers).
		Execute(method, url)
	if err != nil {
		return Response{}, err
	}
	return Response{
		StatusCode: resp.StatusCode(),
		Headers:    resp.Header(),
		Body:       resp.Body(),
	}, nil
}
