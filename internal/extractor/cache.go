package extractor

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/rohmanhakim/web-scraper/internal/metadata"
	"github.com/rohmanhakim/web-scraper/pkg/failure"
	"github.com/rohmanhakim/web-scraper/pkg/fileutil"
	"github.com/rohmanhakim/web-scraper/pkg/hashutil"
)

const snapshotExtension = ".html"

/*
CacheExtractor keeps a flat directory of raw HTML snapshots keyed by the
digest of the URL, for replaying pages while developing a Parser.

  - hit: the stored HTML is parsed again; status is 200, headers are empty
  - miss: the wrapped Extractor runs and its page content is stored

Snapshots never expire and are never invalidated. Use the web cache
(internal/cache) for anything else.
*/
type CacheExtractor[T any] struct {
	folder       string
	algo         hashutil.HashAlgo
	inner        Extractor[T]
	parser       Parser[T]
	metadataSink metadata.MetadataSink
}

type CacheOption func(*cacheOptions)

type cacheOptions struct {
	algo hashutil.HashAlgo
}

// WithDigest selects the URL digest; sha256 is the default.
func WithDigest(algo hashutil.HashAlgo) CacheOption {
	return func(o *cacheOptions) {
		o.algo = algo
	}
}

func NewCacheExtractor[T any](
	folder string,
	inner Extractor[T],
	parser Parser[T],
	metadataSink metadata.MetadataSink,
	opts ...CacheOption,
) (*CacheExtractor[T], error) {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	options := cacheOptions{algo: hashutil.HashAlgoSHA256}
	for _, opt := range opts {
		opt(&options)
	}
	if inner == nil || parser == nil {
		return nil, &ExtractionError{Message: "inner extractor and parser are required", Cause: ErrCauseSetup}
	}
	if _, err := hashutil.HashBytes(nil, options.algo); err != nil {
		return nil, &ExtractionError{Message: err.Error(), Cause: ErrCauseSetup, Err: err}
	}
	if err := fileutil.EnsureDir(folder); err != nil {
		return nil, &ExtractionError{
			Message: err.Error(),
			Cause:   ErrCauseSetup,
			Err:     err,
		}
	}
	return &CacheExtractor[T]{
		folder:       folder,
		algo:         options.algo,
		inner:        inner,
		parser:       parser,
		metadataSink: metadataSink,
	}, nil
}

// Path returns the snapshot file for url.
func (c *CacheExtractor[T]) Path(url string) (string, error) {
	digest, err := hashutil.HashBytes([]byte(url), c.algo)
	if err != nil {
		return "", err
	}
	base, pathErr := fileutil.JoinSegments(c.folder, digest)
	if pathErr != nil {
		return "", pathErr
	}
	path, pathErr := fileutil.MakeFile(base, snapshotExtension)
	if pathErr != nil {
		return "", pathErr
	}
	return path, nil
}

func (c *CacheExtractor[T]) Extract(ctx context.Context, url string) (Extract[T], error) {
	const action = "CacheExtractor.Extract"
	path, err := c.Path(url)
	if err != nil {
		return Extract[T]{}, record(c.metadataSink, action, c.cacheError(url, err))
	}

	content, ok, readErr := fileutil.ReadIfExists(path)
	if readErr != nil {
		return Extract[T]{}, record(c.metadataSink, action, c.cacheError(url, readErr))
	}
	if ok {
		c.metadataSink.RecordCacheHit(url, path)
		webpage := Webpage{
			URL:     url,
			Status:  http.StatusOK,
			Headers: http.Header{},
			Content: string(content),
		}
		result, err := parse(c.parser, webpage)
		if err != nil {
			return Extract[T]{}, record(c.metadataSink, action, err)
		}
		return result, nil
	}

	result, err := c.inner.Extract(ctx, url)
	if err != nil {
		return Extract[T]{}, err
	}
	if err := fileutil.EnsureDir(filepath.Dir(path)); err != nil {
		return Extract[T]{}, record(c.metadataSink, action, c.cacheError(url, err))
	}
	if _, err := fileutil.WriteIfAbsent(path, []byte(result.Webpage.Content)); err != nil {
		return Extract[T]{}, record(c.metadataSink, action, c.cacheError(url, err))
	}
	c.metadataSink.RecordArtifact(metadata.ArtifactExtractSnapshot, path, []metadata.Attribute{
		metadata.NewAttr(metadata.AttrURL, url),
		metadata.NewAttr(metadata.AttrDigest, string(c.algo)),
	})
	return result, nil
}

func (c *CacheExtractor[T]) cacheError(url string, err error) *ExtractionError {
	return &ExtractionError{
		Message:   err.Error(),
		Retryable: failure.IsRecoverable(err),
		Cause:     ErrCauseCache,
		URL:       url,
		Err:       err,
	}
}
