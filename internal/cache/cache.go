package cache

import (
	"time"

	"github.com/rohmanhakim/web-scraper/internal/metadata"
	"github.com/rohmanhakim/web-scraper/pkg/failure"
	"github.com/rohmanhakim/web-scraper/pkg/fileutil"
)

/*
Responsibilities
- Map a cache key to <root>/<shard>/<base64url(key)><extension>
- Read local first, then remote
- Write and clear every configured root

Entries never expire. A reader racing a writer sees the old content,
the new content or a miss, never a partial file. There is no locking;
see KeyLocks.
*/

const DefaultExtension = ".web-cache"

type Option func(*WebCache)

// WithExtension overrides the entry file suffix.
func WithExtension(extension string) Option {
	return func(c *WebCache) {
		c.extension = extension
	}
}

type WebCache struct {
	local        string
	remote       string
	extension    string
	metadataSink metadata.MetadataSink
}

// Entry is a cache hit together with the file it was read from.
type Entry struct {
	Path string
	Data []byte
}

// NewWebCache builds a cache over a local root and an optional remote
// root. Either may be empty, not both.
func NewWebCache(
	local string,
	remote string,
	metadataSink metadata.MetadataSink,
	opts ...Option,
) (*WebCache, failure.ClassifiedError) {
	if local == "" && remote == "" {
		return nil, &CacheError{
			Message: "both local and remote roots are empty",
			Cause:   ErrCauseNoRoot,
		}
	}
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	c := &WebCache{
		local:        local,
		remote:       remote,
		extension:    DefaultExtension,
		metadataSink: metadataSink,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Roots returns the configured roots, local first.
func (c *WebCache) Roots() []string {
	roots := make([]string, 0, 2)
	if c.local != "" {
		roots = append(roots, c.local)
	}
	if c.remote != "" {
		roots = append(roots, c.remote)
	}
	return roots
}

func (c *WebCache) Extension() string {
	return c.extension
}

// Path returns where key lives under root.
func (c *WebCache) Path(root string, key string) (string, failure.ClassifiedError) {
	encoded := Encode(key)
	base, err := fileutil.JoinSegments(root, encoded.ShardLabel(), encoded.Name)
	if err != nil {
		return "", fromFileError(err, ErrCausePathInvalid)
	}
	path, err := fileutil.MakeFile(base, c.extension)
	if err != nil {
		return "", fromFileError(err, ErrCausePathInvalid)
	}
	return path, nil
}

// Locate returns the path of key under the first configured root.
func (c *WebCache) Locate(key string) (string, failure.ClassifiedError) {
	path, err := c.Path(c.Roots()[0], key)
	if err != nil {
		c.recordError("WebCache.Locate", key, err)
		return "", err
	}
	return path, nil
}

// Read returns the cached bytes of key. A miss in every root is
// (nil, false, nil); only I/O faults other than absence are errors.
func (c *WebCache) Read(key string) ([]byte, bool, failure.ClassifiedError) {
	entry, ok, err := c.ReadEntry(key)
	if err != nil || !ok {
		return nil, ok, err
	}
	return entry.Data, true, nil
}

// ReadEntry is Read that also reports which file served the hit.
func (c *WebCache) ReadEntry(key string) (Entry, bool, failure.ClassifiedError) {
	for _, root := range c.Roots() {
		path, err := c.Path(root, key)
		if err != nil {
			c.recordError("WebCache.Read", key, err)
			return Entry{}, false, err
		}
		data, ok, readErr := fileutil.ReadIfExists(path)
		if readErr != nil {
			cacheErr := fromFileError(readErr, ErrCauseReadFailure)
			c.recordError("WebCache.Read", key, cacheErr)
			return Entry{}, false, cacheErr
		}
		if ok {
			return Entry{Path: path, Data: data}, true, nil
		}
	}
	return Entry{}, false, nil
}

// Write replaces the entry of key in every root: the old file is
// deleted, then the new one is created in a single step.
func (c *WebCache) Write(key string, data []byte) failure.ClassifiedError {
	for _, root := range c.Roots() {
		path, err := c.Path(root, key)
		if err != nil {
			c.recordError("WebCache.Write", key, err)
			return err
		}
		if err := fileutil.Delete(path); err != nil {
			cacheErr := fromFileError(err, ErrCauseDeleteFailure)
			c.recordError("WebCache.Write", key, cacheErr)
			return cacheErr
		}
		// false means a concurrent writer got there first; its content stands
		if _, err := fileutil.WriteIfAbsent(path, data); err != nil {
			cacheErr := fromFileError(err, ErrCauseWriteFailure)
			c.recordError("WebCache.Write", key, cacheErr)
			return cacheErr
		}
		c.metadataSink.RecordArtifact(
			metadata.ArtifactCacheEntry,
			path,
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrCacheKey, key),
				metadata.NewAttr(metadata.AttrRoot, root),
				metadata.NewAttr(metadata.AttrShard, Encode(key).ShardLabel()),
			},
		)
	}
	return nil
}

// Clear deletes the entry of key from every root. Clearing a key that
// was never written is not an error.
func (c *WebCache) Clear(key string) failure.ClassifiedError {
	for _, root := range c.Roots() {
		path, err := c.Path(root, key)
		if err != nil {
			c.recordError("WebCache.Clear", key, err)
			return err
		}
		if err := fileutil.Delete(path); err != nil {
			cacheErr := fromFileError(err, ErrCauseDeleteFailure)
			c.recordError("WebCache.Clear", key, cacheErr)
			return cacheErr
		}
	}
	return nil
}

func (c *WebCache) recordError(action string, key string, err failure.ClassifiedError) {
	cacheErr, ok := err.(*CacheError)
	if !ok {
		cacheErr = fromFileError(err, ErrCauseReadFailure)
	}
	c.metadataSink.RecordError(
		time.Now(),
		"cache",
		action,
		mapCacheErrorToMetadataCause(cacheErr),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrCacheKey, key),
			metadata.NewAttr(metadata.AttrPath, cacheErr.Path),
		},
	)
}
