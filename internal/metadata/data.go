package metadata

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, reporting).

	Rules:
	 - ErrorCause MUST NOT influence control flow.
	 - ErrorCause MUST NOT be used for retry decisions; callers use
	   failure.ClassifiedError for that.
	 - Packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown
  - Unexpected internal errors, unclassified third-party failures

# CauseNetworkFailure
  - Transport failures: timeouts, DNS, connection resets

# CauseRequestInvalid
  - The caller asked for something that cannot be sent (scheme, fragment)

# CauseContentInvalid
  - Content was fetched but is unusable: rejected status, bad UTF-8,
    markup that does not have the expected shape

# CauseStorageFailure
  - Filesystem faults while reading or persisting cache entries

# CauseInvariantViolation
  - A programming error such as an invalid selector
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CauseRequestInvalid
	CauseContentInvalid
	CauseStorageFailure
	CauseInvariantViolation
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CauseRequestInvalid:
		return "request_invalid"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseInvariantViolation:
		return "invariant_violation"
	default:
		return "unknown"
	}
}

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL        AttributeKey = "url"
	AttrCacheKey   AttributeKey = "cache_key"
	AttrShard      AttributeKey = "shard"
	AttrPath       AttributeKey = "path"
	AttrRoot       AttributeKey = "root"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrSelector   AttributeKey = "selector"
	AttrDigest     AttributeKey = "digest"
)

type ArtifactKind string

const (
	ArtifactCacheEntry      ArtifactKind = "cache_entry"
	ArtifactExtractSnapshot ArtifactKind = "extract_snapshot"
)
