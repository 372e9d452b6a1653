package collagery

import (
	"context"
	"regexp"
	"time"
)

// CollageItem is one image reference inside a collage. Items are uploaded to
// the CDN before the record is created; the record only stores the delivery
// URL and an optional caption.
type CollageItem struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// Collage is the durable unit of content. The record is stored as a single
// JSON object under "<folder>/<slug>/data" on the CDN.
//
// Visible is a pointer so that legacy records missing the field keep their
// original meaning: only an explicit stored false hides a record.
type Collage struct {
	Slug      string        `json:"slug"`
	Title     string        `json:"title,omitempty"`
	Date      string        `json:"date,omitempty"`
	Desc      string        `json:"desc,omitempty"`
	Tags      []string      `json:"tags,omitempty"`
	Items     []CollageItem `json:"items"`
	CreatedAt string        `json:"created_at,omitempty"`
	Preview   string        `json:"preview,omitempty"`
	Visible   *bool         `json:"visible,omitempty"`
}

// IsVisible reports whether the collage should appear in public listings.
func (c Collage) IsVisible() bool {
	return c.Visible == nil || *c.Visible
}

// SortTime is the listing sort key: the date field when parseable, the
// created_at timestamp as fallback, epoch zero otherwise.
func (c Collage) SortTime() time.Time {
	if t, err := time.Parse("2006-01-02", c.Date); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, c.CreatedAt); err == nil {
		return t
	}
	return time.Time{}
}

// CreateCollage carries the caller-supplied fields for a new record.
type CreateCollage struct {
	Slug    string
	Title   string
	Date    string
	Desc    string
	Tags    []string
	Items   []CollageItem
	Preview string
	Visible *bool
}

var validSlugRegex = regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`)

// IsValidSlug checks that a slug is usable as a storage key segment:
// lowercase alphanumerics separated by single hyphens or underscores,
// at most 100 characters.
func IsValidSlug(slug string) bool {
	return len(slug) <= 100 && validSlugRegex.MatchString(slug)
}

// ResourceKind selects the CDN resource class an operation addresses.
type ResourceKind string

const (
	// ResourceRaw holds the JSON record objects.
	ResourceRaw ResourceKind = "raw"
	// ResourceImage holds the uploaded collage images.
	ResourceImage ResourceKind = "image"
)

// ObjectInfo describes one stored object: its key and the monotonically
// increasing version the CDN assigned on write.
type ObjectInfo struct {
	Key     string `json:"public_id"`
	Version int64  `json:"version"`
}

// ObjectPage is one page of a prefix enumeration. An empty NextCursor means
// the enumeration is exhausted.
type ObjectPage struct {
	Objects    []ObjectInfo `json:"resources"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// UploadOptions controls a content write to the CDN.
type UploadOptions struct {
	Kind      ResourceKind
	Key       string
	Overwrite bool
	Format    string
}

// MediaStore is the CDN client surface the resolver depends on.
// Implementations live outside this package (see mediastore); tests
// substitute mocks.
//
// All methods accept a context for cancellation and timeout control and
// return errors suitable for wrapping as ErrUpstream; no method retries.
type MediaStore interface {
	// List enumerates stored objects under a key prefix, one page at a time.
	// Callers follow NextCursor until it comes back empty.
	List(ctx context.Context, kind ResourceKind, prefix string, pageSize int, cursor string) (ObjectPage, error)

	// FetchVersion retrieves an object's content through a version-qualified
	// URL. The exact version number is embedded in the request so edge caches
	// can never serve a stale revision.
	FetchVersion(ctx context.Context, kind ResourceKind, key string, version int64) ([]byte, error)

	// Fetch performs a plain GET against an absolute URL. Used for item
	// binaries during archive export.
	Fetch(ctx context.Context, url string) ([]byte, error)

	// Upload writes content (a base64 data URI) to a key. Overwrite semantics
	// are explicit; the CDN assigns a new version on every write.
	Upload(ctx context.Context, dataURI string, opts UploadOptions) error

	// DeleteByPrefix removes every object whose key starts with prefix.
	DeleteByPrefix(ctx context.Context, kind ResourceKind, prefix string) error

	// DeleteFolder removes the now-empty folder container itself.
	DeleteFolder(ctx context.Context, prefix string) error
}
