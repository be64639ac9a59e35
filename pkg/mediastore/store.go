// Package mediastore abstracts the external object store that holds memorial
// media. Objects are addressed by key; keys are grouped by "/"-separated
// prefixes that act as folders.
package mediastore

import (
	"context"
	"errors"
	"io"
	"net/url"
	"regexp"
	"strings"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidCursor  = errors.New("invalid list cursor")
)

type Object struct {
	Key string
	URL string
}

// Page is one listing page. NextCursor is empty on the last page.
type Page struct {
	Keys       []string
	NextCursor string
}

type Store interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (Object, error)
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys []string) error
	List(ctx context.Context, prefix string, cursor string, limit int) (Page, error)
	DeleteFolder(ctx context.Context, prefix string) error
	URL(key string) string
}

var versionedUploadPath = regexp.MustCompile(`/upload/(?:v\d+/)?(.+)$`)

// KeyFromURL extracts the object key from an access URL. The base URL of the
// store is stripped when it matches; otherwise CDN style "/upload/v123/<key>"
// paths and plain "/<bucket>/<key>" paths are recognised.
func KeyFromURL(baseURL, rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}

	if baseURL != "" {
		base := strings.TrimRight(baseURL, "/") + "/"
		if strings.HasPrefix(rawURL, base) {
			return strings.TrimPrefix(rawURL, base)
		}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	if m := versionedUploadPath.FindStringSubmatch(parsed.Path); m != nil {
		return m[1]
	}

	path := strings.TrimPrefix(parsed.Path, "/")
	if i := strings.Index(path, "memorials/"); i >= 0 {
		return path[i:]
	}
	return path
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

func folderMarker(prefix string) string {
	return strings.TrimRight(prefix, "/") + "/"
}

func readAll(body io.Reader) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	return io.ReadAll(body)
}
