package domain

import (
	"context"
	"errors"
	"io"
)

// ErrUploadsDisabled is returned by a FileStore that has no backing object
// storage configured.
var ErrUploadsDisabled = errors.New("image uploads are not enabled")

// FileStore uploads binary objects (event images) to external object storage
// and returns a publicly resolvable URL.
type FileStore interface {
	Upload(ctx context.Context, objectName, contentType string, r io.Reader, size int64) (url string, err error)
}
