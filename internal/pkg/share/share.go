package share

import (
	"context"
	"errors"
)

// ErrInvalidName is returned for export names that are not a single file name
var ErrInvalidName = errors.New("invalid export name")

// Sharer publishes an exported document and returns where it can be fetched.
type Sharer interface {
	Share(ctx context.Context, name, contentType string, body []byte) (string, error)
}
