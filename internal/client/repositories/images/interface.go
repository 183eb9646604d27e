// Package images keeps image payloads, as data URLs, in the client's
// SQLite database.
package images

import (
	"context"
	"time"
)

type Image struct {
	Filename  string
	Data      string
	MimeType  string
	Size      int64
	CreatedAt time.Time
}

type Repository interface {
	Save(ctx context.Context, img *Image) error
	Get(ctx context.Context, filename string) (*Image, error)
	Delete(ctx context.Context, filename string) error
	// Stats returns the number of images and the sum of their sizes.
	Stats(ctx context.Context) (int, int64, error)
}
