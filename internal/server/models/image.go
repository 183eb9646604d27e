package models

import "time"

// Image is an uploaded picture. Data holds a data URL when the bytes are
// stored inline; StorageKey is set instead when they live in object storage.
type Image struct {
	ID         string    `json:"-"`
	Filename   string    `json:"filename"`
	Data       string    `json:"-"`
	MimeType   string    `json:"mimeType"`
	Size       int64     `json:"size"`
	StorageKey *string   `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}
