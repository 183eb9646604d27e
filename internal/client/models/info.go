package models

// StorageInfo summarises what a backend holds. StorageSize is in bytes and
// is 0 when the backend cannot tell.
type StorageInfo struct {
	TotalTimelines int   `json:"totalTimelines"`
	TotalImages    int   `json:"totalImages"`
	StorageSize    int64 `json:"storageSize"`
}
