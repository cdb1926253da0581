package domain

import "time"

// File link type constants. The first image of a product is linked as
// "main", the rest as "gallery".
const (
	FileLinkTypeMain    = "main"
	FileLinkTypeGallery = "gallery"
)

// FileAsset is a stored binary (image) plus its metadata, independent of
// which product references it.
type FileAsset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	StorageKey  string    `json:"storage_key"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// FileLink attaches a file asset to a product as an ordered, typed
// association.
type FileLink struct {
	FileID    string `json:"file_id"`
	ProductID string `json:"product_id"`
	Type      string `json:"type"`
	SortOrder int    `json:"sort_order"`
	Alt       string `json:"alt"`
}

// FileInfo is the result of a successful object-storage upload, before the
// corresponding FileAsset row exists.
type FileInfo struct {
	ID          string
	Name        string
	ContentType string
	Size        int64
	StorageKey  string
}

// LinkTypeForIndex returns the file link type for an image at the given
// position in a product's image list.
func LinkTypeForIndex(index int) string {
	if index == 0 {
		return FileLinkTypeMain
	}
	return FileLinkTypeGallery
}
