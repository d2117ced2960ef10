package models

import (
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryStudentWork Category = "studentWork"
	CategoryPrograms    Category = "programs"
	CategoryPhotos      Category = "photos"
	CategoryVideos      Category = "videos"
)

// Categories returns every category in a stable order, used to build the
// grouped gallery response.
func Categories() []Category {
	return []Category{CategoryStudentWork, CategoryPrograms, CategoryPhotos, CategoryVideos}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryStudentWork, CategoryPrograms, CategoryPhotos, CategoryVideos:
		return true
	}
	return false
}

// Uploadable reports whether binary uploads may target the category.
// Video items are added only by URL through update or bulk replace.
func (c Category) Uploadable() bool {
	return c.Valid() && c != CategoryVideos
}

// GalleryItem is one published media entry. StorageRef is set when the
// binary is owned by a storage backend (local relative path or remote
// provider id); items created by URL carry no ref and are never cleaned up.
type GalleryItem struct {
	ID         uuid.UUID `json:"id" db:"id"`
	URL        string    `json:"url" db:"url"`
	StorageRef *string   `json:"-" db:"storage_ref"`
	Title      *string   `json:"title" db:"title"`
	Category   Category  `json:"category" db:"category"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
