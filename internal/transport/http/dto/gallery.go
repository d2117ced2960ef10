package dto

import (
	"mime/multipart"
	"time"

	"github.com/google/uuid"
)

// GalleryUploadInput carries one multipart image plus its metadata
// fields into the upload workflow.
type GalleryUploadInput struct {
	File     *multipart.FileHeader
	Category string
	Title    string
}

type UpdateGalleryItemRequest struct {
	URL      *string `json:"url,omitempty" validate:"omitempty,url"`
	Title    *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Category *string `json:"category,omitempty" validate:"omitempty,oneof=studentWork programs photos videos"`
}

type ReplaceGalleryItem struct {
	URL      string  `json:"url" validate:"required,url"`
	Title    *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Category string  `json:"category" validate:"required,oneof=studentWork programs photos videos"`
}

type ReplaceGalleryRequest struct {
	Items []ReplaceGalleryItem `json:"items" validate:"dive"`
}

type GalleryItemResponse struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	Title     *string   `json:"title"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// GalleryListResponse groups one page of items by category and carries
// the pagination metadata alongside.
type GalleryListResponse struct {
	Data       map[string][]GalleryItemResponse `json:"data"`
	Pagination Pagination                       `json:"pagination"`
}
