package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"asha_gallery/internal/domain/models"
	"asha_gallery/internal/lib/logger/sl"
	"asha_gallery/internal/metrics"
	"asha_gallery/internal/repository"
	"asha_gallery/internal/storage"
	"asha_gallery/internal/storage/filestorage"
	"asha_gallery/internal/transport/http/dto"

	"github.com/google/uuid"
)

var (
	ErrNoFile             = errors.New("no image file provided")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrCategoryNotAllowed = errors.New("category does not accept uploads")
)

// MaxUploadSize is inclusive: a payload of exactly 10 MiB is accepted.
const MaxUploadSize = 10 << 20

var allowedExtensions = map[string]struct{}{
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

var allowedMimeTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

type GalleryService struct {
	log   *slog.Logger
	repo  repository.GalleryRepository
	files filestorage.FileStorage
}

func NewGalleryService(log *slog.Logger, repo repository.GalleryRepository, files filestorage.FileStorage) *GalleryService {
	return &GalleryService{
		log:   log,
		repo:  repo,
		files: files,
	}
}

// Upload validates the payload, persists the binary, then records the
// metadata. If the metadata insert fails the stored binary is deleted
// before the error propagates, so no orphan survives.
func (s *GalleryService) Upload(ctx context.Context, input dto.GalleryUploadInput) (*dto.GalleryItemResponse, error) {
	const op = "gallery_service.Upload"

	log := s.log.With(
		slog.String("op", op),
		slog.String("category", input.Category),
	)

	if err := validateUpload(input); err != nil {
		log.Warn("upload rejected", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stored, err := s.files.Store(ctx, input.File)
	if err != nil {
		log.Error("failed to store file", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	item := models.GalleryItem{
		URL:        stored.URL,
		StorageRef: &stored.Reference,
		Category:   models.Category(input.Category),
	}
	if input.Title != "" {
		item.Title = &input.Title
	}

	created, err := s.repo.CreateItem(ctx, item)
	if err != nil {
		// the binary already landed, take it back out
		if delErr := s.files.Delete(ctx, stored.Reference); delErr != nil {
			metrics.StorageCleanupFailures.Inc()
			log.Error("failed to delete stored file after create failure", sl.Err(delErr))
		}
		log.Error("failed to create gallery item", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.GalleryUploadsTotal.WithLabelValues(input.Category).Inc()
	log.Info("image uploaded", slog.String("id", created.ID.String()))

	return itemResponse(created), nil
}

// List returns one page of items grouped by category plus pagination
// metadata. With a category filter only that group is present.
func (s *GalleryService) List(ctx context.Context, category string, page, limit int) (*dto.GalleryListResponse, error) {
	const op = "gallery_service.List"

	if category != "" && !models.Category(category).Valid() {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCategory)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	items, total, err := s.repo.ListItems(ctx, category, page, limit)
	if err != nil {
		s.log.Error("failed to list gallery items", slog.String("op", op), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	grouped := make(map[string][]dto.GalleryItemResponse)
	if category != "" {
		grouped[category] = make([]dto.GalleryItemResponse, 0)
	} else {
		for _, c := range models.Categories() {
			grouped[string(c)] = make([]dto.GalleryItemResponse, 0)
		}
	}

	for _, item := range items {
		grouped[string(item.Category)] = append(grouped[string(item.Category)], *itemResponse(item))
	}

	pages := 0
	if total > 0 {
		pages = (total + limit - 1) / limit
	}

	return &dto.GalleryListResponse{
		Data: grouped,
		Pagination: dto.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

// Update applies a partial change. When the URL moves away from a binary
// the item owns, the old binary is released best-effort: the metadata
// update is the source of truth and never fails on storage cleanup.
func (s *GalleryService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateGalleryItemRequest) (*dto.GalleryItemResponse, error) {
	const op = "gallery_service.Update"

	log := s.log.With(
		slog.String("op", op),
		slog.String("id", id.String()),
	)

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updates := make(map[string]interface{})
	if req.URL != nil {
		updates["url"] = *req.URL
	}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Category != nil {
		if !models.Category(*req.Category).Valid() {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCategory)
		}
		updates["category"] = *req.Category
	}
	if len(updates) == 0 {
		return itemResponse(item), nil
	}

	releaseOld := req.URL != nil && *req.URL != item.URL && item.StorageRef != nil
	if releaseOld {
		updates["storage_ref"] = nil
	}

	updated, err := s.repo.UpdateItemFields(ctx, id, updates)
	if err != nil {
		log.Error("failed to update gallery item", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if releaseOld {
		s.releaseBinary(ctx, *item.StorageRef)
	}

	log.Info("gallery item updated")

	return itemResponse(updated), nil
}

// Delete removes the metadata record and then releases the owned binary
// best-effort.
func (s *GalleryService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "gallery_service.Delete"

	log := s.log.With(
		slog.String("op", op),
		slog.String("id", id.String()),
	)

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.DeleteItem(ctx, id); err != nil {
		log.Error("failed to delete gallery item", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	if item.StorageRef != nil {
		s.releaseBinary(ctx, *item.StorageRef)
	}

	log.Info("gallery item deleted")

	return nil
}

// Replace swaps the entire gallery for the supplied list in one
// transaction, then releases binaries owned by the replaced items.
func (s *GalleryService) Replace(ctx context.Context, req dto.ReplaceGalleryRequest) error {
	const op = "gallery_service.Replace"

	log := s.log.With(slog.String("op", op))

	items := make([]models.GalleryItem, 0, len(req.Items))
	for _, in := range req.Items {
		if !models.Category(in.Category).Valid() {
			return fmt.Errorf("%s: %w", op, ErrInvalidCategory)
		}
		items = append(items, models.GalleryItem{
			URL:      in.URL,
			Title:    in.Title,
			Category: models.Category(in.Category),
		})
	}

	removed, err := s.repo.ReplaceAll(ctx, items)
	if err != nil {
		log.Error("failed to replace gallery", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	for _, old := range removed {
		if old.StorageRef != nil {
			s.releaseBinary(ctx, *old.StorageRef)
		}
	}

	log.Info("gallery replaced", slog.Int("items", len(items)), slog.Int("removed", len(removed)))

	return nil
}

func (s *GalleryService) releaseBinary(ctx context.Context, reference string) {
	if err := s.files.Delete(ctx, reference); err != nil {
		metrics.StorageCleanupFailures.Inc()
		s.log.Error("failed to delete stored binary",
			slog.String("reference", reference),
			sl.Err(err),
		)
	}
}

func validateUpload(input dto.GalleryUploadInput) error {
	if input.File == nil {
		return ErrNoFile
	}

	category := models.Category(input.Category)
	if !category.Valid() {
		return ErrInvalidCategory
	}
	if !category.Uploadable() {
		return ErrCategoryNotAllowed
	}

	if input.File.Size > MaxUploadSize {
		return storage.ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(input.File.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return storage.ErrInvalidFileType
	}

	mimeType := strings.ToLower(input.File.Header.Get("Content-Type"))
	if _, ok := allowedMimeTypes[mimeType]; !ok {
		return storage.ErrInvalidFileType
	}

	return nil
}

func itemResponse(item models.GalleryItem) *dto.GalleryItemResponse {
	return &dto.GalleryItemResponse{
		ID:        item.ID,
		URL:       item.URL,
		Title:     item.Title,
		Category:  string(item.Category),
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}
