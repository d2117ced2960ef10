package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/textproto"
	"testing"
	"time"

	"asha_gallery/internal/domain/models"
	services "asha_gallery/internal/services/gallery_service"
	"asha_gallery/internal/storage"
	"asha_gallery/internal/storage/filestorage"
	"asha_gallery/internal/transport/http/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGalleryRepository struct {
	mock.Mock
}

func (m *MockGalleryRepository) CreateItem(ctx context.Context, item models.GalleryItem) (models.GalleryItem, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(models.GalleryItem), args.Error(1)
}

func (m *MockGalleryRepository) FindByID(ctx context.Context, id uuid.UUID) (models.GalleryItem, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.GalleryItem), args.Error(1)
}

func (m *MockGalleryRepository) UpdateItemFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (models.GalleryItem, error) {
	args := m.Called(ctx, id, updates)
	return args.Get(0).(models.GalleryItem), args.Error(1)
}

func (m *MockGalleryRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGalleryRepository) ListItems(ctx context.Context, category string, page, limit int) ([]models.GalleryItem, int, error) {
	args := m.Called(ctx, category, page, limit)
	return args.Get(0).([]models.GalleryItem), args.Int(1), args.Error(2)
}

func (m *MockGalleryRepository) ReplaceAll(ctx context.Context, items []models.GalleryItem) ([]models.GalleryItem, error) {
	args := m.Called(ctx, items)
	return args.Get(0).([]models.GalleryItem), args.Error(1)
}

type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) Store(ctx context.Context, file *multipart.FileHeader) (filestorage.StoredFile, error) {
	args := m.Called(ctx, file)
	return args.Get(0).(filestorage.StoredFile), args.Error(1)
}

func (m *MockFileStorage) Delete(ctx context.Context, reference string) error {
	args := m.Called(ctx, reference)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fileHeader(filename, contentType string, size int64) *multipart.FileHeader {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Type", contentType)

	return &multipart.FileHeader{
		Filename: filename,
		Header:   header,
		Size:     size,
	}
}

func TestGalleryService_Upload_Success(t *testing.T) {
	repo := new(MockGalleryRepository)
	files := new(MockFileStorage)
	svc := services.NewGalleryService(discardLogger(), repo, files)

	file := fileHeader("class.jpg", "image/jpeg", 1024)
	stored := filestorage.StoredFile{
		URL:       "http://localhost:8080/uploads/gallery/image-1-1.jpg",
		Reference: "gallery/image-1-1.jpg",
	}

	files.On("Store", mock.Anything, file).Return(stored, nil)
	repo.On("CreateItem", mock.Anything, mock.MatchedBy(func(item models.GalleryItem) bool {
		return item.URL == stored.URL &&
			item.StorageRef != nil && *item.StorageRef == stored.Reference &&
			item.Category == models.CategoryPhotos
	})).Return(models.GalleryItem{
		ID:        uuid.New(),
		URL:       stored.URL,
		Category:  models.CategoryPhotos,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil)

	resp, err := svc.Upload(context.Background(), dto.GalleryUploadInput{
		File:     file,
		Category: "photos",
	})
	require.NoError(t, err)
	assert.Equal(t, stored.URL, resp.URL)
	assert.Equal(t, "photos", resp.Category)

	files.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestGalleryService_Upload_DeletesFileWhenCreateFails(t *testing.T) {
	repo := new(MockGalleryRepository)
	files := new(MockFileStorage)
	svc := services.NewGalleryService(discardLogger(), repo, files)

	file := fileHeader("class.png", "image/png", 2048)
	stored := filestorage.StoredFile{
		URL:       "http://localhost:8080/uploads/gallery/image-2-2.png",
		Reference: "gallery/image-2-2.png",
	}

	files.On("Store", mock.Anything, file).Return(stored, nil)
	repo.On("CreateItem", mock.Anything, mock.Anything).
		Return(models.GalleryItem{}, errors.New("insert failed"))
	files.On("Delete", mock.Anything, stored.Reference).Return(nil)

	_, err := svc.Upload(context.Background(), dto.GalleryUploadInput{
		File:     file,
		Category: "programs",
	})
	require.Error(t, err)

	files.AssertCalled(t, "Delete", mock.Anything, stored.Reference)
}

func TestGalleryService_Upload_RejectsMimeMismatch(t *testing.T) {
	repo := new(MockGalleryRepository)
	files := new(MockFileStorage)
	svc := services.NewGalleryService(discardLogger(), repo, files)

	file := fileHeader("page.png", "text/html", 512)

	_, err := svc.Upload(context.Background(), dto.GalleryUploadInput{
		File:     file,
		Category: "photos",
	})
	require.ErrorIs(t, err, storage.ErrInvalidFileType)

	files.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
}

func TestGalleryService_Upload_RejectsExtension(t *testing.T) {
	repo := new(MockGalleryRepository)
	files := new(MockFileStorage)
	svc := services.NewGalleryService(discardLogger(), repo, files)

	file := fileHeader("payload.exe", "image/png", 512)

	_, err := svc.Upload(context.Background(), dto.GalleryUploadInput{
		File:     file,
		Category: "photos",
	})
	require.ErrorIs(t, err, storage.ErrInvalidFileType)
}

func TestGalleryService_Upload_SizeBoundary(t *testing.T) {
	repo := new(MockGalleryRepository)
	files := new(MockFileStorage)
	svc := services.NewGalleryService(discardLogger(), repo, files)

	oversized := fileHeader("big.jpg", "image/jpeg", services.MaxUploadSize+1)

	_, err := svc.Upload(context.Background(), dto.GalleryUploadInput{
		File:     oversized,
		Category: "photos",
	})
	require.ErrorIs(t, err, storage.ErrFileTooLarge)
	files.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)

	exact := fileHeader("exact.jpg", "image/jpeg", services.MaxUploadSize)
	stored := filestorage.StoredFile{
		URL:       "http://localhost:8080/uploads/gallery/image-3-3.jpg",
		Reference: "gallery/image-3-3.jpg",
	}
	files.On("Store", mock.Anything, exact).Return(stored, nil)
	repo.On("CreateItem", mock.Anything, mock.Anything).Return(models.GalleryItem{
		ID:       uuid.New(),
		URL:      stored.URL,
		Category: models.CategoryPhotos,
	}, nil)

	_, err = svc.Upload(context.Background(), dto.GalleryUploadInput{
		File:     exact,
		Category: "photos",
	})
	require.NoError(t, err)
}

func TestGalleryService_Upload_RejectsVideosCategory(t *testing.T) {
	repo := new(MockGalleryRepository)
	files := new(MockFileStorage)
	svc := services.NewGalleryService(discardLogger(), repo, files)

	file := fileHeader("clip.jpg", "image/jpeg", 512)

	_, err := svc.Upload(context.Background(), dto.GalleryUploadInput{
		File:     file,
		Category: "videos",
	})
	require.ErrorIs(t, err, services.ErrCategoryNotAllowed)
}

func TestGalleryService_Upload_NoFile(t *testing.T) {
	repo := new(MockGalleryRepository)
	files := new(MockFileStorage)
	svc := services.NewGalleryService(discardLogger(), repo, files)

	_, err := svc.Upload(context.Background(), dto.GalleryUploadInput{Category: "photos"})
	require.ErrorIs(t, err, services.ErrNoFile)
}

func TestGalleryService_List_Pagination(t *testing.T) {
	repo := new(MockGalleryRepository)
	files := new(MockFileStorage)
	svc := services.NewGalleryService(discardLogger(), repo, files)

	// 25 total, page 3 with limit 10 holds the last 5
	pageItems := make([]models.GalleryItem, 5)
	for i := range pageItems {
		pageItems[i] = models.GalleryItem{
			ID:       uuid.New(),
			URL:      "http://localhost:8080/uploads/gallery/photo.jpg",
			Category: models.CategoryPhotos,
		}
	}
	repo.On("ListItems", mock.Anything, "photos", 3, 10).Return(pageItems, 25, nil)

	resp, err := svc.List(context.Background(), "photos", 3, 10)
	require.NoError(t, err)

	assert.Len(t, resp.Data["photos"], 5)
	assert.Equal(t, 3, resp.Pagination.Page)
	assert.Equal(t, 25, resp.Pagination.Total)
	assert.Equal(t, 3, resp.Pagination.Pages)
	_, hasPrograms := resp.Data["programs"]
	assert.False(t, hasPrograms, "filtered listing should only contain the requested group")
}

func TestGalleryService_List_EmptyGroups(t *testing.T) {
	repo := new(MockGalleryRepository)
	files := new(MockFileStorage)
	svc := services.NewGalleryService(discardLogger(), repo, files)

	repo.On("ListItems", mock.Anything, "", 1, 20).Return([]models.GalleryItem{}, 0, nil)

	resp, err := svc.List(context.Background(), "", 0, 0)
	require.NoError(t, err)

	for _, c := range models.Categories() {
		group, ok := resp.Data[string(c)]
		assert.True(t, ok, "every category should be present")
		assert.NotNil(t, group)
		assert.Empty(t, group)
	}
	assert.Equal(t, 0, resp.Pagination.Pages)
}

func TestGalleryService_List_InvalidCategory(t *testing.T) {
	repo := new(MockGalleryRepository)
	files := new(MockFileStorage)
	svc := services.NewGalleryService(discardLogger(), repo, files)

	_, err := svc.List(context.Background(), "paintings", 1, 20)
	require.ErrorIs(t, err, services.ErrInvalidCategory)
}

func TestGalleryService_Update_ReleasesReplacedBinary(t *testing.T) {
	repo := new(MockGalleryRepository)
	files := new(MockFileStorage)
	svc := services.NewGalleryService(discardLogger(), repo, files)

	id := uuid.New()
	ref := "gallery/image-4-4.jpg"
	repo.On("FindByID", mock.Anything, id).Return(models.GalleryItem{
		ID:         id,
		URL:        "http://localhost:8080/uploads/gallery/image-4-4.jpg",
		StorageRef: &ref,
		Category:   models.CategoryPhotos,
	}, nil)

	newURL := "https://cdn.example.com/external.jpg"
	repo.On("UpdateItemFields", mock.Anything, id, mock.MatchedBy(func(updates map[string]interface{}) bool {
		v, ok := updates["storage_ref"]
		return updates["url"] == newURL && ok && v == nil
	})).Return(models.GalleryItem{ID: id, URL: newURL, Category: models.CategoryPhotos}, nil)
	files.On("Delete", mock.Anything, ref).Return(nil)

	resp, err := svc.Update(context.Background(), id, dto.UpdateGalleryItemRequest{URL: &newURL})
	require.NoError(t, err)
	assert.Equal(t, newURL, resp.URL)

	files.AssertCalled(t, "Delete", mock.Anything, ref)
}

func TestGalleryService_Update_NotFound(t *testing.T) {
	repo := new(MockGalleryRepository)
	files := new(MockFileStorage)
	svc := services.NewGalleryService(discardLogger(), repo, files)

	id := uuid.New()
	repo.On("FindByID", mock.Anything, id).Return(models.GalleryItem{}, storage.ErrItemNotFound)

	title := "New title"
	_, err := svc.Update(context.Background(), id, dto.UpdateGalleryItemRequest{Title: &title})
	require.ErrorIs(t, err, storage.ErrItemNotFound)
}

func TestGalleryService_Delete_ReleasesBinary(t *testing.T) {
	repo := new(MockGalleryRepository)
	files := new(MockFileStorage)
	svc := services.NewGalleryService(discardLogger(), repo, files)

	id := uuid.New()
	ref := "gallery/image-5-5.png"
	repo.On("FindByID", mock.Anything, id).Return(models.GalleryItem{
		ID:         id,
		StorageRef: &ref,
		Category:   models.CategoryPrograms,
	}, nil)
	repo.On("DeleteItem", mock.Anything, id).Return(nil)
	files.On("Delete", mock.Anything, ref).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), id))
	files.AssertCalled(t, "Delete", mock.Anything, ref)
}

func TestGalleryService_Delete_SucceedsWhenCleanupFails(t *testing.T) {
	repo := new(MockGalleryRepository)
	files := new(MockFileStorage)
	svc := services.NewGalleryService(discardLogger(), repo, files)

	id := uuid.New()
	ref := "gallery/image-6-6.png"
	repo.On("FindByID", mock.Anything, id).Return(models.GalleryItem{
		ID:         id,
		StorageRef: &ref,
		Category:   models.CategoryPhotos,
	}, nil)
	repo.On("DeleteItem", mock.Anything, id).Return(nil)
	files.On("Delete", mock.Anything, ref).Return(errors.New("backend unavailable"))

	// the record is gone, cleanup failure only gets logged
	require.NoError(t, svc.Delete(context.Background(), id))
}

func TestGalleryService_Replace_ReleasesRemovedBinaries(t *testing.T) {
	repo := new(MockGalleryRepository)
	files := new(MockFileStorage)
	svc := services.NewGalleryService(discardLogger(), repo, files)

	refA := "gallery/image-7-7.jpg"
	refB := "gallery/image-8-8.jpg"
	removed := []models.GalleryItem{
		{ID: uuid.New(), StorageRef: &refA, Category: models.CategoryPhotos},
		{ID: uuid.New(), StorageRef: &refB, Category: models.CategoryPrograms},
		{ID: uuid.New(), Category: models.CategoryVideos},
	}
	repo.On("ReplaceAll", mock.Anything, mock.Anything).Return(removed, nil)
	files.On("Delete", mock.Anything, refA).Return(nil)
	files.On("Delete", mock.Anything, refB).Return(nil)

	err := svc.Replace(context.Background(), dto.ReplaceGalleryRequest{
		Items: []dto.ReplaceGalleryItem{
			{URL: "https://cdn.example.com/a.jpg", Category: "photos"},
		},
	})
	require.NoError(t, err)

	files.AssertCalled(t, "Delete", mock.Anything, refA)
	files.AssertCalled(t, "Delete", mock.Anything, refB)
	files.AssertNumberOfCalls(t, "Delete", 2)
}
