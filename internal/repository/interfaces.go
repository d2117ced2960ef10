package repository

import (
	"context"
	"time"

	"asha_gallery/internal/domain/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	SaveAdmin(ctx context.Context, username string, passwordHash []byte, role models.Role) (uuid.UUID, error)
	AdminByUsername(ctx context.Context, username string) (models.Admin, error)
	AdminByID(ctx context.Context, id uuid.UUID) (models.Admin, error)
}

// TokenRepository is the revocation ledger. Implementations must make
// Revoke idempotent and evict entries on their own once ttl passes.
type TokenRepository interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type GalleryRepository interface {
	CreateItem(ctx context.Context, item models.GalleryItem) (models.GalleryItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (models.GalleryItem, error)
	UpdateItemFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (models.GalleryItem, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	ListItems(ctx context.Context, category string, page, limit int) ([]models.GalleryItem, int, error)
	ReplaceAll(ctx context.Context, items []models.GalleryItem) ([]models.GalleryItem, error)
}
