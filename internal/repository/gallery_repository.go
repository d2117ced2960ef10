package repository

import (
	"context"
	"errors"
	"fmt"

	"asha_gallery/internal/domain/models"
	"asha_gallery/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type GalleryRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewGalleryRepository(db *pgxpool.Pool) *GalleryRepo {
	return &GalleryRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const galleryColumns = "id, url, storage_ref, title, category, created_at, updated_at"

func (r *GalleryRepo) CreateItem(ctx context.Context, item models.GalleryItem) (models.GalleryItem, error) {
	const op = "repository.gallery_repository.CreateItem"

	query, args, err := r.sb.Insert("gallery_items").
		Columns(
			"url",
			"storage_ref",
			"title",
			"category",
		).
		Values(
			item.URL,
			item.StorageRef,
			item.Title,
			item.Category,
		).
		Suffix("RETURNING " + galleryColumns).
		ToSql()
	if err != nil {
		return models.GalleryItem{}, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	created, err := scanItem(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.GalleryItem{}, fmt.Errorf("%s: %w", op, storage.ErrDuplicateKey)
		}
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

func (r *GalleryRepo) FindByID(ctx context.Context, id uuid.UUID) (models.GalleryItem, error) {
	const op = "repository.gallery_repository.FindByID"

	query, args, err := r.sb.Select(galleryColumns).
		From("gallery_items").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.GalleryItem{}, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	item, err := scanItem(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.GalleryItem{}, fmt.Errorf("%s: %w", op, storage.ErrItemNotFound)
		}
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	return item, nil
}

// UpdateItemFields applies a partial update and returns the new row.
// Callers control exactly which columns change via the updates map.
func (r *GalleryRepo) UpdateItemFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (models.GalleryItem, error) {
	const op = "repository.gallery_repository.UpdateItemFields"

	query, args, err := r.sb.Update("gallery_items").
		SetMap(updates).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + galleryColumns).
		ToSql()
	if err != nil {
		return models.GalleryItem{}, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	updated, err := scanItem(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.GalleryItem{}, fmt.Errorf("%s: %w", op, storage.ErrItemNotFound)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.GalleryItem{}, fmt.Errorf("%s: %w", op, storage.ErrDuplicateKey)
		}
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

func (r *GalleryRepo) DeleteItem(ctx context.Context, id uuid.UUID) error {
	const op = "repository.gallery_repository.DeleteItem"

	query, args, err := r.sb.Delete("gallery_items").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrItemNotFound)
	}

	return nil
}

// ListItems returns one page ordered newest first, plus the total count
// under the same category filter so pagination metadata stays honest.
func (r *GalleryRepo) ListItems(ctx context.Context, category string, page, limit int) ([]models.GalleryItem, int, error) {
	const op = "repository.gallery_repository.ListItems"

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	queryBuilder := r.sb.Select(galleryColumns).From("gallery_items")
	countBuilder := r.sb.Select("COUNT(*)").From("gallery_items")

	if category != "" {
		queryBuilder = queryBuilder.Where(sq.Eq{"category": category})
		countBuilder = countBuilder.Where(sq.Eq{"category": category})
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := queryBuilder.
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64((page - 1) * limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var items []models.GalleryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return items, total, nil
}

// ReplaceAll wipes every item and inserts the supplied set in a single
// transaction. The removed rows are returned so the service can release
// any binaries they owned.
func (r *GalleryRepo) ReplaceAll(ctx context.Context, items []models.GalleryItem) ([]models.GalleryItem, error) {
	const op = "repository.gallery_repository.ReplaceAll"

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, "SELECT "+galleryColumns+" FROM gallery_items")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var removed []models.GalleryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		removed = append(removed, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM gallery_items"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, item := range items {
		query, args, err := r.sb.Insert("gallery_items").
			Columns("url", "storage_ref", "title", "category").
			Values(item.URL, item.StorageRef, item.Title, item.Category).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("%s: can't build sql: %w", op, err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return removed, nil
}

func scanItem(row pgx.Row) (models.GalleryItem, error) {
	var item models.GalleryItem

	err := row.Scan(
		&item.ID,
		&item.URL,
		&item.StorageRef,
		&item.Title,
		&item.Category,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return models.GalleryItem{}, err
	}

	return item, nil
}
