package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"asha_gallery/internal/domain/models"
	"asha_gallery/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type UserRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewUserRepository(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *UserRepo) SaveAdmin(ctx context.Context, username string, passwordHash []byte, role models.Role) (uuid.UUID, error) {
	const op = "repository.user_repository.SaveAdmin"

	query, args, err := r.sb.Insert("admins").
		Columns(
			"username",
			"password",
			"role",
		).
		Values(
			strings.ToLower(username),
			passwordHash,
			role,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	var id uuid.UUID
	err = r.db.QueryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return uuid.Nil, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *UserRepo) AdminByUsername(ctx context.Context, username string) (models.Admin, error) {
	const op = "repository.user_repository.AdminByUsername"

	query, args, err := r.sb.Select("id", "username", "password", "role", "created_at", "updated_at").
		From("admins").
		Where(sq.Eq{"username": strings.ToLower(username)}).
		ToSql()
	if err != nil {
		return models.Admin{}, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var admin models.Admin
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&admin.ID,
		&admin.Username,
		&admin.PasswordHash,
		&admin.Role,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Admin{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return models.Admin{}, fmt.Errorf("%s: %w", op, err)
	}

	return admin, nil
}

func (r *UserRepo) AdminByID(ctx context.Context, id uuid.UUID) (models.Admin, error) {
	const op = "repository.user_repository.AdminByID"

	query, args, err := r.sb.Select("id", "username", "password", "role", "created_at", "updated_at").
		From("admins").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Admin{}, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var admin models.Admin
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&admin.ID,
		&admin.Username,
		&admin.PasswordHash,
		&admin.Role,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Admin{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return models.Admin{}, fmt.Errorf("%s: %w", op, err)
	}

	return admin, nil
}
