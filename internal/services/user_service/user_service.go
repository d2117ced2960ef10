package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"asha_gallery/internal/domain/models"
	"asha_gallery/internal/lib/logger/sl"
	"asha_gallery/internal/repository"
	"asha_gallery/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials deliberately covers both "no such user" and
	// "wrong password" so responses cannot be used to enumerate usernames.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

type UserService struct {
	log  *slog.Logger
	repo repository.UserRepository
}

func NewUserService(log *slog.Logger, repo repository.UserRepository) *UserService {
	return &UserService{
		log:  log,
		repo: repo,
	}
}

func (s *UserService) Login(ctx context.Context, username, password string) (models.Admin, error) {
	const op = "user_service.Login"

	log := s.log.With(
		slog.String("op", op),
		slog.String("username", username),
	)

	log.Info("attempting to login admin")

	admin, err := s.repo.AdminByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("admin not found")

			return models.Admin{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		log.Error("failed to get admin", sl.Err(err))

		return models.Admin{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(admin.PasswordHash, []byte(password)); err != nil {
		log.Info("invalid credentials")

		return models.Admin{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	log.Info("admin logged in successfully")

	return admin, nil
}

func (s *UserService) AdminByID(ctx context.Context, id uuid.UUID) (models.Admin, error) {
	const op = "user_service.AdminByID"

	admin, err := s.repo.AdminByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.Admin{}, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return models.Admin{}, fmt.Errorf("%s: %w", op, err)
	}

	return admin, nil
}

// CreateAdmin seeds a new administrator. Used by the seed CLI only,
// passwords never enter the system unhashed anywhere else.
func (s *UserService) CreateAdmin(ctx context.Context, username, password string) (uuid.UUID, error) {
	const op = "user_service.CreateAdmin"

	log := s.log.With(
		slog.String("op", op),
		slog.String("username", username),
	)

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))

		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.repo.SaveAdmin(ctx, username, passHash, models.RoleAdmin)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("admin already exists")

			return uuid.Nil, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}

		log.Error("failed to save admin", sl.Err(err))

		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("admin created", slog.String("id", id.String()))

	return id, nil
}
