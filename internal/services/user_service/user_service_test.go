package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"asha_gallery/internal/domain/models"
	"asha_gallery/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) SaveAdmin(ctx context.Context, username string, passwordHash []byte, role models.Role) (uuid.UUID, error) {
	args := m.Called(ctx, username, passwordHash, role)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockUserRepository) AdminByUsername(ctx context.Context, username string) (models.Admin, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(models.Admin), args.Error(1)
}

func (m *MockUserRepository) AdminByID(ctx context.Context, id uuid.UUID) (models.Admin, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Admin), args.Error(1)
}

var testCtx = context.Background()

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAdmin(t *testing.T, password string) models.Admin {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return models.Admin{
		ID:           uuid.New(),
		Username:     "admin",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
}

func TestLogin_Success(t *testing.T) {
	repo := new(MockUserRepository)
	service := NewUserService(discardLogger(), repo)

	admin := testAdmin(t, "correct-horse")
	repo.On("AdminByUsername", testCtx, "admin").Return(admin, nil)

	got, err := service.Login(testCtx, "admin", "correct-horse")

	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)
	repo.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := new(MockUserRepository)
	service := NewUserService(discardLogger(), repo)

	admin := testAdmin(t, "correct-horse")
	repo.On("AdminByUsername", testCtx, "admin").Return(admin, nil)

	_, err := service.Login(testCtx, "admin", "battery-staple")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	repo.AssertExpectations(t)
}

func TestLogin_UnknownUser(t *testing.T) {
	repo := new(MockUserRepository)
	service := NewUserService(discardLogger(), repo)

	repo.On("AdminByUsername", testCtx, "ghost").Return(models.Admin{}, storage.ErrUserNotFound)

	_, err := service.Login(testCtx, "ghost", "whatever")

	// indistinguishable from a wrong password
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	repo.AssertExpectations(t)
}

func TestAdminByID_NotFound(t *testing.T) {
	repo := new(MockUserRepository)
	service := NewUserService(discardLogger(), repo)

	id := uuid.New()
	repo.On("AdminByID", testCtx, id).Return(models.Admin{}, storage.ErrUserNotFound)

	_, err := service.AdminByID(testCtx, id)

	assert.ErrorIs(t, err, ErrUserNotFound)
	repo.AssertExpectations(t)
}

func TestCreateAdmin_HashesPassword(t *testing.T) {
	repo := new(MockUserRepository)
	service := NewUserService(discardLogger(), repo)

	newID := uuid.New()
	repo.On("SaveAdmin", testCtx, "admin", mock.MatchedBy(func(hash []byte) bool {
		return bcrypt.CompareHashAndPassword(hash, []byte("secret-pass")) == nil
	}), models.RoleAdmin).Return(newID, nil)

	id, err := service.CreateAdmin(testCtx, "admin", "secret-pass")

	require.NoError(t, err)
	assert.Equal(t, newID, id)
	repo.AssertExpectations(t)
}

func TestCreateAdmin_AlreadyExists(t *testing.T) {
	repo := new(MockUserRepository)
	service := NewUserService(discardLogger(), repo)

	repo.On("SaveAdmin", testCtx, "admin", mock.Anything, models.RoleAdmin).
		Return(uuid.Nil, storage.ErrUserExists)

	_, err := service.CreateAdmin(testCtx, "admin", "secret-pass")

	assert.ErrorIs(t, err, storage.ErrUserExists)
	repo.AssertExpectations(t)
}
