package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"asha_gallery/internal/domain/models"
	jwtlib "asha_gallery/internal/lib/jwt"
	"asha_gallery/internal/lib/logger/sl"
	"asha_gallery/internal/storage"
	"asha_gallery/internal/transport/http/dto"
	"asha_gallery/internal/transport/http/dto/request"
	"asha_gallery/internal/transport/http/dto/response"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	gallerysvc "asha_gallery/internal/services/gallery_service"
	usersvc "asha_gallery/internal/services/user_service"

	_ "asha_gallery/docs"
)

type UserService interface {
	Login(ctx context.Context, username, password string) (models.Admin, error)
	AdminByID(ctx context.Context, id uuid.UUID) (models.Admin, error)
}

type TokenService interface {
	Issue(admin models.Admin) (string, error)
	Verify(token string) (*jwtlib.Claims, error)
	Revoke(ctx context.Context, token string) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type GalleryService interface {
	Upload(ctx context.Context, input dto.GalleryUploadInput) (*dto.GalleryItemResponse, error)
	List(ctx context.Context, category string, page, limit int) (*dto.GalleryListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateGalleryItemRequest) (*dto.GalleryItemResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Replace(ctx context.Context, req dto.ReplaceGalleryRequest) error
}

type Routers struct {
	log            *slog.Logger
	UserService    UserService
	TokenService   TokenService
	GalleryService GalleryService
}

func NewRouter(log *slog.Logger, userService UserService, tokenService TokenService, galleryService GalleryService) *Routers {
	return &Routers{
		log:            log,
		UserService:    userService,
		TokenService:   tokenService,
		GalleryService: galleryService,
	}
}

// Login godoc
// @Summary Admin login
// @Description Authenticates an admin by username and password. Returns a JWT token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Login credentials"
// @Success 200 {object} response.Response "Token and admin profile"
// @Failure 400 {object} response.ErrorResponse "Invalid request format"
// @Failure 401 {object} response.ErrorResponse "Invalid credentials"
// @Router /api/auth/login [post]
func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.LoginRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.Error("Invalid request format"))
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid login request", slog.String("username", req.Username))
		return c.JSON(http.StatusBadRequest, response.ValidationError(err))
	}

	admin, err := r.UserService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, usersvc.ErrInvalidCredentials) {
			log.Warn("login rejected", slog.String("username", req.Username))
			return c.JSON(http.StatusUnauthorized, response.ErrInvalidCredentials)
		}

		log.Error("login failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	token, err := r.TokenService.Issue(admin)
	if err != nil {
		log.Error("failed to issue token", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	log.Info("admin logged in", slog.String("username", admin.Username))

	return c.JSON(http.StatusOK, response.SuccessResponse("Login successful", map[string]interface{}{
		"token": token,
		"user": map[string]string{
			"id":       admin.ID.String(),
			"username": admin.Username,
			"role":     string(admin.Role),
		},
	}))
}

// Logout godoc
// @Summary Admin logout
// @Description Revokes the presented token until its natural expiry. Repeating is harmless.
// @Tags auth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/auth/logout [post]
func (r *Routers) Logout(c echo.Context) error {
	const op = "http.routers.Logout"

	log := r.log.With(
		slog.String("op", op),
	)

	token, ok := bearerToken(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.ErrNoToken)
	}

	if err := r.TokenService.Revoke(c.Request().Context(), token); err != nil {
		log.Error("failed to revoke token", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse("Logged out successfully", nil))
}

// Me godoc
// @Summary Current admin profile
// @Tags auth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/auth/me [get]
func (r *Routers) Me(c echo.Context) error {
	admin, ok := c.Get("admin").(models.Admin)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.ErrNoToken)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse("", map[string]string{
		"id":       admin.ID.String(),
		"username": admin.Username,
		"role":     string(admin.Role),
	}))
}

// GetGallery godoc
// @Summary List gallery items
// @Description Returns one page of items grouped by category. An optional category filter narrows the result to a single group.
// @Tags gallery
// @Produce json
// @Param category query string false "Category filter" Enums(studentWork, programs, photos, videos)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} dto.GalleryListResponse
// @Failure 400 {object} response.ErrorResponse "Unknown category"
// @Router /api/gallery [get]
func (r *Routers) GetGallery(c echo.Context) error {
	const op = "http.routers.GetGallery"

	log := r.log.With(
		slog.String("op", op),
	)

	category := c.QueryParam("category")

	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}

	list, err := r.GalleryService.List(c.Request().Context(), category, page, limit)
	if err != nil {
		if errors.Is(err, gallerysvc.ErrInvalidCategory) {
			return c.JSON(http.StatusBadRequest, response.Error("Invalid category"))
		}

		log.Error("failed to list gallery", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, list)
}

// UploadImage godoc
// @Summary Upload a gallery image
// @Description Stores the image binary and records a gallery item pointing at it.
// @Tags gallery
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image file (max 10MB)"
// @Param category formData string true "Target category" Enums(studentWork, programs, photos)
// @Param title formData string false "Optional title"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Missing file, too large, bad type or bad category"
// @Failure 500 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/gallery/upload [post]
func (r *Routers) UploadImage(c echo.Context) error {
	const op = "http.routers.UploadImage"

	log := r.log.With(
		slog.String("op", op),
	)

	file, err := c.FormFile("image")
	if err != nil {
		log.Warn("no file in request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrNoFile)
	}

	input := dto.GalleryUploadInput{
		File:     file,
		Category: c.FormValue("category"),
		Title:    c.FormValue("title"),
	}

	item, err := r.GalleryService.Upload(c.Request().Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, gallerysvc.ErrNoFile):
			return c.JSON(http.StatusBadRequest, response.ErrNoFile)
		case errors.Is(err, storage.ErrFileTooLarge):
			return c.JSON(http.StatusBadRequest, response.ErrFileTooLarge)
		case errors.Is(err, storage.ErrDuplicateKey):
			return c.JSON(http.StatusBadRequest, response.ErrDuplicateKey)
		case errors.Is(err, storage.ErrInvalidFileType):
			return c.JSON(http.StatusBadRequest, response.Error("Only image files are allowed (jpeg, jpg, png, gif, webp)"))
		case errors.Is(err, gallerysvc.ErrInvalidCategory), errors.Is(err, gallerysvc.ErrCategoryNotAllowed):
			return c.JSON(http.StatusBadRequest, response.Error("Invalid category"))
		}

		log.Error("upload failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse("Image uploaded successfully", item))
}

// UpdateItem godoc
// @Summary Update a gallery item
// @Description Applies a partial update. Unknown or malformed ids report not found.
// @Tags gallery
// @Accept json
// @Produce json
// @Param id path string true "Item id" format(uuid)
// @Param request body dto.UpdateGalleryItemRequest true "Fields to change"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/gallery/{id} [patch]
func (r *Routers) UpdateItem(c echo.Context) error {
	const op = "http.routers.UpdateItem"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, response.ErrItemNotFound)
	}

	var req dto.UpdateGalleryItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.Error("Invalid request format"))
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ValidationError(err))
	}

	item, err := r.GalleryService.Update(c.Request().Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrItemNotFound):
			return c.JSON(http.StatusNotFound, response.ErrItemNotFound)
		case errors.Is(err, storage.ErrDuplicateKey):
			return c.JSON(http.StatusBadRequest, response.ErrDuplicateKey)
		case errors.Is(err, gallerysvc.ErrInvalidCategory):
			return c.JSON(http.StatusBadRequest, response.Error("Invalid category"))
		}

		log.Error("failed to update item", slog.String("id", id.String()), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse("Item updated successfully", item))
}

// DeleteItem godoc
// @Summary Delete a gallery item
// @Tags gallery
// @Produce json
// @Param id path string true "Item id" format(uuid)
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/gallery/{id} [delete]
func (r *Routers) DeleteItem(c echo.Context) error {
	const op = "http.routers.DeleteItem"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, response.ErrItemNotFound)
	}

	if err := r.GalleryService.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrItemNotFound)
		}

		log.Error("failed to delete item", slog.String("id", id.String()), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse("Item deleted successfully", nil))
}

// ReplaceGallery godoc
// @Summary Replace the whole gallery
// @Description Swaps every stored item for the supplied list in one transaction.
// @Tags gallery
// @Accept json
// @Produce json
// @Param request body dto.ReplaceGalleryRequest true "New gallery contents"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/gallery [put]
func (r *Routers) ReplaceGallery(c echo.Context) error {
	const op = "http.routers.ReplaceGallery"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.ReplaceGalleryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.Error("Invalid request format"))
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ValidationError(err))
	}

	if err := r.GalleryService.Replace(c.Request().Context(), req); err != nil {
		if errors.Is(err, gallerysvc.ErrInvalidCategory) {
			return c.JSON(http.StatusBadRequest, response.Error("Invalid category"))
		}

		log.Error("failed to replace gallery", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	log.Info("gallery replaced", slog.Int("items", len(req.Items)))

	return c.JSON(http.StatusOK, response.SuccessResponse("Gallery updated successfully", nil))
}

// Health godoc
// @Summary Liveness probe
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (r *Routers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", false
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", false
	}

	return token, true
}
