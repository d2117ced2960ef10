package filestorage

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStorage streams uploads to Cloudinary and lets the provider
// handle format and quality optimization. References are Cloudinary
// public ids.
type CloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryStorage(cloudinaryURL, folder string) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to init cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true

	return &CloudinaryStorage{
		cld:    cld,
		folder: folder,
	}, nil
}

func (s *CloudinaryStorage) Store(ctx context.Context, file *multipart.FileHeader) (StoredFile, error) {
	src, err := file.Open()
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	resp, err := s.cld.Upload.Upload(ctx, src, uploader.UploadParams{
		Folder:         s.folder,
		ResourceType:   "image",
		Transformation: "q_auto/f_auto",
	})
	if err != nil {
		return StoredFile{}, fmt.Errorf("cloudinary upload failed: %w", err)
	}
	if resp.Error.Message != "" {
		return StoredFile{}, fmt.Errorf("cloudinary upload failed: %s", resp.Error.Message)
	}

	return StoredFile{
		URL:       resp.SecureURL,
		Reference: resp.PublicID,
	}, nil
}

func (s *CloudinaryStorage) Delete(ctx context.Context, reference string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: reference})
	if err != nil {
		return fmt.Errorf("cloudinary destroy failed: %w", err)
	}
	return nil
}
