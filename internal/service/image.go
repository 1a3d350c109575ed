package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/feniks1632/foodgram-project-react/config"
)

// ImageStorage persists decoded recipe images and returns the URL they will
// be served from.
type ImageStorage interface {
	Save(ctx context.Context, fileName string, data []byte, contentType string) (string, error)
}

// ImageService decodes base64-encoded recipe images and hands them to the
// configured storage backend.
type ImageService struct {
	storage ImageStorage
}

func NewImageService(storage ImageStorage) *ImageService {
	return &ImageService{storage: storage}
}

var extensionsByMIME = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// SaveBase64 accepts either a data URI ("data:image/png;base64,...") or a
// bare base64 string, decodes it and stores the image under a generated name.
func (s *ImageService) SaveBase64(ctx context.Context, encoded string) (string, error) {
	contentType := "image/png"
	if strings.HasPrefix(encoded, "data:") {
		header, payload, found := strings.Cut(encoded, ",")
		if !found {
			return "", newValidationError("invalid image encoding")
		}
		contentType = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		encoded = payload
	}

	ext, ok := extensionsByMIME[contentType]
	if !ok {
		return "", newValidationError(fmt.Sprintf("unsupported image type %q", contentType))
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", newValidationError("invalid image encoding")
	}

	fileName := fmt.Sprintf("recipes/%s%s", uuid.New().String(), ext)
	return s.storage.Save(ctx, fileName, data, contentType)
}

// LocalStorage writes images to the media directory on disk
type LocalStorage struct {
	dir     string
	baseURL string
}

func NewLocalStorage(dir, baseURL string) *LocalStorage {
	return &LocalStorage{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *LocalStorage) Save(ctx context.Context, fileName string, data []byte, contentType string) (string, error) {
	path := filepath.Join(s.dir, filepath.FromSlash(fileName))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return s.baseURL + "/" + fileName, nil
}

// S3Storage uploads images to the configured S3 bucket
type S3Storage struct {
	s3Config *config.S3Config
}

func NewS3Storage(s3Config *config.S3Config) *S3Storage {
	return &S3Storage{s3Config: s3Config}
}

func (s *S3Storage) Save(ctx context.Context, fileName string, data []byte, contentType string) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName)
	log.Printf("[ImageService] Successfully uploaded image to S3: %s", publicURL)

	return publicURL, nil
}
