package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pageza/recipedia/backend/internal/logging"
)

const imagePrefix = "recipes/images"

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// ImageStore persists recipe pictures and resolves their public URLs.
type ImageStore interface {
	Save(ctx context.Context, dataURI string) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// DecodeImage decodes a "data:image/<ext>;base64,<payload>" URI and sniffs
// the payload. It returns the raw bytes with their detected content type.
func DecodeImage(dataURI string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(dataURI, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return nil, "", ErrInvalidImage
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, "", ErrInvalidImage
	}

	contentType := http.DetectContentType(data)
	if _, ok := imageExtensions[contentType]; !ok {
		return nil, "", ErrInvalidImage
	}
	return data, contentType, nil
}

func newImageKey(contentType string) string {
	return path.Join(imagePrefix, uuid.NewString()+"."+imageExtensions[contentType])
}

// LocalImageStore writes images below a directory served at baseURL.
type LocalImageStore struct {
	dir     string
	baseURL string
}

func NewLocalImageStore(dir, baseURL string) *LocalImageStore {
	return &LocalImageStore{dir: dir, baseURL: baseURL}
}

func (s *LocalImageStore) Save(ctx context.Context, dataURI string) (string, error) {
	data, contentType, err := DecodeImage(dataURI)
	if err != nil {
		return "", err
	}

	key := newImageKey(contentType)
	dst := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return key, nil
}

func (s *LocalImageStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalImageStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimSuffix(s.baseURL, "/") + "/" + key
}

// S3API is the subset of the S3 client used by S3ImageStore.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3ImageStore uploads images to a bucket. baseURL overrides the default
// virtual-hosted bucket URL, e.g. for a CDN.
type S3ImageStore struct {
	client  S3API
	bucket  string
	baseURL string
}

func NewS3ImageStore(client S3API, bucket, region, baseURL string) *S3ImageStore {
	if baseURL == "" || strings.HasPrefix(baseURL, "/") {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3ImageStore{client: client, bucket: bucket, baseURL: baseURL}
}

func (s *S3ImageStore) Save(ctx context.Context, dataURI string) (string, error) {
	data, contentType, err := DecodeImage(dataURI)
	if err != nil {
		return "", err
	}

	key := newImageKey(contentType)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	logging.Ctx(ctx).Debug().Str("bucket", s.bucket).Str("key", key).Msg("uploaded recipe image")
	return key, nil
}

func (s *S3ImageStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *S3ImageStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimSuffix(s.baseURL, "/") + "/" + key
}

// discardImage removes an image that lost its owner, logging failures.
func discardImage(ctx context.Context, store ImageStore, key string) {
	if err := store.Delete(ctx, key); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("failed to delete image")
	}
}
