package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/logger"
)

// imagePrefix is the key prefix recipe images are stored under
const imagePrefix = "recipes/images"

var errBadDataURI = errors.New("image must be a base64 data URI")

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// ImageStore persists decoded recipe images and returns their public URL.
// Delete takes a URL returned by Save.
type ImageStore interface {
	Save(ctx context.Context, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// Image is a decoded data URI
type Image struct {
	Data        []byte
	ContentType string
}

// DecodeDataURI parses "data:image/<type>;base64,<payload>"
func DecodeDataURI(uri string) (*Image, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "data:")
	if !ok {
		return nil, errBadDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errBadDataURI
	}
	contentType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return nil, errBadDataURI
	}
	if _, known := imageExtensions[contentType]; !known {
		return nil, fmt.Errorf("unsupported image type %q", contentType)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image payload: %w", err)
	}
	if len(data) == 0 {
		return nil, errBadDataURI
	}
	return &Image{Data: data, ContentType: contentType}, nil
}

func imageKey(contentType string) string {
	return fmt.Sprintf("%s/%s.%s", imagePrefix, uuid.New().String(), imageExtensions[contentType])
}

// keyFromURL recovers the object key from a URL built by a store
func keyFromURL(url string) (string, error) {
	i := strings.Index(url, imagePrefix+"/")
	if i < 0 {
		return "", fmt.Errorf("not a recipe image URL: %q", url)
	}
	return url[i:], nil
}

// S3API is the part of the S3 client used for images
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3ImageStore uploads images to an S3 bucket
type S3ImageStore struct {
	client S3API
	bucket string
	urlFor func(key string) string
}

// NewS3ImageStore creates an S3-backed store from the loaded S3 config
func NewS3ImageStore(cfg *config.S3Config) *S3ImageStore {
	return &S3ImageStore{client: cfg.Client, bucket: cfg.BucketName, urlFor: cfg.ObjectURL}
}

func (s *S3ImageStore) Save(ctx context.Context, data []byte, contentType string) (string, error) {
	key := imageKey(contentType)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	url := s.urlFor(key)
	log := logger.WithComponent("images")
	log.Debug().Str("url", url).Msg("uploaded recipe image")
	return url, nil
}

func (s *S3ImageStore) Delete(ctx context.Context, url string) error {
	key, err := keyFromURL(url)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// LocalImageStore writes images under a media directory served by the API
type LocalImageStore struct {
	dir      string
	mediaURL string
}

func NewLocalImageStore(dir, mediaURL string) *LocalImageStore {
	if !strings.HasSuffix(mediaURL, "/") {
		mediaURL += "/"
	}
	return &LocalImageStore{dir: dir, mediaURL: mediaURL}
}

func (s *LocalImageStore) Save(ctx context.Context, data []byte, contentType string) (string, error) {
	key := imageKey(contentType)
	target := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return s.mediaURL + path.Clean(key), nil
}

func (s *LocalImageStore) Delete(ctx context.Context, url string) error {
	key, err := keyFromURL(url)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(key))); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove image: %w", err)
	}
	return nil
}
