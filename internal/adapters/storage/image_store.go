package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"eventdesk/internal/domain"
)

// S3Config holds configuration for AWS S3.
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// ImageStoreConfig holds configuration for creating an image store.
type ImageStoreConfig struct {
	Provider string
	Bucket   string
	// PublicBaseURL overrides the default bucket URL, for CDN fronting.
	PublicBaseURL string
	S3            S3Config
}

// NewImageStore creates an image store from config. Provider "s3" uploads to
// AWS S3; "noop" or unknown logs instead of storing.
func NewImageStore(config ImageStoreConfig) (domain.ImageStore, error) {
	switch config.Provider {
	case "s3":
		if config.Bucket == "" {
			return nil, fmt.Errorf("image store: bucket is required for the s3 provider")
		}
		awsCfg := aws.Config{
			Region: config.S3.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					config.S3.AccessKeyID,
					config.S3.SecretAccessKey,
					"",
				),
			),
		}
		client := s3.NewFromConfig(awsCfg)
		return &s3ImageStore{
			client:  client,
			bucket:  config.Bucket,
			baseURL: PublicBaseURL(config),
		}, nil
	case "noop":
		return &noopImageStore{}, nil
	default:
		log.Printf("[STORAGE] Unknown image store provider %q, using noop", config.Provider)
		return &noopImageStore{}, nil
	}
}

// PublicBaseURL returns the base URL images stored under config are served
// from, so pages can link to stored keys. The noop store serves from /static.
func PublicBaseURL(config ImageStoreConfig) string {
	if config.Provider != "s3" {
		return "/static"
	}
	if config.PublicBaseURL != "" {
		return strings.TrimRight(config.PublicBaseURL, "/")
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", config.Bucket, config.S3.Region)
}

type s3ImageStore struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func (s *s3ImageStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

func (s *s3ImageStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image from S3: %w", err)
	}
	return nil
}

type noopImageStore struct{}

func (n *noopImageStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	log.Println("[STORAGE] Image would be stored (noop)", "key", key, "bytes", len(data))
	return "/static/" + key, nil
}

func (n *noopImageStore) Delete(ctx context.Context, key string) error {
	log.Println("[STORAGE] Image would be deleted (noop)", "key", key)
	return nil
}
