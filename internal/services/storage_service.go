// internal/services/storage_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/cueshop/billiard-backend/internal/config"
)

var ErrStorageNotConfigured = errors.New("S3 client not configured")

// MediaHost signs direct uploads and removes uploaded objects.
type MediaHost interface {
	SignUpload(ctx context.Context, key, contentType string) (string, time.Time, error)
	Destroy(ctx context.Context, keys []string) error
	PublicURL(key string) string
}

type StorageService struct {
	s3Client *s3.S3
	config   config.StorageConfig
}

func NewStorageService(cfg config.StorageConfig) (*StorageService, error) {
	if cfg.AccessKeyID == "" {
		// Signing is unavailable without credentials; deletions are only logged.
		return &StorageService{config: cfg}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		config:   cfg,
	}, nil
}

// SignUpload returns a presigned PUT URL for key and the moment it stops being valid.
func (s *StorageService) SignUpload(ctx context.Context, key, contentType string) (string, time.Time, error) {
	if s.s3Client == nil {
		return "", time.Time{}, ErrStorageNotConfigured
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	req, _ := s.s3Client.PutObjectRequest(input)
	req.SetContext(ctx)

	ttl := time.Duration(s.config.UploadURLTTL) * time.Minute
	url, err := req.Presign(ttl)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return url, time.Now().Add(ttl), nil
}

func (s *StorageService) Destroy(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	if s.s3Client == nil {
		logrus.WithField("keys", keys).Info("Storage not configured, skipping object deletion")
		return nil
	}

	objects := make([]*s3.ObjectIdentifier, 0, len(keys))
	for _, k := range keys {
		objects = append(objects, &s3.ObjectIdentifier{Key: aws.String(k)})
	}

	_, err := s.s3Client.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.config.Bucket),
		Delete: &s3.Delete{
			Objects: objects,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete files from S3: %w", err)
	}

	return nil
}

func (s *StorageService) PublicURL(key string) string {
	if s.config.PublicURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.config.PublicURL, "/"), key)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.config.Bucket, s.config.Region, key)
}
