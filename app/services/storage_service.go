// Package services provides external service integrations and technical concerns like notifications and storage
package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStorageService stores and retrieves uploaded documents
type ObjectStorageService interface {
	Store(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Fetch(ctx context.Context, key string) ([]byte, string, error)
	Delete(ctx context.Context, key string) error
}

// S3StorageConfig configures the S3-compatible object store
type S3StorageConfig struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	ForcePathStyle  bool
}

// S3StorageService implements ObjectStorageService against S3 or any
// S3-compatible store (MinIO, Liara, etc. via a custom endpoint)
type S3StorageService struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewS3StorageService creates a new S3-backed storage service
func NewS3StorageService(ctx context.Context, cfg S3StorageConfig) (ObjectStorageService, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return &S3StorageService{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Store uploads an object and returns its public URL
func (s *S3StorageService) Store(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store object %q: %w", key, err)
	}

	return fmt.Sprintf("%s/%s", s.publicBaseURL, key), nil
}

// Fetch downloads an object and returns its bytes and content type
func (s *S3StorageService) Fetch(ctx context.Context, key string) ([]byte, string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch object %q: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read object %q: %w", key, err)
	}

	contentType := ""
	if out.ContentType != nil {
		contentType = *out.ContentType
	}
	return data, contentType, nil
}

// Delete removes an object. Used when compensating a failed registration.
func (s *S3StorageService) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %q: %w", key, err)
	}
	return nil
}

type mockObject struct {
	data        []byte
	contentType string
}

// MockStorageService keeps objects in memory. Used in tests and local runs.
type MockStorageService struct {
	mu      sync.RWMutex
	objects map[string]mockObject
}

func NewMockStorageService() *MockStorageService {
	return &MockStorageService{
		objects: make(map[string]mockObject),
	}
}

func (s *MockStorageService) Store(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = mockObject{data: append([]byte(nil), data...), contentType: contentType}
	log.Printf("stored object %s (%d bytes)", key, len(data))
	return "mock://" + key, nil
}

func (s *MockStorageService) Fetch(ctx context.Context, key string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, "", fmt.Errorf("object %q not found", key)
	}
	return obj.data, obj.contentType, nil
}

func (s *MockStorageService) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Len reports how many objects are stored. Test helper.
func (s *MockStorageService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
