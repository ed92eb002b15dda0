package remote

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// ContentType is stored with every uploaded archive.
const ContentType = "application/zip"

// Object describes an archive stored in the bucket.
type Object struct {
	Key          string    `json:"key"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	ETag         string    `json:"etag,omitempty"`
}

// Store uploads, lists and removes archives under a key prefix of one bucket.
type Store struct {
	client Client
	bucket string
	prefix string
	logger *slog.Logger
}

// New creates a Store. A prefix without a trailing slash gets one.
func New(client Client, bucket, prefix string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Store{
		client: client,
		bucket: bucket,
		prefix: strings.TrimPrefix(prefix, "/"),
		logger: logger.With("component", "remote_backup", "bucket", bucket),
	}
}

// Bucket returns the target bucket name.
func (s *Store) Bucket() string { return s.bucket }

// Key returns the object key for an archive file name.
func (s *Store) Key(name string) string {
	return s.prefix + path.Base(name)
}

// EnsureBucket creates the bucket when it does not exist.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("bucket created")
	return nil
}

// Upload stores size bytes from r as the archive name.
func (s *Store) Upload(ctx context.Context, name string, r io.Reader, size int64) (*Object, error) {
	if err := s.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	key := s.Key(name)
	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	s.logger.Info("backup uploaded", "key", key, "size", info.Size)
	return &Object{
		Key:          key,
		Name:         path.Base(key),
		Size:         info.Size,
		LastModified: info.LastModified,
		ETag:         info.ETag,
	}, nil
}

// List returns the archives under the prefix, newest first.
func (s *Store) List(ctx context.Context) ([]Object, error) {
	var objects []Object
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s: %w", s.bucket, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		objects = append(objects, Object{
			Key:          obj.Key,
			Name:         path.Base(obj.Key),
			Size:         obj.Size,
			LastModified: obj.LastModified,
			ETag:         obj.ETag,
		})
	}

	slices.SortFunc(objects, func(a, b Object) int {
		return b.LastModified.Compare(a.LastModified)
	})
	return objects, nil
}

// Delete removes the archive name from the bucket.
func (s *Store) Delete(ctx context.Context, name string) error {
	key := s.Key(name)
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}
