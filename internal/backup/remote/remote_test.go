package remote_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bookblog/bookblog-server/internal/backup/remote"
	"github.com/bookblog/bookblog-server/internal/backup/remote/mocks"
)

func TestNewClient(t *testing.T) {
	t.Run("PlainEndpoint", func(t *testing.T) {
		client, err := remote.NewClient(remote.Config{
			Endpoint:  "localhost:9000",
			AccessKey: "key",
			SecretKey: "secret",
		})
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithScheme", func(t *testing.T) {
		client, err := remote.NewClient(remote.Config{
			Endpoint: "https://s3.amazonaws.com",
			UseSSL:   true,
			Region:   "us-east-1",
		})
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestStore_Key(t *testing.T) {
	s := remote.New(new(mocks.Client), "backups", "bookblog", nil)
	assert.Equal(t, "bookblog/backup-1.bookblog.zip", s.Key("backup-1.bookblog.zip"))
	assert.Equal(t, "bookblog/x.zip", s.Key("/tmp/x.zip"))

	bare := remote.New(new(mocks.Client), "backups", "", nil)
	assert.Equal(t, "x.zip", bare.Key("x.zip"))
}

func TestStore_UploadCreatesMissingBucket(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "backups").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "backups", mock.Anything).Return(nil)
	client.On("PutObject", mock.Anything, "backups", "bb/a.zip", mock.Anything, int64(3),
		mock.MatchedBy(func(opts minio.PutObjectOptions) bool { return opts.ContentType == remote.ContentType })).
		Return(minio.UploadInfo{Key: "bb/a.zip", Size: 3, ETag: "abc"}, nil)

	s := remote.New(client, "backups", "bb/", nil)
	obj, err := s.Upload(ctx, "a.zip", bytes.NewReader([]byte("zip")), 3)
	require.NoError(t, err)

	assert.Equal(t, "bb/a.zip", obj.Key)
	assert.Equal(t, "a.zip", obj.Name)
	assert.Equal(t, int64(3), obj.Size)
	client.AssertExpectations(t)
}

func TestStore_UploadFailure(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "backups").Return(true, nil)
	client.On("PutObject", mock.Anything, "backups", "a.zip", mock.Anything, int64(1), mock.Anything).
		Return(minio.UploadInfo{}, errors.New("connection refused"))

	s := remote.New(client, "backups", "", nil)
	_, err := s.Upload(context.Background(), "a.zip", bytes.NewReader([]byte("z")), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
}

func TestStore_ListNewestFirst(t *testing.T) {
	now := time.Now()
	ch := make(chan minio.ObjectInfo, 3)
	ch <- minio.ObjectInfo{Key: "bb/old.zip", Size: 1, LastModified: now.Add(-time.Hour)}
	ch <- minio.ObjectInfo{Key: "bb/", Size: 0}
	ch <- minio.ObjectInfo{Key: "bb/new.zip", Size: 2, LastModified: now}
	close(ch)

	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "backups", mock.MatchedBy(func(opts minio.ListObjectsOptions) bool {
		return opts.Prefix == "bb/"
	})).Return((<-chan minio.ObjectInfo)(ch))

	objects, err := remote.New(client, "backups", "bb", nil).List(context.Background())
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "new.zip", objects[0].Name)
	assert.Equal(t, "old.zip", objects[1].Name)
}

func TestStore_ListError(t *testing.T) {
	ch := make(chan minio.ObjectInfo, 1)
	ch <- minio.ObjectInfo{Err: errors.New("access denied")}
	close(ch)

	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "backups", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

	_, err := remote.New(client, "backups", "", nil).List(context.Background())
	assert.ErrorContains(t, err, "access denied")
}

func TestStore_Delete(t *testing.T) {
	client := new(mocks.Client)
	client.On("RemoveObject", mock.Anything, "backups", "bb/a.zip", mock.Anything).Return(nil)

	require.NoError(t, remote.New(client, "backups", "bb", nil).Delete(context.Background(), "a.zip"))
	client.AssertExpectations(t)
}
