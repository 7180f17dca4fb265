package service_test

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipedia/backend/internal/service"
)

func TestDecodeImage(t *testing.T) {
	data, contentType, err := service.DecodeImage(pngDataURI())
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, pngHeader, data[:len(pngHeader)])

	for name, uri := range map[string]string{
		"missing comma":  "data:image/png;base64",
		"not an image":   "data:text/plain;base64,aGVsbG8=",
		"not base64":     "data:image/png;base64,@@@",
		"empty payload":  "data:image/png;base64,",
		"text as png":    "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello")),
		"plain url":      "https://example.com/cat.png",
		"missing base64": "data:image/png," + base64.StdEncoding.EncodeToString(pngHeader),
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := service.DecodeImage(uri)
			assert.ErrorIs(t, err, service.ErrInvalidImage)
		})
	}
}

func TestLocalImageStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := service.NewLocalImageStore(dir, "http://localhost:8080/media/")

	key, err := store.Save(ctx, pngDataURI())
	require.NoError(t, err)
	assert.Regexp(t, `^recipes/images/[0-9a-f-]{36}\.png$`, key)
	assert.True(t, fileExists(filepath.Join(dir, filepath.FromSlash(key))))
	assert.Equal(t, "http://localhost:8080/media/"+key, store.URL(key))
	assert.Empty(t, store.URL(""))

	require.NoError(t, store.Delete(ctx, key))
	assert.False(t, fileExists(filepath.Join(dir, filepath.FromSlash(key))))
	assert.NoError(t, store.Delete(ctx, key), "deleting a missing file is not an error")
}

type fakeS3 struct {
	put     *s3.PutObjectInput
	body    []byte
	deleted []string
	err     error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.put = params
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3ImageStore(t *testing.T) {
	ctx := context.Background()
	client := &fakeS3{}
	store := service.NewS3ImageStore(client, "recipes-bucket", "eu-west-1", "")

	key, err := store.Save(ctx, pngDataURI())
	require.NoError(t, err)
	require.NotNil(t, client.put)
	assert.Equal(t, "recipes-bucket", aws.ToString(client.put.Bucket))
	assert.Equal(t, key, aws.ToString(client.put.Key))
	assert.Equal(t, "image/png", aws.ToString(client.put.ContentType))
	assert.Equal(t, pngHeader, client.body[:len(pngHeader)])
	assert.Equal(t, "https://recipes-bucket.s3.eu-west-1.amazonaws.com/"+key, store.URL(key))

	require.NoError(t, store.Delete(ctx, key))
	assert.Equal(t, []string{key}, client.deleted)

	cdn := service.NewS3ImageStore(client, "recipes-bucket", "eu-west-1", "https://cdn.example.com")
	assert.Equal(t, "https://cdn.example.com/"+key, cdn.URL(key))

	client.err = errors.New("access denied")
	_, err = store.Save(ctx, pngDataURI())
	assert.ErrorContains(t, err, "access denied")
}
