package storage

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectAPI struct {
	objects map[string][]byte
	types   map[string]string
	listErr error
	listCtx context.Context
}

func newFakeObjectAPI() *fakeObjectAPI {
	return &fakeObjectAPI{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeObjectAPI) PutObject(_ context.Context, _, objectName string, reader io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.objects[objectName] = data
	f.types[objectName] = opts.ContentType
	return minio.UploadInfo{Key: objectName, Size: int64(len(data))}, nil
}

func (f *fakeObjectAPI) GetObject(context.Context, string, string, minio.GetObjectOptions) (*minio.Object, error) {
	return nil, errors.New("not used")
}

func (f *fakeObjectAPI) StatObject(_ context.Context, _, objectName string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	if _, ok := f.objects[objectName]; !ok {
		return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"}
	}
	return minio.ObjectInfo{Key: objectName}, nil
}

func (f *fakeObjectAPI) ListObjects(ctx context.Context, _ string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	f.listCtx = ctx
	keys := make([]string, 0, len(f.objects))
	for key := range f.objects {
		if strings.HasPrefix(key, opts.Prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	ch := make(chan minio.ObjectInfo, len(keys)+1)
	for _, key := range keys {
		ch <- minio.ObjectInfo{Key: key}
	}
	if f.listErr != nil {
		ch <- minio.ObjectInfo{Err: f.listErr}
	}
	close(ch)
	return ch
}

func (f *fakeObjectAPI) RemoveObject(_ context.Context, _, objectName string, _ minio.RemoveObjectOptions) error {
	if _, ok := f.objects[objectName]; !ok {
		return minio.ErrorResponse{Code: "NoSuchKey"}
	}
	delete(f.objects, objectName)
	return nil
}

func TestClient_PutExistsDelete(t *testing.T) {
	ctx := context.Background()
	api := newFakeObjectAPI()
	client := newClient(api, "public")

	exists, err := client.Exists(ctx, "themes/1/1_variables.css")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, client.Put(ctx, "themes/1/1_variables.css", []byte(":root {}\n"), "text/css; charset=utf-8"))
	assert.Equal(t, "text/css; charset=utf-8", api.types["themes/1/1_variables.css"])

	exists, err = client.Exists(ctx, "themes/1/1_variables.css")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, client.Delete(ctx, "themes/1/1_variables.css"))
	require.NoError(t, client.Delete(ctx, "themes/1/1_variables.css"))
	require.NoError(t, client.Delete(ctx, "  "))
}

func TestClient_ListByPrefix(t *testing.T) {
	ctx := context.Background()
	api := newFakeObjectAPI()
	client := newClient(api, "public")

	for _, key := range []string{"themes/1/1_header.css", "themes/1/1.css", "themes/12/12_header.css"} {
		require.NoError(t, client.Put(ctx, key, []byte("x"), "text/css"))
	}

	keys, err := client.List(ctx, "themes/1/")
	require.NoError(t, err)
	assert.Equal(t, []string{"themes/1/1.css", "themes/1/1_header.css"}, keys)

	api.listErr = errors.New("connection reset")
	_, err = client.List(ctx, "themes/1/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestClient_ListCancelsListingOnReturn(t *testing.T) {
	api := newFakeObjectAPI()
	api.listErr = errors.New("connection reset")
	client := newClient(api, "public")
	require.NoError(t, client.Put(context.Background(), "themes/1/1_header.css", []byte("x"), "text/css"))

	_, err := client.List(context.Background(), "themes/1/")
	require.Error(t, err)
	require.NotNil(t, api.listCtx)
	assert.ErrorIs(t, api.listCtx.Err(), context.Canceled)
}
