package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/radio/config"
)

func newTestLocal(t *testing.T) (Disk, string) {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "home"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "home", "index.html"), []byte("<h1>home</h1>"), 0o644))

	d, err := NewLocalDisk(root)
	require.NoError(t, err)
	return d, root
}

func TestLocalDisk_GetStream(t *testing.T) {
	d, _ := newTestLocal(t)

	rc, err := d.GetStream(context.Background(), "/home/index.html")
	require.NoError(t, err)
	defer rc.Close()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "<h1>home</h1>", string(body))
}

func TestLocalDisk_NotFound(t *testing.T) {
	d, _ := newTestLocal(t)

	tests := []struct {
		name string
		path string
	}{
		{"missing file", "/index.png"},
		{"directory", "/home"},
		{"file used as directory", "/home/index.html/extra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.GetStream(context.Background(), tt.path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
		})
	}
}

func TestLocalDisk_TraversalStaysInsideRoot(t *testing.T) {
	d, root := newTestLocal(t)

	outside := filepath.Join(filepath.Dir(root), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o644))
	t.Cleanup(func() { _ = os.Remove(outside) })

	_, err := d.GetStream(context.Background(), "/../"+filepath.Base(outside))
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}

func TestLocalDisk_PermissionErrorIsNotNotFound(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	d, root := newTestLocal(t)

	locked := filepath.Join(root, "locked.mp3")
	require.NoError(t, os.WriteFile(locked, []byte("x"), 0o000))

	_, err := d.GetStream(context.Background(), "/locked.mp3")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestLocalDisk_Exists(t *testing.T) {
	d, _ := newTestLocal(t)
	ctx := context.Background()

	ok, err := d.Exists(ctx, "home/index.html")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Exists(ctx, "home")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = d.Exists(ctx, "nope.css")
	require.NoError(t, err)
	assert.False(t, ok)
}

// ── s3 ───────────────────────────────────────────────────────────────────────

type mockS3 struct{ mock.Mock }

func (m *mockS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, *in.Key)
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func (m *mockS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, *in.Key)
	out, _ := args.Get(0).(*s3.HeadObjectOutput)
	return out, args.Error(1)
}

func TestS3Disk_GetStreamUsesPrefixedKey(t *testing.T) {
	api := &mockS3{}
	api.On("GetObject", mock.Anything, "public/home/index.html").
		Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("page"))}, nil)

	d := newS3Disk(api, "bucket", "/public/")
	rc, err := d.GetStream(context.Background(), "/home/../home/index.html")
	require.NoError(t, err)

	body, _ := io.ReadAll(rc)
	assert.Equal(t, "page", string(body))
	api.AssertExpectations(t)
}

func TestS3Disk_ErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		notFound bool
	}{
		{"no such key", &types.NoSuchKey{}, true},
		{"generic not found code", &smithy.GenericAPIError{Code: "NotFound"}, true},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, false},
		{"network", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockS3{}
			api.On("GetObject", mock.Anything, "a.mp3").Return(nil, tt.err)

			_, err := newS3Disk(api, "bucket", "").GetStream(context.Background(), "a.mp3")
			require.Error(t, err)
			assert.Equal(t, tt.notFound, errors.Is(err, ErrNotFound), "got %v", err)
		})
	}
}

func TestS3Disk_Exists(t *testing.T) {
	api := &mockS3{}
	api.On("HeadObject", mock.Anything, "here.css").Return(&s3.HeadObjectOutput{}, nil)
	api.On("HeadObject", mock.Anything, "gone.css").Return(nil, &types.NotFound{})
	api.On("HeadObject", mock.Anything, "denied.css").Return(nil, &smithy.GenericAPIError{Code: "AccessDenied"})

	d := newS3Disk(api, "bucket", "")
	ctx := context.Background()

	ok, err := d.Exists(ctx, "here.css")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Exists(ctx, "gone.css")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = d.Exists(ctx, "denied.css")
	require.Error(t, err)
}

// ── manager ──────────────────────────────────────────────────────────────────

func TestConnect_LocalDefault(t *testing.T) {
	cfg := config.Defaults()
	cfg.Dir.Public = t.TempDir()

	m, err := Connect(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"local"}, m.Names())
	assert.NotNil(t, m.Default())
}

func TestConnect_UnknownDefaultDisk(t *testing.T) {
	cfg := config.Defaults()
	cfg.Dir.Public = t.TempDir()
	cfg.Storage.Disk = "s3"

	_, err := Connect(context.Background(), cfg)
	assert.True(t, errors.Is(err, ErrDiskNotConfigured), "got %v", err)
}
