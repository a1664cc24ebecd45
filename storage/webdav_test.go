package storage

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studio-b12/gowebdav"
)

type fakeDAV struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  []string
	block chan struct{}
}

func newFakeDAV() *fakeDAV {
	return &fakeDAV{files: map[string][]byte{}}
}

func notFound(path string) error {
	return &os.PathError{Op: "ReadFile", Path: path, Err: gowebdav.StatusError{Status: 404}}
}

func (f *fakeDAV) ReadDir(path string) ([]os.FileInfo, error) { return nil, nil }

func (f *fakeDAV) Read(path string) ([]byte, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[path]
	if !ok {
		return nil, notFound(path)
	}
	return data, nil
}

func (f *fakeDAV) Write(path string, data []byte, _ os.FileMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = data
	return nil
}

func (f *fakeDAV) Remove(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[path]; !ok {
		return notFound(path)
	}
	delete(f.files, path)
	return nil
}

func (f *fakeDAV) Mkdir(path string, _ os.FileMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dirs = append(f.dirs, path)
	if strings.Count(path, "/") == 1 && len(f.dirs) > 1 {
		return errors.New("405 Method Not Allowed")
	}
	return nil
}

func TestNewWebDAVStorage_RequiresURL(t *testing.T) {
	_, err := NewWebDAVStorage(WebDAVConfig{}, nil)
	assert.Error(t, err)
}

func TestWebDAVStorage_FullPath(t *testing.T) {
	tests := []struct {
		root, key, want string
	}{
		{"", "thumb_1.jpg", "/thumb_1.jpg"},
		{"/photos/", "thumb_1.jpg", "/photos/thumb_1.jpg"},
		{"photos", "/a/b.jpg", "/photos/a/b.jpg"},
	}
	for _, tt := range tests {
		s := newWebDAVStorage(newFakeDAV(), "https://dav.example.com", tt.root, nil)
		assert.Equal(t, tt.want, s.fullPath(tt.key))
	}
}

func TestWebDAVStorage_PutGetDeleteMany(t *testing.T) {
	dav := newFakeDAV()
	s := newWebDAVStorage(dav, "https://dav.example.com", "photos", NewURLSigner("k", "http://api"))
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "albums/1/thumb_a.jpg", []byte("a"), "image/jpeg"))
	require.NoError(t, s.Put(ctx, "thumb_b.jpg", []byte("b"), "image/jpeg"))
	assert.Contains(t, dav.dirs, "/photos/albums/1")

	data, err := s.Get(ctx, "albums/1/thumb_a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), data)

	require.NoError(t, s.DeleteMany(ctx, []string{"albums/1/thumb_a.jpg", "thumb_b.jpg", "gone.jpg"}))
	_, err = s.Get(ctx, "thumb_b.jpg")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	u, err := s.PresignRead(ctx, "thumb_b.jpg", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "http://api/objects/thumb_b.jpg?"))
}

func TestWebDAVStorage_ContextCancel(t *testing.T) {
	dav := newFakeDAV()
	dav.block = make(chan struct{})
	defer close(dav.block)

	s := newWebDAVStorage(dav, "https://dav.example.com", "", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.Get(ctx, "thumb_a.jpg")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIsCollectionExistsError(t *testing.T) {
	assert.True(t, isCollectionExistsError(errors.New("405 Method Not Allowed")))
	assert.True(t, isCollectionExistsError(errors.New("Conflict")))
	assert.False(t, isCollectionExistsError(errors.New("401 Unauthorized")))
	assert.False(t, isCollectionExistsError(nil))
}

func TestWebDAVStorage_Name(t *testing.T) {
	assert.Equal(t, "webdav", newWebDAVStorage(newFakeDAV(), "", "", nil).Name())
	assert.Equal(t, "webdav:https://dav.example.com/photos",
		newWebDAVStorage(newFakeDAV(), "https://dav.example.com/", "photos", nil).Name())
}
