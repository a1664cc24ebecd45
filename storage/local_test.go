package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocal(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(t.TempDir(), NewURLSigner("secret", "http://localhost:8080"))
	require.NoError(t, err)
	return s
}

func TestLocalStorage_PutGetDelete(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "thumb_abc.jpg", []byte("jpeg bytes"), "image/jpeg"))

	data, err := s.Get(ctx, "thumb_abc.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg bytes"), data)

	require.NoError(t, s.Delete(ctx, "thumb_abc.jpg"))
	_, err = s.Get(ctx, "thumb_abc.jpg")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	assert.NoError(t, s.Delete(ctx, "thumb_abc.jpg"), "deleting a missing object is not an error")
}

func TestLocalStorage_NestedKey(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "albums/1/final_x.png", []byte("png"), "image/png"))
	data, err := s.Get(ctx, "albums/1/final_x.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)
}

func TestLocalStorage_DeleteMany(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	keys := []string{"a.jpg", "b.jpg", "c.jpg"}
	for _, k := range keys {
		require.NoError(t, s.Put(ctx, k, []byte(k), ""))
	}

	require.NoError(t, s.DeleteMany(ctx, append(keys, "missing.jpg")))
	for _, k := range keys {
		_, err := s.Get(ctx, k)
		assert.ErrorIs(t, err, ErrObjectNotFound)
	}
}

func TestLocalStorage_PathTraversal(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	attempts := []string{
		"../../../etc/passwd",
		"..\\..\\windows\\system32",
		"../../.env",
		"..",
		".",
		"",
		"/absolute/path",
		"folder/../../../etc/passwd",
		"file\x00.txt",
		"file\n.txt",
		"空格 name.jpg",
	}

	for _, key := range attempts {
		t.Run("put_"+key, func(t *testing.T) {
			err := s.Put(ctx, key, []byte("x"), "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid")
		})
	}

	_, err := s.Get(ctx, "../../../etc/passwd")
	assert.Error(t, err)
	assert.Error(t, s.Delete(ctx, "../../../etc/passwd"))
	_, err = s.PresignRead(ctx, "../secret", time.Minute)
	assert.Error(t, err)
}

func TestLocalStorage_PresignRoundTrip(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "analysis_k.jpg", []byte("payload"), "image/jpeg"))

	raw, err := s.PresignRead(ctx, "analysis_k.jpg", time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u.Path, ObjectsPathPrefix))

	key := strings.TrimPrefix(u.Path, ObjectsPathPrefix)
	require.NoError(t, s.signer.Verify(key, u.Query().Get("expires"), u.Query().Get("signature")))

	data, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
}

func TestLocalStorage_HealthAndName(t *testing.T) {
	s := newTestLocal(t)
	assert.NoError(t, s.Health(context.Background()))
	assert.Equal(t, "local", s.Name())
}

func TestIsValidStoragePath(t *testing.T) {
	assert.True(t, IsValidStoragePath("thumb_0b6c.jpg"))
	assert.True(t, IsValidStoragePath("temp-analysis-1.jpg"))
	assert.True(t, IsValidStoragePath("a/b/c.webp"))
	assert.False(t, IsValidStoragePath("a/../b"))
	assert.False(t, IsValidStoragePath("/etc/passwd"))
	assert.False(t, IsValidStoragePath("."))
	assert.False(t, IsValidStoragePath("a b"))
}
