package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage(t *testing.T) {
	s := NewMemoryStorage(nil)
	ctx := context.Background()

	buf := []byte("abc")
	require.NoError(t, s.Put(ctx, "thumb_1.jpg", buf, "image/jpeg"))
	buf[0] = 'z'

	data, err := s.Get(ctx, "thumb_1.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data, "stored bytes are copied")

	u, err := s.PresignRead(ctx, "thumb_1.jpg", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "memory://thumb_1.jpg", u)

	require.NoError(t, s.DeleteMany(ctx, []string{"thumb_1.jpg"}))
	assert.False(t, s.Has("thumb_1.jpg"))
	assert.Zero(t, s.Len())

	_, err = s.Get(ctx, "thumb_1.jpg")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestNeedsSignedRoute(t *testing.T) {
	assert.True(t, NeedsSignedRoute(NewMemoryStorage(nil)))
	assert.False(t, NeedsSignedRoute(&S3Storage{}))
}
