package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

func TestDetectImageType(t *testing.T) {
	mimeType, ext, err := DetectImageType(pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.Equal(t, ".png", ext)

	mimeType, ext, err = DetectImageType([]byte("GIF89a......"))
	require.NoError(t, err)
	assert.Equal(t, "image/gif", mimeType)
	assert.Equal(t, ".gif", ext)

	_, _, err = DetectImageType([]byte("just some text"))
	assert.ErrorIs(t, err, ErrUnsupportedImageType)

	_, _, err = DetectImageType(append(bytes.Clone(pngHeader), make([]byte, MaxImageSize)...))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestImageKeys(t *testing.T) {
	at := time.UnixMilli(1715410256322)
	key := NewImageKey("u1", at, ".jpg")
	assert.Equal(t, "clothes/u1/1715410256322.jpg", key)

	assert.True(t, OwnsImageKey("u1", key))
	assert.False(t, OwnsImageKey("u2", key))
	assert.False(t, OwnsImageKey("u1", "clothes/u1/"))
	assert.False(t, OwnsImageKey("u1", "clothes/u1/../u2/1.jpg"))
	assert.False(t, OwnsImageKey("u1", "clothes/u10/1.jpg"))
}
