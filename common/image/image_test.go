package image

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderAvatar(t *testing.T) {
	data, err := RenderAvatar("A thoughtful scientist in a lab coat, digital art")
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, avatarSize, decoded.Bounds().Dx())
	require.Equal(t, avatarSize, decoded.Bounds().Dy())

	_, err = RenderAvatar("   ")
	require.Error(t, err)
}

func TestRenderAvatarDataURL(t *testing.T) {
	url, err := RenderAvatarDataURL("mediator with warm smile")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
	require.True(t, IsDataURL(url))

	w, h, err := GetImageSizeFromDataURL(url)
	require.NoError(t, err)
	require.Equal(t, avatarSize, w)
	require.Equal(t, avatarSize, h)

	_, _, err = GetImageSizeFromDataURL("https://example.com/a.png")
	require.Error(t, err)
}

func TestTintIsStable(t *testing.T) {
	require.Equal(t, tint("same prompt"), tint("same prompt"))
}

func TestWrapText(t *testing.T) {
	require.Nil(t, wrapText("   ", 10))
	require.Equal(t, []string{"short"}, wrapText("short", 10))
	require.Equal(t, []string{"one two", "three"}, wrapText("one two three", 8))
	require.Equal(t, []string{"abcdefghij", "klm"}, wrapText("abcdefghijklm", 10))
}
