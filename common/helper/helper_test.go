package helper

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestShorten(t *testing.T) {
	require.Equal(t, "abc", Shorten("  abc  ", 10))
	require.Equal(t, "ab…", Shorten("abcdef", 2))
	require.Equal(t, "héllo", Shorten("héllo", 5))
	require.Equal(t, "abcdef", Shorten("abcdef", 0))
}

func TestSnippet(t *testing.T) {
	require.Equal(t, `{ "a": 1 }`, Snippet([]byte("{\n  \"a\": 1\n}\n")))

	long := []byte(strings.Repeat("x", 400))
	got := Snippet(long)
	require.True(t, strings.HasSuffix(got, "…"))
	require.Len(t, []rune(got), 257)
}

func TestCalcElapsedTime(t *testing.T) {
	require.GreaterOrEqual(t, CalcElapsedTime(time.Now().Add(-5*time.Millisecond)), int64(5))
	require.Equal(t, "1.5s", FormatElapsed(1500*time.Millisecond+200*time.Microsecond))
}

func TestSyntheticWAV(t *testing.T) {
	data, err := SyntheticWAV(250, 440)
	require.NoError(t, err)
	require.Equal(t, "RIFF", string(data[:4]))
	require.Equal(t, "WAVE", string(data[8:12]))
	require.Len(t, data, 44+16000*250/1000*2)
	require.True(t, IsAudio("", data))

	_, err = SyntheticWAV(0, 440)
	require.Error(t, err)
}

func TestIsAudio(t *testing.T) {
	require.True(t, IsAudio("audio/webm", []byte("whatever")))
	require.False(t, IsAudio("text/plain", []byte("just some text")))
	require.False(t, IsAudio("", []byte("%PDF-1.4 fake document")))
}
