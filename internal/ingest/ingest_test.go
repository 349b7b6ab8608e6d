package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gz(t *testing.T, text string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(text))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func newReader(t *testing.T, opts Options) *Reader {
	t.Helper()
	r, err := New(opts)
	require.NoError(t, err)
	return r
}

func TestNew_Defaults(t *testing.T) {
	r := newReader(t, Options{})
	assert.Equal(t, DefaultInclude, r.include)
	assert.EqualValues(t, DefaultMaxBytes, r.maxBytes)
	assert.EqualValues(t, DefaultMaxTextBytes, r.maxTextBytes)

	_, err := New(Options{Include: []string{"[bad"}})
	assert.Error(t, err)
}

func TestAllowed(t *testing.T) {
	r := newReader(t, Options{})
	tests := []struct {
		name string
		want bool
	}{
		{"latest.log", true},
		{"/home/me/.minecraft/logs/2024-01-15-1.log.gz", true},
		{"crash-2024-01-15_12.00.00-client.txt", true},
		{"debug.txt.gz", true},
		{"screenshot.png", false},
		{"mods.jar", false},
		{"latest.log.zip", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Allowed(tt.name), tt.name)
	}

	custom := newReader(t, Options{Include: []string{"crash-*.txt"}})
	assert.True(t, custom.Allowed("crash-1.txt"))
	assert.False(t, custom.Allowed("latest.log"))
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	text := "[12:00:00] [main/INFO]: Loading Minecraft 1.20.1 with Fabric Loader 0.15.3\n"

	plain := filepath.Join(dir, "latest.log")
	require.NoError(t, os.WriteFile(plain, []byte(text), 0o644))
	compressed := filepath.Join(dir, "2024-01-15-1.log.gz")
	require.NoError(t, os.WriteFile(compressed, gz(t, text), 0o644))

	r := newReader(t, Options{})

	src, err := r.ReadFile(plain)
	require.NoError(t, err)
	assert.Equal(t, "latest.log", src.Name)
	assert.Equal(t, text, src.Text)
	assert.Equal(t, Digest(text), src.Digest)

	src, err = r.ReadFile(compressed)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15-1.log.gz", src.Name)
	assert.Equal(t, text, src.Text)
	assert.Equal(t, Digest(text), src.Digest, "digest is over the decompressed text")
}

func TestReadFile_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, data, 0o644))
		return path
	}

	r := newReader(t, Options{MaxBytes: 64, MaxTextBytes: 128})

	_, err := r.ReadFile(write("image.png", []byte("png")))
	assert.ErrorIs(t, err, ErrNotAllowed)

	_, err = r.ReadFile(write("big.log", bytes.Repeat([]byte("a"), 65)))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = r.ReadFile(write("bomb.log.gz", gz(t, strings.Repeat("a", 4096))))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = r.ReadFile(write("binary.log", []byte{0xff, 0xfe, 0x00}))
	assert.ErrorIs(t, err, ErrNotText)

	_, err = r.ReadFile(write("corrupt.log.gz", []byte{0x1f, 0x8b, 0x00}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gzip")

	missing := filepath.Join(dir, "secret", "missing.log")
	_, err = r.ReadFile(missing)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), dir)
}

func TestRead(t *testing.T) {
	r := newReader(t, Options{MaxBytes: 64})

	src, err := r.Read("stdin", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "stdin", src.Name)
	assert.Equal(t, "hello", src.Text)

	compressed := gz(t, "compressed")
	require.LessOrEqual(t, len(compressed), 64, "gzip member must fit the raw cap")
	src, err = r.Read("upload", bytes.NewReader(compressed))
	require.NoError(t, err)
	assert.Equal(t, "compressed", src.Text)
}

func TestRead_TooLarge(t *testing.T) {
	r := newReader(t, Options{MaxBytes: 32})

	_, err := r.Read("stdin", strings.NewReader(strings.Repeat("x", 32)))
	require.NoError(t, err)

	_, err = r.Read("stdin", strings.NewReader(strings.Repeat("x", 33)))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestText(t *testing.T) {
	r := newReader(t, Options{MaxTextBytes: 4})

	src, err := r.Text("paste", "abcd")
	require.NoError(t, err)
	assert.Equal(t, Digest("abcd"), src.Digest)

	_, err = r.Text("paste", "abcde")
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = r.Text("paste", "\xff")
	assert.ErrorIs(t, err, ErrNotText)
}

func TestDigest(t *testing.T) {
	a := Digest("same text")
	assert.Len(t, a, 16)
	assert.Equal(t, a, Digest("same text"))
	assert.NotEqual(t, a, Digest("other text"))
	assert.Equal(t, a[:8], ShortDigest(a))
	assert.Equal(t, "abc", ShortDigest("abc"))
}

func TestReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("a.log: %w", ErrTooLarge), "too_large"},
		{fmt.Errorf("a.log: %w", ErrNotText), "not_text"},
		{fmt.Errorf("a.png: %w", ErrNotAllowed), "not_allowed"},
		{errors.New("disk on fire"), "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Reason(tt.err), tt.err.Error())
	}
}
