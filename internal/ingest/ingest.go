// Package ingest turns files, stdin and HTTP bodies into log text ready for
// diagnosis: it enforces size limits, transparently decompresses gzip and
// rejects anything that is not UTF-8 text.
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/gzip"
	"github.com/logdoctor/logdoctor-go/internal/safefile"
)

// Sentinel errors.
var (
	ErrNotAllowed = errors.New("file type not allowed")
	ErrTooLarge   = errors.New("input too large")
	ErrNotText    = errors.New("input is not UTF-8 text")
)

const (
	// DefaultMaxBytes caps the size of an input as read, compressed or not.
	DefaultMaxBytes = 1_000_000

	// DefaultMaxTextBytes caps the size of decompressed text.
	DefaultMaxTextBytes = 10 * 1024 * 1024
)

// DefaultInclude lists the base name globs accepted by default.
var DefaultInclude = []string{"*.log", "*.txt", "*.log.gz", "*.txt.gz"}

var gzipMagic = []byte{0x1f, 0x8b}

// Options configures a Reader. Zero fields take their defaults.
type Options struct {
	// Include holds doublestar globs matched against a file's base name.
	Include []string
	// MaxBytes caps the raw input size.
	MaxBytes int64
	// MaxTextBytes caps the decompressed text size.
	MaxTextBytes int64
}

// Source is one piece of text ready for diagnosis.
type Source struct {
	Name   string `json:"name"`
	Text   string `json:"-"`
	Digest string `json:"digest"`
}

// Reader reads inputs according to its Options. It is safe for concurrent use.
type Reader struct {
	include      []string
	maxBytes     int64
	maxTextBytes int64
}

// New validates opts and returns a Reader.
func New(opts Options) (*Reader, error) {
	r := &Reader{
		include:      opts.Include,
		maxBytes:     opts.MaxBytes,
		maxTextBytes: opts.MaxTextBytes,
	}
	if len(r.include) == 0 {
		r.include = DefaultInclude
	}
	if r.maxBytes <= 0 {
		r.maxBytes = DefaultMaxBytes
	}
	if r.maxTextBytes <= 0 {
		r.maxTextBytes = DefaultMaxTextBytes
	}
	for _, p := range r.include {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid include pattern %q", p)
		}
	}
	return r, nil
}

// Allowed reports whether the base name of name matches an include glob.
func (r *Reader) Allowed(name string) bool {
	base := filepath.Base(name)
	for _, p := range r.include {
		if ok, _ := doublestar.Match(p, base); ok {
			return ok
		}
	}
	return false
}

// ReadFile reads a log or crash report from disk.
func (r *Reader) ReadFile(path string) (Source, error) {
	name := filepath.Base(path)
	if !r.Allowed(name) {
		return Source{}, fmt.Errorf("%s: %w", name, ErrNotAllowed)
	}

	data, err := safefile.ReadRegular(path, r.maxBytes)
	if err != nil {
		if errors.Is(err, safefile.ErrTooLarge) {
			return Source{}, fmt.Errorf("%s: %w (max %d bytes)", name, ErrTooLarge, r.maxBytes)
		}
		return Source{}, fmt.Errorf("%s: %w", name, safefile.SanitizePathError(err))
	}
	return r.source(name, data)
}

// Read reads one input from rd, e.g. stdin or a request body. The include
// globs are not applied.
func (r *Reader) Read(name string, rd io.Reader) (Source, error) {
	data, err := io.ReadAll(io.LimitReader(rd, r.maxBytes+1))
	if err != nil {
		return Source{}, fmt.Errorf("%s: %w", name, err)
	}
	if int64(len(data)) > r.maxBytes {
		return Source{}, fmt.Errorf("%s: %w (max %d bytes)", name, ErrTooLarge, r.maxBytes)
	}
	return r.source(name, data)
}

// Text wraps text that is already in memory, applying the text size limit.
func (r *Reader) Text(name, text string) (Source, error) {
	if int64(len(text)) > r.maxTextBytes {
		return Source{}, fmt.Errorf("%s: %w (max %d bytes)", name, ErrTooLarge, r.maxTextBytes)
	}
	if !utf8.ValidString(text) {
		return Source{}, fmt.Errorf("%s: %w", name, ErrNotText)
	}
	return Source{Name: name, Text: text, Digest: Digest(text)}, nil
}

func (r *Reader) source(name string, data []byte) (Source, error) {
	if bytes.HasPrefix(data, gzipMagic) {
		text, err := r.gunzip(data)
		if err != nil {
			return Source{}, fmt.Errorf("%s: %w", name, err)
		}
		data = text
	}
	return r.Text(name, string(data))
}

func (r *Reader) gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	defer zr.Close()

	text, err := io.ReadAll(io.LimitReader(zr, r.maxTextBytes+1))
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	if int64(len(text)) > r.maxTextBytes {
		return nil, fmt.Errorf("%w: decompressed text exceeds %d bytes", ErrTooLarge, r.maxTextBytes)
	}
	return text, nil
}

// Digest returns the hex xxhash64 of text. Equal texts always share a digest.
func Digest(text string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(text))
}

// ShortDigest is the first 8 hex digits of Digest, used in listings.
func ShortDigest(digest string) string {
	if len(digest) < 8 {
		return digest
	}
	return digest[:8]
}

// Reason classifies an ingestion error for metrics: too_large, not_text,
// not_allowed or other.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrTooLarge):
		return "too_large"
	case errors.Is(err, ErrNotText):
		return "not_text"
	case errors.Is(err, ErrNotAllowed):
		return "not_allowed"
	}
	return "other"
}
