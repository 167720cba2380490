package domain

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"
)

const (
	// MaxBodyChars is the maximum post body length in Unicode code points.
	MaxBodyChars = 2000

	// MaxImageBytes is the maximum declared size of an image upload (5 MiB).
	MaxImageBytes int64 = 5 * 1024 * 1024

	// sniffLen is how many leading bytes content sniffing looks at.
	sniffLen = 512

	filenameRandomBytes = 16
)

// Submission failures. Each maps to a redirect code via ErrorCode.
var (
	ErrBody = errors.New("body must be 1 to 2000 characters")
	ErrSize = errors.New("image exceeds size limit")
	ErrMime = errors.New("unsupported image type")
	ErrMove = errors.New("could not store image")
)

// Redirect codes carried in the ?err= query parameter.
const (
	CodeBody     = "body"
	CodeSize     = "size"
	CodeMime     = "mime"
	CodeMove     = "move"
	CodeInternal = "internal"
)

// imageExtensions is the allow-list from sniffed MIME type to file extension.
var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// ImageExtensions returns the accepted image extensions in display order.
func ImageExtensions() []string {
	return []string{"jpg", "png", "gif", "webp"}
}

// ErrorCode maps a submission error to its redirect code. Errors outside the
// validation taxonomy map to CodeInternal.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBody):
		return CodeBody
	case errors.Is(err, ErrSize):
		return CodeSize
	case errors.Is(err, ErrMime):
		return CodeMime
	case errors.Is(err, ErrMove):
		return CodeMove
	default:
		return CodeInternal
	}
}

// ValidateBody trims surrounding whitespace and checks the length in code
// points.
func ValidateBody(raw string) (string, error) {
	body := strings.TrimSpace(raw)
	if body == "" {
		return "", fmt.Errorf("empty body: %w", ErrBody)
	}
	if n := utf8.RuneCountInString(body); n > MaxBodyChars {
		return "", fmt.Errorf("body has %d characters: %w", n, ErrBody)
	}
	return body, nil
}

// DetectImageExt sniffs the leading bytes of r and returns the extension for
// a supported image type. r is rewound to the start before returning.
func DetectImageExt(r io.ReadSeeker) (string, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read image header: %v: %w", err, ErrMime)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind image: %v: %w", err, ErrMime)
	}
	if n == 0 {
		return "", fmt.Errorf("empty image: %w", ErrMime)
	}

	mime := http.DetectContentType(buf[:n])
	ext, ok := imageExtensions[strings.ToLower(mime)]
	if !ok {
		return "", fmt.Errorf("sniffed %q: %w", mime, ErrMime)
	}
	return ext, nil
}

// NewImageFilename returns a collision-free blob name: 16 random bytes,
// hex-encoded, followed by the extension.
func NewImageFilename(ext string) (string, error) {
	var b [filenameRandomBytes]byte
	if _, err := io.ReadFull(rand.Reader, b[:]); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b[:]) + "." + ext, nil
}
