package domain

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"testing"
)

func TestValidateBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "single character", raw: "a", want: "a"},
		{name: "at limit", raw: strings.Repeat("a", MaxBodyChars), want: strings.Repeat("a", MaxBodyChars)},
		{name: "over limit", raw: strings.Repeat("a", MaxBodyChars+1), wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "whitespace only", raw: " \t\r\n　", wantErr: true},
		{name: "trimmed", raw: "  hello\n", want: "hello"},
		{name: "inner newlines kept", raw: "a\nb", want: "a\nb"},
		{name: "multibyte at limit", raw: strings.Repeat("あ", MaxBodyChars), want: strings.Repeat("あ", MaxBodyChars)},
		{name: "multibyte over limit", raw: strings.Repeat("あ", MaxBodyChars+1), wantErr: true},
		{name: "emoji counted by code point", raw: strings.Repeat("😀", MaxBodyChars), want: strings.Repeat("😀", MaxBodyChars)},
		{name: "limit measured after trim", raw: "  " + strings.Repeat("a", MaxBodyChars) + "  ", want: strings.Repeat("a", MaxBodyChars)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ValidateBody(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrBody) {
					t.Fatalf("err = %v, want ErrBody", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("body = %q, want %q", got, tt.want)
			}
		})
	}
}

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")
	gifHeader  = []byte("GIF89a\x01\x00\x01\x00")
	webpHeader = []byte("RIFF\x24\x00\x00\x00WEBPVP8 ")
)

func TestDetectImageExt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		want    string
		wantErr bool
	}{
		{name: "png", data: pngHeader, want: "png"},
		{name: "jpeg", data: jpegHeader, want: "jpg"},
		{name: "gif", data: gifHeader, want: "gif"},
		{name: "webp", data: webpHeader, want: "webp"},
		{name: "png with trailing data", data: append(append([]byte{}, pngHeader...), make([]byte, 4096)...), want: "png"},
		{name: "text", data: []byte("<?php echo 1; ?>"), wantErr: true},
		{name: "svg", data: []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`), wantErr: true},
		{name: "bmp", data: []byte("BM\x00\x00\x00\x00\x00\x00"), wantErr: true},
		{name: "empty", data: nil, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := bytes.NewReader(tt.data)
			got, err := DetectImageExt(r)
			if tt.wantErr {
				if !errors.Is(err, ErrMime) {
					t.Fatalf("err = %v, want ErrMime", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ext = %q, want %q", got, tt.want)
			}
			rest, _ := io.ReadAll(r)
			if !bytes.Equal(rest, tt.data) {
				t.Fatal("reader was not rewound")
			}
		})
	}
}

func TestNewImageFilenameIsDistinct(t *testing.T) {
	t.Parallel()

	pattern := regexp.MustCompile(`^[0-9a-f]{32}\.png$`)
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		name, err := NewImageFilename("png")
		if err != nil {
			t.Fatalf("new filename: %v", err)
		}
		if !pattern.MatchString(name) {
			t.Fatalf("filename %q does not match %s", name, pattern)
		}
		if _, dup := seen[name]; dup {
			t.Fatalf("duplicate filename %q after %d draws", name, i)
		}
		seen[name] = struct{}{}
	}
}

func TestErrorCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrBody, CodeBody},
		{fmt.Errorf("wrapped: %w", ErrSize), CodeSize},
		{fmt.Errorf("sniffed: %w", ErrMime), CodeMime},
		{fmt.Errorf("store: %v: %w", io.ErrShortWrite, ErrMove), CodeMove},
		{errors.New("database is locked"), CodeInternal},
	}
	for _, tt := range tests {
		if got := ErrorCode(tt.err); got != tt.want {
			t.Errorf("ErrorCode(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestImageExtensionsMatchAllowList(t *testing.T) {
	t.Parallel()

	exts := ImageExtensions()
	if len(exts) != len(imageExtensions) {
		t.Fatalf("extensions = %v, allow-list has %d entries", exts, len(imageExtensions))
	}
	allowed := make(map[string]bool)
	for _, ext := range imageExtensions {
		allowed[ext] = true
	}
	for _, ext := range exts {
		if !allowed[ext] {
			t.Errorf("extension %q is not in the allow-list", ext)
		}
	}
}

func TestUploadEmpty(t *testing.T) {
	t.Parallel()

	var nilUpload *Upload
	tests := []struct {
		name   string
		upload *Upload
		want   bool
	}{
		{"nil", nilUpload, true},
		{"no content", &Upload{Filename: "a.png", Size: 3}, true},
		{"no filename and zero size", &Upload{Content: bytes.NewReader(nil)}, true},
		{"named empty file", &Upload{Filename: "a.png", Content: bytes.NewReader(nil)}, false},
		{"content", &Upload{Filename: "a.png", Size: 3, Content: bytes.NewReader([]byte("abc"))}, false},
	}
	for _, tt := range tests {
		if got := tt.upload.Empty(); got != tt.want {
			t.Errorf("%s: Empty() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
