// Package validation guards command input: path sanity, size limits, and
// a light content sniff that rejects binary payloads and tells XML, JSON
// and YAML apart.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Limits to prevent resource exhaustion (CWE-400).
const (
	// MaxInputSize is the maximum accepted input size (64 MB).
	MaxInputSize = 64 << 20
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
)

// Common validation errors.
var (
	ErrPathTooLong      = errors.New("path too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrInputTooLarge    = errors.New("input too large")
	ErrBinaryInput      = errors.New("input is not text")
)

// ValidatePath checks a user-supplied path for length limits and characters
// that have no business in a file name.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}

	// Null bytes truncate paths in syscalls
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidCharacter)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}

	return nil
}

// ReadLimited reads all of r, failing once more than limit bytes arrive.
// A non-positive limit means MaxInputSize.
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = MaxInputSize
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrInputTooLarge, limit)
	}
	return data, nil
}

// Format is a detected input format.
type Format string

const (
	FormatXML     Format = "xml"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatUnknown Format = "unknown"
)

// magicBytes lists binary signatures that are rejected outright.
var magicBytes = []struct {
	name  string
	magic []byte
}{
	{"gzip", []byte{0x1f, 0x8b}},
	{"xz", []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
	{"zip", []byte{0x50, 0x4b, 0x03, 0x04}},
	{"sqlite", []byte("SQLite format 3")},
}

// CheckText returns ErrBinaryInput if data carries a known binary
// signature or does not look like text.
func CheckText(data []byte) error {
	for _, sig := range magicBytes {
		if bytes.HasPrefix(data, sig.magic) {
			return fmt.Errorf("%w: %s data", ErrBinaryInput, sig.name)
		}
	}
	if len(data) > 0 && !isLikelyText(data) {
		return ErrBinaryInput
	}
	return nil
}

// DetectFormat guesses the format of data. The file extension wins when it
// is recognized; otherwise the first significant byte decides.
func DetectFormat(data []byte, filename string) (Format, error) {
	if err := CheckText(data); err != nil {
		return FormatUnknown, err
	}

	if f := formatFromExtension(filename); f != FormatUnknown {
		return f, nil
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) == 0 {
		return FormatUnknown, nil
	}
	switch trimmed[0] {
	case '<':
		return FormatXML, nil
	case '{', '[':
		return FormatJSON, nil
	}
	return FormatYAML, nil
}

func formatFromExtension(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xml":
		return FormatXML
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatUnknown
}

// isLikelyText samples the head of buf and reports whether it is mostly
// printable text. Valid multi-byte UTF-8 counts as printable; stray bytes
// count as control characters.
func isLikelyText(buf []byte) bool {
	if len(buf) > 512 {
		buf = buf[:512]
	}

	// Null bytes are a strong indicator of binary content
	if bytes.IndexByte(buf, 0) != -1 {
		return false
	}

	printable := 0
	control := 0
	for i := 0; i < len(buf); {
		r, size := utf8.DecodeRune(buf[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			// A rune cut off by the sample boundary is neutral
			if !utf8.FullRune(buf[i:]) {
				i = len(buf)
				continue
			}
			control++
		case r == '\t' || r == '\n' || r == '\r' || !unicode.IsControl(r):
			printable++
		default:
			control++
		}
		i += size
	}

	return printable > 0 && float64(printable)/float64(printable+control) > 0.95
}
