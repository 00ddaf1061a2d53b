package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"

	"github.com/kirillkom/request-classifier-console/internal/core/domain"
)

const defaultMaxBytes = 2 << 20

// Decoder turns text file content into UTF-8 for the preview pane. The
// charset comes from the media type parameter or is sniffed from the bytes.
type Decoder struct {
	maxBytes int
}

func NewDecoder(maxBytes int) *Decoder {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &Decoder{maxBytes: maxBytes}
}

func (d *Decoder) Decode(ctx context.Context, file domain.File) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	raw := file.Content
	truncated := false
	if len(raw) > d.maxBytes {
		raw = raw[:d.maxBytes]
		truncated = true
		if trimmed := trimPartialRune(raw); utf8.Valid(trimmed) {
			raw = trimmed
		}
	}

	var text string
	if utf8.Valid(raw) && !declaresForeignCharset(file.MediaType) {
		text = string(raw)
	} else {
		reader, err := charset.NewReader(bytes.NewReader(raw), file.MediaType)
		if err != nil {
			return "", fmt.Errorf("detect charset of %s: %w", file.Name, err)
		}
		decoded, err := io.ReadAll(reader)
		if err != nil {
			return "", fmt.Errorf("decode %s: %w", file.Name, err)
		}
		text = string(decoded)
	}

	if truncated {
		text = strings.ToValidUTF8(text, "") + "\n…"
	}
	return text, nil
}

// trimPartialRune drops a UTF-8 sequence cut short at the end of b.
func trimPartialRune(b []byte) []byte {
	start := len(b) - 1
	for start > 0 && start > len(b)-utf8.UTFMax && !utf8.RuneStart(b[start]) {
		start--
	}
	if start >= 0 && !utf8.FullRune(b[start:]) {
		return b[:start]
	}
	return b
}

func declaresForeignCharset(mediaType string) bool {
	lower := strings.ToLower(mediaType)
	idx := strings.Index(lower, "charset=")
	if idx < 0 {
		return false
	}
	name := strings.Trim(strings.TrimSpace(lower[idx+len("charset="):]), `"'`)
	if semi := strings.IndexByte(name, ';'); semi >= 0 {
		name = name[:semi]
	}
	switch strings.TrimSpace(name) {
	case "", "utf-8", "utf8", "us-ascii", "ascii":
		return false
	default:
		return true
	}
}
