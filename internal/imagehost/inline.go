package imagehost

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const inlinePrefix = "data:image"

// ErrNotInline is returned for references that are not inline-encoded images.
var ErrNotInline = errors.New("reference is not an inline-encoded image")

// InlineImage is an image embedded in a data URL.
// Format, Width and Height are zero when the payload is not a format the image package can read.
type InlineImage struct {
	MediaType string
	// Payload is the base64 text after the comma, as stored.
	Payload string
	Format  string
	Width   int
	Height  int
}

// IsInline reports whether ref looks like a data:image URL.
func IsInline(ref string) bool {
	return strings.HasPrefix(ref, inlinePrefix)
}

// ParseInline splits a data:image URL into media type and payload.
// Any image/* payload is accepted; dimensions are read only when the format is known.
func ParseInline(ref string) (InlineImage, error) {
	if !IsInline(ref) {
		return InlineImage{}, ErrNotInline
	}

	header, payload, ok := strings.Cut(ref, ",")
	if !ok || payload == "" {
		return InlineImage{}, errors.New("inline image has no payload")
	}

	mediaType := strings.TrimPrefix(header, "data:")
	mediaType, _, _ = strings.Cut(mediaType, ";")

	img := InlineImage{MediaType: mediaType, Payload: payload}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return img, nil
	}
	if cfg, format, err := image.DecodeConfig(bytes.NewReader(raw)); err == nil {
		img.Format = format
		img.Width = cfg.Width
		img.Height = cfg.Height
	}
	return img, nil
}
