// Package imagecheck validates uploaded photos before they reach the
// identification pipeline: size cap, decodable format, dimension limits.
package imagecheck

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"tenseii/internal/apperr"
	"tenseii/pkg/models"
)

var formatToMime = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
}

// ReadLimited reads the upload in chunks, hashing as it goes, and fails as
// soon as the configured byte budget is exceeded.
func ReadLimited(r io.Reader, maxBytes, chunkSize int) ([]byte, string, error) {
	if maxBytes <= 0 {
		return nil, "", apperr.ImageTooLarge("invalid max bytes configuration")
	}
	if chunkSize <= 0 {
		chunkSize = 64 * 1024
	}

	digest := sha256.New()
	var buf bytes.Buffer
	chunk := make([]byte, chunkSize)

	for {
		n, err := r.Read(chunk)
		if n > 0 {
			digest.Write(chunk[:n])
			buf.Write(chunk[:n])
			if buf.Len() > maxBytes {
				return nil, "", apperr.ImageTooLarge("upload exceeded configured max size")
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", apperr.InvalidImage("read upload").WithCause(err)
		}
	}

	if buf.Len() == 0 {
		return nil, "", apperr.InvalidImage("empty upload")
	}

	return buf.Bytes(), hex.EncodeToString(digest.Sum(nil)), nil
}

// Validate checks format, dimensions and pixel count. The header-only decode
// runs first so oversized images are rejected before the full decode.
func Validate(data []byte, sha256Hex string, allowedMimeTypes []string, maxPixels, maxWidth, maxHeight int) (models.ValidatedImage, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return models.ValidatedImage{}, apperr.UnsupportedImageType("unknown image format").WithCause(err)
		}
		return models.ValidatedImage{}, apperr.InvalidImage("decode image header").WithCause(err)
	}

	if cfg.Width <= 0 || cfg.Height <= 0 {
		return models.ValidatedImage{}, apperr.InvalidImage("invalid image dimensions")
	}
	if cfg.Width > maxWidth || cfg.Height > maxHeight || cfg.Width*cfg.Height > maxPixels {
		return models.ValidatedImage{}, apperr.ImageDimensionsExceeded(
			fmt.Sprintf("image dimensions %dx%d exceed limits", cfg.Width, cfg.Height))
	}

	mime := formatToMime[format]
	if mime == "" {
		return models.ValidatedImage{}, apperr.UnsupportedImageType(fmt.Sprintf("unsupported image format %q", format))
	}
	if !mimeAllowed(mime, allowedMimeTypes) {
		return models.ValidatedImage{}, apperr.UnsupportedImageType(fmt.Sprintf("mime type %q not allowed", mime))
	}

	// Full decode catches truncated or corrupted payloads that a valid
	// header would otherwise let through.
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return models.ValidatedImage{}, apperr.InvalidImage("decode image").WithCause(err)
	}

	return models.ValidatedImage{
		Content:  data,
		MimeType: mime,
		SHA256:   sha256Hex,
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}

func mimeAllowed(mime string, allowed []string) bool {
	for _, m := range allowed {
		if strings.EqualFold(strings.TrimSpace(m), mime) {
			return true
		}
	}
	return false
}
