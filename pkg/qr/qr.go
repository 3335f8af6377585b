// Package qr renders pharmacy links as compact QR code images.
package qr

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/nfnt/resize"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	// renderSize is the initial render; the image is downscaled afterwards
	// so the stored payload stays small.
	renderSize = 1024
	targetSize = 256

	dataURLPrefix = "data:image/png;base64,"
)

// Generator produces inline-embeddable QR images for URLs.
type Generator interface {
	DataURL(url string) (string, error)
}

type generator struct{}

func NewGenerator() Generator {
	return generator{}
}

// DataURL encodes url into a QR code, downscales it to 256x256 and returns
// it as a data:image/png;base64 string suitable for embedding in a document.
func (generator) DataURL(url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("url is required")
	}

	raw, err := qrcode.Encode(url, qrcode.Low, renderSize)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}

	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to decode QR image: %w", err)
	}

	small := resize.Resize(targetSize, targetSize, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, small); err != nil {
		return "", fmt.Errorf("failed to re-encode QR image: %w", err)
	}

	return dataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
