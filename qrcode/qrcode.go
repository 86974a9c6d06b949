// Package qrcode renders restaurant website links as embeddable PNG data URLs.
package qrcode

import (
	"encoding/base64"
	"fmt"
	"strings"

	goqrcode "github.com/skip2/go-qrcode"
)

// Generator turns a URL into an image payload suitable for an <img src>.
type Generator interface {
	Generate(url string) (string, error)
}

// PNG encodes QR codes as base64 PNG data URLs.
type PNG struct {
	Size  int
	Level goqrcode.RecoveryLevel
}

// NewPNG returns a generator producing 300px images with medium error correction.
func NewPNG() *PNG {
	return &PNG{Size: 300, Level: goqrcode.Medium}
}

func (g *PNG) Generate(url string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", fmt.Errorf("qrcode: empty url")
	}
	png, err := goqrcode.Encode(url, g.Level, g.Size)
	if err != nil {
		return "", fmt.Errorf("qrcode: encode: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
