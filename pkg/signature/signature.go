// Package signature produces and validates the PNG data URLs stored in
// signature fields.
package signature

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
)

const (
	// Width is the default capture surface width in pixels.
	Width = 320
	// Height is the default capture surface height in pixels.
	Height = 240
	// Prefix starts every PNG data URL.
	Prefix = "data:image/png;base64,"
)

// ErrInvalidDataURL is returned when a value is not a base64 PNG data URL.
var ErrInvalidDataURL = errors.New("signature: invalid PNG data URL")

var ink = color.NRGBA{R: 0x1d, G: 0x2b, B: 0x53, A: 0xff}

// Sample draws a deterministic signature stroke on a transparent w×h surface.
// Non-positive dimensions fall back to the defaults.
func Sample(w, h int) *image.NRGBA {
	if w <= 0 {
		w = Width
	}
	if h <= 0 {
		h = Height
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	left, right := float64(w)*0.1, float64(w)*0.9
	mid, amp := float64(h)*0.5, float64(h)*0.2
	steps := w * 4
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := left + (right-left)*t
		y := mid + amp*math.Sin(t*3*math.Pi)*(1-t*0.5)
		stamp(img, int(math.Round(x)), int(math.Round(y)))
	}
	return img
}

func stamp(img *image.NRGBA, x, y int) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if (image.Point{X: x + dx, Y: y + dy}).In(img.Rect) {
				img.SetNRGBA(x+dx, y+dy, ink)
			}
		}
	}
}

// DataURL encodes img as a base64 PNG data URL.
func DataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("signature: encode png: %w", err)
	}
	return Prefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Parse decodes a PNG data URL produced by a capture surface.
func Parse(dataURL string) (image.Image, error) {
	payload, ok := strings.CutPrefix(strings.TrimSpace(dataURL), Prefix)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrInvalidDataURL, Prefix)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return img, nil
}

// Generate returns the data URL of the default sample signature.
func Generate() (string, error) {
	return DataURL(Sample(Width, Height))
}
