// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging generates JPEG thumbnails for uploaded images using the
// pure-Go decoders and golang.org/x/image/draw scaling.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// ThumbWidth is the default maximum thumbnail width in pixels.
	ThumbWidth = 400

	// thumbQuality is the JPEG quality for thumbnails.
	thumbQuality = 80

	// maxPixels guards against decompression bombs.
	maxPixels = 40_000_000
)

// ErrTooLarge is returned for images whose pixel count exceeds the limit.
var ErrTooLarge = errors.New("image dimensions too large")

// Thumbnailable reports whether contentType can be decoded.
func Thumbnailable(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}

// Thumbnail creates a JPEG thumbnail no wider than maxWidth, preserving
// aspect ratio. It returns nil, nil when the image is already narrow
// enough.
func Thumbnail(data []byte, maxWidth int) ([]byte, error) {
	if maxWidth <= 0 {
		maxWidth = ThumbWidth
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}
	if cfg.Width <= maxWidth {
		return nil, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	height := bounds.Dy() * maxWidth / bounds.Dx()
	if height < 1 {
		height = 1
	}

	// JPEG has no alpha; flatten onto white first.
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
