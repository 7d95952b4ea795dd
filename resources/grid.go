// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package resources

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/bmp"
)

// Terrain tile size in pixels.
const (
	TileWidth  = 97
	TileHeight = 49
)

var gridPalette = color.Palette{
	color.RGBA{0xFF, 0x00, 0xFF, 0xFF}, // transparent key
	color.RGBA{0x00, 0x00, 0x00, 0xFF}, // grid line
}

// GridImage draws the outline of one isometric terrain tile on the transparent
// key color.
func GridImage() *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, TileWidth, TileHeight), gridPalette)

	cx, cy := TileWidth/2, TileHeight/2
	for x := 0; x <= cx; x++ {
		dy := x * cy / cx
		// left half, top and bottom edges
		img.SetColorIndex(x, cy-dy, 1)
		img.SetColorIndex(x, cy+dy, 1)
		// right half, mirrored
		img.SetColorIndex(TileWidth-1-x, cy-dy, 1)
		img.SetColorIndex(TileWidth-1-x, cy+dy, 1)
	}
	return img
}

// GridOverlay returns the grid tile encoded as a BMP.
func (p *Pack) GridOverlay() ([]byte, error) {
	return EncodeGrid()
}

// EncodeGrid encodes GridImage as a BMP. The output is the same on every call.
func EncodeGrid() ([]byte, error) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, GridImage()); err != nil {
		return nil, fmt.Errorf("encode grid overlay: %w", err)
	}
	return buf.Bytes(), nil
}
