// This package defines an interface for a simple 1-bit bitmap structure that
// has a width, height, and can get bits from the bitmap by (x,y) coordinate.
// A bit value of 1 means the dot is printed (ink), 0 means it is left blank.
// It defines three implementations: PixelBitmap which stores each pixel in a
// byte in a 2D array format, GrayBitmap which thresholds a grayscale image,
// and PalettedBitmap which wraps a two-colour paletted image produced by
// dithering.
package bitmap

import (
	"fmt"
	"image"
	"image/color"
)

type Bitmap interface {
	Width() int
	Height() int
	GetBit(x int, y int) byte
}

type PixelBitmap struct {
	pixels        [][]byte
	width, height int
}

func (b *PixelBitmap) Width() int {
	return b.width
}

func (b *PixelBitmap) Height() int {
	return b.height
}

func (b *PixelBitmap) GetBit(x int, y int) byte {
	return b.pixels[y][x]
}

func (b *PixelBitmap) String() string {
	return fmt.Sprintf("PixelBitmap(%d,%d)", b.width, b.height)
}

type GrayBitmap struct {
	image *image.Gray
	// pixels strictly darker than this value are printed
	threshold uint8
}

func (b *GrayBitmap) Width() int {
	return b.image.Rect.Dx()
}

func (b *GrayBitmap) Height() int {
	return b.image.Rect.Dy()
}

func (b *GrayBitmap) GetBit(x int, y int) byte {
	if b.image.GrayAt(b.image.Rect.Min.X+x, b.image.Rect.Min.Y+y).Y < b.threshold {
		return 1
	}
	return 0
}

func (b *GrayBitmap) String() string {
	return fmt.Sprintf("GrayBitmap(%d,%d)", b.Width(), b.Height())
}

func FromGray(i *image.Gray, threshold uint8) *GrayBitmap {
	return &GrayBitmap{
		image:     i,
		threshold: threshold,
	}
}

type PalettedBitmap struct {
	image *image.Paletted
	// colorMap[i] represents the bit value of the palette colour at index i.
	// If the first colour in the image is black, then colorMap[0] == 1.
	colorMap [2]byte
}

func (b *PalettedBitmap) Width() int {
	return b.image.Rect.Dx()
}

func (b *PalettedBitmap) Height() int {
	return b.image.Rect.Dy()
}

func (b *PalettedBitmap) GetBit(x int, y int) byte {
	return b.colorMap[b.image.ColorIndexAt(b.image.Rect.Min.X+x, b.image.Rect.Min.Y+y)]
}

func (b *PalettedBitmap) String() string {
	return fmt.Sprintf("PalettedBitmap(%d,%d)", b.Width(), b.Height())
}

func FromPaletted(i *image.Paletted) (*PalettedBitmap, error) {
	if len(i.Palette) != 2 {
		return nil, fmt.Errorf("Image passed to FromPaletted must have only 2 colours in palette")
	}

	var colorMap [2]byte

	// Determine which of the two colours in the image's palette is closest to white.
	if i.Palette.Index(color.White) == 0 {
		colorMap = [2]byte{0, 1}
	} else {
		colorMap = [2]byte{1, 0}
	}

	return &PalettedBitmap{
		image:    i,
		colorMap: colorMap,
	}, nil
}
