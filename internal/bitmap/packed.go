// This file implements methods to pack bitmap pixel data into the bit
// structure consumed by the printer over the wire.

package bitmap

import "fmt"

// a bitmap packed in memory, one bit per pixel, rows padded to whole bytes
type PackedBitmap struct {
	data                  []byte
	width, height, stride int
}

const bitsPerWord = 8

func (b *PackedBitmap) Width() int {
	return b.width
}

func (b *PackedBitmap) Height() int {
	return b.height
}

// Width of one packed row in bytes
func (b *PackedBitmap) Stride() int {
	return b.stride
}

func (b *PackedBitmap) Data() []byte {
	return b.data
}

// Gets a single bit from the bitmap at the (x, y) coordinate, returns either 0 or 1
func (b *PackedBitmap) GetBit(x int, y int) byte {
	index := (y * b.stride) + (x / bitsPerWord)
	return (b.data[index] >> (bitsPerWord - 1 - x%bitsPerWord)) & 1
}

func (b *PackedBitmap) String() string {
	return fmt.Sprintf("PackedBitmap(%d,%d)", b.width, b.height)
}

// Take data from any Bitmap implementation and pack it into the wire structure.
// The leftmost pixel of each byte goes into the most significant bit. If the
// bitmap width is not a multiple of 8, the trailing bits of the final byte in
// each row stay 0 and print as blank dots.
func PackBitmap(b Bitmap) *PackedBitmap {
	width, height, stride := b.Width(), b.Height(), (b.Width()+bitsPerWord-1)/bitsPerWord
	data := make([]byte, stride*height)

	for y := range height {
		for x := range width {
			if b.GetBit(x, y)&1 == 1 {
				data[y*stride+(x/bitsPerWord)] |= 1 << (bitsPerWord - 1 - x%bitsPerWord)
			}
		}
	}

	return &PackedBitmap{data, width, height, stride}
}
