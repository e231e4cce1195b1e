package escpos

import (
	"image"
	"image/color"
	"math"

	"github.com/makeworld-the-better-one/dither/v2"

	"ctprint/internal/bitmap"
)

// monochrome-ify an already-normalized grayscale image using dithering
func ditherForDevice(gray *image.Gray) bitmap.Bitmap {
	corrected := image.NewGray(gray.Rect)
	for p, v := range gray.Pix {
		grayValue := float64(v) / 0xFF

		// apply a gamma correction of 0.5 otherwise the image appears too
		// dark on thermal paper; no logic used to pick 0.5 as gamma factor,
		// just looks empirically close to the image on a display
		scaledGrayValue := math.Pow(grayValue, 0.5)
		corrected.Pix[p] = uint8(scaledGrayValue * 0xFF)
	}

	palette := []color.Color{color.Black, color.White}
	ditherer := dither.NewDitherer(palette)
	ditherer.Matrix = dither.FloydSteinberg
	ditherer.Serpentine = true
	ditheredImage := ditherer.DitherPaletted(corrected)

	b, err := bitmap.FromPaletted(ditheredImage)
	if err != nil {
		// the palette above always has exactly two colours
		panic(err)
	}
	return b
}
