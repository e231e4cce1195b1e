package escpos

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"ctprint/internal/bitmap"
)

// Printable dots per line on the CTP500 head
const LineWidth = 384

// pixels strictly darker than this are printed as black dots
const inkThreshold = 128

// A raster payload ready to stream to the device: the bitmap header followed
// by packed rows. Width and Height describe the printed raster, after any
// scaling or padding.
type Payload struct {
	Data   []byte
	Width  int
	Height int
}

type Options struct {
	// Dither selects error-diffusion dithering instead of the fixed
	// threshold, which keeps the midtones of photographs
	Dither bool
}

// Encode converts an image into the raster payload the device consumes.
func Encode(i image.Image) *Payload {
	return EncodeWithOptions(i, Options{})
}

func EncodeWithOptions(i image.Image, opts Options) *Payload {
	gray := normalize(i)

	var b bitmap.Bitmap
	if opts.Dither {
		b = ditherForDevice(gray)
	} else {
		b = bitmap.FromGray(gray, inkThreshold)
	}
	packed := bitmap.PackBitmap(b)

	data := RasterHeader(uint16(packed.Stride()), uint16(packed.Height()))
	data = append(data, packed.Data()...)

	return &Payload{
		Data:   data,
		Width:  packed.Width(),
		Height: packed.Height(),
	}
}

// Fits the source image to the fixed line width and converts it to 8-bit
// grayscale. Images wider than the line are scaled down with Catmull-Rom
// interpolation, keeping the aspect ratio; narrower images are padded on the
// right with white. The grayscale rows always come out a whole multiple of
// 8 pixels wide, so every pixel survives packing.
func normalize(i image.Image) *image.Gray {
	bounds := i.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width > LineWidth {
		scaledBounds := image.Rect(0, 0, LineWidth, height*LineWidth/width)
		scaled := image.NewRGBA(scaledBounds)
		draw.Draw(scaled, scaledBounds, image.NewUniform(color.White), image.Point{}, draw.Src)
		draw.CatmullRom.Scale(scaled, scaledBounds, i, bounds, draw.Over, nil)
		i, bounds = scaled, scaledBounds
		width, height = bounds.Dx(), bounds.Dy()
	}

	gray := image.NewGray(image.Rect(0, 0, LineWidth, height))
	for p := range gray.Pix {
		gray.Pix[p] = 0xFF
	}
	draw.Draw(gray, image.Rect(0, 0, width, height), i, bounds.Min, draw.Over)

	return gray
}
