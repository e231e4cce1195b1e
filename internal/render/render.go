// This package implements text rendering for the printer. Text is laid
// out at the fixed device width, word-wrapped per paragraph, and drawn
// black-on-white so the raster encoder can threshold it directly.
package render

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"ctprint/internal/escpos"
)

// DefaultFont is used when a print command names no font.
const DefaultFont = "goregular"

// bottomMargin leaves a little blank paper after the last line so the
// text is not cut off at the tear bar.
const bottomMargin = 10

// Renderer turns text into printable images. Fonts are parsed once at
// construction and faces are created per call, since the face depends on
// the requested size.
type Renderer struct {
	fonts map[string]*opentype.Font
}

// New builds a renderer with the builtin fonts plus the given sources.
// A source with the same label as a builtin shadows it.
func New(sources []FontSource) (*Renderer, error) {
	r := &Renderer{fonts: map[string]*opentype.Font{}}

	for _, name := range []string{"gomono", "goregular"} {
		data, _ := builtinFont(name)
		parsed, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("Couldn't parse builtin font %s:\n%w", name, err)
		}
		r.fonts[name] = parsed
	}

	for _, s := range sources {
		parsed, err := s.load()
		if err != nil {
			return nil, err
		}
		r.fonts[s.Label] = parsed
	}
	return r, nil
}

// Render draws the text into a device-width grayscale image. Newlines in
// the input start new paragraphs; each paragraph is word-wrapped to the
// device width.
func (r *Renderer) Render(text string, fontName string, size float64) (image.Image, error) {
	if len(fontName) == 0 {
		fontName = DefaultFont
	}
	face, err := r.face(fontName, size)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		wrapped := wrapText(paragraph, escpos.LineWidth, face)
		if len(wrapped) == 0 {
			lines = append(lines, "")
		} else {
			lines = append(lines, wrapped...)
		}
	}

	lineHeight := face.Metrics().Height.Ceil()
	canvas := image.NewGray(image.Rect(0, 0, escpos.LineWidth, len(lines)*lineHeight+bottomMargin))
	for i := range canvas.Pix {
		canvas.Pix[i] = 0xFF
	}

	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}
	d.Dot = fixed.Point26_6{}
	for _, line := range lines {
		d.Dot.X = 0
		d.Dot.Y += face.Metrics().Ascent
		d.DrawString(line)
		d.Dot.Y += face.Metrics().Descent
	}

	return canvas, nil
}

func (r *Renderer) face(name string, size float64) (font.Face, error) {
	parsed, ok := r.fonts[name]
	if !ok {
		// an unregistered name may be a font file path
		direct, pathErr := parseFontFile(name)
		if pathErr != nil {
			return nil, fmt.Errorf(`Unrecognised font "%s"`, name)
		}
		parsed = direct
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("Couldn't create font face:\n%w", err)
	}
	return face, nil
}

func wrapText(text string, maxWidth int, face font.Face) []string {
	var lines []string
	words := strings.Fields(text)
	if len(words) == 0 {
		return lines
	}

	var line string
	for _, word := range words {
		testLine := line
		if len(line) > 0 {
			testLine += " "
		}
		testLine += word

		width := font.MeasureString(face, testLine).Ceil()
		if width > maxWidth && len(line) > 0 && maxWidth > 0 {
			lines = append(lines, line)
			line = word
		} else {
			line = testLine
		}
	}

	if len(line) > 0 {
		lines = append(lines, line)
	}
	return lines
}
