package main

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
)

// png16Decoder decodes a 16-bit grayscale exemplar PNG and resamples
// it (nearest-neighbour) to a square grid of side resolution. This is
// the concrete image/png-backed implementation of
// exemplar.PatchDecoder (spec §1/§6: PNG decoding is an external-
// collaborator concern).
type png16Decoder struct{}

func (png16Decoder) Decode(path string, resolution int) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, err
	}

	gray, ok := img.(*image.Gray16)
	if !ok {
		return nil, fmt.Errorf("exemplar %s: expected 16-bit grayscale PNG, got %T", path, img)
	}

	bounds := gray.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	grid := make([][]float64, resolution)
	for y := 0; y < resolution; y++ {
		row := make([]float64, resolution)
		sy := bounds.Min.Y + y*srcH/resolution
		for x := 0; x < resolution; x++ {
			sx := bounds.Min.X + x*srcW/resolution
			row[x] = float64(gray.Gray16At(sx, sy).Y)
		}
		grid[y] = row
	}
	return grid, nil
}

// imagePNGWriter is the concrete image/png-backed implementation of
// export.PNGWriter (spec §1/§6: PNG encoding is an external-
// collaborator concern).
type imagePNGWriter struct{}

func (imagePNGWriter) Encode(width, height int, rgba []byte) ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, rgba)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
