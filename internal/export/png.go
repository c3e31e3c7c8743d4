package export

import "github.com/onuse/tectonica/internal/errs"

// pngMagic is the canonical 8-byte PNG signature (spec §6: "writers
// that emit all-zero magic headers must be detected and corrected").
var pngMagic = [8]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// PNGWriter encodes an RGBA raster to PNG bytes. It is the out-of-
// scope "file/PNG encoding" collaborator (spec §1/§6); concrete
// implementations live at the cmd level.
type PNGWriter interface {
	Encode(width, height int, rgba []byte) ([]byte, error)
}

// Palette maps an elevation in metres to an 8-bit RGBA pixel.
type Palette int

const (
	PaletteHypsometric Palette = iota
	PaletteNormalized
)

// ToRGBA renders the raster into 8-bit RGBA pixel bytes under the
// given palette (spec §6's "heightmap_palette" knob).
func (r *Raster) ToRGBA(palette Palette, minZ, maxZ float64) []byte {
	out := make([]byte, 4*len(r.Pixels))
	span := maxZ - minZ
	if span == 0 {
		span = 1
	}
	for i, px := range r.Pixels {
		var red, green, blue, alpha byte
		switch palette {
		case PaletteHypsometric:
			red, green, blue = hypsometricColor(px.Elevation)
		default:
			t := (px.Elevation - minZ) / span
			if t < 0 {
				t = 0
			} else if t > 1 {
				t = 1
			}
			gray := byte(t * 255)
			red, green, blue = gray, gray, gray
		}
		if px.Hit {
			alpha = 255
		}
		out[4*i] = red
		out[4*i+1] = green
		out[4*i+2] = blue
		out[4*i+3] = alpha
	}
	return out
}

// hypsometricColor is a coarse land/sea hypsometric tint: blue shades
// below sea level, green-to-brown above.
func hypsometricColor(z float64) (r, g, b byte) {
	switch {
	case z < -4000:
		return 10, 10, 80
	case z < 0:
		return 40, 90, 160
	case z < 1500:
		return 70, 140, 70
	case z < 4000:
		return 150, 120, 70
	default:
		return 230, 230, 230
	}
}

// EncodeValidated runs w and, if the first 8 bytes of the result are all
// zero, replaces them with the canonical PNG magic (spec §6) before
// returning. Any other header is returned unchanged.
func EncodeValidated(w PNGWriter, width, height int, rgba []byte) ([]byte, *errs.Error) {
	data, err := w.Encode(width, height, rgba)
	if err != nil {
		return nil, errs.Wrap(errs.DataUnavailable, "export.EncodeValidated", "PNGWriter.Encode", err)
	}
	if len(data) < 8 {
		return nil, errs.New(errs.DataUnavailable, "export.EncodeValidated", "encoded output shorter than PNG magic")
	}
	allZero := true
	for i := 0; i < 8; i++ {
		if data[i] != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		copy(data[:8], pngMagic[:])
	}
	return data, nil
}
