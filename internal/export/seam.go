package export

import (
	"math"

	"github.com/onuse/tectonica/internal/heightmap"
)

// reconcileSeams walks every internal tile-column boundary and, for
// each row, checks |Δz| between the last column of the left tile and
// the first column of the right tile. A row that exceeds
// SeamToleranceM is retried once — resampling the right column's
// point starting the triangle walk from the left column's terminal
// triangle, which is the topologically nearer starting point across
// the tiles' independent walks. Only if the retry still exceeds the
// tolerance does the right side forcibly adopt the left value (spec
// §4.13: "retries seam columns ... if the retry still exceeds
// threshold the right side adopts the left value").
func reconcileSeams(raster *Raster, idx *heightmap.Index, elevation []float64, tilesX, tileSize int) Metrics {
	m := Metrics{}
	for tx := 1; tx < tilesX; tx++ {
		boundary := tx * tileSize
		if boundary >= raster.Width {
			continue
		}
		leftX := boundary - 1
		rightX := boundary

		for y := 0; y < raster.Height; y++ {
			left := raster.at(leftX, y)
			right := raster.at(rightX, y)
			if !left.Hit || !right.Hit {
				continue
			}
			if math.Abs(left.Elevation-right.Elevation) <= SeamToleranceM {
				continue
			}

			u := float64(rightX) / float64(raster.Width)
			v := float64(y) / float64(raster.Height)
			p := equirectToPoint(u, v)
			retry, mode := idx.SampleWithFallback(p, left.Triangle, elevation, left.Triangle)
			if retry.Hit && math.Abs(left.Elevation-retry.Elevation) <= SeamToleranceM {
				right.Elevation = retry.Elevation
				right.Rescue = mode
				right.Triangle = retry.Triangle
				continue
			}

			m.SeamRowsAboveLimit++
			right.Elevation = left.Elevation
		}
	}
	return m
}
