// Package export implements the TiledExporter of spec §4.13: rasterize
// the HeightmapSampler onto an equirectangular image in overlapping
// tiles, reconcile seams, and report coverage metrics.
package export

import (
	"math"
	"sync"

	"github.com/onuse/tectonica/internal/errs"
	"github.com/onuse/tectonica/internal/geom"
	"github.com/onuse/tectonica/internal/heightmap"
	"github.com/onuse/tectonica/internal/logx"
)

// DefaultTileSize is the default tile edge length (spec §4.13).
const DefaultTileSize = 512

// OverlapPixels is the per-tile sample-window overlap (spec §4.13).
const OverlapPixels = 2

// SeamToleranceM is the |Δz| threshold above which a seam column is
// retried, then forcibly reconciled (spec §4.13).
const SeamToleranceM = 0.5

// Config controls one export run.
type Config struct {
	Width, Height      int
	TileSize           int
	UnsafeExport       bool // override the 512x256 safety baseline
	MaxConcurrentTiles int
}

// DefaultConfig returns the 512x256 safety-baseline export size.
func DefaultConfig() Config {
	return Config{Width: 512, Height: 256, TileSize: DefaultTileSize, MaxConcurrentTiles: 4}
}

// Metrics reports per-export statistics (spec §4.13).
type Metrics struct {
	PixelCount         int
	SuccessfulSamples  int
	FailedSamples      int
	CoveragePercent    float64
	MeanWalkSteps      float64
	MaxWalkSteps       int
	SeamRowsAboveLimit int
	RescueTallies      map[heightmap.RescueMode]int
}

// Pixel is one raster sample, pre-palette-mapping.
type Pixel struct {
	Elevation float64
	Hit       bool
	Rescue    heightmap.RescueMode
	Steps     int
	Triangle  int // walk-terminal triangle, reused as a seam-retry hint
}

// Raster is the full W*H sample buffer produced by Export, row-major,
// before palette mapping and PNG encoding.
type Raster struct {
	Width, Height int
	Pixels        []Pixel
}

func (r *Raster) at(x, y int) *Pixel { return &r.Pixels[y*r.Width+x] }

// Export rasterizes idx/elevation onto a Config.Width x Config.Height
// equirectangular raster using overlap-tiled concurrent sampling, then
// reconciles seams (spec §4.13). Pre-flight memory budget checking is
// the caller's responsibility via PreflightCheck.
func Export(cfg Config, idx *heightmap.Index, elevation []float64) (*Raster, Metrics, *errs.Error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, Metrics{}, errs.New(errs.ConfigError, "export.Export", "non-positive dimensions")
	}
	if !cfg.UnsafeExport && (cfg.Width < 512 || cfg.Height < 256) {
		return nil, Metrics{}, errs.New(errs.ConfigError, "export.Export", "below 512x256 safety baseline; set UnsafeExport to override")
	}

	tileSize := cfg.TileSize
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}

	raster := &Raster{Width: cfg.Width, Height: cfg.Height, Pixels: make([]Pixel, cfg.Width*cfg.Height)}
	rowHints := make([]int, cfg.Height)
	for i := range rowHints {
		rowHints[i] = -1
	}
	var rowMu sync.Mutex

	tilesX := (cfg.Width + tileSize - 1) / tileSize
	tilesY := (cfg.Height + tileSize - 1) / tileSize

	sem := make(chan struct{}, maxInt(1, cfg.MaxConcurrentTiles))
	var wg sync.WaitGroup

	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			ty, tx := ty, tx
			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				renderTile(cfg, idx, elevation, raster, tx, ty, tileSize, rowHints, &rowMu)
			}()
		}
	}
	wg.Wait()

	metrics := reconcileSeams(raster, idx, elevation, tilesX, tileSize)
	finalizeMetrics(raster, &metrics)
	return raster, metrics, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// renderTile samples the core window of tile (tx,ty) extended by
// OverlapPixels on each side, writing only the core pixels into raster
// (spec §4.13: "a sample window that is its core extended by the
// overlap"; "only core pixels are stitched into the destination"). The
// overlap columns are sampled and fed into the walk's hint chain but
// discarded afterward — their purpose is to warm the triangle-walk
// hint across the tile boundary, so the first core column a tile
// writes starts from a spatially coherent triangle instead of the
// row's stale cross-tile hint, reducing seam disagreement at §4.13's
// stitch line.
func renderTile(cfg Config, idx *heightmap.Index, elevation []float64, raster *Raster, tx, ty, tileSize int, rowHints []int, rowMu *sync.Mutex) {
	coreX0, coreX1 := tx*tileSize, minInt((tx+1)*tileSize, cfg.Width)
	coreY0, coreY1 := ty*tileSize, minInt((ty+1)*tileSize, cfg.Height)
	sampleX0 := maxInt(0, coreX0-OverlapPixels)
	sampleX1 := minInt(cfg.Width, coreX1+OverlapPixels)

	for y := coreY0; y < coreY1; y++ {
		rowMu.Lock()
		hint := rowHints[y]
		rowMu.Unlock()

		for x := sampleX0; x < sampleX1; x++ {
			u := float64(x) / float64(cfg.Width)
			v := float64(y) / float64(cfg.Height)
			p := equirectToPoint(u, v)

			r, mode := idx.SampleWithFallback(p, hint, elevation, hint)
			if x >= coreX0 && x < coreX1 {
				px := raster.at(x, y)
				px.Elevation = r.Elevation
				px.Hit = r.Hit
				px.Rescue = mode
				px.Steps = r.Steps
				px.Triangle = r.Triangle
			}

			if r.Hit {
				hint = r.Triangle
			}
		}

		rowMu.Lock()
		rowHints[y] = hint
		rowMu.Unlock()
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// equirectToPoint converts raster UV (u=longitude, v=latitude-from-
// north-pole) to a unit vector, matching the Output convention of
// spec §6 (column 0 at longitude −π, row 0 at latitude +π/2).
func equirectToPoint(u, v float64) geom.Vector3 {
	lon := (u - 0.5) * 2 * math.Pi
	lat := math.Pi/2 - v*math.Pi
	cosLat := math.Cos(lat)
	return geom.Vector3{X: math.Cos(lon) * cosLat, Y: math.Sin(lon) * cosLat, Z: math.Sin(lat)}
}

func finalizeMetrics(raster *Raster, m *Metrics) {
	m.PixelCount = len(raster.Pixels)
	if m.RescueTallies == nil {
		m.RescueTallies = make(map[heightmap.RescueMode]int)
	}
	totalSteps := 0
	for _, p := range raster.Pixels {
		if p.Hit {
			m.SuccessfulSamples++
		} else {
			m.FailedSamples++
		}
		totalSteps += p.Steps
		if p.Steps > m.MaxWalkSteps {
			m.MaxWalkSteps = p.Steps
		}
		m.RescueTallies[p.Rescue]++
	}
	if m.PixelCount > 0 {
		m.CoveragePercent = 100 * float64(m.SuccessfulSamples) / float64(m.PixelCount)
		m.MeanWalkSteps = float64(totalSteps) / float64(m.PixelCount)
	}

	// logx keeps this quiet on the common path and noisy on an
	// actionable one: a coverage shortfall is worth a structured line.
	if m.CoveragePercent < 99.9 {
		logx.Log.Warn().Float64("coverage_pct", m.CoveragePercent).Int("failed", m.FailedSamples).Msg("heightmap export coverage below 99.9%")
	}
}
