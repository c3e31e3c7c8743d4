package export

import (
	"testing"

	"github.com/onuse/tectonica/internal/heightmap"
	"github.com/onuse/tectonica/internal/mesh"
	"github.com/onuse/tectonica/internal/sampling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFlatIndex(t *testing.T, n int) (*heightmap.Index, []float64) {
	t.Helper()
	pts := sampling.Points(n)
	result := mesh.Triangulate(pts, mesh.Config{}, mesh.AlwaysAvailable)
	require.True(t, result.IsOk())
	idx := heightmap.NewIndex(pts, result.Value.Triangles)
	elevation := make([]float64, len(pts))
	for i := range elevation {
		elevation[i] = -1000
	}
	return idx, elevation
}

func TestExportProducesFullCoverageOnConstantField(t *testing.T) {
	idx, elevation := buildFlatIndex(t, 3000)
	cfg := DefaultConfig()

	raster, metrics, err := Export(cfg, idx, elevation)
	require.Nil(t, err)
	assert.Equal(t, cfg.Width*cfg.Height, metrics.PixelCount)
	assert.Greater(t, metrics.CoveragePercent, 99.0)
	assert.Equal(t, cfg.Width, raster.Width)
	assert.Equal(t, cfg.Height, raster.Height)
}

func TestExportRejectsBelowSafetyBaseline(t *testing.T) {
	idx, elevation := buildFlatIndex(t, 500)
	cfg := Config{Width: 64, Height: 32, TileSize: 512}

	_, _, err := Export(cfg, idx, elevation)
	require.NotNil(t, err)
	assert.Equal(t, "config_error", err.Kind.String())
}

func TestExportUnsafeOverrideAllowsSmallSize(t *testing.T) {
	idx, elevation := buildFlatIndex(t, 500)
	cfg := Config{Width: 64, Height: 32, TileSize: 512, UnsafeExport: true, MaxConcurrentTiles: 2}

	_, metrics, err := Export(cfg, idx, elevation)
	require.Nil(t, err)
	assert.Equal(t, 64*32, metrics.PixelCount)
}

func TestPNGMagicIsCorrectedWhenAllZero(t *testing.T) {
	w := zeroMagicWriter{}
	data, err := EncodeValidated(w, 4, 4, make([]byte, 64))
	require.Nil(t, err)
	for i := 0; i < 8; i++ {
		assert.Equal(t, pngMagic[i], data[i])
	}
}

type zeroMagicWriter struct{}

func (zeroMagicWriter) Encode(width, height int, rgba []byte) ([]byte, error) {
	return make([]byte, 16), nil
}

func TestPreflightCheckRejectsOversizedRequest(t *testing.T) {
	cfg := Config{Width: 100000, Height: 50000}
	err := PreflightCheck(cfg, 10000, 1024*1024)
	require.NotNil(t, err)
	assert.Equal(t, "memory_pressure", err.Kind.String())
}

func TestPreflightCheckAcceptsSmallRequest(t *testing.T) {
	cfg := DefaultConfig()
	err := PreflightCheck(cfg, 10000, 4*1024*1024*1024)
	assert.Nil(t, err)
}

func TestToRGBASetsAlphaOnlyForHits(t *testing.T) {
	raster := &Raster{Width: 2, Height: 1, Pixels: []Pixel{
		{Elevation: 0, Hit: true},
		{Elevation: 0, Hit: false},
	}}
	rgba := raster.ToRGBA(PaletteNormalized, -1, 1)
	assert.Equal(t, byte(255), rgba[3])
	assert.Equal(t, byte(0), rgba[7])
}
