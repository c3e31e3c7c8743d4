package exemplar

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDecoder struct {
	fill float64
}

func (f fakeDecoder) Decode(path string, resolution int) ([][]float64, error) {
	grid := make([][]float64, resolution)
	for y := range grid {
		grid[y] = make([]float64, resolution)
		for x := range grid[y] {
			grid[y][x] = f.fill
		}
	}
	return grid, nil
}

func writeManifest(t *testing.T, dir string) string {
	t.Helper()
	m := manifest{Exemplars: []Patch{
		{ID: "alps", Region: "orogenic", ElevationMinM: 0, ElevationMaxM: 4000, ElevationMeanM: 1500, PNG16Path: "alps.png"},
		{ID: "plains", Region: "plain", ElevationMinM: 100, ElevationMaxM: 300, ElevationMeanM: 200, PNG16Path: "plains.png"},
	}}
	data, err := json.Marshal(m)
	require.NoError(t, err)
	path := filepath.Join(dir, "manifest.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadIncrementsVersionAndCount(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir)
	lib := NewLibrary(8)

	assert.Equal(t, uint64(0), lib.Version())
	result := lib.Load(path, fakeDecoder{fill: 500})
	require.True(t, result.IsOk())
	assert.Equal(t, 2, result.Value)
	assert.Equal(t, 2, lib.Count())
	assert.Equal(t, uint64(1), lib.Version())

	result = lib.Load(path, fakeDecoder{fill: 600})
	require.True(t, result.IsOk())
	assert.Equal(t, uint64(2), lib.Version())
}

func TestSampleReturnsDecodedValue(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir)
	lib := NewLibrary(4)
	require.True(t, lib.Load(path, fakeDecoder{fill: 1234}).IsOk())

	v, ok := lib.Sample(0, 0.5, 0.5)
	require.True(t, ok)
	assert.InDelta(t, 1234, v, 1e-9)
}

func TestSampleWrapsUV(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir)
	lib := NewLibrary(4)
	require.True(t, lib.Load(path, fakeDecoder{fill: 42}).IsOk())

	a, ok := lib.Sample(0, 0.1, 0.1)
	require.True(t, ok)
	b, ok := lib.Sample(0, 1.1, 1.1)
	require.True(t, ok)
	assert.InDelta(t, a, b, 1e-9)
}

func TestSampleUnknownIndexFails(t *testing.T) {
	lib := NewLibrary(4)
	_, ok := lib.Sample(0, 0, 0)
	assert.False(t, ok)
}

func TestLoadMissingManifestIsDataUnavailable(t *testing.T) {
	lib := NewLibrary(4)
	result := lib.Load("/nonexistent/manifest.json", fakeDecoder{})
	require.False(t, result.IsOk())
	assert.Equal(t, "data_unavailable", result.Err.Kind.String())
}

func TestPatchByIndex(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir)
	lib := NewLibrary(4)
	require.True(t, lib.Load(path, fakeDecoder{fill: 1}).IsOk())

	p, ok := lib.Patch(0)
	require.True(t, ok)
	assert.Equal(t, "alps", p.ID)

	_, ok = lib.Patch(99)
	assert.False(t, ok)
}
