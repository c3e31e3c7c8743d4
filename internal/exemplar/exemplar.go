// Package exemplar loads and serves the continental-amplification
// exemplar library of spec §6: a manifest of named elevation patches
// used to add realistic relief detail to continental terrain.
package exemplar

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/onuse/tectonica/internal/errs"
)

// Patch is one exemplar's metadata, as decoded from the manifest
// (spec §6).
type Patch struct {
	ID             string  `json:"id"`
	Region         string  `json:"region"`
	ElevationMinM  float64 `json:"elevation_min_m"`
	ElevationMaxM  float64 `json:"elevation_max_m"`
	ElevationMeanM float64 `json:"elevation_mean_m"`
	PNG16Path      string  `json:"png16_path"`
}

// manifest is the top-level JSON document shape (spec §6).
type manifest struct {
	Exemplars []Patch `json:"exemplars"`
}

// PatchDecoder decodes a 16-bit grayscale exemplar PNG into a square
// float64 height grid of side Resolution, resampled to a common size
// at load. PNG decoding is an external-collaborator concern (spec
// §1/§6); callers supply a concrete implementation (e.g. image/png
// backed) at the top level.
type PatchDecoder interface {
	Decode(path string, resolution int) ([][]float64, error)
}

// Library is a mutex-guarded, reloadable exemplar library. Reload
// bumps a version counter so samplers holding a stale snapshot can
// detect it without locking on every sample (spec §9's single-owned-
// resource guidance, generalized from the teacher's per-frame phase
// counters).
type Library struct {
	mu         sync.RWMutex
	patches    []Patch
	grids      [][][]float64
	version    uint64
	resolution int
}

// NewLibrary returns an empty library at resolution res (the common
// square size every exemplar patch is resampled to at load).
func NewLibrary(resolution int) *Library {
	return &Library{resolution: resolution}
}

// Load decodes the manifest at manifestPath (relative patch paths are
// resolved against its directory) and resamples every patch via dec,
// replacing the library's contents and incrementing its version.
func (l *Library) Load(manifestPath string, dec PatchDecoder) errs.Result[int] {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return errs.Fail[int](errs.Wrap(errs.DataUnavailable, "exemplar.Load", manifestPath, err))
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return errs.Fail[int](errs.Wrap(errs.ConfigError, "exemplar.Load", "manifest decode", err))
	}

	root := filepath.Dir(manifestPath)
	grids := make([][][]float64, len(m.Exemplars))
	for i, p := range m.Exemplars {
		grid, err := dec.Decode(filepath.Join(root, p.PNG16Path), l.resolution)
		if err != nil {
			return errs.Fail[int](errs.Wrap(errs.DataUnavailable, "exemplar.Load", fmt.Sprintf("patch %s", p.ID), err))
		}
		grids[i] = grid
	}

	l.mu.Lock()
	l.patches = m.Exemplars
	l.grids = grids
	l.version++
	count := len(l.patches)
	l.mu.Unlock()

	return errs.Ok(count)
}

// Version returns the library's current reload version.
func (l *Library) Version() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version
}

// Count returns the number of loaded exemplars.
func (l *Library) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.patches)
}

// Patch returns exemplar metadata by index.
func (l *Library) Patch(index int) (Patch, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if index < 0 || index >= len(l.patches) {
		return Patch{}, false
	}
	return l.patches[index], true
}

// Sample bilinearly samples exemplar index at wrapped UV coordinates
// u,v in [0,1), returning the elevation in metres.
func (l *Library) Sample(index int, u, v float64) (float64, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if index < 0 || index >= len(l.grids) {
		return 0, false
	}
	grid := l.grids[index]
	res := len(grid)
	if res == 0 {
		return 0, false
	}

	u = wrapUnit(u)
	v = wrapUnit(v)
	fx := u * float64(res)
	fy := v * float64(res)
	x0 := int(fx) % res
	y0 := int(fy) % res
	x1 := (x0 + 1) % res
	y1 := (y0 + 1) % res
	tx := fx - float64(int(fx))
	ty := fy - float64(int(fy))

	top := grid[y0][x0]*(1-tx) + grid[y0][x1]*tx
	bot := grid[y1][x0]*(1-tx) + grid[y1][x1]*tx
	return top*(1-ty) + bot*ty, true
}

func wrapUnit(t float64) float64 {
	t = t - float64(int(t))
	if t < 0 {
		t++
	}
	return t
}
