package export

import "github.com/onuse/tectonica/internal/errs"

// safetyHeadroomBytes is held back from the available-memory budget
// as a margin (spec §4.13: "safety headroom").
const safetyHeadroomBytes = 64 * 1024 * 1024

// bytesPerVertexScratch approximates the sampler/scratch footprint per
// mesh vertex (positions, elevation, adjacency, index structures).
const bytesPerVertexScratch = 256

// PreflightCheck estimates the export's memory footprint (pixel
// bytes + sampler footprint + scratch + safety headroom) and fails
// with MemoryPressure if it exceeds availableBytes (spec §4.13).
func PreflightCheck(cfg Config, vertexCount int, availableBytes uint64) *errs.Error {
	pixelBytes := uint64(cfg.Width) * uint64(cfg.Height) * 4
	samplerBytes := uint64(vertexCount) * bytesPerVertexScratch
	total := pixelBytes + samplerBytes + safetyHeadroomBytes

	if total > availableBytes {
		return errs.New(errs.MemoryPressure, "export.PreflightCheck", "estimated footprint exceeds available memory")
	}
	return nil
}
