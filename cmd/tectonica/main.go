// Command tectonica runs the geodynamic core end to end: it builds a
// fresh topology, advances it for a configured number of steps,
// amplifies the result, rasterizes it to an equirectangular heightmap
// PNG, and writes a validation metrics summary alongside it.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/onuse/tectonica/internal/config"
	"github.com/onuse/tectonica/internal/exemplar"
	"github.com/onuse/tectonica/internal/export"
	"github.com/onuse/tectonica/internal/heightmap"
	"github.com/onuse/tectonica/internal/logx"
	"github.com/onuse/tectonica/internal/metrics"
	"github.com/onuse/tectonica/internal/step"
)

func main() {
	var (
		configPath       = flag.String("config", "", "settings JSON or YAML path (defaults used if empty)")
		outDir           = flag.String("out", ".", "output directory for the heightmap PNG and metrics JSON")
		exemplarManifest = flag.String("exemplars", "", "exemplar manifest JSON path (continental amplification skipped if empty)")
		stepCount        = flag.Int("steps", -1, "override step_count from settings (-1: use settings)")
	)
	flag.Parse()

	settings := config.Default()
	if *configPath != "" {
		var err error
		settings, err = loadSettings(*configPath)
		if err != nil {
			logx.Log.Fatal().Err(err).Str("path", *configPath).Msg("failed to load settings")
		}
	}
	if *stepCount >= 0 {
		settings.StepCount = *stepCount
	}

	fmt.Println("=== tectonica geodynamic core ===")
	fmt.Printf("sample_count=%d subdivision_level=%d seed=%d steps=%d\n", settings.SampleCount, settings.SubdivisionLevel, settings.Seed, settings.StepCount)

	simResult := step.New(settings)
	if !simResult.IsOk() {
		logx.Log.Fatal().Err(simResult.Err).Msg("failed to initialize simulation")
	}
	sim := simResult.Value

	start := time.Now()
	phaseTimes := make(map[string]float64)

	for i := 0; i < settings.StepCount; i++ {
		stepStart := time.Now()
		sim.Step(settings.DeltaTimeMa)
		phaseTimes["physics_step"] += float64(time.Since(stepStart).Milliseconds())
	}
	fmt.Printf("ran %d steps, topology_version=%d surface_version=%d\n", settings.StepCount, sim.TopologyVersion, sim.SurfaceVersion)

	var lib *exemplar.Library
	if *exemplarManifest != "" {
		lib = exemplar.NewLibrary(512)
		res := lib.Load(*exemplarManifest, png16Decoder{})
		if !res.IsOk() {
			logx.Log.Warn().Err(res.Err).Msg("exemplar library load failed, continental amplification will be skipped")
			lib = nil
		}
	}

	amplifyStart := time.Now()
	if err := sim.AmplifyStageB(lib); err != nil {
		logx.Log.Warn().Str("reason", err.Context).Msg("Stage B amplification not applied")
	}
	phaseTimes["amplify"] = float64(time.Since(amplifyStart).Milliseconds())

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logx.Log.Fatal().Err(err).Msg("failed to create output directory")
	}

	idx := heightmap.NewIndex(sim.CurrentPositions(), sim.Mesh.Triangles)

	exportCfg := export.DefaultConfig()
	exportCfg.UnsafeExport = settings.UnsafeHeightmapExport

	if preflightErr := export.PreflightCheck(exportCfg, len(sim.Points), availableMemoryBytes()); preflightErr != nil {
		logx.Log.Fatal().Err(preflightErr).Msg("export memory preflight failed")
	}

	exportStart := time.Now()
	raster, rasterMetrics, exportErr := export.Export(exportCfg, idx, sim.AmplifiedElevation)
	if exportErr != nil {
		logx.Log.Fatal().Err(exportErr).Msg("export failed")
	}
	phaseTimes["export"] = float64(time.Since(exportStart).Milliseconds())

	palette := paletteFor(settings.HeightmapPalette)
	minZ, maxZ := elevationBounds(sim.AmplifiedElevation)
	rgba := raster.ToRGBA(palette, minZ, maxZ)

	pngBytes, encodeErr := export.EncodeValidated(imagePNGWriter{}, raster.Width, raster.Height, rgba)
	if encodeErr != nil {
		logx.Log.Fatal().Err(encodeErr).Msg("PNG encode failed")
	}

	heightmapPath := filepath.Join(*outDir, "heightmap.png")
	if err := os.WriteFile(heightmapPath, pngBytes, 0o644); err != nil {
		logx.Log.Fatal().Err(err).Msg("failed to write heightmap PNG")
	}
	fmt.Printf("wrote %s (%dx%d, coverage=%.2f%%)\n", heightmapPath, raster.Width, raster.Height, rasterMetrics.CoveragePercent)

	now := time.Now().UTC()
	summary := metrics.Summary{
		Phase:       "full_run",
		Backend:     string(settings.Backend),
		SampleCount: settings.SampleCount,
		Seed:        settings.Seed,
		GitCommit:   os.Getenv("TECTONICA_GIT_COMMIT"),
		Metrics: map[string]interface{}{
			"coverage_percent":      rasterMetrics.CoveragePercent,
			"failed_samples":        rasterMetrics.FailedSamples,
			"mean_walk_steps":       rasterMetrics.MeanWalkSteps,
			"max_walk_steps":        rasterMetrics.MaxWalkSteps,
			"seam_rows_above_limit": rasterMetrics.SeamRowsAboveLimit,
			"topology_version":      sim.TopologyVersion,
			"surface_version":       sim.SurfaceVersion,
		},
		Timing: metrics.Timing{
			TotalMs:  float64(time.Since(start).Milliseconds()),
			PhasesMs: phaseTimes,
		},
	}
	metricsPath, err := metrics.Write(*outDir, now, summary)
	if err != nil {
		logx.Log.Fatal().Err(err).Msg("failed to write metrics summary")
	}
	fmt.Printf("wrote %s\n", metricsPath)
}

func loadSettings(path string) (config.Settings, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return config.LoadYAML(path)
	default:
		return config.LoadJSON(path)
	}
}

func paletteFor(p config.Palette) export.Palette {
	if p == config.PaletteNormalized {
		return export.PaletteNormalized
	}
	return export.PaletteHypsometric
}

func elevationBounds(elevation []float64) (min, max float64) {
	if len(elevation) == 0 {
		return 0, 0
	}
	min, max = elevation[0], elevation[0]
	for _, z := range elevation {
		if z < min {
			min = z
		}
		if z > max {
			max = z
		}
	}
	return min, max
}

// availableMemoryBytes is a conservative stand-in for a real memory
// inquiry (spec treats the host's available-memory probe as an
// external collaborator); 4 GiB keeps PreflightCheck meaningful
// without depending on a platform-specific syscall.
func availableMemoryBytes() uint64 {
	return 4 * 1024 * 1024 * 1024
}
