// Package metrics writes the validation metrics JSON artefact of
// spec §6: one summary object per physics phase or export, named
// summary_YYYYMMDD_HHMMSS.json in UTC.
package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Timing holds the total wall-clock time plus any phase-specific
// breakdown (spec §6: "timing_ms: {total, <phase-specific>}"). It is
// encoded as one flat object: each PhasesMs entry sits beside "total".
type Timing struct {
	TotalMs  float64            `json:"total"`
	PhasesMs map[string]float64 `json:"-"`
}

// MarshalJSON writes "total" and every PhasesMs entry as keys of one
// object; a phase named "total" is replaced by TotalMs.
func (t Timing) MarshalJSON() ([]byte, error) {
	flat := make(map[string]float64, len(t.PhasesMs)+1)
	for k, v := range t.PhasesMs {
		flat[k] = v
	}
	flat["total"] = t.TotalMs
	return json.Marshal(flat)
}

// Summary is one validation metrics document (spec §6).
type Summary struct {
	Phase       string                 `json:"phase"`
	Backend     string                 `json:"backend"`
	SampleCount int                    `json:"sample_count"`
	Seed        int64                  `json:"seed"`
	GitCommit   string                 `json:"git_commit"`
	Metrics     map[string]interface{} `json:"metrics"`
	Timing      Timing                 `json:"timing_ms"`
}

// Filename returns the canonical summary_YYYYMMDD_HHMMSS.json name for
// timestamp t, which the caller must supply in UTC (spec §6).
func Filename(t time.Time) string {
	return fmt.Sprintf("summary_%s.json", t.UTC().Format("20060102_150405"))
}

// Write encodes summary as JSON and writes it to dir/Filename(t).
// Returns the full path written.
func Write(dir string, t time.Time, summary Summary) (string, error) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, Filename(t))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
