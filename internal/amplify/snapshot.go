// Package amplify implements the Stage-B elevation amplification
// kernels of spec §4.10-§4.11: procedural oceanic fault noise and
// continental exemplar blending.
package amplify

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/onuse/tectonica/internal/geom"
)

// Snapshot is the immutable input set a single amplification dispatch
// reads. Both the CPU path here and an external GPU dispatch must
// consume the same Snapshot, so simulation progress on another
// goroutine cannot corrupt an in-flight dispatch (spec §4.10-§4.11:
// "inputs are snapshotted").
type Snapshot struct {
	Baseline       []float64
	Positions      []geom.Vector3
	RidgeDirection []geom.Vector3
	CrustAge       []float64 // Ma since last re-crystallisation at the ridge
	OceanicMask    []bool
	Params         Params
}

// Params are the amplification kernel's tunable constants.
type Params struct {
	RidgeAmplitude float64 // m, noise amplitude at a fresh ridge
	AgeFalloff     float64 // Ma, exponential age decay constant τ
	NoiseFrequency float64 // spatial frequency of the fault noise
	Seed           int64
}

// Hash computes a deterministic fingerprint of the snapshot's content,
// used to verify CPU/GPU input equivalence before comparing outputs
// (spec §4.10: "a shared snapshot ... is hashed to verify input
// equivalence").
func (s Snapshot) Hash() uint64 {
	h := fnv.New64a()
	var buf8 [8]byte
	writeFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf8[:], math.Float64bits(f))
		h.Write(buf8[:])
	}
	writeVec := func(v geom.Vector3) {
		writeFloat(v.X)
		writeFloat(v.Y)
		writeFloat(v.Z)
	}

	for i := range s.Baseline {
		writeFloat(s.Baseline[i])
		if i < len(s.Positions) {
			writeVec(s.Positions[i])
		}
		if i < len(s.RidgeDirection) {
			writeVec(s.RidgeDirection[i])
		}
		if i < len(s.CrustAge) {
			writeFloat(s.CrustAge[i])
		}
		if i < len(s.OceanicMask) {
			if s.OceanicMask[i] {
				h.Write([]byte{1})
			} else {
				h.Write([]byte{0})
			}
		}
	}
	writeFloat(s.Params.RidgeAmplitude)
	writeFloat(s.Params.AgeFalloff)
	writeFloat(s.Params.NoiseFrequency)
	binary.LittleEndian.PutUint64(buf8[:], uint64(s.Params.Seed))
	h.Write(buf8[:])
	return h.Sum64()
}

// ParityToleranceM is the maximum allowed per-vertex difference between
// the CPU reference path and an external GPU dispatch (spec §4.10-
// §4.11: "must match within ≤0.1 m per vertex").
const ParityToleranceM = 0.1

// WithinParity reports whether cpu and gpu agree within
// ParityToleranceM at every vertex.
func WithinParity(cpu, gpu []float64) bool {
	if len(cpu) != len(gpu) {
		return false
	}
	for i := range cpu {
		if math.Abs(cpu[i]-gpu[i]) > ParityToleranceM {
			return false
		}
	}
	return true
}
