package mesh

import (
	"math/rand"

	"github.com/onuse/tectonica/internal/errs"
	"github.com/onuse/tectonica/internal/geom"
	"github.com/onuse/tectonica/internal/logx"
)

// Backend selects the triangulation kernel (spec §4.2, §6 `backend`
// knob). Primary is the incremental-hull backend; Fallback is the same
// algorithm with the robustness pre-shuffle disabled, used when Primary
// is reported unavailable.
type Backend int

const (
	BackendAuto Backend = iota
	BackendPrimary
	BackendFallback
)

// Config holds the triangulator's recognised knobs from spec §6.
type Config struct {
	Backend     Backend
	Shuffle     bool
	ShuffleSeed int64
}

// Availability reports whether a backend can currently run. Tests
// inject a custom Availability to exercise the fallback-and-log path;
// production callers pass AlwaysAvailable.
type Availability func(b Backend) bool

// AlwaysAvailable reports every backend as usable.
func AlwaysAvailable(Backend) bool { return true }

// resolveBackend implements the "requested backend unavailable -> use
// the other, logging the fallback" rule of §4.2.
func resolveBackend(requested Backend, avail Availability) Backend {
	switch requested {
	case BackendFallback:
		if avail(BackendFallback) {
			return BackendFallback
		}
		logx.Log.Warn().Str("requested", "fallback").Msg("triangulator backend unavailable, using primary")
		return BackendPrimary
	case BackendPrimary:
		if avail(BackendPrimary) {
			return BackendPrimary
		}
		logx.Log.Warn().Str("requested", "primary").Msg("triangulator backend unavailable, using fallback")
		return BackendFallback
	default: // BackendAuto
		if avail(BackendPrimary) {
			return BackendPrimary
		}
		return BackendFallback
	}
}

// Triangulate builds a canonical, Euler-checked triangulation over pts
// per the selected backend and shuffle configuration. Identical
// (points, cfg, avail) always yields a bit-identical result.
func Triangulate(pts []geom.Vector3, cfg Config, avail Availability) errs.Result[*Triangulation] {
	if avail == nil {
		avail = AlwaysAvailable
	}
	backend := resolveBackend(cfg.Backend, avail)

	tris, err := runBackend(pts, backend, cfg)
	if err != nil {
		return errs.Fail[*Triangulation](err)
	}

	v, e, f := EulerCharacteristic(len(pts), tris)
	if v-e+f != 2 {
		// Euler check failed: try the alternate backend once before
		// declaring a hard failure (§7 BackendFailure: "try alternate
		// backend, then fail").
		alt := BackendFallback
		if backend == BackendFallback {
			alt = BackendPrimary
		}
		logx.Log.Warn().
			Int("v", v).Int("e", e).Int("f", f).
			Msg("triangulation failed Euler check, retrying with alternate backend")
		tris, err = runBackend(pts, alt, cfg)
		if err != nil {
			return errs.Fail[*Triangulation](err)
		}
		v, e, f = EulerCharacteristic(len(pts), tris)
		if v-e+f != 2 {
			return errs.Fail[*Triangulation](errs.New(errs.BackendFailure, "mesh.Triangulate",
				"Euler characteristic check failed on both backends"))
		}
	}

	return errs.Ok(&Triangulation{Points: pts, Triangles: tris})
}

func runBackend(pts []geom.Vector3, backend Backend, cfg Config) ([]Triangle, *errs.Error) {
	shuffle := cfg.Shuffle && backend == BackendPrimary
	var work []geom.Vector3
	var perm []int
	if shuffle {
		work, perm = shufflePoints(pts, cfg.ShuffleSeed)
	} else {
		work = pts
	}

	tris, err := buildConvexHull(work)
	if err != nil {
		return nil, err
	}

	if shuffle {
		// shuffled[i] == pts[perm[i]], so a hull index i remaps to the
		// caller's original index via perm[i] directly.
		for i, t := range tris {
			tris[i] = Triangle{perm[t[0]], perm[t[1]], perm[t[2]]}
		}
	}

	tris = dropInvalid(tris, len(pts))
	for i, t := range tris {
		tris[i] = ensureOutward(t, pts)
	}
	return Canonicalize(tris), nil
}

// shufflePoints returns a Fisher-Yates permutation of pts seeded by
// seed, plus perm such that shuffled[i] == pts[perm[i]] (used to remap
// hull indices back to the caller's original ordering).
func shufflePoints(pts []geom.Vector3, seed int64) ([]geom.Vector3, []int) {
	n := len(pts)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	rng := rand.New(rand.NewSource(seed))
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	shuffled := make([]geom.Vector3, n)
	for i, p := range perm {
		shuffled[i] = pts[p]
	}
	return shuffled, perm
}

// dropInvalid removes triangles that reference an out-of-range or
// duplicate vertex index (§4.2 robustness requirement).
func dropInvalid(tris []Triangle, n int) []Triangle {
	out := tris[:0]
	for _, t := range tris {
		if t[0] < 0 || t[0] >= n || t[1] < 0 || t[1] >= n || t[2] < 0 || t[2] >= n {
			continue
		}
		if t[0] == t[1] || t[1] == t[2] || t[0] == t[2] {
			continue
		}
		out = append(out, t)
	}
	return out
}
