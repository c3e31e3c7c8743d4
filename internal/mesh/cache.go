package mesh

import (
	"bytes"
	"encoding/gob"
	"hash/fnv"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/onuse/tectonica/internal/errs"
	"github.com/onuse/tectonica/internal/geom"
	"github.com/onuse/tectonica/internal/logx"
)

// memKey identifies a triangulation result for the in-process cache:
// backend, an FNV-1a hash of the point set, and the shuffle flags. A
// cache hit short-circuits recomputation for an unchanged input (§4.2).
type memKey struct {
	backend     Backend
	pointHash   uint64
	shuffle     bool
	shuffleSeed int64
}

// Cache is an in-memory, mutex-protected triangulation cache. Per the
// concurrency model (§5): "Triangulation cache ... protected by a
// single mutex; operations are insert-or-overwrite."
type Cache struct {
	mu    sync.Mutex
	store map[memKey]*Triangulation
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{store: make(map[memKey]*Triangulation)}
}

// GetOrCompute returns a cached triangulation for (pts, cfg) if one
// exists, otherwise computes it via Triangulate, caches it, and returns
// it.
func (c *Cache) GetOrCompute(pts []geom.Vector3, cfg Config, avail Availability) errs.Result[*Triangulation] {
	key := memKey{backend: cfg.Backend, pointHash: hashPoints(pts), shuffle: cfg.Shuffle, shuffleSeed: cfg.ShuffleSeed}

	c.mu.Lock()
	if t, ok := c.store[key]; ok {
		c.mu.Unlock()
		return errs.Ok(t)
	}
	c.mu.Unlock()

	result := Triangulate(pts, cfg, avail)
	if !result.IsOk() {
		return result
	}

	c.mu.Lock()
	c.store[key] = result.Value
	c.mu.Unlock()
	return result
}

// hashPoints computes a deterministic FNV-1a hash over a point set's
// raw coordinates, used as the in-memory cache key component and as
// part of the on-disk cache's signature.
func hashPoints(pts []geom.Vector3) uint64 {
	h := fnv.New64a()
	var buf [24]byte
	for _, p := range pts {
		putFloat64(buf[0:8], p.X)
		putFloat64(buf[8:16], p.Y)
		putFloat64(buf[16:24], p.Z)
		h.Write(buf[:])
	}
	return h.Sum64()
}

func putFloat64(b []byte, f float64) {
	bits := math.Float64bits(f)
	for i := 0; i < 8; i++ {
		b[i] = byte(bits >> (8 * i))
	}
}

// diskCacheEntry is the on-disk cache payload (§4.2: "on-disk binary
// cache keyed by (N, seed, shuffle-flag, triangle-signature-hash)").
type diskCacheEntry struct {
	N           int
	Seed        int64
	Shuffle     bool
	Signature   uint64
	Triangles   []Triangle
}

// SaveDisk writes a triangulation to path, keyed by the caller-supplied
// signature (typically hashPoints(pts)).
func SaveDisk(path string, n int, seed int64, shuffle bool, signature uint64, tris []Triangle) error {
	entry := diskCacheEntry{N: n, Seed: seed, Shuffle: shuffle, Signature: signature, Triangles: tris}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entry); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// LoadDisk reads a cached triangulation from path, invalidating (and
// reporting ok=false) if n/seed/shuffle/signature do not match.
func LoadDisk(path string, n int, seed int64, shuffle bool, signature uint64) (tris []Triangle, ok bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var entry diskCacheEntry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&entry); err != nil {
		logx.Log.Warn().Str("path", path).Err(err).Msg("triangulation cache decode failed")
		return nil, false
	}
	if entry.N != n || entry.Seed != seed || entry.Shuffle != shuffle || entry.Signature != signature {
		return nil, false
	}
	return entry.Triangles, true
}
