// Package plate implements the plate model of spec §4.3: plate
// records, Euler-pole kinematics, vertex→plate assignment and
// per-vertex advection.
package plate

import (
	"math"

	"github.com/onuse/tectonica/internal/geom"
)

// CrustKind distinguishes oceanic from continental lithosphere (spec §3).
type CrustKind int

const (
	Oceanic CrustKind = iota
	Continental
)

// Plate is a rigid lithospheric fragment rotating about its Euler pole.
type Plate struct {
	ID               int
	EulerAxis        geom.Vector3 // unit vector
	AngularSpeed     float64      // rad/Ma
	Centroid         geom.Vector3
	CrustKind        CrustKind
	ContinentalRatio float64

	// rotAxis/rotAngle is this plate's accumulated rotation from its
	// vertices' original lattice positions to their current advected
	// positions, composed each step via geom.ComposeRotation rather
	// than recomputed from AngularSpeed*totalTime — necessary because
	// AngularSpeed and EulerAxis can themselves change mid-run (slab
	// pull reaction, §4.5), so the accumulated rotation is not simply
	// axis*omega*t. Grounded on original_source's RotateVertex, which
	// rotates from each vertex's original position rather than
	// mutating a live position buffer in place.
	rotAxis  geom.Vector3
	rotAngle float64
}

// AngularVelocity returns the plate's angular-velocity vector Ω = axis*ω.
func (p *Plate) AngularVelocity() geom.Vector3 {
	return p.EulerAxis.Scale(p.AngularSpeed)
}

// Advance integrates this plate's own rotation by ω·dt and composes it
// into the accumulated rotation used by CurrentPosition.
func (p *Plate) Advance(dt float64) {
	if p.rotAxis.Length() == 0 {
		p.rotAxis = geom.Vector3{Z: 1}
	}
	axis, angle := geom.ComposeRotation(p.rotAxis, p.rotAngle, p.EulerAxis, p.AngularSpeed*dt)
	p.rotAxis, p.rotAngle = axis, angle
}

// CurrentPosition rotates a vertex's original lattice position by this
// plate's accumulated rotation.
func (p *Plate) CurrentPosition(original geom.Vector3) geom.Vector3 {
	if p.rotAngle == 0 {
		return original
	}
	return geom.RotateAboutAxis(original, p.rotAxis, p.rotAngle)
}

// VelocityAt returns the plate's surface velocity (km/Ma) at point p
// (which must be a unit vector), for a planet of the given radius in km:
// v = (Ω × p) · R (spec §4.3).
func (p *Plate) VelocityAt(point geom.Vector3, planetRadiusKm float64) geom.Vector3 {
	return p.AngularVelocity().Cross(point).Scale(planetRadiusKm)
}

// ApplySlabPullReaction nudges this plate's angular velocity vector by
// epsilon*accel*dt (spec §4.5: "Ω_i ← Ω_i + ε·A_i·dt"), re-deriving
// EulerAxis/AngularSpeed from the resulting vector.
func (p *Plate) ApplySlabPullReaction(accel geom.Vector3, epsilon, dt float64) {
	omega := p.AngularVelocity().Add(accel.Scale(epsilon * dt))
	speed := omega.Length()
	if speed < 1e-15 {
		return
	}
	p.EulerAxis = omega.Scale(1 / speed)
	p.AngularSpeed = speed
}

// Model owns the plate records and the vertex→plate assignment.
type Model struct {
	Plates      map[int]*Plate
	VertexPlate []int // parallel array indexed by vertex id; -1 = unassigned
	nextID      int
}

// NewModel creates an empty model sized for vertexCount vertices.
func NewModel(vertexCount int) *Model {
	vp := make([]int, vertexCount)
	for i := range vp {
		vp[i] = -1
	}
	return &Model{Plates: make(map[int]*Plate), VertexPlate: vp, nextID: 1}
}

// AddPlate registers a new plate and returns it. IDs are monotonically
// assigned and never reused (spec §3).
func (m *Model) AddPlate(axis geom.Vector3, speed float64, kind CrustKind, continentalRatio float64) *Plate {
	p := &Plate{
		ID:               m.nextID,
		EulerAxis:        axis.Normalize(),
		AngularSpeed:     speed,
		CrustKind:        kind,
		ContinentalRatio: continentalRatio,
		rotAxis:          geom.Vector3{Z: 1},
	}
	m.nextID++
	m.Plates[p.ID] = p
	return p
}

// AddFragmentPlate registers a new plate born from a rifting split and
// seeds its accumulated rotation from parent's, rather than the
// zero-rotation default AddPlate gives a plate created from scratch.
// Without this, CurrentPosition would snap every vertex reassigned to
// the fragment back to its raw lattice position, discontinuous with
// the position it held under the parent the step before (spec §4.8).
func (m *Model) AddFragmentPlate(parent *Plate, axis geom.Vector3, speed float64, kind CrustKind, continentalRatio float64) *Plate {
	p := m.AddPlate(axis, speed, kind, continentalRatio)
	p.rotAxis = parent.rotAxis
	p.rotAngle = parent.rotAngle
	return p
}

// Advance integrates every plate's rotation by dt (component C's
// "integrates Euler-pole rotations").
func (m *Model) Advance(dt float64) {
	for _, p := range m.Plates {
		p.Advance(dt)
	}
}

// CurrentPositions returns the advected position of every vertex, given
// its original lattice position and current plate assignment. Vertices
// with no assigned plate keep their original position.
func (m *Model) CurrentPositions(original []geom.Vector3) []geom.Vector3 {
	out := make([]geom.Vector3, len(original))
	for v, p := range original {
		plateID := m.VertexPlate[v]
		plate, ok := m.Plates[plateID]
		if !ok {
			out[v] = p
			continue
		}
		out[v] = plate.CurrentPosition(p)
	}
	return out
}

// RecomputeCentroid recomputes a plate's centroid as the renormalised
// mean of its assigned vertices' current positions.
func (m *Model) RecomputeCentroid(plateID int, current []geom.Vector3) {
	p, ok := m.Plates[plateID]
	if !ok {
		return
	}
	var sum geom.Vector3
	count := 0
	for v, id := range m.VertexPlate {
		if id != plateID {
			continue
		}
		sum = sum.Add(current[v])
		count++
	}
	if count == 0 {
		return
	}
	p.Centroid = sum.Normalize()
}

// NextPlateID previews the id the next AddPlate/rift fragment will
// receive, without consuming it.
func (m *Model) NextPlateID() int { return m.nextID }

// reserveID consumes and returns the next monotonically increasing id.
func (m *Model) reserveID() int {
	id := m.nextID
	m.nextID++
	return id
}

// AssignByGeodesicVoronoi reassigns each vertex whose current plate is in
// onlyFrom (or, if reassignAll is true, every vertex) to the plate whose
// seed centroid is angularly closest, used after rifting to seat new
// fragments (§4.3, §4.8).
func (m *Model) AssignByGeodesicVoronoi(current []geom.Vector3, seeds map[int]geom.Vector3, reassignAll bool, onlyFrom map[int]bool) {
	for v, pos := range current {
		if !reassignAll {
			if !onlyFrom[m.VertexPlate[v]] {
				continue
			}
		}
		best := -1
		bestAngle := math.Inf(1)
		for plateID, seed := range seeds {
			a := geom.GreatCircleAngle(pos, seed)
			if a < bestAngle {
				bestAngle = a
				best = plateID
			}
		}
		if best >= 0 {
			m.VertexPlate[v] = best
		}
	}
}
