package boundary

import (
	"container/heap"

	"github.com/onuse/tectonica/internal/geom"
	"github.com/onuse/tectonica/internal/mesh"
)

// heapItem is a (distance, index) pair. The priority queue orders by
// distance first and index second, forcing a total order on ties so
// that traversal is reproducible regardless of map/slice iteration
// order (spec §4.4, grounded on katalvlaran-lvlath/dijkstra's
// container/heap discipline).
type heapItem struct {
	dist float64
	idx  int
}

type minHeap []heapItem

func (h minHeap) Len() int { return len(h) }
func (h minHeap) Less(i, j int) bool {
	if h[i].dist != h[j].dist {
		return h[i].dist < h[j].dist
	}
	return h[i].idx < h[j].idx
}
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)        { *h = append(*h, x.(heapItem)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// dijkstra computes, for every vertex, the geodesic distance (great-
// circle chord-to-arc length, spec §4.4) to the nearest seed. Unseeded
// or unreachable vertices are left at boundary.Inf.
func dijkstra(adj mesh.AdjacencyCSR, positions []geom.Vector3, planetRadiusKm float64, seeds []int, n int) []float64 {
	dist := make([]float64, n)
	for i := range dist {
		dist[i] = Inf
	}
	if len(seeds) == 0 {
		return dist
	}

	h := &minHeap{}
	heap.Init(h)
	for _, s := range seeds {
		if dist[s] == 0 {
			continue
		}
		dist[s] = 0
		heap.Push(h, heapItem{dist: 0, idx: s})
	}

	visited := make([]bool, n)
	for h.Len() > 0 {
		cur := heap.Pop(h).(heapItem)
		if visited[cur.idx] {
			continue
		}
		visited[cur.idx] = true

		for _, nb := range adj.Neighbors(cur.idx) {
			w := geom.GreatCircleDistance(positions[cur.idx], positions[nb], planetRadiusKm)
			nd := cur.dist + w
			if nd < dist[nb] {
				dist[nb] = nd
				heap.Push(h, heapItem{dist: nd, idx: nb})
			}
		}
	}
	return dist
}
