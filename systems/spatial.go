// Package systems implements the per-tick simulation systems: the spatial
// index, motion, collision resolution and respawning.
package systems

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Region is an axis-aligned box with its origin at the top-left corner.
type Region struct {
	X, Y          float64
	Width, Height float64
}

// RegionAround returns the square of the given side centred on c.
func RegionAround(c r2.Vec, side float64) Region {
	return Region{X: c.X - side/2, Y: c.Y - side/2, Width: side, Height: side}
}

// Contains reports whether p lies inside the region. All four edges are
// inclusive.
func (r Region) Contains(p r2.Vec) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Intersects reports whether the two closed boxes share at least one point.
func (r Region) Intersects(o Region) bool {
	return r.X <= o.X+o.Width && o.X <= r.X+r.Width &&
		r.Y <= o.Y+o.Height && o.Y <= r.Y+r.Height
}

// Quadrants splits the region into four equal boxes in NW, NE, SW, SE order.
func (r Region) Quadrants() [4]Region {
	w := r.Width / 2
	h := r.Height / 2
	return [4]Region{
		{X: r.X, Y: r.Y, Width: w, Height: h},
		{X: r.X + w, Y: r.Y, Width: w, Height: h},
		{X: r.X, Y: r.Y + h, Width: w, Height: h},
		{X: r.X + w, Y: r.Y + h, Width: w, Height: h},
	}
}

// DefaultCapacity is the number of entries a node holds before subdividing.
const DefaultCapacity = 4

// DefaultMaxDepth bounds subdivision. Nodes at this depth grow past capacity.
const DefaultMaxDepth = 8

// ErrInvalidTree is wrapped by NewQuadTree for malformed parameters.
var ErrInvalidTree = errors.New("invalid quadtree parameters")

const leaf = -1

type quadEntry[T any] struct {
	value T
	pos   r2.Vec
}

type quadNode[T any] struct {
	region   Region
	depth    int
	entries  []quadEntry[T]
	children int // index of the NW child in the arena, or leaf
}

// QuadTree is a region-splitting tree rebuilt from empty every tick.
//
// Nodes are allocated from a single arena slice and refer to their four
// children by the index of the first one (NW, NE, SW, SE are consecutive).
// Clear truncates the arena back to the root so node storage is reused
// across ticks.
type QuadTree[T comparable] struct {
	nodes    []quadNode[T]
	capacity int
	maxDepth int
	count    int
}

// NewQuadTree creates an empty tree covering region.
func NewQuadTree[T comparable](region Region, capacity, maxDepth int) (*QuadTree[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity %d must be positive", ErrInvalidTree, capacity)
	}
	if maxDepth < 0 {
		return nil, fmt.Errorf("%w: max depth %d must not be negative", ErrInvalidTree, maxDepth)
	}
	if !finite(region.X) || !finite(region.Y) || !(region.Width > 0) || !(region.Height > 0) ||
		!finite(region.Width) || !finite(region.Height) {
		return nil, fmt.Errorf("%w: region %vx%v at (%v, %v) must be finite with positive size",
			ErrInvalidTree, region.Width, region.Height, region.X, region.Y)
	}

	q := &QuadTree[T]{
		nodes:    make([]quadNode[T], 1, 1+4*capacity),
		capacity: capacity,
		maxDepth: maxDepth,
	}
	q.nodes[0] = quadNode[T]{
		region:   region,
		entries:  make([]quadEntry[T], 0, capacity),
		children: leaf,
	}
	return q, nil
}

// Region returns the area covered by the root.
func (q *QuadTree[T]) Region() Region {
	return q.nodes[0].region
}

// Insert stores value at pos. It returns false when pos lies outside the
// tree's region.
func (q *QuadTree[T]) Insert(value T, pos r2.Vec) bool {
	if !q.insert(0, value, pos) {
		return false
	}
	q.count++
	return true
}

func (q *QuadTree[T]) insert(i int, value T, pos r2.Vec) bool {
	n := &q.nodes[i]
	if !n.region.Contains(pos) {
		return false
	}

	if len(n.entries) < q.capacity || n.depth >= q.maxDepth {
		n.entries = append(n.entries, quadEntry[T]{value: value, pos: pos})
		return true
	}

	if n.children == leaf {
		q.subdivide(i)
	}

	// subdivide may have grown the arena; index again rather than reuse n.
	first := q.nodes[i].children
	for c := first; c < first+4; c++ {
		if q.insert(c, value, pos) {
			return true
		}
	}
	return false
}

// subdivide creates the four children of node i.
func (q *QuadTree[T]) subdivide(i int) {
	parent := q.nodes[i]
	first := len(q.nodes)

	for k, region := range parent.region.Quadrants() {
		child := quadNode[T]{
			region:   region,
			depth:    parent.depth + 1,
			children: leaf,
		}
		if idx := first + k; idx < cap(q.nodes) {
			// Reuse the entry buffer left behind by an earlier Clear.
			q.nodes = q.nodes[:idx+1]
			child.entries = q.nodes[idx].entries[:0]
			q.nodes[idx] = child
		} else {
			child.entries = make([]quadEntry[T], 0, q.capacity)
			q.nodes = append(q.nodes, child)
		}
	}

	q.nodes[i].children = first
}

// Query appends to out every stored value whose position lies inside region
// and returns the extended slice. Values held directly by a node come before
// those of its children, which are visited NW, NE, SW, SE.
func (q *QuadTree[T]) Query(region Region, out []T) []T {
	return q.query(0, region, out)
}

func (q *QuadTree[T]) query(i int, region Region, out []T) []T {
	n := &q.nodes[i]
	if !n.region.Intersects(region) {
		return out
	}

	for _, e := range n.entries {
		if region.Contains(e.pos) {
			out = append(out, e.value)
		}
	}

	if n.children != leaf {
		for c := n.children; c < n.children+4; c++ {
			out = q.query(c, region, out)
		}
	}
	return out
}

// Clear removes every entry and every child node, leaving the root an empty
// leaf.
func (q *QuadTree[T]) Clear() {
	for i := range q.nodes {
		clear(q.nodes[i].entries)
		q.nodes[i].entries = q.nodes[i].entries[:0]
	}
	q.nodes = q.nodes[:1]
	q.nodes[0].children = leaf
	q.count = 0
}

// Len returns the number of stored entries.
func (q *QuadTree[T]) Len() int {
	return q.count
}

// Nodes returns the number of live nodes, root included.
func (q *QuadTree[T]) Nodes() int {
	return len(q.nodes)
}

// Subdivided reports whether the root has children.
func (q *QuadTree[T]) Subdivided() bool {
	return q.nodes[0].children != leaf
}

// Depth returns the depth of the deepest live node (0 for a lone root).
func (q *QuadTree[T]) Depth() int {
	depth := 0
	for i := range q.nodes {
		depth = max(depth, q.nodes[i].depth)
	}
	return depth
}
