package spatial

import "math"

// Quadtree is a 2D spatial partition answering range/nearest queries in
// better-than-linear average time. Entities are referenced by index into
// the caller's own entity slice (not pointers), matching this package's
// grid.go convention of preallocated, GC-light storage.
//
// MaxObjects entries live in a node before it splits; MaxDepth bounds
// recursion so pathological clustering cannot blow the stack.
type Quadtree struct {
	maxObjects int
	maxDepth   int

	bounds   Rect
	depth    int
	entries  []qtEntry // objects held directly at this node
	children [4]*Quadtree // nil until split
	split    bool
}

// Rect is an axis-aligned bounding box, min-inclusive/max-exclusive on
// neither edge (insert/query treat bounds as inclusive on both ends).
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

func (r Rect) intersects(o Rect) bool {
	return r.X <= o.X+o.W && r.X+r.W >= o.X && r.Y <= o.Y+o.H && r.Y+r.H >= o.Y
}

func (r Rect) intersectsCircle(cx, cy, radius float64) bool {
	closestX := clamp(cx, r.X, r.X+r.W)
	closestY := clamp(cy, r.Y, r.Y+r.H)
	dx, dy := cx-closestX, cy-closestY
	return dx*dx+dy*dy <= radius*radius
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type qtEntry struct {
	ID   uint32
	X, Y float64
}

// NewQuadtree creates the root node covering the given world bounds.
func NewQuadtree(bounds Rect, maxObjects, maxDepth int) *Quadtree {
	if maxObjects < 1 {
		maxObjects = 10
	}
	if maxDepth < 1 {
		maxDepth = 8
	}
	return &Quadtree{
		maxObjects: maxObjects,
		maxDepth:   maxDepth,
		bounds:     bounds,
		entries:    make([]qtEntry, 0, maxObjects),
	}
}

// Insert adds an entity at (x,y). Returns false if out-of-bounds.
func (q *Quadtree) Insert(id uint32, x, y float64) bool {
	if !q.bounds.contains(x, y) {
		return false
	}
	return q.insert(id, x, y)
}

func (q *Quadtree) insert(id uint32, x, y float64) bool {
	if q.split {
		for _, c := range q.children {
			if c.bounds.contains(x, y) {
				return c.insert(id, x, y)
			}
		}
		// Straddles a child boundary exactly on the split lines; keep at parent.
		q.entries = append(q.entries, qtEntry{id, x, y})
		return true
	}

	q.entries = append(q.entries, qtEntry{id, x, y})

	if len(q.entries) > q.maxObjects && q.depth < q.maxDepth {
		q.subdivide()
	}
	return true
}

func (q *Quadtree) subdivide() {
	hw, hh := q.bounds.W/2, q.bounds.H/2
	x, y := q.bounds.X, q.bounds.Y
	quads := [4]Rect{
		{x, y, hw, hh},
		{x + hw, y, hw, hh},
		{x, y + hh, hw, hh},
		{x + hw, y + hh, hw, hh},
	}
	for i, r := range quads {
		q.children[i] = &Quadtree{
			maxObjects: q.maxObjects,
			maxDepth:   q.maxDepth,
			bounds:     r,
			depth:      q.depth + 1,
			entries:    make([]qtEntry, 0, q.maxObjects),
		}
	}
	q.split = true

	remaining := q.entries[:0]
	for _, e := range q.entries {
		placed := false
		for _, c := range q.children {
			if c.bounds.contains(e.X, e.Y) {
				c.insert(e.ID, e.X, e.Y)
				placed = true
				break
			}
		}
		if !placed {
			// Straddles boundaries exactly; keep at this (now-split) node.
			remaining = append(remaining, e)
		}
	}
	q.entries = remaining
}

// Remove deletes the entity with the given id at approximately (x,y).
// Returns false if not present. update_position is remove-then-insert.
func (q *Quadtree) Remove(id uint32, x, y float64) bool {
	if !q.bounds.contains(x, y) {
		return q.removeAnywhere(id)
	}
	return q.remove(id, x, y)
}

func (q *Quadtree) remove(id uint32, x, y float64) bool {
	for i, e := range q.entries {
		if e.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	if q.split {
		for _, c := range q.children {
			if c.bounds.contains(x, y) {
				if c.remove(id, x, y) {
					return true
				}
			}
		}
		// Fall back to scanning all children in case of float drift across edges.
		for _, c := range q.children {
			if c.remove(id, x, y) {
				return true
			}
		}
	}
	return false
}

func (q *Quadtree) removeAnywhere(id uint32) bool {
	for i, e := range q.entries {
		if e.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	if q.split {
		for _, c := range q.children {
			if c.removeAnywhere(id) {
				return true
			}
		}
	}
	return false
}

// UpdatePosition removes the entity from its old position and reinserts
// at the new one.
func (q *Quadtree) UpdatePosition(id uint32, oldX, oldY, newX, newY float64) bool {
	q.Remove(id, oldX, oldY)
	return q.Insert(id, newX, newY)
}

// QueryRange appends every entity whose point lies within rect into out,
// returning the extended slice (caller-reusable buffer).
func (q *Quadtree) QueryRange(rect Rect, out []uint32) []uint32 {
	if !q.bounds.intersects(rect) {
		return out
	}
	for _, e := range q.entries {
		if rect.contains(e.X, e.Y) {
			out = append(out, e.ID)
		}
	}
	if q.split {
		for _, c := range q.children {
			out = c.QueryRange(rect, out)
		}
	}
	return out
}

// QueryCircle appends every entity within radius of (cx,cy) using a
// bounding-box prune followed by an exact Euclidean filter.
func (q *Quadtree) QueryCircle(cx, cy, radius float64, out []uint32) []uint32 {
	if !q.bounds.intersectsCircle(cx, cy, radius) {
		return out
	}
	r2 := radius * radius
	for _, e := range q.entries {
		dx, dy := e.X-cx, e.Y-cy
		if dx*dx+dy*dy <= r2 {
			out = append(out, e.ID)
		}
	}
	if q.split {
		for _, c := range q.children {
			out = c.QueryCircle(cx, cy, radius, out)
		}
	}
	return out
}

// NearestResult is one entry of a query_nearest result.
type NearestResult struct {
	ID       uint32
	Distance float64
}

// QueryNearest returns the k nearest entities to (cx,cy), sorted ascending
// by distance. Simple for small k (combat candidate pools are <= a few
// hundred entries): gathers a generous radius ring and sorts, expanding the
// ring until k candidates are found or the whole tree has been scanned.
func (q *Quadtree) QueryNearest(cx, cy float64, k int) []NearestResult {
	var all []qtEntry
	q.collectAll(&all)

	results := make([]NearestResult, 0, len(all))
	for _, e := range all {
		dx, dy := e.X-cx, e.Y-cy
		results = append(results, NearestResult{e.ID, dx*dx + dy*dy})
	}
	insertionSortByDist(results)
	for i := range results {
		results[i].Distance = sqrt(results[i].Distance)
	}
	if len(results) > k {
		results = results[:k]
	}
	return results
}

func (q *Quadtree) collectAll(out *[]qtEntry) {
	*out = append(*out, q.entries...)
	if q.split {
		for _, c := range q.children {
			c.collectAll(out)
		}
	}
}

func insertionSortByDist(r []NearestResult) {
	for i := 1; i < len(r); i++ {
		key := r[i]
		j := i - 1
		for j >= 0 && r[j].Distance > key.Distance {
			r[j+1] = r[j]
			j--
		}
		r[j+1] = key
	}
}

func sqrt(v float64) float64 {
	return math.Sqrt(v)
}

// Clear empties the tree back to an unsplit root, reusing the allocation.
func (q *Quadtree) Clear() {
	q.entries = q.entries[:0]
	q.split = false
	q.children = [4]*Quadtree{}
}

// Count returns the total number of entries in the tree, used to verify the
// spatial index stays in sync with the living unit count.
func (q *Quadtree) Count() int {
	n := len(q.entries)
	if q.split {
		for _, c := range q.children {
			n += c.Count()
		}
	}
	return n
}
