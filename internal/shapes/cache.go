package shapes

import (
	"github.com/ecopia-map/surface_tiler/internal/globe"
)

type cacheEntry struct {
	prepared  *Prepared
	lastFrame uint64
}

// Prepared geometry keyed by shape identity. An entry is reused as long as the shape revision, path type, edge
// tolerance and globe are unchanged. Not safe for concurrent use.
type GeometryCache struct {
	entries map[Shape]*cacheEntry
}

func NewGeometryCache() *GeometryCache {
	return &GeometryCache{entries: make(map[Shape]*cacheEntry)}
}

// Returns the prepared geometry of shape if it is still current, marking it as used in frame
func (c *GeometryCache) Lookup(shape Shape, g *globe.Globe, frame uint64) (*Prepared, bool) {
	entry, ok := c.entries[shape]
	if !ok || !entry.prepared.IsCurrent(g) {
		return nil, false
	}
	entry.lastFrame = frame
	return entry.prepared, true
}

// Lists the shapes whose geometry is missing or outdated, in the given order
func (c *GeometryCache) Stale(shapes []Shape, g *globe.Globe) []Shape {
	var stale []Shape
	for _, s := range shapes {
		entry, ok := c.entries[s]
		if !ok || !entry.prepared.IsCurrent(g) {
			stale = append(stale, s)
		}
	}
	return stale
}

// Stores prepared geometry, replacing any previous entry of the same shape
func (c *GeometryCache) Store(p *Prepared, frame uint64) {
	c.entries[p.Shape] = &cacheEntry{prepared: p, lastFrame: frame}
}

// Returns the cached geometry of shape, preparing and storing it first when needed. The second return value is
// true on a cache hit.
func (c *GeometryCache) Get(shape Shape, g *globe.Globe, frame uint64) (*Prepared, bool) {
	if p, ok := c.Lookup(shape, g, frame); ok {
		return p, true
	}
	p := Prepare(shape, g)
	c.Store(p, frame)
	return p, false
}

// Removes the entries not used since before frame and returns how many were removed
func (c *GeometryCache) Prune(frame uint64) int {
	removed := 0
	for shape, entry := range c.entries {
		if entry.lastFrame < frame {
			delete(c.entries, shape)
			removed++
		}
	}
	return removed
}

func (c *GeometryCache) Len() int {
	return len(c.entries)
}

func (c *GeometryCache) Clear() {
	c.entries = make(map[Shape]*cacheEntry)
}
