package quadtree

import (
	"fmt"
	"math"

	"github.com/ecopia-map/surface_tiler/internal/geometry"
	"github.com/ecopia-map/surface_tiler/internal/globe"
	"github.com/ecopia-map/surface_tiler/internal/levels"
	"github.com/ecopia-map/surface_tiler/internal/scene"
	"github.com/golang/geo/r3"
	"github.com/shopspring/decimal"
)

// below this size in meters a cell is never split further
const minimumCellSize = 0.5

// Comparable identity of a tile within a level set
type TileKey struct {
	Level  int
	Row    int
	Column int
}

func (k TileKey) String() string {
	return fmt.Sprintf("%d.%d.%d", k.Level, k.Row, k.Column)
}

// A geographic cell of a level set. The extent and reference points are computed lazily by Update.
type Tile struct {
	Sector geometry.Sector
	Level  *levels.Level
	Row    int
	Column int

	extent          scene.BoundingSphere
	referencePoints []r3.Vector
	extentGlobe     *globe.Globe
}

func NewTile(sector geometry.Sector, level *levels.Level, row, column int) *Tile {
	return &Tile{
		Sector: sector,
		Level:  level,
		Row:    row,
		Column: column,
	}
}

func (t *Tile) Key() TileKey {
	return TileKey{Level: t.Level.LevelNumber, Row: t.Row, Column: t.Column}
}

// Textual key "level.row.column"
func (t *Tile) TileKey() string {
	return t.Key().String()
}

func (t *Tile) GetSector() geometry.Sector {
	return t.Sector
}

func (t *Tile) GetLevel() *levels.Level {
	return t.Level
}

func (t *Tile) GetRow() int {
	return t.Row
}

func (t *Tile) GetColumn() int {
	return t.Column
}

func (t *Tile) Extent() scene.BoundingSphere {
	return t.extent
}

// Splits the tile in four children at nextLevel: SW, SE, NW, NE
func (t *Tile) Subdivide(nextLevel *levels.Level) [4]*Tile {
	latMin := t.Sector.MinLatitude
	latMax := t.Sector.MaxLatitude
	latMid := t.Sector.CentroidLatitude()

	lonMin := t.Sector.MinLongitude
	lonMax := t.Sector.MaxLongitude
	lonMid := t.Sector.CentroidLongitude()

	row := 2 * t.Row
	col := 2 * t.Column

	return [4]*Tile{
		NewTile(geometry.NewSector(latMin, latMid, lonMin, lonMid), nextLevel, row, col),
		NewTile(geometry.NewSector(latMin, latMid, lonMid, lonMax), nextLevel, row, col+1),
		NewTile(geometry.NewSector(latMid, latMax, lonMin, lonMid), nextLevel, row+1, col),
		NewTile(geometry.NewSector(latMid, latMax, lonMid, lonMax), nextLevel, row+1, col+1),
	}
}

// Computes the extent and reference points of the tile on the given globe. Nothing is recomputed if the globe
// did not change since the last call.
func (t *Tile) Update(g *globe.Globe) {
	if t.extentGlobe == g && len(t.referencePoints) > 0 {
		return
	}

	s := t.Sector
	minLat, maxLat := s.MinLatitude, s.MaxLatitude
	minLon, maxLon := s.MinLongitude, s.MaxLongitude
	midLat, midLon := s.CentroidLatitude(), s.CentroidLongitude()

	sw := g.ComputePointFromLocation(minLat, minLon, 0)
	se := g.ComputePointFromLocation(minLat, maxLon, 0)
	nw := g.ComputePointFromLocation(maxLat, minLon, 0)
	ne := g.ComputePointFromLocation(maxLat, maxLon, 0)
	center := g.ComputePointFromLocation(midLat, midLon, 0)

	t.referencePoints = []r3.Vector{sw, se, nw, ne, center}

	// edge midpoints keep the sphere enclosing the bulge of large tiles
	samples := []r3.Vector{
		sw, se, nw, ne, center,
		g.ComputePointFromLocation(minLat, midLon, 0),
		g.ComputePointFromLocation(maxLat, midLon, 0),
		g.ComputePointFromLocation(midLat, minLon, 0),
		g.ComputePointFromLocation(midLat, maxLon, 0),
	}
	t.extent = scene.NewBoundingSphere(samples)
	t.extentGlobe = g
}

// Returns the distance from point to the nearest reference point of the tile. Update must have been called.
func (t *Tile) DistanceTo(point r3.Vector) float64 {
	distance := math.Inf(1)
	for _, p := range t.referencePoints {
		distance = math.Min(distance, p.Distance(point))
	}
	return distance
}

// Returns true if the texels of the tile would appear larger than splitScale pixels on screen
func (t *Tile) MustSubdivide(dc *scene.DrawContext, splitScale float64) bool {
	t.Update(dc.Globe)

	cellSize := dc.Globe.EquatorialRadius * t.Level.TexelSize
	distance := t.DistanceTo(dc.EyePoint())
	pixelSize := dc.PixelSizeAtDistance(distance)

	return cellSize > math.Max(splitScale*pixelSize, minimumCellSize)
}

func (t *Tile) IntersectsFrustum(frustum scene.Frustum) bool {
	return t.extent.IntersectsFrustum(frustum)
}

// Row of the tile containing latitude at the given delta, measured from originLatitude
func ComputeRow(delta, latitude, originLatitude float64) int {
	row := int(math.Floor((latitude - originLatitude) / delta))
	// the north edge of the grid belongs to the last row
	if latitude == 90 && row > 0 {
		row--
	}
	return row
}

// Column of the tile containing longitude at the given delta, measured from originLongitude
func ComputeColumn(delta, longitude, originLongitude float64) int {
	col := int(math.Floor((longitude - originLongitude) / delta))
	if longitude == 180 && col > 0 {
		col--
	}
	return col
}

func ComputeLastRow(delta, maxLatitude, originLatitude float64) int {
	row := int(math.Ceil((maxLatitude-originLatitude)/delta - 1))
	if row < 0 {
		return 0
	}
	return row
}

func ComputeLastColumn(delta, maxLongitude, originLongitude float64) int {
	col := int(math.Ceil((maxLongitude-originLongitude)/delta - 1))
	if col < 0 {
		return 0
	}
	return col
}

// Creates the tiles of level that cover sector. Tile edges are computed in decimal so that adjacent tiles share
// exactly the same boundaries.
func CreateTilesForLevel(level *levels.Level, sector geometry.Sector, origin geometry.Location) []*Tile {
	if level == nil || sector.IsEmpty() {
		return nil
	}

	deltaLat := decimal.NewFromFloat(level.TileDelta.Latitude)
	deltaLon := decimal.NewFromFloat(level.TileDelta.Longitude)
	originLat := decimal.NewFromFloat(origin.Latitude)
	originLon := decimal.NewFromFloat(origin.Longitude)

	firstRow := ComputeRow(level.TileDelta.Latitude, sector.MinLatitude, origin.Latitude)
	lastRow := ComputeLastRow(level.TileDelta.Latitude, sector.MaxLatitude, origin.Latitude)
	firstCol := ComputeColumn(level.TileDelta.Longitude, sector.MinLongitude, origin.Longitude)
	lastCol := ComputeLastColumn(level.TileDelta.Longitude, sector.MaxLongitude, origin.Longitude)

	tiles := make([]*Tile, 0, (lastRow-firstRow+1)*(lastCol-firstCol+1))
	for row := firstRow; row <= lastRow; row++ {
		minLat, _ := originLat.Add(deltaLat.Mul(decimal.NewFromInt(int64(row)))).Float64()
		maxLat, _ := originLat.Add(deltaLat.Mul(decimal.NewFromInt(int64(row + 1)))).Float64()

		for col := firstCol; col <= lastCol; col++ {
			minLon, _ := originLon.Add(deltaLon.Mul(decimal.NewFromInt(int64(col)))).Float64()
			maxLon, _ := originLon.Add(deltaLon.Mul(decimal.NewFromInt(int64(col + 1)))).Float64()

			tiles = append(tiles, NewTile(geometry.NewSector(minLat, maxLat, minLon, maxLon), level, row, col))
		}
	}

	return tiles
}
