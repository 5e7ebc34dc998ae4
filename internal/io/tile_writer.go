package io

import (
	"encoding/json"
	"os"
	"path"

	"github.com/ecopia-map/surface_tiler/internal/geometry"
	"github.com/ecopia-map/surface_tiler/internal/quadtree"
	"github.com/ecopia-map/surface_tiler/internal/shapes"
	"github.com/ecopia-map/surface_tiler/tools"
)

const TilesFileName = "tiles.json"

type Asset struct {
	Version   string `json:"version"`
	Generator string `json:"generator"`
}

// Description of a single frame worth of leaf tiles
type TileDocument struct {
	Asset      Asset          `json:"asset"`
	Frame      uint64         `json:"frame"`
	Projection string         `json:"projection"`
	NumLevels  int            `json:"numLevels"`
	Tiles      []TileEntry    `json:"tiles"`
	Shapes     []ShapeSummary `json:"shapes"`
}

type TileEntry struct {
	Key    string     `json:"key"`
	Level  int        `json:"level"`
	Row    int        `json:"row"`
	Column int        `json:"column"`
	Sector [4]float64 `json:"sector"` // minLat, maxLat, minLon, maxLon
	Shapes []string   `json:"shapes"`
}

type ShapeSummary struct {
	Name          string       `json:"name"`
	PathType      string       `json:"pathType"`
	Pole          string       `json:"pole"`
	Locations     int          `json:"locations"`
	Sectors       [][4]float64 `json:"sectors"`
	InteriorLoops int          `json:"interiorLoops"`
	OutlinePaths  int          `json:"outlinePaths"`
	LineDash      []float64    `json:"lineDash,omitempty"`
}

func sectorArray(s geometry.Sector) [4]float64 {
	return [4]float64{s.MinLatitude, s.MaxLatitude, s.MinLongitude, s.MaxLongitude}
}

// Builds the document of a frame. Shapes shared by several tiles are summarized once, in order of first appearance.
func NewTileDocument(tiles []*quadtree.SurfaceShapeTile, frame uint64, projection string, numLevels int) *TileDocument {
	doc := &TileDocument{
		Asset:      Asset{Version: "1.0", Generator: "surface_tiler"},
		Frame:      frame,
		Projection: projection,
		NumLevels:  numLevels,
		Tiles:      make([]TileEntry, 0, len(tiles)),
		Shapes:     make([]ShapeSummary, 0),
	}

	seen := make(map[shapes.Shape]struct{})
	for _, tile := range tiles {
		entry := newTileEntry(tile)
		for _, p := range tile.GetShapes() {
			entry.Shapes = append(entry.Shapes, p.Shape.DisplayName())
			if _, ok := seen[p.Shape]; ok {
				continue
			}
			seen[p.Shape] = struct{}{}
			doc.Shapes = append(doc.Shapes, summarize(p))
		}
		doc.Tiles = append(doc.Tiles, entry)
	}

	return doc
}

func newTileEntry(node quadtree.IShapeNode) TileEntry {
	return TileEntry{
		Key:    node.TileKey(),
		Level:  node.GetLevel().LevelNumber,
		Row:    node.GetRow(),
		Column: node.GetColumn(),
		Sector: sectorArray(node.GetSector()),
		Shapes: make([]string, 0, len(node.GetShapes())),
	}
}

func summarize(p *shapes.Prepared) ShapeSummary {
	summary := ShapeSummary{
		Name:          p.Shape.DisplayName(),
		PathType:      p.PathType.String(),
		Pole:          p.Pole.String(),
		Locations:     len(p.Locations),
		Sectors:       make([][4]float64, 0, len(p.Sectors)),
		InteriorLoops: len(p.InteriorGeometry),
		OutlinePaths:  len(p.OutlineGeometry),
	}
	for _, s := range p.Sectors {
		summary.Sectors = append(summary.Sectors, sectorArray(s))
	}
	if attrs := p.Shape.Attributes(); attrs != nil {
		summary.LineDash = attrs.OutlineDash()
	}
	return summary
}

// Writes the tiles.json file of the document in the given folder, creating the folder if needed
func WriteTileDocument(folder string, doc *TileDocument) (string, error) {
	err := tools.CreateDirectoryIfDoesNotExist(folder)
	if err != nil {
		return "", err
	}

	// Outputting a formatted json file
	data, err := json.MarshalIndent(doc, "", "\t")
	if err != nil {
		return "", err
	}

	file := path.Join(folder, TilesFileName)
	err = os.WriteFile(file, data, 0666)
	if err != nil {
		return "", err
	}

	return file, nil
}
