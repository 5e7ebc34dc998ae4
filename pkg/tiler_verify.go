package pkg

import (
	"errors"
	"fmt"

	"github.com/ecopia-map/surface_tiler/internal/geometry"
	"github.com/ecopia-map/surface_tiler/internal/levels"
	"github.com/ecopia-map/surface_tiler/internal/quadtree"
	"github.com/golang/glog"
)

var ErrInvalidTiles = errors.New("tile verification failed")

// Checks the leaf tiles of a frame: each tile belongs to the level set, holds at least one shape, only holds
// shapes that intersect it and appears once. Returns every problem found.
func VerifyTiles(tiles []*quadtree.SurfaceShapeTile, levelSet *levels.LevelSet) error {
	var problems []error
	seen := make(map[quadtree.TileKey]struct{}, len(tiles))

	for i, tile := range tiles {
		if tile == nil {
			problems = append(problems, fmt.Errorf("tile %d is nil", i))
			continue
		}

		key := tile.TileKey()
		if _, ok := seen[tile.Key()]; ok {
			problems = append(problems, fmt.Errorf("tile %s emitted twice", key))
		}
		seen[tile.Key()] = struct{}{}

		level := tile.GetLevel()
		if level == nil || levelSet == nil || levelSet.Level(level.LevelNumber) != level {
			problems = append(problems, fmt.Errorf("tile %s does not belong to the level set", key))
		}

		if !geometry.FullSphere.Contains(tile.GetSector()) {
			problems = append(problems, fmt.Errorf("tile %s sector %v outside the globe", key, tile.GetSector()))
		}

		if !tile.HasShapes() {
			problems = append(problems, fmt.Errorf("tile %s has no shapes", key))
		}

		for _, p := range tile.GetShapes() {
			if !p.Intersects(tile.GetSector()) {
				problems = append(problems, fmt.Errorf("tile %s holds shape %q outside its sector", key, p.Shape.DisplayName()))
			}
		}
	}

	if len(problems) > 0 {
		for _, p := range problems {
			glog.Warning(p)
		}
		return errors.Join(append([]error{ErrInvalidTiles}, problems...)...)
	}

	glog.V(1).Infof("verified %d tiles", len(tiles))
	return nil
}
