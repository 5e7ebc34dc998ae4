package levels

import (
	"errors"
	"fmt"

	"github.com/ecopia-map/surface_tiler/internal/geometry"
	"github.com/golang/geo/s1"
	"github.com/shopspring/decimal"
)

var ErrInvalidLevelSet = errors.New("invalid level set")

// A resolution level of a LevelSet
type Level struct {
	LevelNumber int
	TileDelta   geometry.Location // size in degrees of the tiles of the level
	TileWidth   int               // tile width in texels
	TileHeight  int               // tile height in texels
	TexelSize   float64           // size in radians of a texel, tileDelta.lat / tileHeight
	levelSet    *LevelSet
}

func (l *Level) IsFirstLevel() bool {
	return l.LevelNumber == 0
}

func (l *Level) IsLastLevel() bool {
	return l.levelSet != nil && l.levelSet.IsLastLevel(l.LevelNumber)
}

// Returns the next finer level or nil when l is the last one
func (l *Level) NextLevel() *Level {
	if l.levelSet == nil {
		return nil
	}
	return l.levelSet.Level(l.LevelNumber + 1)
}

func (l *Level) String() string {
	return fmt.Sprintf("level %d (%v x %v deg)", l.LevelNumber, l.TileDelta.Latitude, l.TileDelta.Longitude)
}

// A multi resolution pyramid covering a sector. Each level halves the tile delta of the previous one.
type LevelSet struct {
	Sector         geometry.Sector
	LevelZeroDelta geometry.Location
	NumLevels      int
	TileWidth      int
	TileHeight     int
	levels         []*Level
}

func NewLevelSet(sector geometry.Sector, levelZeroDelta geometry.Location, numLevels, tileWidth, tileHeight int) (*LevelSet, error) {
	if levelZeroDelta.Latitude <= 0 || levelZeroDelta.Longitude <= 0 {
		return nil, fmt.Errorf("%w: level zero delta %v must be positive", ErrInvalidLevelSet, levelZeroDelta)
	}
	if numLevels <= 0 {
		return nil, fmt.Errorf("%w: number of levels %d must be positive", ErrInvalidLevelSet, numLevels)
	}
	if tileWidth <= 0 || tileHeight <= 0 {
		return nil, fmt.Errorf("%w: tile size %dx%d must be positive", ErrInvalidLevelSet, tileWidth, tileHeight)
	}

	ls := &LevelSet{
		Sector:         sector,
		LevelZeroDelta: levelZeroDelta,
		NumLevels:      numLevels,
		TileWidth:      tileWidth,
		TileHeight:     tileHeight,
		levels:         make([]*Level, numLevels),
	}

	half := decimal.NewFromFloat(0.5)
	latDelta := decimal.NewFromFloat(levelZeroDelta.Latitude)
	lonDelta := decimal.NewFromFloat(levelZeroDelta.Longitude)

	for i := 0; i < numLevels; i++ {
		lat, _ := latDelta.Float64()
		lon, _ := lonDelta.Float64()

		ls.levels[i] = &Level{
			LevelNumber: i,
			TileDelta:   geometry.NewLocation(lat, lon),
			TileWidth:   tileWidth,
			TileHeight:  tileHeight,
			TexelSize:   (s1.Angle(lat) * s1.Degree).Radians() / float64(tileHeight),
			levelSet:    ls,
		}

		latDelta = latDelta.Mul(half)
		lonDelta = lonDelta.Mul(half)
	}

	return ls, nil
}

// Returns the level with the given number or nil if out of range
func (ls *LevelSet) Level(levelNumber int) *Level {
	if levelNumber < 0 || levelNumber >= len(ls.levels) {
		return nil
	}
	return ls.levels[levelNumber]
}

func (ls *LevelSet) FirstLevel() *Level {
	return ls.levels[0]
}

func (ls *LevelSet) LastLevel() *Level {
	return ls.levels[len(ls.levels)-1]
}

func (ls *LevelSet) IsLastLevel(levelNumber int) bool {
	return levelNumber == ls.NumLevels-1
}

// Returns the first level whose texel size is not larger than the given one, or the last level
func (ls *LevelSet) LevelForTexelSize(texelSize float64) *Level {
	for _, l := range ls.levels {
		if l.TexelSize <= texelSize {
			return l
		}
	}
	return ls.LastLevel()
}
