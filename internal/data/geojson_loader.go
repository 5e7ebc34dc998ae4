package data

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ecopia-map/surface_tiler/internal/geometry"
	"github.com/ecopia-map/surface_tiler/internal/shapes"
	"github.com/golang/glog"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/simplify"
)

var ErrUnsupportedFeature = errors.New("unsupported feature")

const (
	ShapePolygon   = "polygon"
	ShapePolyline  = "polyline"
	ShapeCircle    = "circle"
	ShapeEllipse   = "ellipse"
	ShapeRectangle = "rectangle"
	ShapeSector    = "sector"
)

// Contains the defaults applied to the loaded features
type LoaderOptions struct {
	PathType          geometry.PathType // Path type of features without a pathType property
	EdgeTolerance     float64           // Edge tolerance of features without an edgeTolerance property
	SimplifyThreshold float64           // Douglas-Peucker threshold in degrees, 0 disables simplification
}

func DefaultLoaderOptions() *LoaderOptions {
	return &LoaderOptions{
		PathType:      geometry.GreatCircle,
		EdgeTolerance: shapes.DefaultEdgeTolerance,
	}
}

type ShapeLoader interface {
	LoadShapes(filePath string) ([]shapes.Shape, error)
}

type GeoJSONLoader struct {
	options *LoaderOptions
}

func NewGeoJSONLoader(options *LoaderOptions) *GeoJSONLoader {
	if options == nil {
		options = DefaultLoaderOptions()
	}
	return &GeoJSONLoader{options: options}
}

// Reads a GeoJSON FeatureCollection, or a single Feature, and converts every feature into surface shapes
func (l *GeoJSONLoader) LoadShapes(filePath string) ([]shapes.Shape, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	result, err := l.DecodeShapes(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return result, nil
}

func (l *GeoJSONLoader) DecodeShapes(content []byte) ([]shapes.Shape, error) {
	fc, err := geojson.UnmarshalFeatureCollection(content)
	if err != nil || fc.Type != "FeatureCollection" {
		feature, ferr := geojson.UnmarshalFeature(content)
		if ferr != nil {
			if err != nil {
				return nil, err
			}
			return nil, ferr
		}
		fc = geojson.NewFeatureCollection()
		fc.Append(feature)
	}

	var result []shapes.Shape
	for i, f := range fc.Features {
		decoded, err := l.decodeFeature(f, i)
		if err != nil {
			glog.Warningf("skipping feature %d: %v", i, err)
			continue
		}
		result = append(result, decoded...)
	}

	return result, nil
}

func (l *GeoJSONLoader) decodeFeature(f *geojson.Feature, index int) ([]shapes.Shape, error) {
	if f == nil || f.Geometry == nil {
		return nil, fmt.Errorf("%w: missing geometry", ErrUnsupportedFeature)
	}

	props := f.Properties
	if props == nil {
		props = geojson.Properties{}
	}

	geom := f.Geometry
	if l.options.SimplifyThreshold > 0 {
		geom = simplify.DouglasPeucker(l.options.SimplifyThreshold).Simplify(orb.Clone(geom))
	}

	kind := strings.ToLower(props.MustString("shape", ""))
	if kind == "" {
		kind = inferShapeKind(geom)
	}

	attributes := decodeAttributes(props)

	var result []shapes.Shape
	switch kind {
	case ShapePolygon:
		for _, p := range polygonsOf(geom) {
			result = append(result, shapes.NewPolygon(polygonBoundaries(p), attributes.Copy()))
		}
	case ShapePolyline:
		for _, ls := range lineStringsOf(geom) {
			result = append(result, shapes.NewPolyline(lineLocations(ls), attributes.Copy()))
		}
	case ShapeCircle:
		center, ok := geom.(orb.Point)
		radius := props.MustFloat64("radius", 0)
		if !ok || radius <= 0 {
			return nil, fmt.Errorf("%w: circle needs a point and a positive radius", ErrUnsupportedFeature)
		}
		result = append(result, shapes.NewCircle(pointLocation(center), radius, attributes))
	case ShapeEllipse:
		center, ok := geom.(orb.Point)
		major := props.MustFloat64("majorRadius", 0)
		minor := props.MustFloat64("minorRadius", major)
		if !ok || major <= 0 || minor <= 0 {
			return nil, fmt.Errorf("%w: ellipse needs a point and positive radii", ErrUnsupportedFeature)
		}
		e := shapes.NewEllipse(pointLocation(center), major, minor, props.MustFloat64("heading", 0), attributes)
		if theta := props.MustFloat64("theta", 0); theta != 0 {
			e.SetTheta(theta)
		}
		if intervals := props.MustInt("intervals", 0); intervals != 0 {
			e.SetIntervals(intervals)
		}
		result = append(result, e)
	case ShapeRectangle:
		center, ok := geom.(orb.Point)
		width := props.MustFloat64("width", 0)
		height := props.MustFloat64("height", 0)
		if !ok || width <= 0 || height <= 0 {
			return nil, fmt.Errorf("%w: rectangle needs a point and a positive size", ErrUnsupportedFeature)
		}
		result = append(result, shapes.NewRectangle(pointLocation(center), width, height, props.MustFloat64("heading", 0), attributes))
	case ShapeSector:
		b := geom.Bound()
		sector := geometry.NewSector(b.Min.Lat(), b.Max.Lat(), b.Min.Lon(), b.Max.Lon())
		result = append(result, shapes.NewSectorShape(sector, attributes))
	default:
		return nil, fmt.Errorf("%w: shape %q for %s geometry", ErrUnsupportedFeature, kind, geom.GeoJSONType())
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("%w: empty %s geometry", ErrUnsupportedFeature, geom.GeoJSONType())
	}

	name := props.MustString("name", fmt.Sprintf("feature-%d", index))
	for i, s := range result {
		shapeName := name
		if len(result) > 1 {
			shapeName = fmt.Sprintf("%s#%d", name, i)
		}
		l.applyCommonProperties(s, props, shapeName)
	}

	return result, nil
}

// setters shared by every shape type
type configurableShape interface {
	SetDisplayName(name string)
	SetPathType(pathType geometry.PathType)
	SetEdgeTolerance(tolerance float64)
	SetEnabled(enabled bool)
}

func (l *GeoJSONLoader) applyCommonProperties(s shapes.Shape, props geojson.Properties, name string) {
	c, ok := s.(configurableShape)
	if !ok {
		return
	}

	c.SetDisplayName(name)

	pathType := geometry.ParsePathType(props.MustString("pathType", ""))
	if pathType == "" {
		pathType = l.options.PathType
	}
	if pathType != "" {
		c.SetPathType(pathType)
	}

	c.SetEdgeTolerance(props.MustFloat64("edgeTolerance", l.options.EdgeTolerance))

	if !props.MustBool("enabled", true) {
		c.SetEnabled(false)
	}
}

func decodeAttributes(props geojson.Properties) *shapes.Attributes {
	attributes := shapes.DefaultAttributes()
	attributes.DrawInterior = props.MustBool("drawInterior", attributes.DrawInterior)
	attributes.DrawOutline = props.MustBool("drawOutline", attributes.DrawOutline)
	attributes.OutlineWidth = props.MustFloat64("outlineWidth", attributes.OutlineWidth)
	attributes.OutlineStipplePattern = uint16(props.MustInt("stipplePattern", int(attributes.OutlineStipplePattern)))
	attributes.OutlineStippleFactor = props.MustInt("stippleFactor", attributes.OutlineStippleFactor)
	return attributes
}

func inferShapeKind(geom orb.Geometry) string {
	switch geom.(type) {
	case orb.Polygon, orb.MultiPolygon, orb.Ring:
		return ShapePolygon
	case orb.LineString, orb.MultiLineString:
		return ShapePolyline
	case orb.Bound:
		return ShapeSector
	}
	return ""
}

func polygonsOf(geom orb.Geometry) []orb.Polygon {
	switch g := geom.(type) {
	case orb.Polygon:
		return []orb.Polygon{g}
	case orb.MultiPolygon:
		return g
	case orb.Ring:
		return []orb.Polygon{{g}}
	}
	return nil
}

func lineStringsOf(geom orb.Geometry) []orb.LineString {
	switch g := geom.(type) {
	case orb.LineString:
		return []orb.LineString{g}
	case orb.MultiLineString:
		return g
	}
	return nil
}

func pointLocation(p orb.Point) geometry.Location {
	return geometry.NewLocation(p.Lat(), p.Lon())
}

func lineLocations(ls orb.LineString) []geometry.Location {
	locations := make([]geometry.Location, len(ls))
	for i, p := range ls {
		locations[i] = pointLocation(p)
	}
	return locations
}

// Converts the rings of a polygon into boundaries, dropping the closing point that repeats the first one
func polygonBoundaries(p orb.Polygon) [][]geometry.Location {
	boundaries := make([][]geometry.Location, 0, len(p))
	for _, ring := range p {
		points := []orb.Point(ring)
		if len(points) > 1 && points[0].Equal(points[len(points)-1]) {
			points = points[:len(points)-1]
		}
		boundaries = append(boundaries, lineLocations(points))
	}
	return boundaries
}
