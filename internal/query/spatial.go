package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Spatial filter names, in the order their clauses are emitted.
const (
	FilterWithin     = "within"
	FilterIntersects = "intersects"
	FilterContains   = "contains"
)

var spatialFunctions = []struct {
	field    string
	function string
}{
	{FilterWithin, "ST_Within"},
	{FilterIntersects, "ST_Intersects"},
	{FilterContains, "ST_Contains"},
}

type spatialClause struct {
	function string
	geometry string // canonical GeoJSON, always bound
}

// Spatial holds the decoded within/intersects/contains filters of a request.
// The zero value filters nothing.
type Spatial struct {
	clauses []spatialClause
}

// ParseSpatial decodes the spatial filters present in values. Each must be
// a GeoJSON geometry object.
func ParseSpatial(values url.Values) (Spatial, error) {
	var s Spatial
	for _, f := range spatialFunctions {
		if !values.Has(f.field) {
			continue
		}
		raw := values.Get(f.field)
		if raw == "" {
			return Spatial{}, &MalformedFilterError{Field: f.field, Reason: "geometry is empty"}
		}
		g, err := geojson.UnmarshalGeometry([]byte(raw))
		if err != nil {
			return Spatial{}, &MalformedFilterError{Field: f.field, Reason: err.Error()}
		}
		if g.Coordinates == nil && len(g.Geometries) == 0 {
			return Spatial{}, &MalformedFilterError{Field: f.field, Reason: "geometry has no coordinates"}
		}
		if err := validGeometry(g.Geometry()); err != nil {
			return Spatial{}, &MalformedFilterError{Field: f.field, Reason: err.Error()}
		}
		canonical, err := json.Marshal(g)
		if err != nil {
			return Spatial{}, &MalformedFilterError{Field: f.field, Reason: err.Error()}
		}
		s.clauses = append(s.clauses, spatialClause{function: f.function, geometry: string(canonical)})
	}
	return s, nil
}

// validGeometry rejects shapes PostGIS would refuse to build: line strings
// need two points, rings four with the last closing on the first.
func validGeometry(g orb.Geometry) error {
	switch g := g.(type) {
	case orb.Point:
		return nil
	case orb.MultiPoint:
		if len(g) == 0 {
			return errors.New("multipoint has no points")
		}
	case orb.LineString:
		if len(g) < 2 {
			return fmt.Errorf("linestring has %d points, need at least 2", len(g))
		}
	case orb.MultiLineString:
		if len(g) == 0 {
			return errors.New("multilinestring has no lines")
		}
		for _, ls := range g {
			if err := validGeometry(ls); err != nil {
				return err
			}
		}
	case orb.Polygon:
		if len(g) == 0 {
			return errors.New("polygon has no rings")
		}
		for i, r := range g {
			if len(r) < 4 {
				return fmt.Errorf("ring %d has %d points, need at least 4", i, len(r))
			}
			if r[0] != r[len(r)-1] {
				return fmt.Errorf("ring %d is not closed", i)
			}
		}
	case orb.MultiPolygon:
		if len(g) == 0 {
			return errors.New("multipolygon has no polygons")
		}
		for _, p := range g {
			if err := validGeometry(p); err != nil {
				return err
			}
		}
	case orb.Collection:
		if len(g) == 0 {
			return errors.New("geometry collection is empty")
		}
		for _, c := range g {
			if err := validGeometry(c); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unsupported geometry %T", g)
	}
	return nil
}

// Empty reports whether no spatial filter is present.
func (s Spatial) Empty() bool { return len(s.clauses) == 0 }

// apply tests column, the geometry of the rows being returned, against
// every present filter.
func (s Spatial) apply(sb *selectBuilder, column string) {
	for _, c := range s.clauses {
		sb.cond(c.function + "(" + column + ", ST_SetSRID(ST_GeomFromGeoJSON(" + sb.p.bind(c.geometry) + "), 4326))")
	}
}
