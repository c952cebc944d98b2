// Package feature shapes flat result rows into GeoJSON features.
package feature

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb/geojson"
)

// GeometryColumn is the column holding each row's GeoJSON geometry text.
const GeometryColumn = "geometry"

// ErrNotFound is returned when a single resource was asked for and no row came back.
var ErrNotFound = errors.New("resource not found")

// Row is one result row keyed by column name.
type Row map[string]interface{}

// FromRow turns a row into a Feature. Every column but the geometry becomes
// a property.
func FromRow(row Row) (*geojson.Feature, error) {
	f := &geojson.Feature{Type: "Feature", Properties: make(geojson.Properties, len(row))}
	for k, v := range row {
		if k == GeometryColumn {
			continue
		}
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		f.Properties[k] = v
	}

	var raw []byte
	switch g := row[GeometryColumn].(type) {
	case nil:
		return f, nil
	case string:
		raw = []byte(g)
	case []byte:
		raw = g
	default:
		return nil, fmt.Errorf("geometry column has unexpected type %T", g)
	}
	geometry, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return nil, fmt.Errorf("decode geometry: %w", err)
	}
	f.Geometry = geometry.Geometry()
	return f, nil
}

// Single shapes the first row as a Feature, or ErrNotFound when there are none.
func Single(rows []Row) (*geojson.Feature, error) {
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return FromRow(rows[0])
}

// Collection shapes rows, in order, as a FeatureCollection. No rows is an
// empty collection.
func Collection(rows []Row) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	for i, row := range rows {
		f, err := FromRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		fc.Append(f)
	}
	return fc, nil
}
