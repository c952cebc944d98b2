package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/RobertDurfee/Gerrymandering/internal/query"
	"github.com/lib/pq"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/text/unicode/norm"
)

// boundary is one row of a boundary table, geometry as GeoJSON text.
type boundary struct {
	values   []string // in the order of the level's columns
	geometry string
}

func readLayer(l Layer) (query.Level, []boundary, error) {
	level, _ := query.LevelByName(l.Kind)
	b, err := os.ReadFile(l.GeoJSON)
	if err != nil {
		return level, nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return level, nil, fmt.Errorf("parse %s: %w", l.GeoJSON, err)
	}

	out := make([]boundary, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f.Geometry == nil {
			return level, nil, fmt.Errorf("%s feature %d: no geometry", l.GeoJSON, i)
		}
		g, err := geojson.NewGeometry(f.Geometry).MarshalJSON()
		if err != nil {
			return level, nil, fmt.Errorf("%s feature %d: %w", l.GeoJSON, i, err)
		}

		prop := func(name string) (string, error) {
			v, ok := f.Properties[name]
			if !ok || v == nil {
				return "", fmt.Errorf("%s feature %d: missing property %q", l.GeoJSON, i, name)
			}
			return propertyString(v), nil
		}

		attrs := map[string]string{"state": l.State, "year": l.Year}
		fields := map[string]string{"name": l.NameProperty}
		if level == query.LevelWard {
			fields["county"] = l.CountyProperty
			fields["assembly"] = l.AssemblyProperty
			fields["senate"] = l.SenateProperty
			fields["congressional"] = l.CongressionalProperty
		}
		for col, p := range fields {
			v, err := prop(p)
			if err != nil {
				return level, nil, err
			}
			attrs[col] = v
		}

		cols := level.Columns()
		row := boundary{values: make([]string, len(cols)), geometry: string(g)}
		for j, c := range cols {
			row.values[j] = norm.NFC.String(attrs[c])
		}
		out = append(out, row)
	}
	return level, out, nil
}

// propertyString renders a GeoJSON property as a key. Whole numbers lose
// their decimal point so 7.0 and "7" name the same district.
func propertyString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// replaceLayer swaps every existing boundary of the layer's scope for rows.
func replaceLayer(ctx context.Context, tx *sql.Tx, level query.Level, l Layer, rows []boundary) (int64, error) {
	var (
		del  string
		args []interface{}
	)
	switch {
	case level == query.LevelState:
		names := make([]string, len(rows))
		for i, r := range rows {
			names[i] = r.values[0]
		}
		del = `DELETE FROM ` + level.Table() + ` WHERE name = ANY($1)`
		args = []interface{}{pq.Array(names)}
	case level == query.LevelCounty:
		del = `DELETE FROM ` + level.Table() + ` WHERE state = $1`
		args = []interface{}{l.State}
	default:
		del = `DELETE FROM ` + level.Table() + ` WHERE state = $1 AND year = $2`
		args = []interface{}{l.State, l.Year}
	}
	if _, err := tx.ExecContext(ctx, del, args...); err != nil {
		return 0, fmt.Errorf("wipe %s: %w", level.Table(), err)
	}

	cols := level.Columns()
	placeholders := make([]string, len(cols)+1)
	for i := range cols {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}
	placeholders[len(cols)] = "ST_SetSRID(ST_GeomFromGeoJSON($" + strconv.Itoa(len(cols)+1) + "), 4326)"
	ins := `INSERT INTO ` + level.Table() + ` (` + strings.Join(cols, ", ") + `, geometry) VALUES (` +
		strings.Join(placeholders, ", ") + `)`

	stmt, err := tx.PrepareContext(ctx, ins)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	var n int64
	for _, r := range rows {
		vals := make([]interface{}, 0, len(r.values)+1)
		for _, v := range r.values {
			vals = append(vals, v)
		}
		vals = append(vals, r.geometry)
		if _, err := stmt.ExecContext(ctx, vals...); err != nil {
			return n, fmt.Errorf("insert %s %v: %w", level, r.values, err)
		}
		n++
	}
	return n, nil
}
