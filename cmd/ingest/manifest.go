package main

import (
	"fmt"
	"os"

	"github.com/RobertDurfee/Gerrymandering/internal/query"
	"github.com/goccy/go-yaml"
)

// Manifest lists what one ingest run loads, in order. Boundary layers go
// first so records always land against known wards.
//
//	layers:
//	  - kind: county
//	    geojson: data/County_Boundaries_24K.geojson
//	    state: WI
//	    name_property: COUNTY_NAME
//	  - kind: ward
//	    geojson: data/2011_Wards.geojson
//	    state: WI
//	    year: "2011"
//	    name_property: LABEL
//	    county_property: CNTY_NAME
//	    assembly_property: ASM
//	    senate_property: SEN
//	    congressional_property: CON
//	tables:
//	  - kind: votes
//	    csv: data/2016_president.csv
//	    state: WI
//	    race: president
//	    year: "2016"
//	    ward_year: "2011"
//	    columns: {ward: LABEL, total: PRETOT16, democrat: PREDEM16}
type Manifest struct {
	Layers []Layer `yaml:"layers"`
	Tables []Table `yaml:"tables"`
}

// Layer is one GeoJSON file of boundaries of a single level.
type Layer struct {
	Kind         string `yaml:"kind"`
	GeoJSON      string `yaml:"geojson"`
	State        string `yaml:"state"`
	Year         string `yaml:"year"`
	NameProperty string `yaml:"name_property"`

	// Ward layers only.
	CountyProperty        string `yaml:"county_property"`
	AssemblyProperty      string `yaml:"assembly_property"`
	SenateProperty        string `yaml:"senate_property"`
	CongressionalProperty string `yaml:"congressional_property"`
}

// Table is one CSV of per-ward records. Columns maps record columns (ward
// plus metrics) to CSV headers; unmapped metrics load as 0.
type Table struct {
	Kind     string            `yaml:"kind"`
	CSV      string            `yaml:"csv"`
	State    string            `yaml:"state"`
	Race     string            `yaml:"race"`
	Year     string            `yaml:"year"`
	WardYear string            `yaml:"ward_year"`
	Columns  map[string]string `yaml:"columns"`
}

func loadManifest(path string) (Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := m.validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

func (m Manifest) validate() error {
	for i, l := range m.Layers {
		level, ok := query.LevelByName(l.Kind)
		if !ok {
			return fmt.Errorf("layer %d: unknown kind %q", i, l.Kind)
		}
		if l.GeoJSON == "" || l.NameProperty == "" {
			return fmt.Errorf("layer %d: geojson and name_property are required", i)
		}
		if level != query.LevelState && l.State == "" {
			return fmt.Errorf("layer %d: state is required for %s", i, l.Kind)
		}
		if level != query.LevelState && level != query.LevelCounty && l.Year == "" {
			return fmt.Errorf("layer %d: year is required for %s", i, l.Kind)
		}
		if level == query.LevelWard && (l.CountyProperty == "" || l.AssemblyProperty == "" ||
			l.SenateProperty == "" || l.CongressionalProperty == "") {
			return fmt.Errorf("layer %d: ward layers need county, assembly, senate and congressional properties", i)
		}
	}
	for i, t := range m.Tables {
		agg, ok := aggregateByName(t.Kind)
		if !ok {
			return fmt.Errorf("table %d: unknown kind %q", i, t.Kind)
		}
		if t.CSV == "" || t.State == "" || t.Year == "" || t.WardYear == "" {
			return fmt.Errorf("table %d: csv, state, year and ward_year are required", i)
		}
		if agg.Raced() && t.Race == "" {
			return fmt.Errorf("table %d: race is required for %s", i, t.Kind)
		}
		if t.Columns["ward"] == "" {
			return fmt.Errorf("table %d: columns.ward is required", i)
		}
		for col := range t.Columns {
			if col != "ward" && !containsString(agg.Metrics(), col) {
				return fmt.Errorf("table %d: %s has no column %q", i, t.Kind, col)
			}
		}
	}
	return nil
}

func aggregateByName(name string) (query.Aggregate, bool) {
	switch name {
	case query.Votes.Name:
		return query.Votes, true
	case query.Populations.Name:
		return query.Populations, true
	}
	return query.Aggregate{}, false
}

func containsString(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
