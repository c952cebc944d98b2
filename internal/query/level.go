package query

// Schema holds every table the compiler reads.
const Schema = "geo"

// Level is one tier of the geographic hierarchy. It names entity types,
// reference kinds and aggregate group levels alike.
type Level int

const (
	LevelState Level = iota
	LevelCounty
	LevelAssembly
	LevelSenate
	LevelCongressional
	LevelWard
)

type levelInfo struct {
	name    string   // filter / group name
	table   string   // qualified table
	segment string   // path segment in references
	keys    []string // natural key columns, outermost first
	// wardColumn is the geo.wards column naming the member of this level
	// a ward belongs to. Empty for states.
	wardColumn string
	// columns are the non-geometry columns returned for the entity.
	columns []string
}

var levels = map[Level]levelInfo{
	LevelState: {
		name:    "state",
		table:   Schema + ".states",
		segment: "states",
		keys:    []string{"name"},
		columns: []string{"name"},
	},
	LevelCounty: {
		name:       "county",
		table:      Schema + ".counties",
		segment:    "counties",
		keys:       []string{"state", "name"},
		wardColumn: "county",
		columns:    []string{"state", "name"},
	},
	LevelAssembly: {
		name:       "assembly",
		table:      Schema + ".assemblies",
		segment:    "assemblies",
		keys:       []string{"state", "year", "name"},
		wardColumn: "assembly",
		columns:    []string{"state", "year", "name"},
	},
	LevelSenate: {
		name:       "senate",
		table:      Schema + ".senates",
		segment:    "senates",
		keys:       []string{"state", "year", "name"},
		wardColumn: "senate",
		columns:    []string{"state", "year", "name"},
	},
	LevelCongressional: {
		name:       "congressional",
		table:      Schema + ".congressionals",
		segment:    "congressionals",
		keys:       []string{"state", "year", "name"},
		wardColumn: "congressional",
		columns:    []string{"state", "year", "name"},
	},
	LevelWard: {
		name:       "ward",
		table:      Schema + ".wards",
		segment:    "wards",
		keys:       []string{"state", "year", "name"},
		wardColumn: "name",
		columns:    []string{"state", "county", "year", "name", "assembly", "senate", "congressional"},
	},
}

// String returns the level's filter/group name, e.g. "congressional".
func (l Level) String() string {
	if info, ok := levels[l]; ok {
		return info.name
	}
	return "unknown"
}

// Table returns the qualified table holding entities of this level.
func (l Level) Table() string { return levels[l].table }

// yearScoped reports whether members of the level are versioned by year.
func (l Level) yearScoped() bool {
	switch l {
	case LevelAssembly, LevelSenate, LevelCongressional, LevelWard:
		return true
	}
	return false
}

func (l Level) district() bool {
	switch l {
	case LevelAssembly, LevelSenate, LevelCongressional:
		return true
	}
	return false
}

// referenceSQL renders the reference path of the row aliased as alias,
// built from the row's own key columns.
func referenceSQL(l Level, alias string) string {
	info := levels[l]
	switch {
	case l == LevelState:
		return "'/states/' || " + alias + ".name"
	case l == LevelCounty:
		return "'/states/' || " + alias + ".state || '/counties/' || " + alias + ".name"
	default:
		return "'/states/' || " + alias + ".state || '/years/' || " + alias + ".year || '/" +
			info.segment + "/' || " + alias + ".name"
	}
}

// Segment is the plural path segment naming l's collection, e.g. "wards".
func (l Level) Segment() string { return levels[l].segment }

// Columns lists l's stored attribute columns, geometry excluded.
func (l Level) Columns() []string { return append([]string(nil), levels[l].columns...) }

// LevelByName resolves a singular level name such as "county".
func LevelByName(name string) (Level, bool) {
	l, ok := groupNames[name]
	return l, ok
}
