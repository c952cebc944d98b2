package query

import (
	"net/url"
	"strings"
)

// Aggregate describes a per-ward record table whose metrics are summed up
// to a group level.
type Aggregate struct {
	Name    string
	table   string
	race    bool // keyed by race as well as year
	metrics []string
	derived []string // select expressions over the summed columns of a
}

// Votes are per-ward party tallies for one race and year.
var Votes = Aggregate{
	Name:  "votes",
	table: Schema + ".votes",
	race:  true,
	metrics: []string{
		"total", "democrat", "republican", "green", "libertarian",
		"constitution", "independent", "scatter",
	},
	derived: []string{leanSQL},
}

// Populations are per-ward demographic counts for one year.
var Populations = Aggregate{
	Name:  "populations",
	table: Schema + ".populations",
	metrics: []string{
		"total", "total_adult",
		"white", "white_adult",
		"black", "black_adult",
		"american_indian", "american_indian_adult",
		"asian", "asian_adult",
		"pacific_islander", "pacific_islander_adult",
		"hispanic", "hispanic_adult",
		"other", "other_adult",
	},
}

// leanSQL is the signed two-party lean in [-1, 1]: positive when democrats
// lead, negative when republicans lead, 0 on a tie or no votes.
const leanSQL = `CASE` +
	` WHEN a.total = 0 THEN 0` +
	` WHEN a.democrat > a.republican THEN (a.democrat::float8 / a.total - 0.5) / 0.5` +
	` WHEN a.republican > a.democrat THEN -((a.republican::float8 / a.total - 0.5) / 0.5)` +
	` ELSE 0 END AS lean`

var groupNames = map[string]Level{
	"state":         LevelState,
	"county":        LevelCounty,
	"assembly":      LevelAssembly,
	"senate":        LevelSenate,
	"congressional": LevelCongressional,
	"ward":          LevelWard,
}

// ParseGroup resolves a group selector. Absent means ward.
func ParseGroup(value string) (Level, error) {
	if value == "" {
		return LevelWard, nil
	}
	l, ok := groupNames[value]
	if !ok {
		return 0, &InvalidGroupError{Value: value}
	}
	return l, nil
}

// GroupFromQuery reads the group selector from values. Absent means ward;
// present but empty is invalid.
func GroupFromQuery(values url.Values) (Level, error) {
	if values.Has("group") && values.Get("group") == "" {
		return 0, &InvalidGroupError{Value: ""}
	}
	return ParseGroup(values.Get("group"))
}

// groupKeys returns, for each key column of the group level, the expression
// producing it from raw records r joined to wards w.
func groupKeys(group Level) []string {
	switch {
	case group == LevelState:
		return []string{"r.state"}
	case group == LevelWard:
		return []string{"r.state", "r.ward_year", "r.ward"}
	case group == LevelCounty:
		return []string{"w.state", "w.county"}
	default:
		return []string{"w.state", "w.year", "w." + levels[group].wardColumn}
	}
}

// ListAggregate compiles agg summed per member of group and joined to the
// member's geometry. Raw records are summed before any filter join, and
// filter joins never match more than one row, so no ward counts twice.
func ListAggregate(agg Aggregate, keys Keys, group Level, filters Filters) (Statement, error) {
	if keys.State == "" {
		return Statement{}, &MissingKeyError{Key: "state"}
	}
	if agg.race && keys.Race == "" {
		return Statement{}, &MissingKeyError{Key: "race"}
	}
	if keys.Year == "" {
		return Statement{}, &MissingKeyError{Key: "year"}
	}
	if _, ok := levels[group]; !ok {
		return Statement{}, &InvalidGroupError{Value: group.String()}
	}

	p := &params{}
	info := levels[group]

	from := agg.table + " r"
	if group != LevelState && group != LevelWard {
		from += " JOIN " + LevelWard.Table() + " w ON w.state = r.state AND w.year = r.ward_year AND w.name = r.ward"
	}
	sub := newSelect(p, from)
	sub.column("r.state AS src_state", "r.year AS src_year")
	sub.groupBy = []string{"r.state", "r.year"}
	if agg.race {
		sub.column("r.race AS race")
		sub.groupBy = append(sub.groupBy, "r.race")
	}
	for i, expr := range groupKeys(group) {
		sub.column(expr + " AS " + info.keys[i])
		if expr != "r.state" {
			sub.groupBy = append(sub.groupBy, expr)
		}
	}
	for _, m := range agg.metrics {
		sub.column("SUM(r." + m + ")::bigint AS " + m)
	}
	sub.eq("r.state", keys.State)
	if agg.race {
		sub.eq("r.race", keys.Race)
	}
	sub.eq("r.year", keys.Year)

	on := make([]string, len(info.keys))
	for i, k := range info.keys {
		on[i] = "g." + k + " = a." + k
	}
	outer := newSelect(p, "("+sub.String()+") a JOIN "+info.table+" g ON "+strings.Join(on, " AND "))
	outer.column("a.src_state AS state", "a.src_year AS year")
	if agg.race {
		outer.column("a.race")
	}
	outer.column(referenceSQL(group, "g") + " AS reference")
	outer.column(qualify("a", agg.metrics)...)
	outer.column(agg.derived...)
	outer.column("ST_AsGeoJSON(g.geometry) AS geometry")
	for _, ref := range filters.Refs {
		if contains(AggregateFilters, ref.Level) {
			constrain(outer, group, "g", ref)
		}
	}
	filters.Spatial.apply(outer, "g.geometry")
	outer.orderBy = qualify("g", info.keys)
	return outer.statement(), nil
}

// ListVotes compiles vote tallies for one race and year summed per group member.
func ListVotes(keys Keys, group Level, filters Filters) (Statement, error) {
	return ListAggregate(Votes, keys, group, filters)
}

// ListPopulations compiles population counts for one year summed per group member.
func ListPopulations(keys Keys, group Level, filters Filters) (Statement, error) {
	return ListAggregate(Populations, keys, group, filters)
}

// Table is the schema-qualified table holding agg's raw per-ward records.
func (agg Aggregate) Table() string { return agg.table }

// Metrics lists the summed columns of agg, in output order.
func (agg Aggregate) Metrics() []string { return append([]string(nil), agg.metrics...) }

// Raced reports whether records are keyed by race as well as year.
func (agg Aggregate) Raced() bool { return agg.race }
