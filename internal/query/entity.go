package query

import "net/url"

// Keys are the path keys of a request. Name is the terminal key of a get;
// for a state get it is the state's name.
type Keys struct {
	State string
	Race  string
	Year  string
	Name  string
}

// Filters are the optional structural and spatial filters of a list.
type Filters struct {
	Refs    []*Reference
	Spatial Spatial
}

// referenceOrder fixes the order reference filters are read and compiled in.
var referenceOrder = []Level{LevelCounty, LevelAssembly, LevelSenate, LevelCongressional, LevelWard}

// EntityFilters returns the reference filters accepted when listing l.
func EntityFilters(l Level) []Level {
	switch l {
	case LevelState:
		return []Level{LevelCounty, LevelAssembly, LevelSenate, LevelCongressional, LevelWard}
	case LevelCounty, LevelAssembly, LevelSenate, LevelCongressional:
		return []Level{LevelWard}
	case LevelWard:
		return []Level{LevelCounty, LevelAssembly, LevelSenate, LevelCongressional}
	}
	return nil
}

// AggregateFilters are the reference filters accepted by votes and populations.
var AggregateFilters = []Level{LevelCounty, LevelAssembly, LevelSenate, LevelCongressional, LevelWard}

// ParseFilters reads the allowed reference filters and the spatial filters
// from values. Query keys not in allowed are ignored; an allowed key that is
// present but empty is malformed.
func ParseFilters(values url.Values, allowed []Level) (Filters, error) {
	var f Filters
	for _, l := range referenceOrder {
		if !contains(allowed, l) {
			continue
		}
		field := l.String()
		if values.Has(field) && values.Get(field) == "" {
			return Filters{}, &MalformedReferenceError{Field: field, Pattern: Pattern(l)}
		}
		ref, err := ParseReference(l, field, values.Get(field))
		if err != nil {
			return Filters{}, err
		}
		if ref != nil {
			f.Refs = append(f.Refs, ref)
		}
	}
	spatial, err := ParseSpatial(values)
	if err != nil {
		return Filters{}, err
	}
	f.Spatial = spatial
	return f, nil
}

func contains(levels []Level, l Level) bool {
	for _, x := range levels {
		if x == l {
			return true
		}
	}
	return false
}

func requireKeys(l Level, keys Keys, get bool) error {
	if l != LevelState && keys.State == "" {
		return &MissingKeyError{Key: "state"}
	}
	if l.yearScoped() && keys.Year == "" {
		return &MissingKeyError{Key: "year"}
	}
	if get && keys.Name == "" {
		if l == LevelState {
			return &MissingKeyError{Key: "state"}
		}
		return &MissingKeyError{Key: l.String()}
	}
	return nil
}

func entitySelect(l Level, keys Keys) *selectBuilder {
	info := levels[l]
	sb := newSelect(&params{}, info.table+" g")
	sb.column(qualify("g", info.columns)...)
	sb.column("ST_AsGeoJSON(g.geometry) AS geometry")
	if l != LevelState {
		sb.eq("g.state", keys.State)
	}
	if l.yearScoped() {
		sb.eq("g.year", keys.Year)
	}
	sb.orderBy = qualify("g", info.keys)
	return sb
}

// GetEntity compiles the lookup of a single member of l by its full key.
func GetEntity(l Level, keys Keys) (Statement, error) {
	if err := requireKeys(l, keys, true); err != nil {
		return Statement{}, err
	}
	sb := entitySelect(l, keys)
	sb.eq("g.name", keys.Name)
	sb.limit = 1
	return sb.statement(), nil
}

// ListEntity compiles the listing of members of l under the path keys,
// narrowed by filters. Reference filters not accepted for l are ignored.
func ListEntity(l Level, keys Keys, filters Filters) (Statement, error) {
	if err := requireKeys(l, keys, false); err != nil {
		return Statement{}, err
	}
	sb := entitySelect(l, keys)
	allowed := EntityFilters(l)
	for _, ref := range filters.Refs {
		if contains(allowed, ref.Level) {
			constrain(sb, l, "g", ref)
		}
	}
	filters.Spatial.apply(sb, "g.geometry")
	return sb.statement(), nil
}
