package query

import (
	"fmt"
	"regexp"

	"golang.org/x/text/unicode/norm"
)

// Reference identifies another resource by its path, e.g.
// /states/WI/years/2020/wards/Madison%20Ward%201 once decoded.
type Reference struct {
	Level Level
	State string
	Year  string // empty for counties
	Name  string
}

var referencePatterns = map[Level]*regexp.Regexp{
	LevelCounty:        regexp.MustCompile(`^/?states/([^/]+)/counties/([^/]+)$`),
	LevelAssembly:      regexp.MustCompile(`^/?states/([^/]+)/years/([^/]+)/assemblies/([^/]+)$`),
	LevelSenate:        regexp.MustCompile(`^/?states/([^/]+)/years/([^/]+)/senates/([^/]+)$`),
	LevelCongressional: regexp.MustCompile(`^/?states/([^/]+)/years/([^/]+)/congressionals/([^/]+)$`),
	LevelWard:          regexp.MustCompile(`^/?states/([^/]+)/years/([^/]+)/wards/([^/]+)$`),
}

// Pattern returns the human readable shape references of level l must take.
func Pattern(l Level) string {
	if l == LevelCounty {
		return "/states/{state}/counties/{county}"
	}
	return fmt.Sprintf("/states/{state}/years/{year}/%s/{%s}", levels[l].segment, l)
}

// ParseReference parses value as a reference to a member of level l.
// An empty value means no reference and yields nil, nil.
func ParseReference(l Level, field, value string) (*Reference, error) {
	if value == "" {
		return nil, nil
	}
	re, ok := referencePatterns[l]
	if !ok {
		return nil, fmt.Errorf("%s: %w", field, ErrInvalidRequest)
	}
	m := re.FindStringSubmatch(value)
	if m == nil {
		return nil, &MalformedReferenceError{Field: field, Pattern: Pattern(l), Value: value}
	}
	ref := &Reference{Level: l, State: norm.NFC.String(m[1])}
	if l == LevelCounty {
		ref.Name = norm.NFC.String(m[2])
	} else {
		ref.Year = norm.NFC.String(m[2])
		ref.Name = norm.NFC.String(m[3])
	}
	return ref, nil
}

// String renders the canonical path of the reference.
func (r Reference) String() string {
	if r.Level == LevelCounty {
		return "/states/" + r.State + "/counties/" + r.Name
	}
	return "/states/" + r.State + "/years/" + r.Year + "/" + levels[r.Level].segment + "/" + r.Name
}

// keyValues returns the reference's values in the order of its level's keys.
func (r Reference) keyValues() []string {
	if r.Level == LevelCounty {
		return []string{r.State, r.Name}
	}
	return []string{r.State, r.Year, r.Name}
}
