package query

import (
	"fmt"
	"strings"
)

// Statement is a compiled SELECT: SQL text using $n placeholders and the
// values bound to them, in placeholder order.
type Statement struct {
	SQL  string
	Args []interface{}
}

// params numbers placeholders for one statement. Subqueries share the
// parent's params so numbering stays global.
type params struct {
	args []interface{}
}

func (p *params) bind(v interface{}) string {
	p.args = append(p.args, v)
	return fmt.Sprintf("$%d", len(p.args))
}

// selectBuilder assembles one SELECT from declarative fragments. Joins and
// predicates are only added by the filter that needs them.
type selectBuilder struct {
	p       *params
	columns []string
	from    string
	joins   []string
	where   []string
	seen    map[string]struct{}
	groupBy []string
	orderBy []string
	limit   int
}

func newSelect(p *params, from string) *selectBuilder {
	return &selectBuilder{p: p, from: from, seen: make(map[string]struct{})}
}

func (s *selectBuilder) column(exprs ...string) { s.columns = append(s.columns, exprs...) }

func (s *selectBuilder) join(clause string) { s.joins = append(s.joins, clause) }

func (s *selectBuilder) cond(clause string) { s.where = append(s.where, clause) }

// eq adds column = value. The same column/value pair is only bound once.
func (s *selectBuilder) eq(column, value string) {
	key := column + "\x00" + value
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = struct{}{}
	s.where = append(s.where, column+" = "+s.p.bind(value))
}

func (s *selectBuilder) String() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(s.columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(s.from)
	for _, j := range s.joins {
		b.WriteString(" ")
		b.WriteString(j)
	}
	if len(s.where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(s.where, " AND "))
	}
	if len(s.groupBy) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(s.groupBy, ", "))
	}
	if len(s.orderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(s.orderBy, ", "))
	}
	if s.limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", s.limit)
	}
	return b.String()
}

func (s *selectBuilder) statement() Statement {
	return Statement{SQL: s.String(), Args: s.p.args}
}

func qualify(alias string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = alias + "." + c
	}
	return out
}
