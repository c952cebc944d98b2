package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/RobertDurfee/Gerrymandering/internal/query"
	"golang.org/x/text/unicode/norm"
)

// record is one ward's metrics, in the order of the aggregate's metrics.
type record struct {
	ward    string
	metrics []int64
}

func readTable(t Table, agg query.Aggregate) ([]record, error) {
	f, err := os.Open(t.CSV)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseRecords(bufio.NewReader(f), t, agg)
}

func parseRecords(in io.Reader, t Table, agg query.Aggregate) ([]record, error) {
	r := csv.NewReader(in)
	r.TrimLeadingSpace = true

	headers, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	for col, h := range t.Columns {
		if _, ok := idx[h]; !ok {
			return nil, fmt.Errorf("column %s: missing header %q", col, h)
		}
	}

	metrics := agg.Metrics()
	var out []record
	seen := map[string]int{}
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv read: %w", err)
		}

		ward := norm.NFC.String(strings.TrimSpace(rec[idx[t.Columns["ward"]]]))
		if ward == "" {
			return nil, fmt.Errorf("line %d: empty ward", line)
		}
		if prev, dup := seen[ward]; dup {
			return nil, fmt.Errorf("line %d: ward %q already on line %d", line, ward, prev)
		}
		seen[ward] = line

		row := record{ward: ward, metrics: make([]int64, len(metrics))}
		for i, m := range metrics {
			h, ok := t.Columns[m]
			if !ok {
				continue
			}
			raw := strings.TrimSpace(rec[idx[h]])
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s %q is not a number", line, m, raw)
			}
			if v < 0 {
				return nil, fmt.Errorf("line %d: %s is negative", line, m)
			}
			row.metrics[i] = int64(v)
		}
		out = append(out, row)
	}
	return out, nil
}

// replaceTable swaps the table's records for (state, race, year, ward_year).
func replaceTable(ctx context.Context, tx *sql.Tx, agg query.Aggregate, t Table, rows []record) (int64, error) {
	keyCols := []string{"state", "year", "ward_year"}
	keyVals := []interface{}{t.State, t.Year, t.WardYear}
	if agg.Raced() {
		keyCols = append(keyCols, "race")
		keyVals = append(keyVals, t.Race)
	}

	where := make([]string, len(keyCols))
	for i, c := range keyCols {
		where[i] = c + " = $" + strconv.Itoa(i+1)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+agg.Table()+` WHERE `+strings.Join(where, " AND "), keyVals...); err != nil {
		return 0, fmt.Errorf("wipe %s: %w", agg.Table(), err)
	}

	cols := append(append([]string{}, keyCols...), "ward")
	cols = append(cols, agg.Metrics()...)
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+agg.Table()+` (`+strings.Join(cols, ", ")+`) VALUES (`+strings.Join(placeholders, ", ")+`)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	var n int64
	for _, r := range rows {
		vals := append(append([]interface{}{}, keyVals...), r.ward)
		for _, m := range r.metrics {
			vals = append(vals, m)
		}
		if _, err := stmt.ExecContext(ctx, vals...); err != nil {
			return n, fmt.Errorf("insert ward %q: %w", r.ward, err)
		}
		n++
	}
	return n, nil
}

// unknownWards counts records in the table's scope with no matching ward.
func unknownWards(ctx context.Context, tx *sql.Tx, agg query.Aggregate, t Table) (int64, error) {
	q := `SELECT COUNT(*) FROM ` + agg.Table() + ` r
	      LEFT JOIN ` + query.LevelWard.Table() + ` w ON w.state = r.state AND w.year = r.ward_year AND w.name = r.ward
	      WHERE r.state = $1 AND r.year = $2 AND r.ward_year = $3 AND w.name IS NULL`
	var n int64
	err := tx.QueryRowContext(ctx, q, t.State, t.Year, t.WardYear).Scan(&n)
	return n, err
}
