package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

// CLI flags
var (
	manifestPath = flag.String("manifest", "", "Path to the YAML manifest (required)")
	dsn          = flag.String("dsn", os.Getenv("DATABASE_URL"), "Postgres DSN (default: env DATABASE_URL)")
	dryRun       = flag.Bool("dry-run", false, "Parse + validate only; no DB writes")
	confirm      = flag.Bool("confirm", false, "Required to perform destructive replace")
	advisoryKey  = flag.Int64("advisory-lock", 0, "Optional Postgres advisory lock key (e.g., 424242). 0 = disabled")
)

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()
	if *manifestPath == "" {
		fatalf("--manifest is required")
	}

	m, err := loadManifest(*manifestPath)
	if err != nil {
		fatalf("manifest: %v", err)
	}
	fmt.Printf("Manifest: %d layers, %d tables\n", len(m.Layers), len(m.Tables))

	if !*dryRun {
		if *dsn == "" {
			fatalf("--dsn not provided and DATABASE_URL not set")
		}
		if !*confirm {
			fatalf("Refusing to run without --confirm. Add --dry-run to preview.")
		}
	}

	var db *sql.DB
	if !*dryRun {
		db, err = sql.Open("pgx", *dsn)
		if err != nil {
			fatalf("connect: %v", err)
		}
		defer db.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = db.PingContext(ctx)
		cancel()
		if err != nil {
			fatalf("ping: %v", err)
		}
	}

	for _, l := range m.Layers {
		level, rows, err := readLayer(l)
		if err != nil {
			fatalf("layer %s: %v", l.GeoJSON, err)
		}
		fmt.Printf("  %-14s %6d features from %s\n", level, len(rows), l.GeoJSON)
		if *dryRun {
			continue
		}
		n, err := inTx(db, func(ctx context.Context, tx *sql.Tx) (int64, error) {
			return replaceLayer(ctx, tx, level, l, rows)
		})
		if err != nil {
			fatalf("layer %s: %v", l.GeoJSON, err)
		}
		fmt.Printf("    loaded %d\n", n)
	}

	for _, t := range m.Tables {
		agg, _ := aggregateByName(t.Kind)
		rows, err := readTable(t, agg)
		if err != nil {
			fatalf("table %s: %v", t.CSV, err)
		}
		fmt.Printf("  %-14s %6d records from %s\n", agg.Name, len(rows), t.CSV)
		if *dryRun {
			continue
		}
		n, err := inTx(db, func(ctx context.Context, tx *sql.Tx) (int64, error) {
			n, err := replaceTable(ctx, tx, agg, t, rows)
			if err != nil {
				return n, err
			}
			missing, err := unknownWards(ctx, tx, agg, t)
			if err != nil {
				return n, fmt.Errorf("ward check: %w", err)
			}
			if missing > 0 {
				return n, fmt.Errorf("%d records name wards missing from %s/%s", missing, t.State, t.WardYear)
			}
			return n, nil
		})
		if err != nil {
			fatalf("table %s: %v", t.CSV, err)
		}
		fmt.Printf("    loaded %d\n", n)
	}

	if *dryRun {
		fmt.Println("Dry run complete. No changes made.")
		return
	}
	fmt.Println("Ingest complete.")
}

// inTx runs fn in one transaction, holding the advisory lock if configured.
func inTx(db *sql.DB, fn func(ctx context.Context, tx *sql.Tx) (int64, error)) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op if already committed
	}()

	if *advisoryKey != 0 {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, *advisoryKey); err != nil {
			return 0, fmt.Errorf("advisory lock: %w", err)
		}
	}

	n, err := fn(ctx, tx)
	if err != nil {
		return n, err
	}
	if err := tx.Commit(); err != nil {
		return n, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "ERROR: "+format+"\n", a...)
	os.Exit(1)
}
