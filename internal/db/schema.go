package db

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

func EnsureSchema(d *gorm.DB, schema string) error {
	return d.Exec(`CREATE SCHEMA IF NOT EXISTS ` + pq.QuoteIdentifier(schema)).Error
}

func EnsurePostGIS(d *gorm.DB) error {
	return d.Exec(`CREATE EXTENSION IF NOT EXISTS postgis`).Error
}

// EnsureSpatialIndex creates a GIST index on table's geometry column.
// table is schema-qualified, e.g. geo.wards.
func EnsureSpatialIndex(d *gorm.DB, schema, table string) error {
	name := pq.QuoteIdentifier(table + "_geometry_gist")
	return d.Exec(`CREATE INDEX IF NOT EXISTS ` + name +
		` ON ` + pq.QuoteIdentifier(schema) + `.` + pq.QuoteIdentifier(table) +
		` USING GIST (geometry)`).Error
}
