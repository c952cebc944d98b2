package geography

import (
	"fmt"

	"github.com/RobertDurfee/Gerrymandering/internal/db"
	"github.com/RobertDurfee/Gerrymandering/internal/query"
	"gorm.io/gorm"
)

// Migrate creates the geo schema and its tables, with a GIST index on every
// geometry column. It is safe to run repeatedly.
func Migrate(d *gorm.DB) error {
	if err := db.EnsurePostGIS(d); err != nil {
		return fmt.Errorf("enable postgis: %w", err)
	}
	if err := db.EnsureSchema(d, query.Schema); err != nil {
		return fmt.Errorf("ensure schema %s: %w", query.Schema, err)
	}

	if err := d.AutoMigrate(
		&State{},
		&County{},
		&Assembly{},
		&Senate{},
		&Congressional{},
		&Ward{},
		&Vote{},
		&Population{},
	); err != nil {
		return fmt.Errorf("auto-migrate geo tables: %w", err)
	}

	for _, table := range []string{"states", "counties", "assemblies", "senates", "congressionals", "wards"} {
		if err := db.EnsureSpatialIndex(d, query.Schema, table); err != nil {
			return fmt.Errorf("spatial index on %s: %w", table, err)
		}
	}

	// Raw records are always read by state, year and ward.
	if err := d.Exec(`
        CREATE INDEX IF NOT EXISTS votes_ward_lookup
        ON geo.votes (state, ward_year, ward);
    `).Error; err != nil {
		return fmt.Errorf("create votes_ward_lookup: %w", err)
	}
	if err := d.Exec(`
        CREATE INDEX IF NOT EXISTS populations_ward_lookup
        ON geo.populations (state, ward_year, ward);
    `).Error; err != nil {
		return fmt.Errorf("create populations_ward_lookup: %w", err)
	}
	return nil
}
