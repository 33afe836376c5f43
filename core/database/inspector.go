package database

import (
	"fmt"

	"gorm.io/gorm"
)

// TableSpec names a table and the columns the application reads and writes.
type TableSpec struct {
	Name    string
	Columns []string
}

// MissingColumns checks each table and column through the dialect agnostic migrator.
// A missing table is reported once as "<table>"; a missing column as "<table>.<column>".
func MissingColumns(db *gorm.DB, specs []TableSpec) ([]string, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	var missing []string
	migrator := db.Migrator()

	for _, spec := range specs {
		if !migrator.HasTable(spec.Name) {
			missing = append(missing, spec.Name)
			continue
		}
		for _, col := range spec.Columns {
			if !migrator.HasColumn(spec.Name, col) {
				missing = append(missing, spec.Name+"."+col)
			}
		}
	}

	return missing, nil
}
