// Package database handles database connections, error classification and schema inspection.
//
// It wraps GORM to open postgres (default), mysql or sqlite connections from the
// application's configuration. Every connection uses GormConfig, which silences the
// GORM logger and turns on error translation.
//
// # Duplicate Keys
//
// IsDuplicateKey recognizes unique constraint violations whatever the driver:
// gorm.ErrDuplicatedKey, postgres SQLSTATE 23505, mysql error 1062 and sqlite's
// "UNIQUE constraint failed". Callers wrap the condition with ErrDuplicateKey.
//
// # Schema Inspection
//
// MissingColumns verifies that the tables and columns the sync writes to exist.
// The sync never migrates the schema; the check command reports what is missing.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//
//	missing, err := database.MissingColumns(db, models.Schema())
package database
