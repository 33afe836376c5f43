package compartimento

import (
	"fmt"
	"strings"
	"testing"

	"dataharvester/core/database"
	"dataharvester/core/source"
	"dataharvester/feature/compartimento/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite DB with the sync tables.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(database.Config{
		Driver:   database.DriverSQLite,
		Database: fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func newRow(campus, predio, unidade, nome string) source.Row {
	return source.Row{
		FieldCampusNome:        campus,
		FieldPredioNome:        predio,
		FieldUnidadeNome:       unidade,
		FieldCompartimentoNome: nome,
	}
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
