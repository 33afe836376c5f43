package models

import (
	"dataharvester/core/database"

	"github.com/shopspring/decimal"
)

// TipoNaoInformado is stored when the source gives no usage description.
const TipoNaoInformado = "nao_informado"

// Campus represents the 'campus' table.
type Campus struct {
	ID   uint   `gorm:"column:id;primaryKey"`
	Nome string `gorm:"column:nome;size:255;not null;uniqueIndex:ux_campus_nome"`
}

// TableName overrides the table name.
func (Campus) TableName() string {
	return "campus"
}

// Unidade represents the 'unidade' table. Units are global, not scoped to a campus.
type Unidade struct {
	ID   uint   `gorm:"column:id;primaryKey"`
	Nome string `gorm:"column:nome;size:255;not null;uniqueIndex:ux_unidade_nome"`
}

// TableName overrides the table name.
func (Unidade) TableName() string {
	return "unidade"
}

// Predio represents the 'predio' table.
type Predio struct {
	ID       uint   `gorm:"column:id;primaryKey"`
	CampusID uint   `gorm:"column:campusid;not null;uniqueIndex:ux_predio_campus_nome"`
	Nome     string `gorm:"column:nome;size:255;not null;uniqueIndex:ux_predio_campus_nome"`
}

// TableName overrides the table name.
func (Predio) TableName() string {
	return "predio"
}

// Compartimento represents the 'compartimento' table (a room).
type Compartimento struct {
	ID         uint                `gorm:"column:id;primaryKey"`
	PredioID   uint                `gorm:"column:predioid;not null;uniqueIndex:ux_compartimento_predio_nome"`
	UnidadeID  uint                `gorm:"column:unidadeid;not null"`
	Nome       string              `gorm:"column:nome;size:255;not null;uniqueIndex:ux_compartimento_predio_nome"`
	Tipo       string              `gorm:"column:tipo;size:255;not null"`
	Pavimento  *int                `gorm:"column:pavimento"`
	Capacidade *int                `gorm:"column:capacidade"`
	Area       decimal.NullDecimal `gorm:"column:area;type:decimal(12,2)"`
}

// TableName overrides the table name.
func (Compartimento) TableName() string {
	return "compartimento"
}

// UpdatableColumns are overwritten when a room is seen again. The key columns never change.
var UpdatableColumns = []string{"unidadeid", "tipo", "pavimento", "capacidade", "area"}

// All lists the models in dependency order.
func All() []any {
	return []any{&Campus{}, &Unidade{}, &Predio{}, &Compartimento{}}
}

// Schema describes the tables and columns the sync reads and writes.
func Schema() []database.TableSpec {
	return []database.TableSpec{
		{Name: "campus", Columns: []string{"id", "nome"}},
		{Name: "unidade", Columns: []string{"id", "nome"}},
		{Name: "predio", Columns: []string{"id", "campusid", "nome"}},
		{Name: "compartimento", Columns: []string{"id", "predioid", "unidadeid", "nome", "tipo", "pavimento", "capacidade", "area"}},
	}
}
