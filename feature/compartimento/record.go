package compartimento

import (
	"errors"
	"fmt"

	"dataharvester/core/source"
	"dataharvester/core/utils"
	"dataharvester/feature/compartimento/models"
)

// Source row fields.
const (
	FieldCampusNome        = "campus_nome"
	FieldPredioNome        = "predio_nome"
	FieldUnidadeNome       = "unidade_nome"
	FieldCompartimentoNome = "compartimento_nome"
	FieldTipo              = "utilizacao_compartimento_descricao"
	FieldPavimento         = "compartimento_pavimento"
	FieldCapacidade        = "compartimento_capacidade"
	FieldArea              = "compartimento_area"
)

// ParseRecord normalizes the text fields of a row and parses its numeric fields.
// The name fields are always filled in, even when a numeric field fails to parse and
// an error is returned, so callers can validate and log the record either way.
func ParseRecord(row source.Row) (models.Record, error) {
	rec := models.Record{
		CampusNome:        utils.NormalizeText(row[FieldCampusNome]),
		PredioNome:        utils.NormalizeText(row[FieldPredioNome]),
		UnidadeNome:       utils.NormalizeText(row[FieldUnidadeNome]),
		CompartimentoNome: utils.NormalizeText(row[FieldCompartimentoNome]),
		Tipo:              utils.NormalizeText(row[FieldTipo]),
	}
	if rec.Tipo == "" {
		rec.Tipo = models.TipoNaoInformado
	}

	var errs []error
	var err error

	if rec.Pavimento, err = utils.ToInt(row[FieldPavimento]); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", FieldPavimento, err))
	}
	if rec.Capacidade, err = utils.ToInt(row[FieldCapacidade]); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", FieldCapacidade, err))
	}
	if rec.Area, err = utils.ToFloat(row[FieldArea]); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", FieldArea, err))
	}

	return rec, errors.Join(errs...)
}
