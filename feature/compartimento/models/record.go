package models

import "github.com/shopspring/decimal"

// Record is one source row after normalization and numeric parsing.
type Record struct {
	CampusNome        string
	PredioNome        string
	UnidadeNome       string
	CompartimentoNome string
	Tipo              string
	Pavimento         *int
	Capacidade        *int
	Area              decimal.NullDecimal
}

// Summary holds the aggregate counters of one sync run.
type Summary struct {
	// RunID identifies the run in logs and archived payloads.
	RunID string `json:"runId"`

	// RowsFetched is the number of rows returned by the source.
	RowsFetched int `json:"rowsFetched"`

	// CompartimentosProcessed counts rooms written (inserted or updated).
	CompartimentosProcessed int `json:"compartimentosProcessed"`

	// CampusCached, UnidadeCached and PredioCached are the final resolver cache sizes.
	CampusCached  int `json:"campusCached"`
	UnidadeCached int `json:"unidadeCached"`
	PredioCached  int `json:"predioCached"`

	// Skipped counts rows missing a required name.
	Skipped int `json:"skipped"`

	// Duplicates counts rows dropped because their room was already written in this run.
	Duplicates int `json:"duplicates"`

	// Failed counts rows whose numeric fields could not be parsed.
	Failed int `json:"failed"`

	// DryRun is true when every write was rolled back.
	DryRun bool `json:"dryRun"`

	// ArchiveObject is the object name of the archived payload, if any.
	ArchiveObject string `json:"archiveObject,omitempty"`
}
