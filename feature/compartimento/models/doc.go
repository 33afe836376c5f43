// Package models defines the tables written by the compartimento sync and the
// in-memory shapes that flow through it.
//
// The four gorm models map the existing schema: campus, unidade, predio
// (unique on campusid+nome) and compartimento (unique on predioid+nome).
// Record is a normalized source row; Summary is what a run reports.
package models
