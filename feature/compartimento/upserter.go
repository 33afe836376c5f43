package compartimento

import (
	"context"
	"strings"

	"dataharvester/feature/compartimento/models"
)

// Valid reports whether every name needed to place the room is present.
func Valid(rec models.Record) bool {
	return rec.CampusNome != "" &&
		rec.PredioNome != "" &&
		rec.UnidadeNome != "" &&
		rec.CompartimentoNome != ""
}

// seenKey folds case on the room name, unlike the parent keys.
type seenKey struct {
	predioID uint
	nome     string
}

// Upserter writes rooms, dropping repeats of a room already written in the same run.
// An Upserter belongs to a single run and is not safe for concurrent use.
type Upserter struct {
	store Store
	seen  map[seenKey]struct{}
}

// NewUpserter creates an upserter with an empty seen set.
func NewUpserter(store Store) *Upserter {
	return &Upserter{
		store: store,
		seen:  make(map[seenKey]struct{}),
	}
}

// Upsert writes room unless a room with the same predio and case-insensitive name was
// already written by this upserter. It reports whether a write happened.
func (u *Upserter) Upsert(ctx context.Context, room *models.Compartimento) (bool, error) {
	key := seenKey{predioID: room.PredioID, nome: strings.ToLower(room.Nome)}
	if _, dup := u.seen[key]; dup {
		return false, nil
	}

	if err := u.store.UpsertCompartimento(ctx, room); err != nil {
		return false, err
	}

	u.seen[key] = struct{}{}
	return true, nil
}

// Seen returns the number of distinct rooms written.
func (u *Upserter) Seen() int {
	return len(u.seen)
}
