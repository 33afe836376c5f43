package compartimento

import (
	"context"
	"errors"
	"fmt"

	"dataharvester/core/database"

	"go.uber.org/zap"
)

// Outcome tells how a Resolve call obtained its id.
type Outcome int

const (
	// OutcomeCached means the key was already known to this run.
	OutcomeCached Outcome = iota
	// OutcomeFoundExisting means storage already had the row.
	OutcomeFoundExisting
	// OutcomeCreated means the row was inserted by this run.
	OutcomeCreated
	// OutcomeConflictRecovered means the insert lost a race and the concurrent row was adopted.
	OutcomeConflictRecovered
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCached:
		return "cached"
	case OutcomeFoundExisting:
		return "found_existing"
	case OutcomeCreated:
		return "created"
	case OutcomeConflictRecovered:
		return "conflict_recovered"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Resolution is the result of resolving a natural key.
type Resolution struct {
	ID      uint
	Outcome Outcome
}

// ResolverStats counts storage round trips made while resolving.
type ResolverStats struct {
	Lookups   int
	Creates   int
	Conflicts int
}

// Resolver maps natural keys of campus, unidade and predio to ids, creating rows on demand.
// A Resolver belongs to a single run and is not safe for concurrent use.
type Resolver struct {
	store  Store
	logger *zap.Logger
	caches map[Kind]map[Key]uint
	stats  ResolverStats
}

// NewResolver creates a resolver with empty caches.
func NewResolver(store Store, logger *zap.Logger) *Resolver {
	caches := make(map[Kind]map[Key]uint, len(Kinds))
	for _, k := range Kinds {
		caches[k] = make(map[Key]uint)
	}
	return &Resolver{
		store:  store,
		logger: logger,
		caches: caches,
	}
}

// Preload fills every cache with the rows already in storage.
func (r *Resolver) Preload(ctx context.Context) error {
	for _, kind := range Kinds {
		index, err := r.store.LoadAll(ctx, kind)
		if err != nil {
			return err
		}
		for key, id := range index {
			r.caches[kind][key] = id
		}
	}
	return nil
}

// Resolve returns the id for key, reading or creating the row only when the cache misses.
func (r *Resolver) Resolve(ctx context.Context, kind Kind, key Key) (Resolution, error) {
	cache, ok := r.caches[kind]
	if !ok {
		return Resolution{}, fmt.Errorf("unknown kind %q", kind)
	}

	if id, ok := cache[key]; ok {
		return Resolution{ID: id, Outcome: OutcomeCached}, nil
	}

	r.stats.Lookups++
	id, found, err := r.store.Find(ctx, kind, key)
	if err != nil {
		return Resolution{}, err
	}
	if found {
		cache[key] = id
		return Resolution{ID: id, Outcome: OutcomeFoundExisting}, nil
	}

	r.stats.Creates++
	id, err = r.store.Create(ctx, kind, key)
	if err == nil {
		cache[key] = id
		return Resolution{ID: id, Outcome: OutcomeCreated}, nil
	}
	if !errors.Is(err, database.ErrDuplicateKey) {
		return Resolution{}, err
	}

	// Someone else created the row between our read and our insert.
	r.stats.Conflicts++
	r.stats.Lookups++
	id, found, findErr := r.store.Find(ctx, kind, key)
	if findErr != nil {
		return Resolution{}, findErr
	}
	if !found {
		return Resolution{}, fmt.Errorf("%s %q conflicted on insert but cannot be read back: %w", kind, key.Nome, err)
	}

	r.logger.Debug("Adopted concurrently created row",
		zap.String("kind", string(kind)),
		zap.String("nome", key.Nome),
		zap.Uint("id", id),
	)

	cache[key] = id
	return Resolution{ID: id, Outcome: OutcomeConflictRecovered}, nil
}

// CacheSize returns the number of keys known for kind.
func (r *Resolver) CacheSize(kind Kind) int {
	return len(r.caches[kind])
}

// Stats returns the round trips made so far.
func (r *Resolver) Stats() ResolverStats {
	return r.stats
}
