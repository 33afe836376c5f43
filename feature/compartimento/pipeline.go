package compartimento

import (
	"context"
	"errors"
	"fmt"

	"dataharvester/core/logger"
	"dataharvester/core/source"
	"dataharvester/feature/compartimento/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrFetch wraps every failure to obtain the source rows. Nothing is written.
	ErrFetch = errors.New("fetch failed")
	// ErrStorage wraps every database failure during a run. The run is rolled back.
	ErrStorage = errors.New("storage failed")

	errDryRun = errors.New("dry run")
)

// Options tunes a Pipeline.
type Options struct {
	// DryRun executes the whole run and rolls it back at the end.
	DryRun bool
	// Archiver, when set, stores the raw payload before the database is touched.
	Archiver *Archiver
}

// Pipeline runs one synchronization: fetch, preload caches, resolve and upsert each row, commit.
type Pipeline struct {
	source   source.Client
	db       *gorm.DB
	logger   *zap.Logger
	opts     Options
	newStore func(tx *gorm.DB) Store
}

// NewPipeline creates a pipeline reading from src and writing to db.
func NewPipeline(src source.Client, db *gorm.DB, logger *zap.Logger, opts Options) *Pipeline {
	return &Pipeline{
		source: src,
		db:     db,
		logger: logger,
		opts:   opts,
		newStore: func(tx *gorm.DB) Store {
			return NewStore(tx)
		},
	}
}

// Run executes the pipeline once. Every write happens in a single transaction that is
// committed at the end, or rolled back on any storage error.
func (p *Pipeline) Run(ctx context.Context) (*models.Summary, error) {
	runID := uuid.NewString()
	l := logger.WithRunID(p.logger, runID)

	summary := &models.Summary{RunID: runID, DryRun: p.opts.DryRun}

	payload, err := p.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	summary.RowsFetched = len(payload.Rows)

	if p.opts.Archiver != nil {
		name, err := p.opts.Archiver.Archive(ctx, runID, payload.Raw)
		if err != nil {
			l.Warn("Failed to archive payload", zap.Error(err))
		} else {
			summary.ArchiveObject = name
			l.Info("Archived payload", zap.String("object", name))
		}
	}

	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := p.newStore(tx)

		resolver := NewResolver(store, l)
		if err := resolver.Preload(ctx); err != nil {
			return err
		}
		l.Debug("Caches preloaded",
			zap.Int("campus", resolver.CacheSize(KindCampus)),
			zap.Int("unidade", resolver.CacheSize(KindUnidade)),
			zap.Int("predio", resolver.CacheSize(KindPredio)),
		)

		upserter := NewUpserter(store)
		for i, row := range payload.Rows {
			if err := p.process(ctx, l, i, row, resolver, upserter, summary); err != nil {
				return err
			}
		}

		summary.CampusCached = resolver.CacheSize(KindCampus)
		summary.UnidadeCached = resolver.CacheSize(KindUnidade)
		summary.PredioCached = resolver.CacheSize(KindPredio)

		stats := resolver.Stats()
		l.Debug("Resolver round trips",
			zap.Int("lookups", stats.Lookups),
			zap.Int("creates", stats.Creates),
			zap.Int("conflicts", stats.Conflicts),
		)

		if p.opts.DryRun {
			return errDryRun
		}
		return nil
	})
	if err != nil && !errors.Is(err, errDryRun) {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	l.Info("Sync finished",
		zap.Int("rows_fetched", summary.RowsFetched),
		zap.Int("compartimentos_processed", summary.CompartimentosProcessed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("failed", summary.Failed),
		zap.Bool("dry_run", summary.DryRun),
	)

	return summary, nil
}

// process handles one row. Only storage errors are returned; bad rows are counted and skipped.
func (p *Pipeline) process(ctx context.Context, l *zap.Logger, index int, row source.Row, resolver *Resolver, upserter *Upserter, summary *models.Summary) error {
	rec, parseErr := ParseRecord(row)

	if !Valid(rec) {
		summary.Skipped++
		l.Debug("Skipping row with missing name", zap.Int("row", index))
		return nil
	}

	if parseErr != nil {
		summary.Failed++
		l.Warn("Skipping row with invalid number",
			zap.Int("row", index),
			zap.String("compartimento", rec.CompartimentoNome),
			zap.Error(parseErr),
		)
		return nil
	}

	campus, err := resolver.Resolve(ctx, KindCampus, Key{Nome: rec.CampusNome})
	if err != nil {
		return err
	}
	unidade, err := resolver.Resolve(ctx, KindUnidade, Key{Nome: rec.UnidadeNome})
	if err != nil {
		return err
	}
	predio, err := resolver.Resolve(ctx, KindPredio, Key{CampusID: campus.ID, Nome: rec.PredioNome})
	if err != nil {
		return err
	}

	room := &models.Compartimento{
		PredioID:   predio.ID,
		UnidadeID:  unidade.ID,
		Nome:       rec.CompartimentoNome,
		Tipo:       rec.Tipo,
		Pavimento:  rec.Pavimento,
		Capacidade: rec.Capacidade,
		Area:       rec.Area,
	}

	written, err := upserter.Upsert(ctx, room)
	if err != nil {
		return err
	}
	if !written {
		summary.Duplicates++
		l.Debug("Skipping duplicate compartimento",
			zap.Int("row", index),
			zap.Uint("predio_id", predio.ID),
			zap.String("compartimento", rec.CompartimentoNome),
		)
		return nil
	}

	summary.CompartimentosProcessed++
	return nil
}
