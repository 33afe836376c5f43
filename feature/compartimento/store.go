package compartimento

import (
	"context"
	"fmt"

	"dataharvester/core/database"
	"dataharvester/feature/compartimento/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Kind identifies a parent entity table.
type Kind string

const (
	KindCampus  Kind = "campus"
	KindUnidade Kind = "unidade"
	KindPredio  Kind = "predio"
)

// Kinds lists every parent kind in resolution order.
var Kinds = []Kind{KindCampus, KindUnidade, KindPredio}

// Key is the natural key of a parent entity. CampusID is only set for predios.
type Key struct {
	CampusID uint
	Nome     string
}

// Store is the storage the resolver and upserter work against.
type Store interface {
	// LoadAll returns every existing row of kind indexed by natural key.
	LoadAll(ctx context.Context, kind Kind) (map[Key]uint, error)

	// Find looks up one row by exact natural key.
	Find(ctx context.Context, kind Kind, key Key) (id uint, found bool, err error)

	// Create inserts a row and returns its generated id.
	// A unique constraint violation is reported as database.ErrDuplicateKey.
	Create(ctx context.Context, kind Kind, key Key) (uint, error)

	// UpsertCompartimento inserts a room or updates the one with the same (predioid, nome).
	UpsertCompartimento(ctx context.Context, room *models.Compartimento) error
}

// GormStore implements Store on a gorm handle, usually the run's transaction.
type GormStore struct {
	db *gorm.DB
}

// NewStore creates a store bound to db.
func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) LoadAll(ctx context.Context, kind Kind) (map[Key]uint, error) {
	index := make(map[Key]uint)
	q := s.db.WithContext(ctx)

	switch kind {
	case KindCampus:
		var rows []models.Campus
		if err := q.Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to load campus: %w", err)
		}
		for _, r := range rows {
			index[Key{Nome: r.Nome}] = r.ID
		}
	case KindUnidade:
		var rows []models.Unidade
		if err := q.Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to load unidade: %w", err)
		}
		for _, r := range rows {
			index[Key{Nome: r.Nome}] = r.ID
		}
	case KindPredio:
		var rows []models.Predio
		if err := q.Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to load predio: %w", err)
		}
		for _, r := range rows {
			index[Key{CampusID: r.CampusID, Nome: r.Nome}] = r.ID
		}
	default:
		return nil, fmt.Errorf("unknown kind %q", kind)
	}

	return index, nil
}

func (s *GormStore) Find(ctx context.Context, kind Kind, key Key) (uint, bool, error) {
	model, err := newModel(kind)
	if err != nil {
		return 0, false, err
	}

	q := s.db.WithContext(ctx).Model(model).Where(s.nameEquals(), key.Nome)
	if kind == KindPredio {
		q = q.Where("campusid = ?", key.CampusID)
	}

	var ids []uint
	if err := q.Limit(1).Pluck("id", &ids).Error; err != nil {
		return 0, false, fmt.Errorf("failed to find %s %q: %w", kind, key.Nome, err)
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}

func (s *GormStore) Create(ctx context.Context, kind Kind, key Key) (uint, error) {
	var id uint

	// The nested transaction is a savepoint, so a failed insert leaves the run's transaction usable.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch kind {
		case KindCampus:
			row := models.Campus{Nome: key.Nome}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			id = row.ID
		case KindUnidade:
			row := models.Unidade{Nome: key.Nome}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			id = row.ID
		case KindPredio:
			row := models.Predio{CampusID: key.CampusID, Nome: key.Nome}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			id = row.ID
		default:
			return fmt.Errorf("unknown kind %q", kind)
		}
		return nil
	})
	if err != nil {
		if database.IsDuplicateKey(err) {
			return 0, fmt.Errorf("%w: %s %q", database.ErrDuplicateKey, kind, key.Nome)
		}
		return 0, fmt.Errorf("failed to create %s %q: %w", kind, key.Nome, err)
	}

	return id, nil
}

func (s *GormStore) UpsertCompartimento(ctx context.Context, room *models.Compartimento) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "predioid"}, {Name: "nome"}},
		DoUpdates: clause.AssignmentColumns(models.UpdatableColumns),
	}).Create(room).Error
	if err != nil {
		return fmt.Errorf("failed to upsert compartimento %q: %w", room.Nome, err)
	}
	return nil
}

// nameEquals compares natural keys byte for byte. MySQL's default collations ignore case.
func (s *GormStore) nameEquals() string {
	if s.db.Dialector.Name() == database.DriverMySQL {
		return "BINARY nome = ?"
	}
	return "nome = ?"
}

func newModel(kind Kind) (any, error) {
	switch kind {
	case KindCampus:
		return &models.Campus{}, nil
	case KindUnidade:
		return &models.Unidade{}, nil
	case KindPredio:
		return &models.Predio{}, nil
	default:
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
}
