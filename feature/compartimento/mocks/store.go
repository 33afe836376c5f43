package mocks

import (
	"context"

	"dataharvester/feature/compartimento"
	"dataharvester/feature/compartimento/models"

	"github.com/stretchr/testify/mock"
)

// Store is a mock implementation of compartimento.Store
type Store struct {
	mock.Mock
}

func (m *Store) LoadAll(ctx context.Context, kind compartimento.Kind) (map[compartimento.Key]uint, error) {
	args := m.Called(ctx, kind)
	if index, ok := args.Get(0).(map[compartimento.Key]uint); ok {
		return index, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) Find(ctx context.Context, kind compartimento.Kind, key compartimento.Key) (uint, bool, error) {
	args := m.Called(ctx, kind, key)
	return args.Get(0).(uint), args.Bool(1), args.Error(2)
}

func (m *Store) Create(ctx context.Context, kind compartimento.Kind, key compartimento.Key) (uint, error) {
	args := m.Called(ctx, kind, key)
	return args.Get(0).(uint), args.Error(1)
}

func (m *Store) UpsertCompartimento(ctx context.Context, room *models.Compartimento) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}
