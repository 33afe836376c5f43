package mocks

import (
	"context"

	"dataharvester/core/source"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of source.Client
type Client struct {
	mock.Mock
}

func (m *Client) Fetch(ctx context.Context) (*source.Payload, error) {
	args := m.Called(ctx)
	if p, ok := args.Get(0).(*source.Payload); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
