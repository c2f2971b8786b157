package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/zlnvch/notekeep/models"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetNote(ctx context.Context, ownerId string, noteId string) (models.Note, bool, error) {
	args := m.Called(ctx, ownerId, noteId)
	return args.Get(0).(models.Note), args.Bool(1), args.Error(2)
}

func (m *MockCache) SetNote(ctx context.Context, note models.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockCache) InvalidateNote(ctx context.Context, ownerId string, noteId string) error {
	args := m.Called(ctx, ownerId, noteId)
	return args.Error(0)
}
