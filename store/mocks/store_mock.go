package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/zlnvch/notekeep/models"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockStore) CreateNote(ctx context.Context, note models.Note) (models.Note, error) {
	args := m.Called(ctx, note)
	return args.Get(0).(models.Note), args.Error(1)
}

func (m *MockStore) GetNote(ctx context.Context, ownerId string, noteId string) (models.Note, error) {
	args := m.Called(ctx, ownerId, noteId)
	return args.Get(0).(models.Note), args.Error(1)
}

func (m *MockStore) QueryNotes(ctx context.Context, ownerId string, filter models.NoteFilter) ([]models.Note, error) {
	args := m.Called(ctx, ownerId, filter)
	return args.Get(0).([]models.Note), args.Error(1)
}

func (m *MockStore) UpdateNote(ctx context.Context, ownerId string, noteId string, patch models.NotePatch, updatedAt time.Time) (models.Note, error) {
	args := m.Called(ctx, ownerId, noteId, patch, updatedAt)
	return args.Get(0).(models.Note), args.Error(1)
}

func (m *MockStore) DeleteNote(ctx context.Context, ownerId string, noteId string) error {
	args := m.Called(ctx, ownerId, noteId)
	return args.Error(0)
}
