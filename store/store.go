package store

import (
	"context"
	"errors"
	"time"

	"github.com/zlnvch/notekeep/models"
)

type NotesStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	CreateNote(ctx context.Context, note models.Note) (models.Note, error)
	GetNote(ctx context.Context, ownerId string, noteId string) (models.Note, error)
	// QueryNotes returns every note of ownerId matching filter, in no particular order.
	QueryNotes(ctx context.Context, ownerId string, filter models.NoteFilter) ([]models.Note, error)
	UpdateNote(ctx context.Context, ownerId string, noteId string, patch models.NotePatch, updatedAt time.Time) (models.Note, error)
	DeleteNote(ctx context.Context, ownerId string, noteId string) error
}

// Custom error types for clarity
var (
	ErrItemNotFound = errors.New("item does not exist")
	ErrItemExists   = errors.New("item already exists")
)
