package cache

import (
	"context"

	"github.com/zlnvch/notekeep/models"
)

type NotesCache interface {
	// GetNote returns ok=false on a miss.
	GetNote(ctx context.Context, ownerId string, noteId string) (note models.Note, ok bool, err error)
	SetNote(ctx context.Context, note models.Note) error
	InvalidateNote(ctx context.Context, ownerId string, noteId string) error
}

// NoopCache is used when no cache backend is configured.
type NoopCache struct{}

func (NoopCache) GetNote(ctx context.Context, ownerId string, noteId string) (models.Note, bool, error) {
	return models.Note{}, false, nil
}

func (NoopCache) SetNote(ctx context.Context, note models.Note) error {
	return nil
}

func (NoopCache) InvalidateNote(ctx context.Context, ownerId string, noteId string) error {
	return nil
}
