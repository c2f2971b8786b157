// Package memory is a process-local NotesStore for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/zlnvch/notekeep/models"
	"github.com/zlnvch/notekeep/store"
)

type MemoryNotesStore struct {
	mu sync.RWMutex
	// email -> user
	users map[string]models.User
	// ownerId -> noteId -> note
	notes map[string]map[string]models.Note
}

func NewMemoryNotesStore() *MemoryNotesStore {
	return &MemoryNotesStore{
		users: make(map[string]models.User),
		notes: make(map[string]map[string]models.Note),
	}
}

func (m *MemoryNotesStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	userId, err := uuid.NewV4()
	if err != nil {
		return models.User{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.Email]; ok {
		return models.User{}, store.ErrItemExists
	}
	user.Id = userId.String()
	m.users[user.Email] = user
	return user, nil
}

func (m *MemoryNotesStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[email]
	if !ok {
		return models.User{}, store.ErrItemNotFound
	}
	return user, nil
}

func (m *MemoryNotesStore) CreateNote(ctx context.Context, note models.Note) (models.Note, error) {
	noteId, err := uuid.NewV7()
	if err != nil {
		return models.Note{}, err
	}
	note.Id = noteId.String()
	note.Labels = cloneLabels(note.Labels)

	m.mu.Lock()
	defer m.mu.Unlock()

	owned, ok := m.notes[note.OwnerId]
	if !ok {
		owned = make(map[string]models.Note)
		m.notes[note.OwnerId] = owned
	}
	owned[note.Id] = note
	return copyNote(note), nil
}

func (m *MemoryNotesStore) GetNote(ctx context.Context, ownerId string, noteId string) (models.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	note, ok := m.notes[ownerId][noteId]
	if !ok {
		return models.Note{}, store.ErrItemNotFound
	}
	return copyNote(note), nil
}

func (m *MemoryNotesStore) QueryNotes(ctx context.Context, ownerId string, filter models.NoteFilter) ([]models.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	notes := make([]models.Note, 0, len(m.notes[ownerId]))
	for _, note := range m.notes[ownerId] {
		if filter.Matches(note) {
			notes = append(notes, copyNote(note))
		}
	}
	return notes, nil
}

func (m *MemoryNotesStore) UpdateNote(ctx context.Context, ownerId string, noteId string, patch models.NotePatch, updatedAt time.Time) (models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	note, ok := m.notes[ownerId][noteId]
	if !ok {
		return models.Note{}, store.ErrItemNotFound
	}
	note = patch.Apply(note, updatedAt)
	m.notes[ownerId][noteId] = note
	return copyNote(note), nil
}

func (m *MemoryNotesStore) DeleteNote(ctx context.Context, ownerId string, noteId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.notes[ownerId][noteId]; !ok {
		return store.ErrItemNotFound
	}
	delete(m.notes[ownerId], noteId)
	return nil
}

func cloneLabels(labels []string) []string {
	return append([]string{}, labels...)
}

func copyNote(n models.Note) models.Note {
	n.Labels = cloneLabels(n.Labels)
	return n
}
