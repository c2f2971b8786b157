package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/zlnvch/notekeep/models"
	"github.com/zlnvch/notekeep/store"
)

const (
	DefaultPage      = 1
	DefaultPageLimit = 20
	DefaultFlatLimit = 100
	MaxLimit         = 100
)

// NoteInput holds the client-supplied fields of a new note.
type NoteInput struct {
	Title    string
	Content  string
	Labels   []string
	Color    string
	Pinned   bool
	Archived bool
}

// NotePage is one page of a paginated listing.
type NotePage struct {
	Notes []models.Note `json:"notes"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func (s *Service) CreateNote(ctx context.Context, ownerId string, input NoteInput) (models.Note, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" && content == "" {
		return models.Note{}, invalidInput("title or content is required")
	}
	if err := ValidateLabels(input.Labels); err != nil {
		return models.Note{}, err
	}

	labels := append([]string{}, input.Labels...)
	color := input.Color
	if color == "" {
		color = models.DefaultNoteColor
	}

	now := s.now()
	note, err := s.Store.CreateNote(ctx, models.Note{
		OwnerId:   ownerId,
		Title:     title,
		Content:   content,
		Labels:    labels,
		Color:     color,
		Pinned:    input.Pinned,
		Archived:  input.Archived,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return models.Note{}, fmt.Errorf("create note failed: %w", err)
	}

	return note, nil
}

func (s *Service) GetNote(ctx context.Context, ownerId string, noteId string) (models.Note, error) {
	if note, ok, err := s.Cache.GetNote(ctx, ownerId, noteId); err != nil {
		s.Logger.Warn("note cache read failed", zap.String("noteId", noteId), zap.Error(err))
	} else if ok {
		return note, nil
	}

	note, err := s.Store.GetNote(ctx, ownerId, noteId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.Note{}, errNoteNotFound
		}
		return models.Note{}, fmt.Errorf("get note failed: %w", err)
	}

	if err := s.Cache.SetNote(ctx, note); err != nil {
		s.Logger.Warn("note cache write failed", zap.String("noteId", noteId), zap.Error(err))
	}

	return note, nil
}

// ListNotes returns one page of the owner's notes matching filter, pinned
// first then most recently updated.
func (s *Service) ListNotes(ctx context.Context, ownerId string, filter models.NoteFilter, page int, limit int) (NotePage, error) {
	if page < 1 {
		page = DefaultPage
	}
	limit = clampLimit(limit, DefaultPageLimit)

	notes, err := s.queryNotesSorted(ctx, ownerId, filter)
	if err != nil {
		return NotePage{}, err
	}

	total := len(notes)
	// Pages past the end are empty; checking first keeps (page-1)*limit
	// from overflowing for huge page numbers.
	start := total
	if page-1 <= total/limit {
		start = min((page-1)*limit, total)
	}
	end := start + limit
	if end > total {
		end = total
	}

	return NotePage{
		Notes: notes[start:end],
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

// ListNotesFlat returns at most limit of the owner's notes matching filter,
// in the same order as ListNotes, without paging metadata.
func (s *Service) ListNotesFlat(ctx context.Context, ownerId string, filter models.NoteFilter, limit int) ([]models.Note, error) {
	limit = clampLimit(limit, DefaultFlatLimit)

	notes, err := s.queryNotesSorted(ctx, ownerId, filter)
	if err != nil {
		return nil, err
	}

	if len(notes) > limit {
		notes = notes[:limit]
	}
	return notes, nil
}

func (s *Service) queryNotesSorted(ctx context.Context, ownerId string, filter models.NoteFilter) ([]models.Note, error) {
	notes, err := s.Store.QueryNotes(ctx, ownerId, filter)
	if err != nil {
		return nil, fmt.Errorf("list notes failed: %w", err)
	}
	if notes == nil {
		notes = []models.Note{}
	}
	SortNotes(notes)
	return notes, nil
}

// SortNotes orders pinned notes first, then by UpdatedAt descending. Ties
// fall back to Id descending so repeated listings agree.
func SortNotes(notes []models.Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		a, b := notes[i], notes[j]
		if a.Pinned != b.Pinned {
			return a.Pinned
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.Id > b.Id
	})
}

func clampLimit(limit int, def int) int {
	if limit < 1 {
		return def
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func (s *Service) UpdateNote(ctx context.Context, ownerId string, noteId string, patch models.NotePatch) (models.Note, error) {
	if patch.Title.Set {
		patch.Title.Value = strings.TrimSpace(patch.Title.Value)
	}
	if patch.Content.Set {
		patch.Content.Value = strings.TrimSpace(patch.Content.Value)
	}
	if patch.Labels.Set {
		if err := ValidateLabels(patch.Labels.Value); err != nil {
			return models.Note{}, err
		}
	}

	note, err := s.Store.UpdateNote(ctx, ownerId, noteId, patch, s.now())
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.Note{}, errNoteNotFound
		}
		return models.Note{}, fmt.Errorf("update note failed: %w", err)
	}

	s.invalidate(ctx, ownerId, noteId)
	return note, nil
}

func (s *Service) DeleteNote(ctx context.Context, ownerId string, noteId string) error {
	if err := s.Store.DeleteNote(ctx, ownerId, noteId); err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return errNoteNotFound
		}
		return fmt.Errorf("delete note failed: %w", err)
	}

	s.invalidate(ctx, ownerId, noteId)
	return nil
}

func (s *Service) invalidate(ctx context.Context, ownerId string, noteId string) {
	if err := s.Cache.InvalidateNote(ctx, ownerId, noteId); err != nil {
		s.Logger.Warn("note cache invalidation failed", zap.String("noteId", noteId), zap.Error(err))
	}
}
