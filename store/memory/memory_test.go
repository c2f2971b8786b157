package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/zlnvch/notekeep/models"
	"github.com/zlnvch/notekeep/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := NewMemoryNotesStore()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, models.User{Email: "a@b.co"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.Id)

	_, err = s.CreateUser(ctx, models.User{Email: "a@b.co"})
	assert.ErrorIs(t, err, store.ErrItemExists)

	got, err := s.GetUserByEmail(ctx, "a@b.co")
	require.NoError(t, err)
	assert.Equal(t, u.Id, got.Id)

	_, err = s.GetUserByEmail(ctx, "missing@b.co")
	assert.ErrorIs(t, err, store.ErrItemNotFound)
}

func TestCreateUser_ConcurrentSameEmail(t *testing.T) {
	s := NewMemoryNotesStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateUser(ctx, models.User{Email: "race@b.co"})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	created := 0
	for err := range results {
		if err == nil {
			created++
		} else {
			assert.ErrorIs(t, err, store.ErrItemExists)
		}
	}
	assert.Equal(t, 1, created)
}

func TestNotes_OwnerScoping(t *testing.T) {
	s := NewMemoryNotesStore()
	ctx := context.Background()
	now := time.Now()

	note, err := s.CreateNote(ctx, models.Note{OwnerId: "a", Title: "secret", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	_, err = s.GetNote(ctx, "b", note.Id)
	assert.ErrorIs(t, err, store.ErrItemNotFound)

	_, err = s.UpdateNote(ctx, "b", note.Id, models.NotePatch{Title: models.Some("x")}, now)
	assert.ErrorIs(t, err, store.ErrItemNotFound)

	err = s.DeleteNote(ctx, "b", note.Id)
	assert.ErrorIs(t, err, store.ErrItemNotFound)

	notes, err := s.QueryNotes(ctx, "b", models.NoteFilter{})
	require.NoError(t, err)
	assert.Empty(t, notes)

	got, err := s.GetNote(ctx, "a", note.Id)
	require.NoError(t, err)
	assert.Equal(t, "secret", got.Title)
}

func TestQueryNotes_Filters(t *testing.T) {
	s := NewMemoryNotesStore()
	ctx := context.Background()
	now := time.Now()

	fixtures := []models.Note{
		{OwnerId: "a", Title: "Foo bar", Labels: []string{"work"}},
		{OwnerId: "a", Content: "has FOO inside", Pinned: true},
		{OwnerId: "a", Title: "nothing", Archived: true, Labels: []string{"home", "work"}},
	}
	for _, n := range fixtures {
		n.CreatedAt, n.UpdatedAt = now, now
		_, err := s.CreateNote(ctx, n)
		require.NoError(t, err)
	}

	yes := true
	tests := []struct {
		filter models.NoteFilter
		want   int
	}{
		{models.NoteFilter{}, 3},
		{models.NoteFilter{Query: "foo"}, 2},
		{models.NoteFilter{Label: "work"}, 2},
		{models.NoteFilter{Label: "wor"}, 0},
		{models.NoteFilter{Pinned: &yes}, 1},
		{models.NoteFilter{Archived: &yes, Label: "home"}, 1},
		{models.NoteFilter{Query: "foo", Label: "work"}, 1},
	}
	for i, tc := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			notes, err := s.QueryNotes(ctx, "a", tc.filter)
			require.NoError(t, err)
			assert.Len(t, notes, tc.want)
		})
	}
}

func TestUpdateNote_Partial(t *testing.T) {
	s := NewMemoryNotesStore()
	ctx := context.Background()
	created := time.Now().Add(-time.Hour)

	note, err := s.CreateNote(ctx, models.Note{OwnerId: "a", Title: "A", Content: "B", Labels: []string{"l"}, CreatedAt: created, UpdatedAt: created})
	require.NoError(t, err)

	later := time.Now()
	got, err := s.UpdateNote(ctx, "a", note.Id, models.NotePatch{Pinned: models.Some(true)}, later)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)
	assert.Equal(t, "B", got.Content)
	assert.Equal(t, []string{"l"}, got.Labels)
	assert.True(t, got.Pinned)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, later, got.UpdatedAt)
}

func TestReturnedNotesAreCopies(t *testing.T) {
	s := NewMemoryNotesStore()
	ctx := context.Background()

	note, err := s.CreateNote(ctx, models.Note{OwnerId: "a", Title: "A", Labels: []string{"x"}})
	require.NoError(t, err)
	note.Labels[0] = "mutated"

	got, err := s.GetNote(ctx, "a", note.Id)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got.Labels)
}
