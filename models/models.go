package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

type User struct {
	Id           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the only view of a User that leaves the service.
type PublicUser struct {
	Id    string `json:"id"`
	Email string `json:"email"`
}

func (u User) Public() PublicUser {
	return PublicUser{Id: u.Id, Email: u.Email}
}

const DefaultNoteColor = "default"

type Note struct {
	Id        string
	OwnerId   string
	Title     string
	Content   string
	Labels    []string
	Color     string
	Pinned    bool
	Archived  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WireTimeLayout is the ISO-8601 form timestamps take on the wire.
const WireTimeLayout = "2006-01-02T15:04:05.000Z07:00"

type noteJSON struct {
	Id        string   `json:"id"`
	UserId    string   `json:"userId"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Labels    []string `json:"labels"`
	Color     string   `json:"color"`
	Pinned    bool     `json:"pinned"`
	Archived  bool     `json:"archived"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
}

func (n Note) MarshalJSON() ([]byte, error) {
	labels := n.Labels
	if labels == nil {
		labels = []string{}
	}
	return json.Marshal(noteJSON{
		Id:        n.Id,
		UserId:    n.OwnerId,
		Title:     n.Title,
		Content:   n.Content,
		Labels:    labels,
		Color:     n.Color,
		Pinned:    n.Pinned,
		Archived:  n.Archived,
		CreatedAt: n.CreatedAt.UTC().Format(WireTimeLayout),
		UpdatedAt: n.UpdatedAt.UTC().Format(WireTimeLayout),
	})
}

func (n *Note) UnmarshalJSON(data []byte) error {
	var nj noteJSON
	if err := json.Unmarshal(data, &nj); err != nil {
		return err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, nj.CreatedAt)
	if err != nil {
		return err
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, nj.UpdatedAt)
	if err != nil {
		return err
	}
	*n = Note{
		Id:        nj.Id,
		OwnerId:   nj.UserId,
		Title:     nj.Title,
		Content:   nj.Content,
		Labels:    nj.Labels,
		Color:     nj.Color,
		Pinned:    nj.Pinned,
		Archived:  nj.Archived,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	return nil
}

// NoteFilter narrows a listing. Nil pointers and empty strings mean "any".
type NoteFilter struct {
	Query    string
	Label    string
	Pinned   *bool
	Archived *bool
}

// Matches reports whether n satisfies every condition of the filter.
// Ownership is not part of the filter; callers scope by owner first.
func (f NoteFilter) Matches(n Note) bool {
	if f.Pinned != nil && n.Pinned != *f.Pinned {
		return false
	}
	if f.Archived != nil && n.Archived != *f.Archived {
		return false
	}
	if f.Label != "" {
		found := false
		for _, l := range n.Labels {
			if l == f.Label {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(n.Title), q) && !strings.Contains(strings.ToLower(n.Content), q) {
			return false
		}
	}
	return true
}

var errNullField = errors.New("field must not be null")

// Optional records whether a JSON field was present in the request body.
type Optional[T any] struct {
	Set   bool
	Value T
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return errNullField
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Set = true
	return nil
}

// NotePatch carries a partial update; only Set fields are applied.
type NotePatch struct {
	Title    Optional[string]   `json:"title"`
	Content  Optional[string]   `json:"content"`
	Labels   Optional[[]string] `json:"labels"`
	Color    Optional[string]   `json:"color"`
	Pinned   Optional[bool]     `json:"pinned"`
	Archived Optional[bool]     `json:"archived"`
}

// Apply returns a copy of n with every present field replaced and
// UpdatedAt set to updatedAt.
func (p NotePatch) Apply(n Note, updatedAt time.Time) Note {
	if p.Title.Set {
		n.Title = p.Title.Value
	}
	if p.Content.Set {
		n.Content = p.Content.Value
	}
	if p.Labels.Set {
		n.Labels = append([]string{}, p.Labels.Value...)
	}
	if p.Color.Set {
		n.Color = p.Color.Value
	}
	if p.Pinned.Set {
		n.Pinned = p.Pinned.Value
	}
	if p.Archived.Set {
		n.Archived = p.Archived.Value
	}
	n.UpdatedAt = updatedAt
	return n
}
