// Package store keeps the ordered tag collection and the edits the settings
// UI performs on it: add, edit, delete, toggle, reorder, import and export.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/phyten/tagfilter/internal/config"
	"github.com/phyten/tagfilter/internal/engine"
	"github.com/phyten/tagfilter/internal/model"
)

var (
	ErrNotFound    = errors.New("tag not found")
	ErrInvalidTag  = errors.New("invalid tag")
	ErrDuplicateID = errors.New("duplicate tag id")
)

// Store is safe for concurrent use. Every slice it hands out is a copy.
type Store struct {
	mu    sync.Mutex
	tags  []model.Tag
	newID func() string
}

// New returns a store seeded with tags. Records without an id get one.
func New(tags []model.Tag) *Store {
	s := &Store{newID: uuid.NewString}
	s.tags = model.CloneTags(tags)
	if s.tags == nil {
		s.tags = []model.Tag{}
	}
	for i := range s.tags {
		if strings.TrimSpace(s.tags[i].ID) == "" {
			s.tags[i].ID = s.newID()
		}
	}
	return s
}

func (s *Store) List() []model.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := model.CloneTags(s.tags)
	if out == nil {
		out = []model.Tag{}
	}
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tags)
}

func (s *Store) Get(id string) (model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return model.Tag{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.tags[i], nil
}

// Add validates a new definition, assigns it a fresh id and appends it.
func (s *Store) Add(name, openTag, closeTag string, enabled bool) (model.Tag, error) {
	tag := model.Tag{Name: name, OpenTag: openTag, CloseTag: closeTag, Enabled: enabled}
	if err := check(tag); err != nil {
		return model.Tag{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tag.ID = s.newID()
	s.tags = append(s.tags, tag)
	return tag, nil
}

// Update replaces the tag with the same id, keeping its position.
func (s *Store) Update(tag model.Tag) (model.Tag, error) {
	if err := check(tag); err != nil {
		return model.Tag{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(tag.ID)
	if i < 0 {
		return model.Tag{}, fmt.Errorf("%w: %s", ErrNotFound, tag.ID)
	}
	s.tags[i] = tag
	return tag, nil
}

func (s *Store) Delete(id string) (model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return model.Tag{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	removed := s.tags[i]
	s.tags = append(s.tags[:i:i], s.tags[i+1:]...)
	return removed, nil
}

func (s *Store) SetEnabled(id string, enabled bool) (model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return model.Tag{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.tags[i].Enabled = enabled
	return s.tags[i], nil
}

// Move puts the tag at index to (clamped to the collection bounds). Order
// matters for stripping, so this is how overlapping tags are prioritised.
func (s *Store) Move(id string, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	from := s.indexOf(id)
	if from < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if to < 0 {
		to = 0
	}
	if to > len(s.tags)-1 {
		to = len(s.tags) - 1
	}
	if from == to {
		return nil
	}
	tag := s.tags[from]
	rest := append(s.tags[:from:from], s.tags[from+1:]...)
	out := make([]model.Tag, 0, len(s.tags))
	out = append(out, rest[:to]...)
	out = append(out, tag)
	out = append(out, rest[to:]...)
	s.tags = out
	return nil
}

// Export writes the collection as an indented JSON array.
func (s *Store) Export(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(s.List())
}

// Import reads a JSON array of tags. With replace the collection is swapped
// out, otherwise records are appended. Nothing changes unless every record
// validates.
func (s *Store) Import(r io.Reader, replace bool) (int, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return 0, fmt.Errorf("decode import: %w", err)
	}
	incoming, err := config.DecodeTags(raw, "import")
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{})
	if !replace {
		for _, t := range s.tags {
			seen[t.ID] = struct{}{}
		}
	}
	for i := range incoming {
		if err := check(incoming[i]); err != nil {
			return 0, fmt.Errorf("import[%d]: %w", i, err)
		}
		if incoming[i].ID == "" {
			incoming[i].ID = s.newID()
		}
		if _, dup := seen[incoming[i].ID]; dup {
			return 0, fmt.Errorf("import[%d]: %w: %s", i, ErrDuplicateID, incoming[i].ID)
		}
		seen[incoming[i].ID] = struct{}{}
	}
	if replace {
		s.tags = incoming
	} else {
		s.tags = append(s.tags, incoming...)
	}
	return len(incoming), nil
}

func (s *Store) indexOf(id string) int {
	id = strings.TrimSpace(id)
	for i := range s.tags {
		if s.tags[i].ID == id {
			return i
		}
	}
	return -1
}

func check(tag model.Tag) error {
	if res := engine.Validate(tag); !res.IsValid {
		return fmt.Errorf("%w: %s", ErrInvalidTag, res.Message)
	}
	return nil
}
