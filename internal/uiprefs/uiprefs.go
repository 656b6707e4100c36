// Package uiprefs holds display preferences and transient notifications.
package uiprefs

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/V2473/pokedex/internal/errors"
	"github.com/V2473/pokedex/internal/observe"
)

// StorageKey is the persisted blob name for Prefs.
const StorageKey = "ui-storage"

// DefaultTTL is how long a notification stays active.
const DefaultTTL = 5 * time.Second

// Theme is the color scheme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// ParseTheme validates a theme name.
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(s); t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return t, nil
	}
	return "", errors.NewInvalidRequest(fmt.Sprintf("theme must be light, dark or system, got %q", s))
}

// ViewType is the listing layout.
type ViewType string

const (
	ViewGrid ViewType = "grid"
	ViewList ViewType = "list"
)

// ParseView validates a layout name.
func ParseView(s string) (ViewType, error) {
	switch v := ViewType(s); v {
	case ViewGrid, ViewList:
		return v, nil
	}
	return "", errors.NewInvalidRequest(fmt.Sprintf("view must be grid or list, got %q", s))
}

// Prefs is the persisted UI state.
type Prefs struct {
	Theme    Theme    `json:"theme"`
	ViewType ViewType `json:"view_type"`
}

// DefaultPrefs follows the system theme in a grid.
func DefaultPrefs() Prefs {
	return Prefs{Theme: ThemeSystem, ViewType: ViewGrid}
}

// Normalize replaces invalid fields with defaults.
func (p Prefs) Normalize() Prefs {
	d := DefaultPrefs()
	if _, err := ParseTheme(string(p.Theme)); err != nil {
		p.Theme = d.Theme
	}
	if _, err := ParseView(string(p.ViewType)); err != nil {
		p.ViewType = d.ViewType
	}
	return p
}

// Kind classifies a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

// Notification is a toast message. It is never persisted.
type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store holds preferences and the active notifications.
type Store struct {
	mu            sync.Mutex
	prefs         Prefs
	notifications []Notification
	now           func() time.Time
	entropy       *ulid.MonotonicEntropy

	changes observe.Ordered[Prefs]
}

// NewStore returns a store holding initial (normalized).
func NewStore(initial Prefs) *Store {
	return &Store{
		prefs:   initial.Normalize(),
		now:     time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Prefs returns the current preferences.
func (s *Store) Prefs() Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// SetTheme changes the theme.
func (s *Store) SetTheme(t Theme) error {
	if _, err := ParseTheme(string(t)); err != nil {
		return err
	}
	s.update(func(p *Prefs) { p.Theme = t })
	return nil
}

// SetViewType changes the listing layout.
func (s *Store) SetViewType(v ViewType) error {
	if _, err := ParseView(string(v)); err != nil {
		return err
	}
	s.update(func(p *Prefs) { p.ViewType = v })
	return nil
}

// Subscribe registers fn for preference changes.
func (s *Store) Subscribe(fn func(Prefs)) func() {
	return s.changes.Subscribe(fn)
}

func (s *Store) update(fn func(*Prefs)) {
	s.mu.Lock()
	before := s.prefs
	fn(&s.prefs)
	if s.prefs != before {
		s.changes.Queue(s.prefs)
	}
	s.mu.Unlock()

	s.changes.Flush()
}

// Notify adds a notification and returns its id. A ttl of zero uses DefaultTTL.
func (s *Store) Notify(kind Kind, message string, ttl time.Duration) string {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	id := ulid.MustNew(ulid.Timestamp(now), s.entropy).String()
	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Kind:      kind,
		Message:   message,
		ExpiresAt: now.Add(ttl),
	})
	return id
}

// Dismiss removes a notification. Unknown ids are ignored.
func (s *Store) Dismiss(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearNotifications removes every notification.
func (s *Store) ClearNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = nil
}

// Active drops notifications expired at now and returns the rest, oldest first.
func (s *Store) Active(now time.Time) []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.notifications[:0]
	for _, n := range s.notifications {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}
	s.notifications = kept
	return append([]Notification(nil), kept...)
}
