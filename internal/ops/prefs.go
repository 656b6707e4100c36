package ops

import (
	"context"
	"time"

	"github.com/V2473/pokedex/internal/uiprefs"
)

// PrefsInput contains preference changes. Empty fields are left unchanged.
type PrefsInput struct {
	Theme string
	View  string
}

// PrefsOutput is every persisted preference.
type PrefsOutput struct {
	Theme        uiprefs.Theme    `json:"theme"`
	ViewType     uiprefs.ViewType `json:"view_type"`
	SortBy       string           `json:"sort_by"`
	ItemsPerPage int              `json:"items_per_page"`
}

// Prefs returns the current preferences.
func (s *Session) Prefs() *PrefsOutput {
	ui := s.UI.Prefs()
	q := s.Query.Prefs()
	return &PrefsOutput{
		Theme:        ui.Theme,
		ViewType:     ui.ViewType,
		SortBy:       q.SortBy.String(),
		ItemsPerPage: q.ItemsPerPage,
	}
}

// SetPrefs validates and applies the theme and layout. Nothing changes when
// either value is invalid.
func (s *Session) SetPrefs(ctx context.Context, input PrefsInput) (*PrefsOutput, error) {
	var theme uiprefs.Theme
	var view uiprefs.ViewType
	var err error
	if input.Theme != "" {
		if theme, err = uiprefs.ParseTheme(input.Theme); err != nil {
			return nil, err
		}
	}
	if input.View != "" {
		if view, err = uiprefs.ParseView(input.View); err != nil {
			return nil, err
		}
	}
	if theme != "" {
		if err := s.UI.SetTheme(theme); err != nil {
			return nil, err
		}
	}
	if view != "" {
		if err := s.UI.SetViewType(view); err != nil {
			return nil, err
		}
	}
	return s.Prefs(), nil
}

// SetTheme sets the color scheme.
func (s *Session) SetTheme(ctx context.Context, theme string) (*PrefsOutput, error) {
	return s.SetPrefs(ctx, PrefsInput{Theme: theme})
}

// SetView sets the listing layout.
func (s *Session) SetView(ctx context.Context, view string) (*PrefsOutput, error) {
	return s.SetPrefs(ctx, PrefsInput{View: view})
}

// Notifications returns the active notifications.
func (s *Session) Notifications() []uiprefs.Notification {
	return s.UI.Active(time.Now())
}

// Dismiss removes one notification.
func (s *Session) Dismiss(id string) {
	s.UI.Dismiss(id)
}

// ResetQuery restores default filters and sort, keeping the page size.
func (s *Session) ResetQuery(ctx context.Context) (*QueryOutput, error) {
	return s.ApplyQuery(ctx, QueryInput{Reset: true})
}

func (s *Session) requireAPI() error {
	if s.api == nil {
		return errNoAPI
	}
	return nil
}
