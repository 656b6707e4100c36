package uiprefs

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	"github.com/V2473/pokedex/internal/errors"
)

func TestDefaultsAndNormalize(t *testing.T) {
	require.Equal(t, Prefs{Theme: ThemeSystem, ViewType: ViewGrid}, DefaultPrefs())
	require.Equal(t, DefaultPrefs(), Prefs{Theme: "neon", ViewType: "carousel"}.Normalize())
	require.Equal(t, Prefs{Theme: ThemeDark, ViewType: ViewList}, NewStore(Prefs{Theme: ThemeDark, ViewType: ViewList}).Prefs())
}

func TestSetters(t *testing.T) {
	s := NewStore(DefaultPrefs())
	var seen []Prefs
	s.Subscribe(func(p Prefs) { seen = append(seen, p) })

	require.NoError(t, s.SetTheme(ThemeDark))
	require.NoError(t, s.SetViewType(ViewList))
	require.NoError(t, s.SetViewType(ViewList))

	err := s.SetTheme("sepia")
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	require.Equal(t, Prefs{Theme: ThemeDark, ViewType: ViewList}, s.Prefs())
	require.Len(t, seen, 2, "repeated value does not publish")
}

func TestNotifications(t *testing.T) {
	s := NewStore(DefaultPrefs())
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	a := s.Notify(KindSuccess, "Added to favorites", 0)
	b := s.Notify(KindError, "Failed to fetch", 10*time.Second)
	require.NotEqual(t, a, b)
	_, err := ulid.Parse(a)
	require.NoError(t, err)

	active := s.Active(base.Add(time.Second))
	require.Len(t, active, 2)
	require.Equal(t, "Added to favorites", active[0].Message)

	active = s.Active(base.Add(DefaultTTL))
	require.Len(t, active, 1)
	require.Equal(t, b, active[0].ID)

	s.Dismiss(b)
	s.Dismiss("unknown")
	require.Empty(t, s.Active(base))
}

func TestClearNotifications(t *testing.T) {
	s := NewStore(DefaultPrefs())
	s.Notify(KindInfo, "one", time.Minute)
	s.ClearNotifications()
	require.Empty(t, s.Active(time.Now()))
}

func TestParse(t *testing.T) {
	th, err := ParseTheme("light")
	require.NoError(t, err)
	require.Equal(t, ThemeLight, th)

	_, err = ParseView("table")
	require.Error(t, err)
}
