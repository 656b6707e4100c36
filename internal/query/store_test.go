package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore_ChangeFlags(t *testing.T) {
	s := NewStore(Default())
	var changes []Change
	s.Subscribe(func(c Change) { changes = append(changes, c) })

	s.SetPage(3)
	require.Len(t, changes, 1)
	require.True(t, changes[0].WindowChanged)
	require.False(t, changes[0].FilterChanged)

	require.NoError(t, s.SetTypes([]string{"fire"}))
	require.Len(t, changes, 2)
	require.True(t, changes[1].FilterChanged)
	require.True(t, changes[1].WindowChanged, "page 3 -> 1")
	require.Equal(t, 3, changes[1].Old.Page)
	require.Equal(t, 1, changes[1].New.Page)

	require.NoError(t, s.SetSort(Sort{Field: FieldName, Direction: Asc}))
	require.Len(t, changes, 3)
	require.True(t, changes[2].FilterChanged)
	require.False(t, changes[2].WindowChanged)
}

func TestStore_NoOpIsSilent(t *testing.T) {
	s := NewStore(Default())
	calls := 0
	s.Subscribe(func(Change) { calls++ })

	s.SetPage(1)
	s.SetSearch("")
	require.NoError(t, s.SetPerPage(20))
	require.Zero(t, calls)
}

func TestStore_PerPageFiftyFromPageThree(t *testing.T) {
	s := NewStore(Default().WithPage(3))
	var last Change
	s.Subscribe(func(c Change) { last = c })

	require.NoError(t, s.SetPerPage(50))
	require.True(t, last.WindowChanged)
	require.Equal(t, Window{Limit: 50, Offset: 0}, s.State().Window())
}

func TestStore_InvalidLeavesState(t *testing.T) {
	s := NewStore(Default().WithPage(2))
	calls := 0
	s.Subscribe(func(Change) { calls++ })

	require.Error(t, s.SetPerPage(33))
	require.Error(t, s.ToggleType("shadow"))
	require.Error(t, s.SetGenerations([]int{0}))
	require.Error(t, s.SetMinStats(Stats{"hp": -1}))
	require.Error(t, s.SetSort(Sort{Field: FieldID, Direction: "sideways"}))

	require.Zero(t, calls)
	require.Equal(t, 2, s.State().Page)
}

func TestStore_UpdateBatchesOneChange(t *testing.T) {
	s := NewStore(Default())
	calls := 0
	s.Subscribe(func(Change) { calls++ })

	err := s.Update(func(st State) (State, error) {
		st = st.WithSearch("char")
		st, err := st.WithTypes([]string{"fire"})
		if err != nil {
			return st, err
		}
		return st.WithPage(2), nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.Equal(t, 2, s.State().Page)
}

func TestStore_StateIsCopy(t *testing.T) {
	s := NewStore(Default())
	require.NoError(t, s.SetTypes([]string{"fire"}))
	st := s.State()
	st.Types[0] = "water"
	st.MinStats["hp"] = 99
	require.Equal(t, []string{"fire"}, s.State().Types)
	require.Equal(t, 0, s.State().MinBound("hp"))
}

func TestStore_ResetAndToggles(t *testing.T) {
	s := NewStore(Default())
	require.NoError(t, s.ToggleGeneration(1))
	require.NoError(t, s.SetMaxStats(Stats{"speed": 80}))
	s.SetFavoritesOnly(true)
	require.True(t, s.State().HasFilters())

	s.ResetStats()
	require.False(t, s.State().HasStatFilter())

	s.Reset()
	require.False(t, s.State().HasFilters())
	require.Equal(t, PrefsOf(Default()), s.Prefs())
}

func TestStore_ChangesDeliveredInCommitOrder(t *testing.T) {
	s := NewStore(Default())
	entered := make(chan struct{})
	release := make(chan struct{})
	var pages []int

	first := true
	s.Subscribe(func(c Change) {
		if first {
			first = false
			close(entered)
			<-release
		}
		pages = append(pages, c.New.Page)
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.SetPage(2)
	}()
	<-entered

	s.SetPage(3)
	close(release)
	<-done

	require.Equal(t, []int{2, 3}, pages)
	require.Equal(t, 3, s.State().Page)
}

func TestStore_SetterFromSubscriberRunsAfterIt(t *testing.T) {
	s := NewStore(Default())
	var pages []int

	s.Subscribe(func(c Change) {
		pages = append(pages, c.New.Page)
		if c.New.Page == 9 {
			s.SetPage(4)
		}
	})
	s.SetPage(9)

	require.Equal(t, []int{9, 4}, pages)
	require.Equal(t, 4, s.State().Page)
}
