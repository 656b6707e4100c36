package favorites

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToggleTwiceRestores(t *testing.T) {
	s := NewStore(Set{3: true})

	require.True(t, s.Toggle(5))
	require.True(t, s.IsFavorite(5))
	require.False(t, s.Toggle(5))
	require.False(t, s.IsFavorite(5))
	require.Equal(t, []int{3}, s.IDs())

	require.False(t, s.Toggle(3))
	require.True(t, s.Toggle(3))
	require.Equal(t, []int{3}, s.IDs())
}

func TestAddRemoveClear(t *testing.T) {
	s := NewStore(nil)
	s.Add(25)
	s.Add(1)
	s.Add(25)
	require.Equal(t, []int{1, 25}, s.IDs())
	require.Equal(t, 2, s.Len())

	s.Remove(99)
	s.Remove(25)
	require.Equal(t, []int{1}, s.IDs())

	s.Clear()
	require.Empty(t, s.IDs())
	require.False(t, s.IsFavorite(1))
}

func TestSetIsImmutable(t *testing.T) {
	base := Set{1: true}
	next := base.Add(2)
	require.False(t, base.Has(2))
	require.True(t, next.Has(2))

	var nilSet Set
	require.False(t, nilSet.Has(1))
	require.Equal(t, []int{4}, nilSet.Toggle(4).IDs())
}

func TestSnapshotIsCopy(t *testing.T) {
	s := NewStore(Set{1: true})
	snap := s.Snapshot()
	snap[2] = true
	require.False(t, s.IsFavorite(2))
}

func TestSubscribeReceivesEveryMutation(t *testing.T) {
	s := NewStore(nil)
	var got []Set
	unsub := s.Subscribe(func(set Set) { got = append(got, set) })

	s.Add(1)
	s.Toggle(2)
	s.Clear()
	unsub()
	s.Add(3)

	require.Len(t, got, 3)
	require.Equal(t, []int{1}, got[0].IDs())
	require.Equal(t, []int{1, 2}, got[1].IDs())
	require.Empty(t, got[2])
}

func TestSubscriberMayReadStore(t *testing.T) {
	s := NewStore(nil)
	var seen bool
	s.Subscribe(func(Set) { seen = s.IsFavorite(7) })
	s.Add(7)
	require.True(t, seen)
}

func TestBlobRoundTrip(t *testing.T) {
	s := NewStore(Set{1: true, 150: true})
	data, err := json.Marshal(s.Blob())
	require.NoError(t, err)
	require.JSONEq(t, `{"favorites": {"1": true, "150": true}}`, string(data))

	var b Blob
	require.NoError(t, json.Unmarshal(data, &b))
	require.Equal(t, []int{1, 150}, NewStore(b.Favorites).IDs())
}

func TestConcurrentToggles(t *testing.T) {
	s := NewStore(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Toggle(i % 5)
		}()
	}
	wg.Wait()
	// each of the five ids was toggled ten times
	require.Empty(t, s.IDs())
}

func TestSubscriberSeesMutationsInCommitOrder(t *testing.T) {
	s := NewStore(nil)
	entered := make(chan struct{})
	release := make(chan struct{})
	var persisted []int

	var once sync.Once
	s.Subscribe(func(set Set) {
		// hold the first delivery until the second mutation has committed
		once.Do(func() {
			close(entered)
			<-release
		})
		persisted = set.IDs()
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Add(5)
	}()
	<-entered

	s.Add(6)
	close(release)
	<-done

	require.Equal(t, []int{5, 6}, s.IDs())
	require.Equal(t, s.IDs(), persisted, "last delivered set must be the latest commit")
}
