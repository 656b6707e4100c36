package observe

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubject_PublishInOrder(t *testing.T) {
	var s Subject[int]
	var got []string

	s.Subscribe(func(v int) { got = append(got, "a") })
	s.Subscribe(func(v int) { got = append(got, "b") })
	s.Publish(1)

	require.Equal(t, []string{"a", "b"}, got)
}

func TestSubject_Unsubscribe(t *testing.T) {
	var s Subject[string]
	calls := 0

	unsub := s.Subscribe(func(string) { calls++ })
	s.Publish("x")
	unsub()
	unsub()
	s.Publish("y")

	require.Equal(t, 1, calls)
	require.Equal(t, 0, s.Len())
}

func TestSubject_UnsubscribeMiddle(t *testing.T) {
	var s Subject[int]
	var got []int

	s.Subscribe(func(v int) { got = append(got, v) })
	unsub := s.Subscribe(func(v int) { got = append(got, v*10) })
	s.Subscribe(func(v int) { got = append(got, v*100) })
	unsub()
	s.Publish(2)

	require.Equal(t, []int{2, 200}, got)
}

func TestSubject_SubscribeDuringPublish(t *testing.T) {
	var s Subject[int]
	calls := 0

	s.Subscribe(func(int) {
		calls++
		s.Subscribe(func(int) { calls += 10 })
	})
	s.Publish(0)

	require.Equal(t, 1, calls, "listener added during publish must not see the current value")
	require.Equal(t, 2, s.Len())
}

func TestOrdered_QueueFromListenerRunsAfterIt(t *testing.T) {
	var o Ordered[int]
	var got []int

	o.Subscribe(func(v int) {
		got = append(got, v)
		if v == 1 {
			o.Queue(2)
			o.Flush()
			got = append(got, -1)
		}
	})
	o.Queue(1)
	o.Flush()

	require.Equal(t, []int{1, -1, 2}, got)
}

func TestOrdered_ConcurrentFlushKeepsQueueOrder(t *testing.T) {
	var o Ordered[int]
	var got []int
	entered := make(chan struct{})
	release := make(chan struct{})

	o.Subscribe(func(v int) {
		if v == 1 {
			close(entered)
			<-release
		}
		got = append(got, v)
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		o.Queue(1)
		o.Flush()
	}()
	<-entered

	// The second value is queued while the first is still being delivered;
	// its Flush defers to the running one.
	o.Queue(2)
	o.Flush()
	close(release)
	<-done

	require.Equal(t, []int{1, 2}, got)
}

func TestOrdered_PanickingListenerReleasesQueue(t *testing.T) {
	var o Ordered[int]
	var got []int

	o.Subscribe(func(v int) {
		if v == 1 {
			panic("boom")
		}
		got = append(got, v)
	})
	o.Queue(1)
	require.Panics(t, o.Flush)

	o.Queue(2)
	o.Flush()
	require.Equal(t, []int{2}, got)
}
