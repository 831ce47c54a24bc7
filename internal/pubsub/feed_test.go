package pubsub

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribe_BeforeFirstPublish(t *testing.T) {
	feed := NewFeed[int]()
	sub := feed.Subscribe()
	defer sub.Cancel()

	select {
	case v := <-sub.C():
		t.Fatalf("unexpected value before first publish: %d", v)
	case <-time.After(50 * time.Millisecond):
	}

	feed.Publish(42)
	assert.Equal(t, 42, <-sub.C())
}

func TestSubscribe_ReplaysLatest(t *testing.T) {
	feed := NewFeed[string]()
	feed.Publish("old")
	feed.Publish("new")

	sub := feed.Subscribe()
	defer sub.Cancel()

	assert.Equal(t, "new", <-sub.C())
}

func TestPublish_PreservesOrder(t *testing.T) {
	feed := NewFeed[int]()
	sub := feed.Subscribe()
	defer sub.Cancel()

	const n = 100
	for i := 0; i < n; i++ {
		feed.Publish(i)
	}

	for i := 0; i < n; i++ {
		assert.Equal(t, i, <-sub.C())
	}
}

func TestPublish_MultipleSubscribersSeeSameSequence(t *testing.T) {
	feed := NewFeed[int]()

	const subscribers = 5
	const n = 50

	subs := make([]*Subscription[int], subscribers)
	for i := range subs {
		subs[i] = feed.Subscribe()
		defer subs[i].Cancel()
	}

	var wg sync.WaitGroup
	results := make([][]int, subscribers)
	for i, sub := range subs {
		wg.Add(1)
		go func(i int, sub *Subscription[int]) {
			defer wg.Done()
			for k := 0; k < n; k++ {
				results[i] = append(results[i], <-sub.C())
			}
		}(i, sub)
	}

	for i := 0; i < n; i++ {
		feed.Publish(i)
	}
	wg.Wait()

	for i := 1; i < subscribers; i++ {
		assert.Equal(t, results[0], results[i], "subscriber %d diverged", i)
	}
}

func TestPublish_SlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	feed := NewFeed[int]()
	slow := feed.Subscribe()
	defer slow.Cancel()

	done := make(chan struct{})
	go func() {
		// Nobody reads slow.C() while these run.
		for i := 0; i < 1000; i++ {
			feed.Publish(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}

	// The slow subscriber still receives everything, in order.
	for i := 0; i < 1000; i++ {
		require.Equal(t, i, <-slow.C())
	}
}

func TestCancel_ClosesChannelAndUnregisters(t *testing.T) {
	feed := NewFeed[int]()
	sub := feed.Subscribe()
	require.Equal(t, 1, feed.SubscriberCount())

	sub.Cancel()
	assert.Equal(t, 0, feed.SubscriberCount())

	// Channel closes once delivery stops.
	for range sub.C() {
	}

	// Publishing after cancel is fine.
	feed.Publish(1)
}

func TestCancel_Twice(t *testing.T) {
	feed := NewFeed[int]()
	sub := feed.Subscribe()
	sub.Cancel()
	sub.Cancel()
	assert.Equal(t, 0, feed.SubscriberCount())
}

func TestLatest(t *testing.T) {
	feed := NewFeed[string]()

	_, ok := feed.Latest()
	assert.False(t, ok)

	feed.Publish("a")
	feed.Publish("b")

	v, ok := feed.Latest()
	assert.True(t, ok)
	assert.Equal(t, "b", v)
}

func TestWithClone_SubscribersDoNotShareValues(t *testing.T) {
	feed := NewFeed(WithClone(func(v []int) []int {
		c := make([]int, len(v))
		copy(c, v)
		return c
	}))

	first := feed.Subscribe()
	defer first.Cancel()
	second := feed.Subscribe()
	defer second.Cancel()

	feed.Publish([]int{1, 2, 3})

	got := <-first.C()
	got[0] = 99

	assert.Equal(t, []int{1, 2, 3}, <-second.C())

	// The retained latest value is unaffected too.
	latest, ok := feed.Latest()
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, latest)
}

func TestMap_TransformsAndPreservesOrder(t *testing.T) {
	feed := NewFeed[int]()
	sub := feed.Subscribe()

	mapped := Map(sub, func(v int) string {
		return "v" + strconv.Itoa(v)
	})
	defer mapped.Cancel()

	for i := 0; i < 10; i++ {
		feed.Publish(i)
	}
	for i := 0; i < 10; i++ {
		assert.Equal(t, "v"+strconv.Itoa(i), <-mapped.C())
	}
}

func TestMap_CancelPropagatesToSource(t *testing.T) {
	feed := NewFeed[int]()
	sub := feed.Subscribe()
	mapped := Map(sub, func(v int) int { return v * 2 })

	require.Equal(t, 1, feed.SubscriberCount())
	mapped.Cancel()
	assert.Equal(t, 0, feed.SubscriberCount())

	for range mapped.C() {
	}
}
