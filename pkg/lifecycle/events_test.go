package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// orderedObserver records the order its instance was notified in.
type orderedObserver struct {
	BaseObserver
	id  int
	out *[]int
}

func (o *orderedObserver) Loaded(ctx context.Context, e *LoadedEvent) {
	*o.out = append(*o.out, o.id)
}

func TestObserverList(t *testing.T) {
	ctx := context.Background()

	t.Run("dispatch follows subscription order", func(t *testing.T) {
		var order []int
		l := &observerList{}
		for i := 0; i < 3; i++ {
			l.subscribe(&orderedObserver{id: i, out: &order})
		}

		for _, o := range l.snapshot() {
			o.Loaded(ctx, &LoadedEvent{})
		}
		assert.Equal(t, []int{0, 1, 2}, order)
	})

	t.Run("unsubscribe removes by identity", func(t *testing.T) {
		var order []int
		l := &observerList{}
		first := &orderedObserver{id: 0, out: &order}
		second := &orderedObserver{id: 1, out: &order}
		l.subscribe(first)
		l.subscribe(second)

		l.unsubscribe(first)

		snap := l.snapshot()
		require.Len(t, snap, 1)
		assert.Same(t, second, snap[0].(*orderedObserver))
	})

	t.Run("unsubscribing an unknown observer is a no-op", func(t *testing.T) {
		l := &observerList{}
		l.subscribe(&orderedObserver{})
		l.unsubscribe(&orderedObserver{})
		assert.Len(t, l.snapshot(), 1)
	})

	t.Run("observers may unsubscribe from inside a handler", func(t *testing.T) {
		l := &observerList{}
		var fired int
		self := &selfRemovingObserver{list: l, fired: &fired}
		l.subscribe(self)

		for _, o := range l.snapshot() {
			o.Loaded(ctx, &LoadedEvent{})
		}
		assert.Equal(t, 1, fired)
		assert.Empty(t, l.snapshot())
	})
}

type selfRemovingObserver struct {
	BaseObserver
	list  *observerList
	fired *int
}

func (o *selfRemovingObserver) Loaded(ctx context.Context, e *LoadedEvent) {
	*o.fired++
	o.list.unsubscribe(o)
}

func TestErrors(t *testing.T) {
	t.Run("config error names the missing side", func(t *testing.T) {
		err := &ConfigError{What: "writer", Location: "/a.json"}
		assert.Contains(t, err.Error(), "writer")
		assert.Contains(t, err.Error(), "/a.json")
	})

	t.Run("validation result accumulates findings", func(t *testing.T) {
		var res ValidationResult
		assert.True(t, res.OK())

		res.Add("first")
		res.Add("second")
		assert.False(t, res.OK())

		err := &ValidationError{Result: res}
		assert.Contains(t, err.Error(), "first; second")
	})
}
