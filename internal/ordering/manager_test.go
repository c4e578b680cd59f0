package ordering

import (
	"context"
	"sync"
	"testing"
	"time"

	"pandapos/internal/meal"
	"pandapos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerOpenGetClose(t *testing.T) {
	var counts []int
	mgr := NewManager(Config{}, Deps{Hooks: Hooks{SessionsChanged: func(n int) { counts = append(counts, n) }}})

	s := mgr.Open("", nil, "")
	assert.Equal(t, models.SourceOnline, s.Source)
	assert.Len(t, s.ID, 36)

	got, err := mgr.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, mgr.Close(s.ID))
	_, err = mgr.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, mgr.Close(s.ID), ErrSessionNotFound)

	assert.Equal(t, []int{1, 0}, counts)
}

func TestManagerSweepsIdleSessions(t *testing.T) {
	mgr := NewManager(Config{IdleTimeout: time.Minute}, Deps{})
	now := time.Now()
	mgr.now = func() time.Time { return now }

	stale := mgr.Open(models.SourceOnline, nil, "")
	now = now.Add(2 * time.Minute)
	fresh := mgr.Open(models.SourceOnline, nil, "")

	assert.Equal(t, 1, mgr.Sweep())
	_, err := mgr.Get(stale.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = mgr.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestManagerOrderPlacedHook(t *testing.T) {
	placer := &fakePlacer{}
	var placed []*models.Order
	mgr := NewManager(Config{}, Deps{
		Orders: placer,
		Hooks:  Hooks{OrderPlaced: func(o *models.Order) { placed = append(placed, o) }},
	})

	s := mgr.Open(models.SourceCashier, nil, "")
	_, err := s.AddItem(context.Background(), drink)
	require.NoError(t, err)
	order, err := s.Checkout(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, placed, 1)
	assert.Same(t, order, placed[0])
}

func TestSessionConcurrentUse(t *testing.T) {
	mgr, _ := newTestManager(t)
	s := mgr.Open(models.SourceOnline, nil, "")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.AddItem(ctx, drink)
			_ = s.State()
			_, _ = s.StartMeal(ctx, meal.SizeBowl)
		}()
	}
	wg.Wait()

	st := s.State()
	require.Len(t, st.Lines, 1)
	assert.Equal(t, 20, st.Lines[0].Quantity)
}
