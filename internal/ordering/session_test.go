package ordering

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pandapos/internal/meal"
	"pandapos/internal/models"
	"pandapos/internal/voice"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePromos map[string]*models.Promotion

func (f fakePromos) PromotionByCode(_ context.Context, code string) (*models.Promotion, error) {
	p, ok := f[code]
	if !ok {
		return nil, errors.New("record not found")
	}
	return p, nil
}

type fakePlacer struct {
	mu     sync.Mutex
	orders []*models.Order
	err    error
}

func (f *fakePlacer) PlaceOrder(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	order.ID = uint(len(f.orders) + 1)
	f.orders = append(f.orders, order)
	return nil
}

type fakeMenu []models.MenuItem

func (f fakeMenu) ListMenu(_ context.Context, _ bool) ([]models.MenuItem, error) {
	return f, nil
}

var (
	orangeChicken = models.MenuItem{ID: 1, Category: models.CategoryEntree, Name: "Orange Chicken", Price: 5.20, Available: true}
	beijingBeef   = models.MenuItem{ID: 2, Category: models.CategoryEntree, Name: "Beijing Beef", Price: 5.20, Available: true}
	walnutShrimp  = models.MenuItem{ID: 3, Category: models.CategoryEntree, Name: "Honey Walnut Shrimp", Price: 6.70, Premium: true, Available: true}
	chowMein      = models.MenuItem{ID: 4, Category: models.CategorySide, Name: "Chow Mein", Price: 4.40, Available: true}
	friedRice     = models.MenuItem{ID: 5, Category: models.CategorySide, Name: "Fried Rice", Price: 4.40, Available: true}
	rangoon       = models.MenuItem{ID: 6, Category: models.CategoryAppetizer, Name: "Cream Cheese Rangoon", Price: 2.00, Available: true}
	drink         = models.MenuItem{ID: 7, Category: models.CategoryDrink, Name: "Fountain Drink", Price: 2.10, Available: true}
	soldOut       = models.MenuItem{ID: 8, Category: models.CategorySide, Name: "Super Greens", Price: 4.40}
)

func newTestManager(t *testing.T) (*Manager, *fakePlacer) {
	t.Helper()
	expired := time.Now().Add(-time.Hour)
	placer := &fakePlacer{}
	mgr := NewManager(Config{TaxRate: 0.10, Pricing: meal.DefaultPricing()}, Deps{
		Promotions: fakePromos{
			"PANDA20": {ID: 1, Code: "PANDA20", PercentOff: 20, Active: true},
			"OLD":     {ID: 2, Code: "OLD", PercentOff: 50, Active: true, ExpiresAt: &expired},
			"OFF":     {ID: 3, Code: "OFF", PercentOff: 50, Active: false},
		},
		Orders: placer,
		Menu:   fakeMenu{orangeChicken, beijingBeef, walnutShrimp, chowMein, friedRice, rangoon, drink},
	})
	return mgr, placer
}

func TestSessionBuildsAndChecksOutPlate(t *testing.T) {
	mgr, placer := newTestManager(t)
	ctx := context.Background()
	s := mgr.Open(models.SourceCashier, nil, "")

	st, err := s.StartMeal(ctx, meal.SizePlate)
	require.NoError(t, err)
	require.NotNil(t, st.Meal)
	assert.Equal(t, []string{"side", "first entrée", "second entrée"}, st.Meal.Remaining)

	_, err = s.SelectForMeal(ctx, chowMein)
	require.NoError(t, err)
	_, err = s.SelectForMeal(ctx, orangeChicken)
	require.NoError(t, err)

	_, err = s.FinishMeal(ctx)
	assert.ErrorIs(t, err, ErrMealIncomplete)
	assert.Contains(t, err.Error(), "second entrée")

	st, err = s.SelectForMeal(ctx, walnutShrimp)
	require.NoError(t, err)
	assert.Equal(t, 100.0, st.Meal.Progress)

	st, err = s.FinishMeal(ctx)
	require.NoError(t, err)
	assert.Nil(t, st.Meal)
	require.Len(t, st.Lines, 1)
	assert.Equal(t, "Plate", st.Lines[0].Name)
	assert.Equal(t, 11.30, st.Lines[0].UnitPrice)
	assert.Equal(t, []uint{4, 1, 3}, st.Lines[0].ComponentIDs)

	_, err = s.AddItem(ctx, drink)
	require.NoError(t, err)

	order, err := s.Checkout(ctx, " Diner@Example.com ")
	require.NoError(t, err)
	require.Len(t, placer.orders, 1)
	assert.Equal(t, "diner@example.com", order.CustomerEmail)
	assert.Equal(t, 13.40, order.Subtotal)
	assert.Equal(t, 1.34, order.Tax)
	assert.Equal(t, 14.74, order.Total)
	assert.Equal(t, models.SourceCashier, order.Source)

	st = s.State()
	assert.Empty(t, st.Lines)
	assert.Equal(t, order, st.LastOrder)
}

func TestSessionPromoDiscount(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()
	s := mgr.Open(models.SourceOnline, nil, "")

	_, err := s.AddItem(ctx, rangoon)
	require.NoError(t, err)
	_, err = s.AddItem(ctx, rangoon)
	require.NoError(t, err)

	for _, code := range []string{"NOPE", "OLD", "OFF", ""} {
		_, err = s.ApplyPromo(ctx, code)
		assert.ErrorIs(t, err, ErrInvalidPromo, code)
	}

	st, err := s.ApplyPromo(ctx, "PANDA20")
	require.NoError(t, err)
	assert.Equal(t, "PANDA20", st.PromoCode)

	// a rejected code keeps the applied one
	st, _ = s.ApplyPromo(ctx, "OLD")
	assert.Equal(t, "PANDA20", st.PromoCode)

	require.Len(t, st.Lines, 1)
	assert.Equal(t, 2, st.Lines[0].Quantity)
	assert.Equal(t, Totals{Subtotal: 4.00, Discount: 0.80, Tax: 0.32, Total: 3.52}, st.Totals)

	order, err := s.Checkout(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "PANDA20", order.PromoCode)
	assert.Empty(t, s.State().PromoCode)
}

func TestSessionCheckoutRefusals(t *testing.T) {
	mgr, placer := newTestManager(t)
	ctx := context.Background()
	s := mgr.Open(models.SourceOnline, nil, "")

	_, err := s.Checkout(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, err = s.AddItem(ctx, drink)
	require.NoError(t, err)
	_, err = s.StartMeal(ctx, meal.SizeBowl)
	require.NoError(t, err)

	_, err = s.Checkout(ctx, "")
	assert.ErrorIs(t, err, ErrMealInProgress)

	_, err = s.DiscardMeal(ctx)
	require.NoError(t, err)

	placer.err = errors.New("database is locked")
	_, err = s.Checkout(ctx, "")
	assert.Error(t, err)
	assert.Len(t, s.State().Lines, 1, "a failed placement keeps the order")

	placer.err = nil
	_, err = s.Checkout(ctx, "")
	assert.NoError(t, err)
}

func TestSessionMealErrors(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()
	s := mgr.Open(models.SourceOnline, nil, "")

	_, err := s.SelectForMeal(ctx, chowMein)
	assert.ErrorIs(t, err, ErrNoActiveMeal)
	_, err = s.FinishMeal(ctx)
	assert.ErrorIs(t, err, ErrNoActiveMeal)
	_, err = s.DiscardMeal(ctx)
	assert.ErrorIs(t, err, ErrNoActiveMeal)

	_, err = s.StartMeal(ctx, "family feast")
	assert.Error(t, err)

	_, err = s.StartMeal(ctx, meal.SizePlate)
	require.NoError(t, err)
	_, err = s.SelectForMeal(ctx, drink)
	assert.ErrorIs(t, err, ErrNotMealItem)
	_, err = s.SelectForMeal(ctx, soldOut)
	assert.ErrorIs(t, err, ErrItemUnavailable)

	_, err = s.SelectForMeal(ctx, orangeChicken)
	require.NoError(t, err)
	_, err = s.SelectForMeal(ctx, beijingBeef)
	require.NoError(t, err)
	_, err = s.SelectForMeal(ctx, walnutShrimp)
	assert.ErrorIs(t, err, ErrNoOpenSlot)

	st, err := s.ClearMealSlot(ctx, meal.SlotEntree2)
	require.NoError(t, err)
	assert.Equal(t, []string{"side", "second entrée"}, st.Meal.Remaining)
}

func TestSessionRemoveLine(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()
	s := mgr.Open(models.SourceOnline, nil, "")

	_, _ = s.AddItem(ctx, drink)
	_, _ = s.AddItem(ctx, rangoon)

	st, err := s.RemoveLine(ctx, 0)
	require.NoError(t, err)
	require.Len(t, st.Lines, 1)
	assert.Equal(t, "Cream Cheese Rangoon", st.Lines[0].Name)

	_, err = s.RemoveLine(ctx, 5)
	assert.ErrorIs(t, err, ErrNoSuchLine)
}

func TestSessionVoiceOrder(t *testing.T) {
	mgr, placer := newTestManager(t)
	ctx := context.Background()
	s := mgr.Open(models.SourceVoice, nil, "voice@example.com")

	steps := []struct {
		transcript string
		action     voice.Action
	}{
		{"create a bowl", voice.ActionStartMeal},
		{"add noodles and orange chicken", voice.ActionAddItems},
		{"complete meal", voice.ActionCompleteMeal},
		{"add a soda", voice.ActionAddItems},
		{"promo code PANDA20", voice.ActionApplyPromo},
		{"checkout", voice.ActionCheckout},
	}
	for _, step := range steps {
		res, err := s.Interpret(ctx, step.transcript)
		require.NoError(t, err, step.transcript)
		assert.Equal(t, step.action, res.Command.Action)
	}

	require.Len(t, placer.orders, 1)
	order := placer.orders[0]
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Bowl", order.Items[0].Name)
	assert.Equal(t, models.StringSlice{"Chow Mein", "Orange Chicken"}, order.Items[0].Components)
	assert.Equal(t, "Fountain Drink", order.Items[1].Name)
	assert.Equal(t, "PANDA20", order.PromoCode)
	assert.Equal(t, "voice@example.com", order.CustomerEmail)
	assert.Equal(t, models.SourceVoice, order.Source)

	history := s.VoiceHistory()
	assert.Equal(t, "checkout", history[0])
	assert.Len(t, history, len(steps))
}

func TestSessionVoiceErrorsReturnState(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()
	s := mgr.Open(models.SourceVoice, nil, "")

	res, err := s.Interpret(ctx, "create a plate")
	require.NoError(t, err)
	require.NotNil(t, res.State.Meal)

	res, err = s.Interpret(ctx, "complete meal")
	assert.ErrorIs(t, err, ErrMealIncomplete)
	assert.NotNil(t, res.State.Meal, "meal stays open")

	_, err = s.Interpret(ctx, "add pizza")
	var notFound *voice.ItemNotFoundError
	assert.ErrorAs(t, err, &notFound)

	// a meal started by button keeps voice routing into the meal
	_, err = s.StartMeal(ctx, meal.SizeBowl)
	require.NoError(t, err)
	res, err = s.Interpret(ctx, "add fried rice")
	require.NoError(t, err)
	assert.Equal(t, []string{"Fried Rice"}, res.State.Meal.Components)
	assert.Empty(t, res.State.Lines)
}
