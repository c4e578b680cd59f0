package store

import (
	"context"
	"testing"
	"time"

	"pandapos/internal/database"
	"pandapos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(database.Options{Driver: "sqlite3", URL: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return New(db)
}

// stocked creates two inventory items and a menu item consuming both
func stocked(t *testing.T, s *Store) (models.MenuItem, models.InventoryItem, models.InventoryItem) {
	t.Helper()
	ctx := context.Background()

	chicken := models.InventoryItem{Name: "Chicken", Quantity: 100, Unit: models.UnitOunce, MinLevel: 10}
	sauce := models.InventoryItem{Name: "Orange Sauce", Quantity: 20, Unit: models.UnitFluidOunce, MinLevel: 5}
	require.NoError(t, s.CreateInventoryItem(ctx, &chicken))
	require.NoError(t, s.CreateInventoryItem(ctx, &sauce))

	item := models.MenuItem{
		Category:  models.CategoryEntree,
		Name:      "Orange Chicken",
		Price:     5.20,
		Available: true,
		Ingredients: []models.MenuItemIngredient{
			{InventoryItemID: chicken.ID, Amount: 5},
			{InventoryItemID: sauce.ID, Amount: 1.5},
		},
	}
	require.NoError(t, s.CreateMenuItem(ctx, &item))
	return item, chicken, sauce
}

func TestMenuCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	item, chicken, _ := stocked(t, s)

	hidden := models.MenuItem{Category: models.CategoryDrink, Name: "Seasonal Tea", Price: 2.50}
	require.NoError(t, s.CreateMenuItem(ctx, &hidden))

	all, err := s.ListMenu(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	available, err := s.ListMenu(ctx, true)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "Orange Chicken", available[0].Name)
	assert.Len(t, available[0].Ingredients, 2)

	item.Price = 5.50
	item.Ingredients = []models.MenuItemIngredient{{InventoryItemID: chicken.ID, Amount: 6}}
	require.NoError(t, s.UpdateMenuItem(ctx, &item))

	got, err := s.MenuItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.50, got.Price)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, 6.0, got.Ingredients[0].Amount)

	require.NoError(t, s.DeleteMenuItem(ctx, item.ID))
	_, err = s.MenuItem(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteMenuItem(ctx, item.ID), ErrNotFound)
}

func TestMenuValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.CreateMenuItem(ctx, &models.MenuItem{Category: "dessert", Name: "Cake", Price: 3}), ErrInvalid)
	assert.Error(t, s.CreateMenuItem(ctx, &models.MenuItem{Category: models.CategorySide, Name: " ", Price: 3}))
	assert.ErrorIs(t, s.UpdateMenuItem(ctx, &models.MenuItem{ID: 99, Category: models.CategorySide, Name: "Rice"}), ErrNotFound)
}

func TestInventoryCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, chicken, _ := stocked(t, s)

	assert.ErrorIs(t, s.CreateInventoryItem(ctx, &models.InventoryItem{Name: "chicken", Quantity: 1}), ErrDuplicate)
	assert.Error(t, s.CreateInventoryItem(ctx, &models.InventoryItem{Name: "Salt", Quantity: -1}))

	chicken.Quantity = 250
	require.NoError(t, s.UpdateInventoryItem(ctx, &chicken))
	got, err := s.InventoryItem(ctx, chicken.ID)
	require.NoError(t, err)
	assert.Equal(t, 250.0, got.Quantity)

	require.NoError(t, s.DeleteInventoryItem(ctx, chicken.ID))
	items, err := s.ListInventory(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	var links int
	s.DB().Model(&models.MenuItemIngredient{}).Where("inventory_item_id = ?", chicken.ID).Count(&links)
	assert.Zero(t, links)
}

func TestEmployeeCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := models.Employee{Name: "Mei", Email: " Mei@Example.com", PasswordHash: "hash", Role: models.RoleCashier, Active: true}
	require.NoError(t, s.CreateEmployee(ctx, &e))
	assert.Equal(t, "mei@example.com", e.Email)

	dup := models.Employee{Name: "Other", Email: "MEI@example.com", PasswordHash: "hash", Role: models.RoleCashier}
	assert.ErrorIs(t, s.CreateEmployee(ctx, &dup), ErrDuplicate)
	assert.Error(t, s.CreateEmployee(ctx, &models.Employee{Name: "X", Email: "x@example.com", Role: "owner"}))

	found, err := s.EmployeeByEmail(ctx, "MEI@example.com")
	require.NoError(t, err)
	assert.Equal(t, e.ID, found.ID)

	e.Role = models.RoleManager
	e.PasswordHash = ""
	require.NoError(t, s.UpdateEmployee(ctx, &e))
	got, err := s.Employee(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, got.Role)
	assert.Equal(t, "hash", got.PasswordHash, "empty hash keeps the stored password")

	require.NoError(t, s.DeactivateEmployee(ctx, e.ID))
	got, _ = s.Employee(ctx, e.ID)
	assert.False(t, got.Active)
	assert.ErrorIs(t, s.DeactivateEmployee(ctx, 999), ErrNotFound)
}

func TestPromotionLookupIgnoresCase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreatePromotion(ctx, &models.Promotion{Code: "panda20", PercentOff: 20, Active: true, MinOrders: 3}))
	assert.ErrorIs(t, s.CreatePromotion(ctx, &models.Promotion{Code: "PANDA20", PercentOff: 10}), ErrDuplicate)
	assert.Error(t, s.CreatePromotion(ctx, &models.Promotion{Code: "FREE", PercentOff: 150}))

	promo, err := s.PromotionByCode(ctx, "Panda20")
	require.NoError(t, err)
	assert.Equal(t, "PANDA20", promo.Code)

	_, err = s.PromotionByCode(ctx, "NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func orderFor(item models.MenuItem, quantity int) *models.Order {
	id := item.ID
	return &models.Order{
		Source:   models.SourceCashier,
		Subtotal: item.Price * float64(quantity),
		Total:    item.Price * float64(quantity),
		Items: []models.OrderItem{
			{Kind: models.ItemKindSingle, MenuItemID: &id, Name: item.Name, Quantity: quantity, UnitPrice: item.Price},
		},
	}
}

func TestPlaceOrderDrawsStock(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	item, chicken, sauce := stocked(t, s)

	order := orderFor(item, 2)
	require.NoError(t, s.PlaceOrder(ctx, order))
	assert.NotZero(t, order.ID)
	assert.Equal(t, models.OrderStatusPlaced, order.Status)

	got, err := s.Order(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)

	c, _ := s.InventoryItem(ctx, chicken.ID)
	assert.InDelta(t, 90.0, c.Quantity, 1e-9)
	sc, _ := s.InventoryItem(ctx, sauce.ID)
	assert.InDelta(t, 17.0, sc.Quantity, 1e-9)

	var usage []models.InventoryUsage
	require.NoError(t, s.DB().Where("order_id = ?", order.ID).Order("inventory_item_id").Find(&usage).Error)
	require.Len(t, usage, 2)
	assert.InDelta(t, 10.0, usage[0].Amount, 1e-9)
	assert.InDelta(t, 3.0, usage[1].Amount, 1e-9)
}

func TestPlaceOrderMealUsesComponents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	item, chicken, _ := stocked(t, s)

	order := &models.Order{
		Source: models.SourceOnline,
		Items: []models.OrderItem{{
			Kind:         models.ItemKindMeal,
			MealSize:     "plate",
			Name:         "Plate",
			Components:   models.StringSlice{"Orange Chicken", "Orange Chicken"},
			ComponentIDs: []uint{item.ID, item.ID},
			Quantity:     1,
			UnitPrice:    9.80,
		}},
	}
	require.NoError(t, s.PlaceOrder(ctx, order))

	c, _ := s.InventoryItem(ctx, chicken.ID)
	assert.InDelta(t, 90.0, c.Quantity, 1e-9)

	got, err := s.Order(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StringSlice{"Orange Chicken", "Orange Chicken"}, got.Items[0].Components)
}

func TestPlaceOrderAllowsNegativeStock(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	item, _, sauce := stocked(t, s)

	require.NoError(t, s.PlaceOrder(ctx, orderFor(item, 20)))
	sc, _ := s.InventoryItem(ctx, sauce.ID)
	assert.InDelta(t, -10.0, sc.Quantity, 1e-9)
}

func TestPlaceOrderIsAtomic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	item, chicken, _ := stocked(t, s)

	// without the usage table the last insert fails
	require.NoError(t, s.DB().DropTable(&models.InventoryUsage{}).Error)

	err := s.PlaceOrder(ctx, orderFor(item, 1))
	require.Error(t, err)

	var orders, lines int
	s.DB().Model(&models.Order{}).Count(&orders)
	s.DB().Model(&models.OrderItem{}).Count(&lines)
	assert.Zero(t, orders)
	assert.Zero(t, lines)

	c, _ := s.InventoryItem(ctx, chicken.ID)
	assert.Equal(t, 100.0, c.Quantity)
}

func TestPlaceOrderRejectsEmptyOrder(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.PlaceOrder(context.Background(), &models.Order{Source: models.SourceCashier}))
}

func TestListOrdersFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	item, _, _ := stocked(t, s)

	first := orderFor(item, 1)
	require.NoError(t, s.PlaceOrder(ctx, first))
	second := orderFor(item, 1)
	second.Source = models.SourceVoice
	require.NoError(t, s.PlaceOrder(ctx, second))

	orders, err := s.ListOrders(ctx, OrderFilter{})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)

	voice, err := s.ListOrders(ctx, OrderFilter{Source: models.SourceVoice})
	require.NoError(t, err)
	require.Len(t, voice, 1)

	future, err := s.ListOrders(ctx, OrderFilter{From: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, future)
}

func TestPromoCandidates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	item, _, _ := stocked(t, s)

	place := func(email string, n int, status models.OrderStatus) {
		for i := 0; i < n; i++ {
			o := orderFor(item, 1)
			o.CustomerEmail = email
			o.Status = status
			require.NoError(t, s.PlaceOrder(ctx, o))
		}
	}
	place("regular@example.com", 3, models.OrderStatusPlaced)
	place("another@example.com", 4, models.OrderStatusPlaced)
	place("rare@example.com", 1, models.OrderStatusPlaced)
	place("refunds@example.com", 3, models.OrderStatusCancelled)
	place("", 5, models.OrderStatusPlaced)

	customers, err := s.PromoCandidates(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []Customer{
		{Email: "another@example.com", Orders: 4},
		{Email: "regular@example.com", Orders: 3},
	}, customers)

	require.NoError(t, s.RecordPromoDelivery(ctx, 1, "another@example.com", time.Now()))
	customers, err = s.PromoCandidates(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []Customer{{Email: "regular@example.com", Orders: 3}}, customers)

	// deliveries are per promotion
	customers, err = s.PromoCandidates(ctx, 2, 3)
	require.NoError(t, err)
	assert.Len(t, customers, 2)
}
