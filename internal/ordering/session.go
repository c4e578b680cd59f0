// Package ordering holds in-progress orders. A Session is driven either by
// explicit calls from the ordering screens or by voice transcripts, which
// go through the same code paths.
package ordering

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"pandapos/internal/meal"
	"pandapos/internal/models"
	"pandapos/internal/voice"
)

var (
	ErrNoActiveMeal    = errors.New("no meal in progress")
	ErrMealIncomplete  = errors.New("meal is not complete")
	ErrMealInProgress  = errors.New("finish or cancel the current meal first")
	ErrNoOpenSlot      = errors.New("the meal has no open slot for that item")
	ErrNotMealItem     = errors.New("only entrées and sides go into a meal")
	ErrItemUnavailable = errors.New("item is not available")
	ErrEmptyOrder      = errors.New("order is empty")
	ErrInvalidPromo    = errors.New("promo code is invalid or expired")
	ErrNoSuchLine      = errors.New("no such order line")
)

// PromotionFinder looks up promo codes
type PromotionFinder interface {
	PromotionByCode(ctx context.Context, code string) (*models.Promotion, error)
}

// OrderPlacer persists a checked-out order
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, order *models.Order) error
}

// MenuSource supplies the menu the voice interpreter resolves names against
type MenuSource interface {
	ListMenu(ctx context.Context, availableOnly bool) ([]models.MenuItem, error)
}

// Session is one order being rung up. All exported methods are safe for
// concurrent use.
type Session struct {
	ID         string             `json:"id"`
	Source     models.OrderSource `json:"source"`
	EmployeeID *uint              `json:"employee_id,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`

	mu          sync.Mutex
	mgr         *Manager
	lines       []models.OrderItem
	current     *meal.Meal
	promo       *models.Promotion
	email       string
	lastOrder   *models.Order
	interpreter *voice.Interpreter
	updatedAt   time.Time

	// ctx belongs to the request currently holding mu
	ctx context.Context
}

func newSession(mgr *Manager, id string, source models.OrderSource, employeeID *uint) *Session {
	now := mgr.now()
	s := &Session{
		ID:         id,
		Source:     source,
		EmployeeID: employeeID,
		CreatedAt:  now,
		mgr:        mgr,
		updatedAt:  now,
	}
	s.interpreter = voice.NewInterpreter(s)
	return s
}

// do runs fn with the session locked and keeps the interpreter's view of
// the current meal in sync
func (s *Session) do(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctx = ctx
	defer func() { s.ctx = nil }()

	err := fn()
	s.interpreter.SetMealInProgress(s.current != nil)
	s.updatedAt = s.mgr.now()
	return err
}

func (s *Session) requestContext() context.Context {
	if s.ctx != nil {
		return s.ctx
	}
	return context.Background()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// The methods below implement voice.Handlers. They expect mu to be held,
// either by do or by Interpret.

// StartNewMeal replaces any meal in progress with an empty one
func (s *Session) StartNewMeal(size meal.Size) error {
	if _, ok := meal.ParseSize(string(size)); !ok {
		return fmt.Errorf("unknown meal size %q", size)
	}
	m := meal.New(size)
	s.current = &m
	return nil
}

// HandleMealUpdate routes an entrée or side into the current meal
func (s *Session) HandleMealUpdate(item models.MenuItem) error {
	if s.current == nil {
		return ErrNoActiveMeal
	}
	if !item.IsMealComponent() {
		return ErrNotMealItem
	}
	if !item.Available {
		return fmt.Errorf("%w: %s", ErrItemUnavailable, item.Name)
	}

	next := s.current.ApplySelection(item)
	if next == *s.current {
		return fmt.Errorf("%w: %s", ErrNoOpenSlot, item.Name)
	}
	s.current = &next
	return nil
}

// AddSimpleItem adds one of item as its own order line
func (s *Session) AddSimpleItem(item models.MenuItem) error {
	if !item.Available {
		return fmt.Errorf("%w: %s", ErrItemUnavailable, item.Name)
	}

	for i := range s.lines {
		line := &s.lines[i]
		if line.Kind == models.ItemKindSingle && line.MenuItemID != nil && *line.MenuItemID == item.ID {
			line.Quantity++
			return nil
		}
	}

	id := item.ID
	s.lines = append(s.lines, models.OrderItem{
		Kind:       models.ItemKindSingle,
		MenuItemID: &id,
		Name:       item.Name,
		Quantity:   1,
		UnitPrice:  item.Price,
	})
	return nil
}

// CompleteMeal finalizes the current meal into an order line
func (s *Session) CompleteMeal() error {
	if s.current == nil {
		return ErrNoActiveMeal
	}
	m := *s.current
	if !m.IsComplete() {
		return fmt.Errorf("%w: still need %s", ErrMealIncomplete, strings.Join(m.RemainingSlots(), ", "))
	}

	items := m.Items()
	ids := make([]uint, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}

	s.lines = append(s.lines, models.OrderItem{
		Kind:         models.ItemKindMeal,
		MealSize:     string(m.Size),
		Name:         m.Name(),
		Components:   models.StringSlice(m.Components()),
		ComponentIDs: ids,
		Quantity:     1,
		UnitPrice:    m.Price(s.mgr.cfg.Pricing),
	})
	s.current = nil
	return nil
}

// CancelMeal discards the current meal
func (s *Session) CancelMeal() error {
	if s.current == nil {
		return ErrNoActiveMeal
	}
	s.current = nil
	return nil
}

// ValidatePromoCode applies the promotion if the code is usable now. A
// rejected code leaves any previously applied promotion in place.
func (s *Session) ValidatePromoCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" || s.mgr.promos == nil {
		return ErrInvalidPromo
	}
	promo, err := s.mgr.promos.PromotionByCode(s.requestContext(), code)
	if err != nil || promo == nil || !promo.Usable(s.mgr.now()) {
		return fmt.Errorf("%w: %s", ErrInvalidPromo, code)
	}
	s.promo = promo
	return nil
}

// HandleCheckout prices and persists the order, then resets the session
func (s *Session) HandleCheckout() error {
	if s.current != nil {
		return ErrMealInProgress
	}
	if len(s.lines) == 0 {
		return ErrEmptyOrder
	}

	order := s.buildOrder()
	if err := s.mgr.placer.PlaceOrder(s.requestContext(), order); err != nil {
		return fmt.Errorf("failed to place order: %w", err)
	}

	s.lastOrder = order
	s.lines = nil
	s.promo = nil
	s.mgr.orderPlaced(order)
	return nil
}

func (s *Session) buildOrder() *models.Order {
	totals := s.totals()
	lines := make([]models.OrderItem, len(s.lines))
	copy(lines, s.lines)

	order := &models.Order{
		Source:        s.Source,
		EmployeeID:    s.EmployeeID,
		CustomerEmail: s.email,
		Subtotal:      totals.Subtotal,
		Discount:      totals.Discount,
		Tax:           totals.Tax,
		Total:         totals.Total,
		Status:        models.OrderStatusPlaced,
		Items:         lines,
	}
	if s.promo != nil {
		order.PromoCode = s.promo.Code
	}
	return order
}

// Totals is the priced order
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *Session) totals() Totals {
	var subtotal float64
	for i := range s.lines {
		subtotal += s.lines[i].LineTotal()
	}
	subtotal = roundCents(subtotal)

	var discount float64
	if s.promo != nil {
		discount = roundCents(subtotal * s.promo.PercentOff / 100)
	}
	tax := roundCents((subtotal - discount) * s.mgr.cfg.TaxRate)
	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    roundCents(subtotal - discount + tax),
	}
}
