package ordering

import (
	"context"
	"strings"

	"pandapos/internal/meal"
	"pandapos/internal/models"
	"pandapos/internal/voice"
)

// MealState is the meal builder as shown to the customer
type MealState struct {
	Size       meal.Size `json:"size"`
	Name       string    `json:"name"`
	Progress   float64   `json:"progress"`
	Remaining  []string  `json:"remaining"`
	Complete   bool      `json:"complete"`
	Components []string  `json:"components"`
	Price      float64   `json:"price"`
	Meal       meal.Meal `json:"slots"`
}

// State is a snapshot of the session
type State struct {
	ID            string             `json:"id"`
	Source        models.OrderSource `json:"source"`
	Lines         []models.OrderItem `json:"lines"`
	Meal          *MealState         `json:"meal,omitempty"`
	PromoCode     string             `json:"promo_code,omitempty"`
	CustomerEmail string             `json:"customer_email,omitempty"`
	Totals        Totals             `json:"totals"`
	LastOrder     *models.Order      `json:"last_order,omitempty"`
}

// State returns a snapshot of the session
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() State {
	lines := make([]models.OrderItem, len(s.lines))
	copy(lines, s.lines)

	st := State{
		ID:            s.ID,
		Source:        s.Source,
		Lines:         lines,
		CustomerEmail: s.email,
		Totals:        s.totals(),
		LastOrder:     s.lastOrder,
	}
	if s.promo != nil {
		st.PromoCode = s.promo.Code
	}
	if s.current != nil {
		m := *s.current
		st.Meal = &MealState{
			Size:       m.Size,
			Name:       m.Name(),
			Progress:   m.Progress(),
			Remaining:  m.RemainingSlots(),
			Complete:   m.IsComplete(),
			Components: m.Components(),
			Price:      m.Price(s.mgr.cfg.Pricing),
			Meal:       m,
		}
	}
	return st
}

// StartMeal begins an empty meal of size
func (s *Session) StartMeal(ctx context.Context, size meal.Size) (State, error) {
	return s.run(ctx, func() error { return s.StartNewMeal(size) })
}

// SelectForMeal puts an entrée or side into the current meal
func (s *Session) SelectForMeal(ctx context.Context, item models.MenuItem) (State, error) {
	return s.run(ctx, func() error { return s.HandleMealUpdate(item) })
}

// ClearMealSlot empties one slot of the current meal
func (s *Session) ClearMealSlot(ctx context.Context, slot meal.Slot) (State, error) {
	return s.run(ctx, func() error {
		if s.current == nil {
			return ErrNoActiveMeal
		}
		next := s.current.Clear(slot)
		s.current = &next
		return nil
	})
}

// FinishMeal adds the current meal to the order once it is complete
func (s *Session) FinishMeal(ctx context.Context) (State, error) {
	return s.run(ctx, s.CompleteMeal)
}

// DiscardMeal drops the current meal
func (s *Session) DiscardMeal(ctx context.Context) (State, error) {
	return s.run(ctx, s.CancelMeal)
}

// AddItem adds an a-la-carte item
func (s *Session) AddItem(ctx context.Context, item models.MenuItem) (State, error) {
	return s.run(ctx, func() error { return s.AddSimpleItem(item) })
}

// RemoveLine drops the order line at index
func (s *Session) RemoveLine(ctx context.Context, index int) (State, error) {
	return s.run(ctx, func() error {
		if index < 0 || index >= len(s.lines) {
			return ErrNoSuchLine
		}
		s.lines = append(s.lines[:index], s.lines[index+1:]...)
		return nil
	})
}

// ApplyPromo validates and applies a promo code
func (s *Session) ApplyPromo(ctx context.Context, code string) (State, error) {
	return s.run(ctx, func() error { return s.ValidatePromoCode(code) })
}

// Checkout places the order. A non-empty email replaces the one given when
// the session was opened.
func (s *Session) Checkout(ctx context.Context, email string) (*models.Order, error) {
	var order *models.Order
	err := s.do(ctx, func() error {
		if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
			s.email = email
		}
		if err := s.HandleCheckout(); err != nil {
			return err
		}
		order = s.lastOrder
		return nil
	})
	return order, err
}

// VoiceResult is what a transcript did to the session
type VoiceResult struct {
	Command voice.Command `json:"command"`
	State   State         `json:"state"`
}

// Interpret runs a transcript through the session's voice interpreter
// against the currently available menu
func (s *Session) Interpret(ctx context.Context, transcript string) (VoiceResult, error) {
	var res VoiceResult
	err := s.do(ctx, func() error {
		if s.mgr.menu != nil {
			menu, err := s.mgr.menu.ListMenu(ctx, true)
			if err != nil {
				return err
			}
			s.interpreter.UpdateMenu(menu)
		}

		cmd, err := s.interpreter.Interpret(transcript)
		res.Command = cmd
		return err
	})

	s.mu.Lock()
	res.State = s.snapshot()
	s.mu.Unlock()
	return res, err
}

// VoiceHistory returns the session's recent transcripts, newest first
func (s *Session) VoiceHistory() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interpreter.History()
}

func (s *Session) run(ctx context.Context, fn func() error) (State, error) {
	var st State
	err := s.do(ctx, func() error {
		err := fn()
		st = s.snapshot()
		return err
	})
	return st, err
}
