// Package meal tracks how a bowl, plate or bigger plate is filled with
// entrées and sides, and decides which selections a meal can accept.
package meal

import (
	"pandapos/internal/models"
)

// Size is the meal format a customer picks before choosing items
type Size string

const (
	SizeBowl        Size = "bowl"
	SizePlate       Size = "plate"
	SizeBiggerPlate Size = "bigger plate"
)

// Sizes lists the known sizes from smallest to largest
var Sizes = []Size{SizeBowl, SizePlate, SizeBiggerPlate}

// ParseSize maps free text such as "Bigger Plate" onto a Size
func ParseSize(s string) (Size, bool) {
	for _, size := range Sizes {
		if normalizeSize(s) == string(size) {
			return size, true
		}
	}
	return "", false
}

// Requirements is how many slots of each kind a size needs
type Requirements struct {
	Sides   int `json:"sides"`
	Entrees int `json:"entrees"`
}

// Total is the number of slots the size needs
func (r Requirements) Total() int {
	return r.Sides + r.Entrees
}

// RequirementsFor returns the slot counts for size. Unknown sizes use the
// bowl requirements.
func RequirementsFor(size Size) Requirements {
	switch size {
	case SizePlate:
		return Requirements{Sides: 1, Entrees: 2}
	case SizeBiggerPlate:
		return Requirements{Sides: 2, Entrees: 3}
	default:
		return Requirements{Sides: 1, Entrees: 1}
	}
}

// SlotKind is the kind of slot a candidate item is offered for
type SlotKind string

const (
	SlotSide   SlotKind = "side"
	SlotEntree SlotKind = "entree"
)

// Slot names a single position in a meal
type Slot string

const (
	SlotSide1   Slot = "side1"
	SlotSide2   Slot = "side2"
	SlotEntree1 Slot = "entree1"
	SlotEntree2 Slot = "entree2"
	SlotEntree3 Slot = "entree3"
)

// Meal is one meal under construction. It is a value: every mutation returns
// a new Meal and leaves the receiver unchanged.
type Meal struct {
	Size    Size             `json:"size"`
	Side1   *models.MenuItem `json:"side1,omitempty"`
	Side2   *models.MenuItem `json:"side2,omitempty"`
	Entree1 *models.MenuItem `json:"entree1,omitempty"`
	Entree2 *models.MenuItem `json:"entree2,omitempty"`
	Entree3 *models.MenuItem `json:"entree3,omitempty"`
}

// New starts an empty meal of the given size
func New(size Size) Meal {
	return Meal{Size: size}
}

// Requirements returns the slot counts for the meal's size
func (m Meal) Requirements() Requirements {
	return RequirementsFor(m.Size)
}

func (m Meal) sideSlots() []*models.MenuItem {
	return []*models.MenuItem{m.Side1, m.Side2}[:m.Requirements().Sides]
}

func (m Meal) entreeSlots() []*models.MenuItem {
	return []*models.MenuItem{m.Entree1, m.Entree2, m.Entree3}[:m.Requirements().Entrees]
}

func countFilled(slots []*models.MenuItem) int {
	n := 0
	for _, s := range slots {
		if s != nil {
			n++
		}
	}
	return n
}

// Progress returns how complete the meal is as a percentage in [0, 100].
// Only the slots the size requires are counted.
func (m Meal) Progress() float64 {
	req := m.Requirements()
	filled := countFilled(m.sideSlots()) + countFilled(m.entreeSlots())
	return float64(filled) / float64(req.Total()) * 100
}

// IsComplete reports whether every required slot is filled
func (m Meal) IsComplete() bool {
	req := m.Requirements()
	return countFilled(m.sideSlots())+countFilled(m.entreeSlots()) == req.Total()
}

var (
	sideLabels   = []string{"first side", "second side"}
	entreeLabels = []string{"first entrée", "second entrée", "third entrée"}
)

// RemainingSlots lists the empty required slots, sides before entrées
func (m Meal) RemainingSlots() []string {
	remaining := make([]string, 0, m.Requirements().Total())

	sides := m.sideSlots()
	for i, s := range sides {
		if s != nil {
			continue
		}
		if len(sides) == 1 {
			remaining = append(remaining, "side")
		} else {
			remaining = append(remaining, sideLabels[i])
		}
	}

	for i, e := range m.entreeSlots() {
		if e == nil {
			remaining = append(remaining, entreeLabels[i])
		}
	}

	return remaining
}

// IsSlotSelectable reports whether item can be chosen for a slot of kind.
// An item already occupying one of those slots stays selectable so it can be
// shown as the current choice.
func (m Meal) IsSlotSelectable(item models.MenuItem, kind SlotKind) bool {
	var slots []*models.MenuItem
	switch kind {
	case SlotSide:
		slots = m.sideSlots()
	case SlotEntree:
		slots = m.entreeSlots()
	default:
		return false
	}

	for _, s := range slots {
		if s != nil && s.ID == item.ID {
			return true
		}
	}
	return countFilled(slots) < len(slots)
}

// ApplySelection routes item into the meal by category and returns the new
// state. Selections the size cannot hold are ignored.
func (m Meal) ApplySelection(item models.MenuItem) Meal {
	next := m
	picked := &item
	req := m.Requirements()

	switch item.Category {
	case models.CategorySide:
		if req.Sides == 1 {
			next.Side1 = picked
			next.Side2 = nil
			return next
		}
		switch {
		case next.Side1 == nil:
			next.Side1 = picked
		case next.Side2 == nil:
			next.Side2 = picked
		}
	case models.CategoryEntree:
		if req.Entrees == 1 {
			next.Entree1 = picked
			next.Entree2 = nil
			next.Entree3 = nil
			return next
		}
		switch {
		case next.Entree1 == nil:
			next.Entree1 = picked
		case next.Entree2 == nil:
			next.Entree2 = picked
		case next.Entree3 == nil && req.Entrees >= 3:
			next.Entree3 = picked
		}
	}

	return next
}

// Clear empties a single slot
func (m Meal) Clear(slot Slot) Meal {
	next := m
	switch slot {
	case SlotSide1:
		next.Side1 = nil
	case SlotSide2:
		next.Side2 = nil
	case SlotEntree1:
		next.Entree1 = nil
	case SlotEntree2:
		next.Entree2 = nil
	case SlotEntree3:
		next.Entree3 = nil
	}
	return next
}

// Items returns the filled required slots, sides first
func (m Meal) Items() []models.MenuItem {
	items := make([]models.MenuItem, 0, m.Requirements().Total())
	for _, s := range m.sideSlots() {
		if s != nil {
			items = append(items, *s)
		}
	}
	for _, e := range m.entreeSlots() {
		if e != nil {
			items = append(items, *e)
		}
	}
	return items
}

// Components returns the names of the filled slots in slot order
func (m Meal) Components() []string {
	items := m.Items()
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return names
}
