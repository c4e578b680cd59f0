package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StringSlice represents a slice of strings that can be stored in the database
type StringSlice []string

// Value converts the slice to a JSON string for storage
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan converts the database value back to a slice
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("unsupported type for StringSlice")
	}
}

// OrderSource identifies where an order was rung up
type OrderSource string

const (
	SourceCashier OrderSource = "cashier"
	SourceOnline  OrderSource = "online"
	SourceVoice   OrderSource = "voice"
)

// OrderStatus represents the possible states of an order
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is one logged sales transaction
type Order struct {
	ID            uint        `gorm:"primary_key" json:"id"`
	Source        OrderSource `gorm:"type:varchar(16);not null" json:"source"`
	EmployeeID    *uint       `json:"employee_id,omitempty"`
	CustomerEmail string      `gorm:"index" json:"customer_email,omitempty"`
	Subtotal      float64     `json:"subtotal"`
	Discount      float64     `json:"discount"`
	Tax           float64     `json:"tax"`
	Total         float64     `json:"total"`
	PromoCode     string      `json:"promo_code,omitempty"`
	Status        OrderStatus `gorm:"type:varchar(16);not null" json:"status"`
	CreatedAt     time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	Items         []OrderItem `gorm:"foreignkey:OrderID" json:"items"`
}

// OrderItemKind distinguishes composed meals from single items
type OrderItemKind string

const (
	ItemKindMeal   OrderItemKind = "meal"
	ItemKindSingle OrderItemKind = "item"
)

// OrderItem represents a line on an order
type OrderItem struct {
	ID         uint          `gorm:"primary_key" json:"id"`
	OrderID    uint          `gorm:"not null;index" json:"order_id"`
	Kind       OrderItemKind `gorm:"type:varchar(8);not null" json:"kind"`
	MenuItemID *uint         `json:"menu_item_id,omitempty"`
	MealSize   string        `json:"meal_size,omitempty"`
	Name       string        `gorm:"not null" json:"name"`
	Components StringSlice   `gorm:"type:text" json:"components,omitempty"`
	Quantity   int           `gorm:"not null" json:"quantity"`
	UnitPrice  float64       `gorm:"not null" json:"unit_price"`

	// ComponentIDs are the menu items whose stock this line consumes. Not persisted.
	ComponentIDs []uint `gorm:"-" json:"-"`
}

// InventoryUsage records stock consumed by one order
type InventoryUsage struct {
	ID              uint      `gorm:"primary_key" json:"id"`
	OrderID         uint      `gorm:"not null;index" json:"order_id"`
	InventoryItemID uint      `gorm:"not null;index" json:"inventory_item_id"`
	Amount          float64   `gorm:"not null" json:"amount"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
}

// LineTotal returns the extended price of the line
func (oi *OrderItem) LineTotal() float64 {
	return oi.UnitPrice * float64(oi.Quantity)
}
