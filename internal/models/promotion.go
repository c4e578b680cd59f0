package models

import (
	"time"
)

// Promotion is a discount code customers can apply at checkout
type Promotion struct {
	ID          uint       `gorm:"primary_key" json:"id"`
	Code        string     `gorm:"not null;unique_index" json:"code"`
	Description string     `json:"description"`
	PercentOff  float64    `gorm:"not null" json:"percent_off"`
	Active      bool       `gorm:"not null" json:"active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	// MinOrders is how many past orders make a customer eligible for the promo email
	MinOrders int       `gorm:"not null" json:"min_orders"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Usable reports whether the promotion can be redeemed at t
func (p *Promotion) Usable(t time.Time) bool {
	if !p.Active {
		return false
	}
	return p.ExpiresAt == nil || t.Before(*p.ExpiresAt)
}

// PromoDelivery records one promotional email sent to a customer
type PromoDelivery struct {
	ID            uint      `gorm:"primary_key" json:"id"`
	PromotionID   uint      `gorm:"not null;index" json:"promotion_id"`
	CustomerEmail string    `gorm:"not null;index" json:"customer_email"`
	SentAt        time.Time `json:"sent_at"`
}
