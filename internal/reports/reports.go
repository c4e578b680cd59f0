// Package reports answers the manager's sales and inventory questions.
package reports

import (
	"context"
	"fmt"
	"math"
	"time"

	"pandapos/internal/models"
	"pandapos/internal/store"

	"github.com/jinzhu/gorm"
)

// Service runs report queries
type Service struct {
	db  *gorm.DB
	loc *time.Location
}

// New creates a report service. Days and hours are cut in loc.
func New(db *gorm.DB, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{db: db, loc: loc}
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}

// dayBounds returns [start, end) of the calendar day containing day
func (s *Service) dayBounds(day time.Time) (time.Time, time.Time) {
	d := day.In(s.loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.loc)
	return start, start.AddDate(0, 0, 1)
}

// ItemSales is one row of the sales report
type ItemSales struct {
	Name     string               `json:"name"`
	Kind     models.OrderItemKind `json:"kind"`
	Quantity int                  `json:"quantity"`
	Revenue  float64              `json:"revenue"`
}

// SalesByItem totals quantity and revenue per line name over [from, to),
// highest revenue first
func (s *Service) SalesByItem(_ context.Context, from, to time.Time) ([]ItemSales, error) {
	var rows []ItemSales
	err := s.db.Table("order_items").
		Select("order_items.name AS name, order_items.kind AS kind, SUM(order_items.quantity) AS quantity, SUM(order_items.quantity * order_items.unit_price) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.created_at >= ? AND orders.created_at < ? AND orders.status <> ?",
			store.DBTime(from), store.DBTime(to), models.OrderStatusCancelled).
		Group("order_items.name, order_items.kind").
		Order("revenue DESC, name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query sales by item: %w", err)
	}
	for i := range rows {
		rows[i].Revenue = round(rows[i].Revenue)
	}
	return rows, nil
}

// HourSales is one hour of the X-report
type HourSales struct {
	Hour    int     `json:"hour"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

func (s *Service) ordersBetween(from, to time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.
		Where("created_at >= ? AND created_at < ? AND status <> ?", store.DBTime(from), store.DBTime(to), models.OrderStatusCancelled).
		Order("created_at").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	return orders, nil
}

// HourlySales returns order count and revenue for each hour of day that had
// sales
func (s *Service) HourlySales(_ context.Context, day time.Time) ([]HourSales, error) {
	start, end := s.dayBounds(day)
	orders, err := s.ordersBetween(start, end)
	if err != nil {
		return nil, err
	}

	var hours [24]HourSales
	for _, o := range orders {
		h := o.CreatedAt.In(s.loc).Hour()
		hours[h].Orders++
		hours[h].Revenue += o.Total
	}

	var out []HourSales
	for h, hs := range hours {
		if hs.Orders == 0 {
			continue
		}
		out = append(out, HourSales{Hour: h, Orders: hs.Orders, Revenue: round(hs.Revenue)})
	}
	return out, nil
}

// Summary is the end-of-day Z-report
type Summary struct {
	Date      string                     `json:"date"`
	Orders    int                        `json:"orders"`
	Gross     float64                    `json:"gross"`
	Discounts float64                    `json:"discounts"`
	Tax       float64                    `json:"tax"`
	Net       float64                    `json:"net"`
	BySource  map[models.OrderSource]int `json:"by_source"`
}

// DailySummary totals the day's orders. Gross is before discounts and tax,
// net is what was collected.
func (s *Service) DailySummary(_ context.Context, day time.Time) (Summary, error) {
	start, end := s.dayBounds(day)
	orders, err := s.ordersBetween(start, end)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Date: start.Format("2006-01-02"), BySource: make(map[models.OrderSource]int)}
	for _, o := range orders {
		sum.Orders++
		sum.Gross += o.Subtotal
		sum.Discounts += o.Discount
		sum.Tax += o.Tax
		sum.Net += o.Total
		sum.BySource[o.Source]++
	}
	sum.Gross = round(sum.Gross)
	sum.Discounts = round(sum.Discounts)
	sum.Tax = round(sum.Tax)
	sum.Net = round(sum.Net)
	return sum, nil
}

// RestockReport lists inventory at or below its minimum level
func (s *Service) RestockReport(_ context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := s.db.Where("quantity <= min_level").Order("name").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to query restock report: %w", err)
	}
	return items, nil
}

// Usage is inventory consumed over a window
type Usage struct {
	InventoryItemID uint                 `json:"inventory_item_id"`
	Name            string               `json:"name"`
	Unit            models.InventoryUnit `json:"unit"`
	Amount          float64              `json:"amount"`
}

// ProductUsage totals the stock drawn by orders over [from, to), by
// inventory item name
func (s *Service) ProductUsage(_ context.Context, from, to time.Time) ([]Usage, error) {
	var rows []Usage
	err := s.db.Table("inventory_usages").
		Select("inventory_items.id AS inventory_item_id, inventory_items.name AS name, inventory_items.unit AS unit, SUM(inventory_usages.amount) AS amount").
		Joins("JOIN inventory_items ON inventory_items.id = inventory_usages.inventory_item_id").
		Where("inventory_usages.created_at >= ? AND inventory_usages.created_at < ?", store.DBTime(from), store.DBTime(to)).
		Group("inventory_items.id, inventory_items.name, inventory_items.unit").
		Order("name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query product usage: %w", err)
	}
	for i := range rows {
		rows[i].Amount = round(rows[i].Amount)
	}
	return rows, nil
}
