package store

import (
	"context"
	"fmt"
	"time"

	"pandapos/internal/database"
	"pandapos/internal/models"

	"github.com/jinzhu/gorm"
)

// PlaceOrder inserts the order with its lines and draws stock for every
// ingredient the sold items consume, all in one transaction. Stock may go
// negative; shortages surface in the restock report instead of blocking
// the sale.
func (s *Store) PlaceOrder(ctx context.Context, order *models.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(order.Items) == 0 {
		return fmt.Errorf("order has no items")
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPlaced
	}

	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		usage, err := stockUsage(tx, order.Items)
		if err != nil {
			return err
		}

		for _, u := range usage {
			res := tx.Model(&models.InventoryItem{}).
				Where("id = ?", u.InventoryItemID).
				UpdateColumn("quantity", gorm.Expr("quantity - ?", u.Amount))
			if res.Error != nil {
				return fmt.Errorf("failed to draw stock for item %d: %w", u.InventoryItemID, res.Error)
			}

			row := models.InventoryUsage{OrderID: order.ID, InventoryItemID: u.InventoryItemID, Amount: u.Amount}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to record stock usage: %w", err)
			}
		}
		return nil
	})
}

// stockUsage totals the inventory drawn by the order lines, in inventory id
// order of first use
func stockUsage(tx *gorm.DB, lines []models.OrderItem) ([]models.InventoryUsage, error) {
	sold := make(map[uint]int)
	for _, line := range lines {
		ids := line.ComponentIDs
		if len(ids) == 0 && line.MenuItemID != nil {
			ids = []uint{*line.MenuItemID}
		}
		for _, id := range ids {
			sold[id] += line.Quantity
		}
	}
	if len(sold) == 0 {
		return nil, nil
	}

	menuIDs := make([]uint, 0, len(sold))
	for id := range sold {
		menuIDs = append(menuIDs, id)
	}

	var links []models.MenuItemIngredient
	if err := tx.Where("menu_item_id IN (?)", menuIDs).Order("inventory_item_id").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to load ingredient links: %w", err)
	}

	var usage []models.InventoryUsage
	index := make(map[uint]int)
	for _, link := range links {
		amount := link.Amount * float64(sold[link.MenuItemID])
		if i, ok := index[link.InventoryItemID]; ok {
			usage[i].Amount += amount
			continue
		}
		index[link.InventoryItemID] = len(usage)
		usage = append(usage, models.InventoryUsage{InventoryItemID: link.InventoryItemID, Amount: amount})
	}
	return usage, nil
}

// Order returns one order with its lines
func (s *Store) Order(_ context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").First(&order, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

// OrderFilter narrows ListOrders. Zero fields are ignored.
type OrderFilter struct {
	From   time.Time
	To     time.Time
	Source models.OrderSource
	Limit  int
}

// ListOrders returns orders newest first
func (s *Store) ListOrders(_ context.Context, f OrderFilter) ([]models.Order, error) {
	q := s.db.Preload("Items").Order("created_at desc, id desc")
	if !f.From.IsZero() {
		q = q.Where("created_at >= ?", DBTime(f.From))
	}
	if !f.To.IsZero() {
		q = q.Where("created_at < ?", DBTime(f.To))
	}
	if f.Source != "" {
		q = q.Where("source = ?", f.Source)
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var orders []models.Order
	if err := q.Limit(limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// DBTime converts a query bound to the zone gorm stamps rows in, so text
// timestamps in sqlite compare correctly
func DBTime(t time.Time) time.Time {
	return t.In(time.Local)
}
