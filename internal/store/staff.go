package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pandapos/internal/models"
)

// ListEmployees returns all staff accounts by name
func (s *Store) ListEmployees(_ context.Context) ([]models.Employee, error) {
	var employees []models.Employee
	if err := s.db.Order("name").Find(&employees).Error; err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, nil
}

// Employee returns one staff account
func (s *Store) Employee(_ context.Context, id uint) (*models.Employee, error) {
	var employee models.Employee
	if err := s.db.First(&employee, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &employee, nil
}

// EmployeeByEmail looks up a staff account by its lowercased email
func (s *Store) EmployeeByEmail(_ context.Context, email string) (*models.Employee, error) {
	var employee models.Employee
	if err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&employee).Error; err != nil {
		return nil, notFound(err)
	}
	return &employee, nil
}

// CreateEmployee inserts a staff account. The password hash must already be set.
func (s *Store) CreateEmployee(_ context.Context, e *models.Employee) error {
	if err := validateEmployee(e); err != nil {
		return invalid(err)
	}
	e.Email = strings.ToLower(strings.TrimSpace(e.Email))

	var count int
	s.db.Model(&models.Employee{}).Where("email = ?", e.Email).Count(&count)
	if count > 0 {
		return ErrDuplicate
	}
	return s.db.Create(e).Error
}

// UpdateEmployee saves every field of the staff account
func (s *Store) UpdateEmployee(_ context.Context, e *models.Employee) error {
	if err := validateEmployee(e); err != nil {
		return invalid(err)
	}
	var existing models.Employee
	if err := s.db.First(&existing, e.ID).Error; err != nil {
		return notFound(err)
	}
	e.Email = strings.ToLower(strings.TrimSpace(e.Email))
	if e.Email != existing.Email {
		var count int
		s.db.Model(&models.Employee{}).Where("email = ? AND id <> ?", e.Email, e.ID).Count(&count)
		if count > 0 {
			return ErrDuplicate
		}
	}
	if e.PasswordHash == "" {
		e.PasswordHash = existing.PasswordHash
	}
	e.CreatedAt = existing.CreatedAt
	return s.db.Save(e).Error
}

// DeactivateEmployee disables logins for the account. Staff rows are kept
// because orders reference them.
func (s *Store) DeactivateEmployee(_ context.Context, id uint) error {
	res := s.db.Model(&models.Employee{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func validateEmployee(e *models.Employee) error {
	if strings.TrimSpace(e.Name) == "" {
		return errors.New("employee name is required")
	}
	if !strings.Contains(e.Email, "@") {
		return fmt.Errorf("employee email %q is invalid", e.Email)
	}
	if !e.Role.Valid() {
		return errors.New("employee role must be manager or cashier")
	}
	return nil
}

// PromotionByCode looks up a promotion ignoring case
func (s *Store) PromotionByCode(_ context.Context, code string) (*models.Promotion, error) {
	var promo models.Promotion
	if err := s.db.Where("upper(code) = ?", strings.ToUpper(strings.TrimSpace(code))).First(&promo).Error; err != nil {
		return nil, notFound(err)
	}
	return &promo, nil
}

// ListPromotions returns every promotion by code
func (s *Store) ListPromotions(_ context.Context) ([]models.Promotion, error) {
	var promos []models.Promotion
	if err := s.db.Order("code").Find(&promos).Error; err != nil {
		return nil, err
	}
	return promos, nil
}

// CreatePromotion inserts a promotion with an upper-cased code
func (s *Store) CreatePromotion(ctx context.Context, p *models.Promotion) error {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	if p.Code == "" {
		return fmt.Errorf("%w: promotion code is required", ErrInvalid)
	}
	if p.PercentOff <= 0 || p.PercentOff > 100 {
		return fmt.Errorf("%w: promotion percent off must be in (0, 100]", ErrInvalid)
	}
	if _, err := s.PromotionByCode(ctx, p.Code); err == nil {
		return ErrDuplicate
	}
	return s.db.Create(p).Error
}

// Customer is an email address with its order count
type Customer struct {
	Email  string `json:"email"`
	Orders int    `json:"orders"`
}

// PromoCandidates returns customers with at least minOrders non-cancelled
// orders who have not been sent the promotion yet, ordered by email
func (s *Store) PromoCandidates(_ context.Context, promotionID uint, minOrders int) ([]Customer, error) {
	var rows []struct {
		CustomerEmail string
		Orders        int
	}
	err := s.db.Table("orders").
		Select("customer_email, count(*) as orders").
		Where("customer_email <> '' AND status <> ?", models.OrderStatusCancelled).
		Group("customer_email").
		Having("count(*) >= ?", minOrders).
		Order("customer_email").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select promo candidates: %w", err)
	}

	var sent []models.PromoDelivery
	if err := s.db.Where("promotion_id = ?", promotionID).Find(&sent).Error; err != nil {
		return nil, err
	}
	delivered := make(map[string]bool, len(sent))
	for _, d := range sent {
		delivered[d.CustomerEmail] = true
	}

	customers := make([]Customer, 0, len(rows))
	for _, r := range rows {
		if !delivered[r.CustomerEmail] {
			customers = append(customers, Customer{Email: r.CustomerEmail, Orders: r.Orders})
		}
	}
	return customers, nil
}

// RecordPromoDelivery notes that the promotion was mailed to email
func (s *Store) RecordPromoDelivery(_ context.Context, promotionID uint, email string, at time.Time) error {
	return s.db.Create(&models.PromoDelivery{PromotionID: promotionID, CustomerEmail: email, SentAt: at}).Error
}
