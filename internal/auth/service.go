package auth

import (
	"context"
	"strings"

	"pandapos/internal/models"
)

// EmployeeFinder looks up staff accounts by email
type EmployeeFinder interface {
	EmployeeByEmail(ctx context.Context, email string) (*models.Employee, error)
}

// LoginResult is returned to the front end after a successful login
type LoginResult struct {
	Token    string           `json:"token"`
	Role     models.Role      `json:"role"`
	Home     string           `json:"home"`
	Employee *models.Employee `json:"employee"`
}

// Service authenticates employees
type Service struct {
	employees EmployeeFinder
	tokens    *Tokens
}

// NewService creates a login service
func NewService(employees EmployeeFinder, tokens *Tokens) *Service {
	return &Service{employees: employees, tokens: tokens}
}

// Login checks the credentials and issues a token. Unknown accounts, wrong
// passwords and deactivated accounts all report ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	employee, err := s.employees.EmployeeByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil || employee == nil {
		return nil, ErrInvalidCredentials
	}
	if !employee.Active || !CheckPassword(employee.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(employee)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:    token,
		Role:     employee.Role,
		Home:     employee.Role.HomePath(),
		Employee: employee,
	}, nil
}
