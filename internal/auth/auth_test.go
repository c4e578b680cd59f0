package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pandapos/internal/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmployees map[string]*models.Employee

func (f fakeEmployees) EmployeeByEmail(_ context.Context, email string) (*models.Employee, error) {
	e, ok := f[email]
	if !ok {
		return nil, errors.New("record not found")
	}
	return e, nil
}

func newEmployee(t *testing.T, id uint, role models.Role, password string, active bool) *models.Employee {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	return &models.Employee{ID: id, Name: "Test " + string(role), Email: string(role) + "@example.com", PasswordHash: hash, Role: role, Active: active}
}

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	employee := &models.Employee{ID: 42, Name: "Mei", Role: models.RoleCashier}

	signed, err := tokens.Issue(employee)
	require.NoError(t, err)

	claims, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCashier, claims.Role)
	assert.Equal(t, "Mei", claims.Name)

	id, err := claims.EmployeeID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestTokensRejectWrongSecretAndExpiry(t *testing.T) {
	employee := &models.Employee{ID: 1, Role: models.RoleManager}

	signed, err := NewTokens("other-secret", time.Hour).Issue(employee)
	require.NoError(t, err)
	_, err = NewTokens("test-secret", time.Hour).Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokens("test-secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	signed, err = expired.Issue(employee)
	require.NoError(t, err)
	_, err = expired.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokensRejectUnknownRole(t *testing.T) {
	claims := Claims{Role: "owner", StandardClaims: jwt.StandardClaims{Subject: "1", ExpiresAt: time.Now().Add(time.Hour).Unix()}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = NewTokens("test-secret", time.Hour).Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogin(t *testing.T) {
	manager := newEmployee(t, 1, models.RoleManager, "manager123", true)
	retired := newEmployee(t, 2, models.RoleCashier, "cashier123", false)
	svc := NewService(fakeEmployees{manager.Email: manager, retired.Email: retired}, NewTokens("test-secret", time.Hour))

	res, err := svc.Login(context.Background(), "  Manager@Example.com ", "manager123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, res.Role)
	assert.Equal(t, "/manager", res.Home)
	assert.NotEmpty(t, res.Token)

	_, err = svc.Login(context.Background(), manager.Email, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@example.com", "manager123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), retired.Email, "cashier123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func newGuardedRouter(tokens *Tokens) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	staff := router.Group("/", AuthMiddleware(tokens))
	staff.GET("/orders", func(c *gin.Context) {
		claims, _ := ClaimsFrom(c)
		c.JSON(http.StatusOK, gin.H{"role": claims.Role})
	})
	staff.GET("/reports", RequireRole(models.RoleManager), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestAuthMiddleware(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	router := newGuardedRouter(tokens)
	cashierToken, err := tokens.Issue(&models.Employee{ID: 7, Role: models.RoleCashier})
	require.NoError(t, err)

	testCases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + cashierToken, http.StatusUnauthorized},
		{"bare token", cashierToken, http.StatusUnauthorized},
		{"garbage token", "Bearer invalid_token_xyz", http.StatusUnauthorized},
		{"valid token", "Bearer " + cashierToken, http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/orders", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	router := newGuardedRouter(tokens)

	cashierToken, _ := tokens.Issue(&models.Employee{ID: 7, Role: models.RoleCashier})
	managerToken, _ := tokens.Issue(&models.Employee{ID: 1, Role: models.RoleManager})

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	req.Header.Set("Authorization", "Bearer "+cashierToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/reports", nil)
	req.Header.Set("Authorization", "Bearer "+managerToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRoleWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/reports", RequireRole(models.RoleManager), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
