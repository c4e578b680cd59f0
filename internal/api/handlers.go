package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pandapos/internal/auth"
	"pandapos/internal/models"
	"pandapos/internal/store"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges staff credentials for a token and the role's landing page
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := a.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListMenu returns the items customers can order
func (a *API) ListMenu(c *gin.Context) {
	a.listMenu(c, true)
}

// ListAllMenu includes unavailable items
func (a *API) ListAllMenu(c *gin.Context) {
	a.listMenu(c, false)
}

func (a *API) listMenu(c *gin.Context, availableOnly bool) {
	items, err := a.store.ListMenu(c.Request.Context(), availableOnly)
	if err != nil {
		a.respondError(c, err)
		return
	}
	if category := c.Query("category"); category != "" {
		filtered := items[:0]
		for _, item := range items {
			if item.IsInCategory(models.MenuCategory(category)) {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}
	c.JSON(http.StatusOK, items)
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, errors.New("id must be a positive number"))
		return 0, false
	}
	return uint(id), true
}

// CreateMenuItem adds a menu item with its ingredient links
func (a *API) CreateMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := c.ShouldBindJSON(&item); err != nil {
		badRequest(c, err)
		return
	}
	item.ID = 0
	if err := a.store.CreateMenuItem(c.Request.Context(), &item); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateMenuItem replaces a menu item. Ingredients are replaced only when
// the body carries them.
func (a *API) UpdateMenuItem(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var item models.MenuItem
	if err := c.ShouldBindJSON(&item); err != nil {
		badRequest(c, err)
		return
	}
	item.ID = id
	if err := a.store.UpdateMenuItem(c.Request.Context(), &item); err != nil {
		a.respondError(c, err)
		return
	}
	updated, err := a.store.MenuItem(c.Request.Context(), id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteMenuItem removes a menu item
func (a *API) DeleteMenuItem(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := a.store.DeleteMenuItem(c.Request.Context(), id); err != nil {
		a.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListInventory returns every stocked item. ?restock=true keeps only the
// items at or below their minimum level.
func (a *API) ListInventory(c *gin.Context) {
	items, err := a.store.ListInventory(c.Request.Context())
	if err != nil {
		a.respondError(c, err)
		return
	}
	if c.Query("restock") == "true" {
		low := make([]models.InventoryItem, 0)
		for _, item := range items {
			if item.NeedsRestock() {
				low = append(low, item)
			}
		}
		items = low
	}
	c.JSON(http.StatusOK, items)
}

// GetInventoryItem returns one inventory item
func (a *API) GetInventoryItem(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	item, err := a.store.InventoryItem(c.Request.Context(), id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateInventoryItem adds an inventory item
func (a *API) CreateInventoryItem(c *gin.Context) {
	var item models.InventoryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		badRequest(c, err)
		return
	}
	item.ID = 0
	if err := a.store.CreateInventoryItem(c.Request.Context(), &item); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateInventoryItem replaces an inventory item
func (a *API) UpdateInventoryItem(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var item models.InventoryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		badRequest(c, err)
		return
	}
	item.ID = id
	if err := a.store.UpdateInventoryItem(c.Request.Context(), &item); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteInventoryItem removes an inventory item and its recipe links
func (a *API) DeleteInventoryItem(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := a.store.DeleteInventoryItem(c.Request.Context(), id); err != nil {
		a.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type employeeRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
	Active   *bool       `json:"active"`
}

// ListEmployees returns every staff account
func (a *API) ListEmployees(c *gin.Context) {
	employees, err := a.store.ListEmployees(c.Request.Context())
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, employees)
}

// GetEmployee returns one staff account
func (a *API) GetEmployee(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	e, err := a.store.Employee(c.Request.Context(), id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// CreateEmployee adds a staff account
func (a *API) CreateEmployee(c *gin.Context) {
	var req employeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if len(req.Password) < 8 {
		badRequest(c, errors.New("password must be at least 8 characters"))
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		a.respondError(c, err)
		return
	}

	e := models.Employee{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Active:       req.Active == nil || *req.Active,
	}
	if err := a.store.CreateEmployee(c.Request.Context(), &e); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// UpdateEmployee edits a staff account. Empty fields keep their value and
// an empty password keeps the stored one.
func (a *API) UpdateEmployee(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req employeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	e, err := a.store.Employee(c.Request.Context(), id)
	if err != nil {
		a.respondError(c, err)
		return
	}

	if req.Name != "" {
		e.Name = req.Name
	}
	if req.Email != "" {
		e.Email = req.Email
	}
	if req.Role != "" {
		e.Role = req.Role
	}
	if req.Active != nil {
		e.Active = *req.Active
	}
	e.PasswordHash = ""
	if req.Password != "" {
		if len(req.Password) < 8 {
			badRequest(c, errors.New("password must be at least 8 characters"))
			return
		}
		if e.PasswordHash, err = auth.HashPassword(req.Password); err != nil {
			a.respondError(c, err)
			return
		}
	}

	if err := a.store.UpdateEmployee(c.Request.Context(), e); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// DeactivateEmployee disables a staff account. Accounts are never deleted
// so past orders keep their cashier.
func (a *API) DeactivateEmployee(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := a.store.DeactivateEmployee(c.Request.Context(), id); err != nil {
		a.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListOrders returns logged orders, newest first
func (a *API) ListOrders(c *gin.Context) {
	var f store.OrderFilter
	var err error
	if f.From, err = a.timeQuery(c, "from"); err != nil {
		badRequest(c, err)
		return
	}
	if f.To, err = a.timeQuery(c, "to"); err != nil {
		badRequest(c, err)
		return
	}
	f.Source = models.OrderSource(c.Query("source"))
	if limit := c.Query("limit"); limit != "" {
		if f.Limit, err = strconv.Atoi(limit); err != nil {
			badRequest(c, errors.New("limit must be a number"))
			return
		}
	}

	orders, err := a.store.ListOrders(c.Request.Context(), f)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder returns one order with its lines
func (a *API) GetOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	order, err := a.store.Order(c.Request.Context(), id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Status reports live counters for the staff screens
func (a *API) Status(c *gin.Context) {
	status := gin.H{
		"status":          "running",
		"active_sessions": a.sessions.Len(),
	}
	if a.hub != nil {
		status["live_clients"] = a.hub.Len()
	}
	if a.monitor != nil {
		status["metrics"] = a.monitor.GetMetrics()
	}
	c.JSON(http.StatusOK, status)
}

// ResetStatus clears the monitor's counters and last-event snapshots
func (a *API) ResetStatus(c *gin.Context) {
	if a.monitor != nil {
		a.monitor.Reset()
	}
	c.Status(http.StatusNoContent)
}

// timeQuery parses a query parameter as RFC 3339 or as a YYYY-MM-DD date
// in the API's location. A missing parameter is the zero time.
func (a *API) timeQuery(c *gin.Context, name string) (time.Time, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, a.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a date (YYYY-MM-DD) or RFC 3339 time", name)
	}
	return t, nil
}
