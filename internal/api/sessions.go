package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"pandapos/internal/auth"
	"pandapos/internal/meal"
	"pandapos/internal/models"
	"pandapos/internal/monitoring"
	"pandapos/internal/ordering"
	"pandapos/internal/voice"

	"github.com/gin-gonic/gin"
)

type openSessionRequest struct {
	Source        models.OrderSource `json:"source"`
	CustomerEmail string             `json:"customer_email"`
}

// OpenSession starts an ordering session. Cashier sessions need a staff
// token and record the employee on the order.
func (a *API) OpenSession(c *gin.Context) {
	var req openSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	switch req.Source {
	case "", models.SourceOnline, models.SourceVoice:
	case models.SourceCashier:
	default:
		badRequest(c, fmt.Errorf("unknown order source %q", req.Source))
		return
	}

	var employeeID *uint
	if req.Source == models.SourceCashier {
		claims, err := a.bearerClaims(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "cashier sessions require a staff token"})
			return
		}
		id, err := claims.EmployeeID()
		if err != nil {
			a.respondError(c, err)
			return
		}
		employeeID = &id
	}

	s := a.sessions.Open(req.Source, employeeID, strings.ToLower(strings.TrimSpace(req.CustomerEmail)))
	c.JSON(http.StatusCreated, s.State())
}

func (a *API) bearerClaims(c *gin.Context) (*auth.Claims, error) {
	header := c.GetHeader("Authorization")
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if header == "" || token == header {
		return nil, auth.ErrInvalidToken
	}
	return a.tokens.Parse(token)
}

func (a *API) session(c *gin.Context) (*ordering.Session, bool) {
	s, err := a.sessions.Get(c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return nil, false
	}
	return s, true
}

func (a *API) respondState(c *gin.Context, st ordering.State, err error) {
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			a.respondError(c, err)
			return
		}
		c.JSON(status, gin.H{"error": err.Error(), "state": st})
		return
	}
	c.JSON(http.StatusOK, st)
}

// GetSession returns the current order and meal
func (a *API) GetSession(c *gin.Context) {
	if s, ok := a.session(c); ok {
		c.JSON(http.StatusOK, s.State())
	}
}

// CloseSession discards a session
func (a *API) CloseSession(c *gin.Context) {
	if err := a.sessions.Close(c.Param("id")); err != nil {
		a.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type startMealRequest struct {
	Size string `json:"size" binding:"required"`
}

// StartMeal begins a bowl, plate or bigger plate
func (a *API) StartMeal(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	var req startMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	size, ok := meal.ParseSize(req.Size)
	if !ok {
		badRequest(c, fmt.Errorf("unknown meal size %q", req.Size))
		return
	}
	st, err := s.StartMeal(c.Request.Context(), size)
	a.respondState(c, st, err)
}

type menuItemRequest struct {
	MenuItemID uint `json:"menu_item_id" binding:"required"`
}

func (a *API) bindMenuItem(c *gin.Context) (models.MenuItem, bool) {
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return models.MenuItem{}, false
	}
	item, err := a.store.MenuItem(c.Request.Context(), req.MenuItemID)
	if err != nil {
		a.respondError(c, err)
		return models.MenuItem{}, false
	}
	return *item, true
}

// SelectMealItem fills the next open slot of the current meal
func (a *API) SelectMealItem(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	item, ok := a.bindMenuItem(c)
	if !ok {
		return
	}
	st, err := s.SelectForMeal(c.Request.Context(), item)
	a.respondState(c, st, err)
}

// ClearMealSlot empties one slot of the current meal
func (a *API) ClearMealSlot(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	slot := meal.Slot(c.Param("slot"))
	switch slot {
	case meal.SlotSide1, meal.SlotSide2, meal.SlotEntree1, meal.SlotEntree2, meal.SlotEntree3:
	default:
		badRequest(c, fmt.Errorf("unknown meal slot %q", slot))
		return
	}
	st, err := s.ClearMealSlot(c.Request.Context(), slot)
	a.respondState(c, st, err)
}

// CompleteMeal moves the finished meal onto the order
func (a *API) CompleteMeal(c *gin.Context) {
	if s, ok := a.session(c); ok {
		st, err := s.FinishMeal(c.Request.Context())
		a.respondState(c, st, err)
	}
}

// DiscardMeal drops the meal being built
func (a *API) DiscardMeal(c *gin.Context) {
	if s, ok := a.session(c); ok {
		st, err := s.DiscardMeal(c.Request.Context())
		a.respondState(c, st, err)
	}
}

// AddItem adds an a-la-carte item to the order
func (a *API) AddItem(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	item, ok := a.bindMenuItem(c)
	if !ok {
		return
	}
	st, err := s.AddItem(c.Request.Context(), item)
	a.respondState(c, st, err)
}

// RemoveItem drops an order line by position
func (a *API) RemoveItem(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, errors.New("line index must be a number"))
		return
	}
	st, err := s.RemoveLine(c.Request.Context(), index)
	a.respondState(c, st, err)
}

type promoRequest struct {
	Code string `json:"code" binding:"required"`
}

// ApplyPromo validates a promo code against the session
func (a *API) ApplyPromo(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	var req promoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	st, err := s.ApplyPromo(c.Request.Context(), req.Code)
	a.respondState(c, st, err)
}

type checkoutRequest struct {
	CustomerEmail string `json:"customer_email"`
}

// Checkout places the order
func (a *API) Checkout(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	var req checkoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	order, err := s.Checkout(c.Request.Context(), req.CustomerEmail)
	if err != nil {
		a.respondState(c, s.State(), err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

type voiceRequest struct {
	Transcript string `json:"transcript" binding:"required"`
}

// Voice interprets a final speech transcript against the session
func (a *API) Voice(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	var req voiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := s.Interpret(c.Request.Context(), req.Transcript)
	outcome := voiceOutcome(err)
	a.recordVoice(string(res.Command.Action), outcome)

	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			a.respondError(c, err)
			return
		}
		c.JSON(status, gin.H{"error": err.Error(), "command": res.Command, "state": res.State})
		return
	}
	c.JSON(http.StatusOK, res)
}

func voiceOutcome(err error) string {
	var notFound *voice.ItemNotFoundError
	switch {
	case err == nil:
		return monitoring.OutcomeHandled
	case errors.As(err, &notFound):
		return monitoring.OutcomeNotFound
	case errors.Is(err, voice.ErrNotUnderstood):
		return monitoring.OutcomeUnrecognized
	default:
		return monitoring.OutcomeRejected
	}
}

func (a *API) recordVoice(action, outcome string) {
	if a.metrics != nil {
		a.metrics.ObserveVoiceCommand(action, outcome)
	}
	if a.monitor != nil {
		a.monitor.RecordVoiceCommand(action, outcome)
	}
}

// VoiceHistory lists the session's recent transcripts, newest first
func (a *API) VoiceHistory(c *gin.Context) {
	if s, ok := a.session(c); ok {
		c.JSON(http.StatusOK, gin.H{"history": s.VoiceHistory()})
	}
}
