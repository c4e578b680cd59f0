package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const defaultBaseURL = "http://localhost:8080"

// ApiClient talks to the PandaPOS API on behalf of one logged-in cashier
type ApiClient struct {
	httpClient *http.Client
	BaseURL    string
	token      string
}

// NewApiClient creates a new API client
func NewApiClient() *ApiClient {
	baseURL := os.Getenv("PANDAPOS_API_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &ApiClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    baseURL,
	}
}

// APIError is a non-2xx response. State is set when the server returned the
// session alongside the error.
type APIError struct {
	Status  int
	Message string
	State   *SessionState
}

func (e *APIError) Error() string {
	return e.Message
}

// MenuItem is a sellable item
type MenuItem struct {
	ID        uint    `json:"id"`
	Category  string  `json:"category"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Premium   bool    `json:"premium"`
	Available bool    `json:"available"`
}

// OrderLine is one line of an order or session
type OrderLine struct {
	Kind       string   `json:"kind"`
	Name       string   `json:"name"`
	Components []string `json:"components"`
	Quantity   int      `json:"quantity"`
	UnitPrice  float64  `json:"unit_price"`
}

// Totals are the money figures of a session
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// MealState is the meal being built
type MealState struct {
	Name      string   `json:"name"`
	Progress  float64  `json:"progress"`
	Remaining []string `json:"remaining"`
	Price     float64  `json:"price"`
}

// Order is a placed order
type Order struct {
	ID            uint        `json:"id"`
	Source        string      `json:"source"`
	CustomerEmail string      `json:"customer_email"`
	Total         float64     `json:"total"`
	PromoCode     string      `json:"promo_code"`
	Status        string      `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	Items         []OrderLine `json:"items"`
}

// SessionState mirrors the server's ordering session
type SessionState struct {
	ID        string      `json:"id"`
	Lines     []OrderLine `json:"lines"`
	Meal      *MealState  `json:"meal"`
	PromoCode string      `json:"promo_code"`
	Totals    Totals      `json:"totals"`
	LastOrder *Order      `json:"last_order"`
}

// VoiceResult is the response to a typed or spoken command
type VoiceResult struct {
	Command struct {
		Action string `json:"action"`
	} `json:"command"`
	State SessionState `json:"state"`
}

// LoginResult is returned by a successful login
type LoginResult struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	Home  string `json:"home"`
}

// CheckHealth checks if the API is up and running
func (c *ApiClient) CheckHealth() error {
	resp, err := c.httpClient.Get(c.BaseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API health check failed with status code: %d", resp.StatusCode)
	}
	return nil
}

func (c *ApiClient) do(method, path string, body, out interface{}) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 300 {
		var failure struct {
			Error string        `json:"error"`
			State *SessionState `json:"state"`
		}
		if err := json.Unmarshal(data, &failure); err != nil || failure.Error == "" {
			failure.Error = fmt.Sprintf("unexpected status code: %d", resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: failure.Error, State: failure.State}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

// Login authenticates and keeps the token for later calls
func (c *ApiClient) Login(email, password string) (*LoginResult, error) {
	var res LoginResult
	if err := c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": password}, &res); err != nil {
		return nil, err
	}
	if res.Role != "cashier" && res.Role != "manager" {
		return nil, errors.New("account cannot ring up orders")
	}
	c.token = res.Token
	return &res, nil
}

// GetMenu retrieves the available menu
func (c *ApiClient) GetMenu() ([]MenuItem, error) {
	var items []MenuItem
	err := c.do(http.MethodGet, "/api/v1/menu", nil, &items)
	return items, err
}

// OpenSession starts a cashier ordering session
func (c *ApiClient) OpenSession() (*SessionState, error) {
	var st SessionState
	if err := c.do(http.MethodPost, "/api/v1/sessions", map[string]string{"source": "cashier"}, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// CloseSession discards a session
func (c *ApiClient) CloseSession(id string) error {
	return c.do(http.MethodDelete, "/api/v1/sessions/"+id, nil, nil)
}

// Command sends a free-text command through the session's interpreter
func (c *ApiClient) Command(sessionID, text string) (*VoiceResult, error) {
	var res VoiceResult
	if err := c.do(http.MethodPost, "/api/v1/sessions/"+sessionID+"/voice", map[string]string{"transcript": text}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetOrders retrieves the most recent orders
func (c *ApiClient) GetOrders(limit int) ([]Order, error) {
	var orders []Order
	err := c.do(http.MethodGet, fmt.Sprintf("/api/v1/orders?limit=%d", limit), nil, &orders)
	return orders, err
}
