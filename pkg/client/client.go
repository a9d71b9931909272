// Package client talks to the todo API and keeps local copies of the
// user's todos and categories.
package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/multierr"

	"todo-api/internal/models"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx response. Message is the server's message verbatim.
type APIError struct {
	Status  int
	Message string
	Errors  map[string][]string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client is a thin JSON client for the /api routes.
type Client struct {
	baseURL string
	http    *fiber.Client
	token   string
	timeout time.Duration
}

// New returns a client for the API mounted at baseURL, e.g. http://localhost:3004/api.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    fiber.AcquireClient(),
		timeout: defaultTimeout,
	}
}

func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Token() string {
	return c.token
}

func (c *Client) agent(method, path string) *fiber.Agent {
	target := c.baseURL + path
	var a *fiber.Agent
	switch method {
	case fiber.MethodPost:
		a = c.http.Post(target)
	case fiber.MethodPut:
		a = c.http.Put(target)
	case fiber.MethodDelete:
		a = c.http.Delete(target)
	default:
		a = c.http.Get(target)
	}
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if c.token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	return a.Timeout(c.timeout)
}

// do sends body as JSON (when non-nil) and decodes a 2xx response into out.
func (c *Client) do(method, path string, body, out any) error {
	a := c.agent(method, path)
	if body != nil {
		a.JSON(body)
	}
	code, raw, errs := a.Bytes()
	if err := multierr.Combine(errs...); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		apiErr := &APIError{Status: code}
		var payload struct {
			Message string              `json:"message"`
			Errors  map[string][]string `json:"errors"`
		}
		if json.Unmarshal(raw, &payload) == nil && payload.Message != "" {
			apiErr.Message = payload.Message
			apiErr.Errors = payload.Errors
		} else {
			apiErr.Message = utils.StatusMessage(code)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// Session is the body of register and login responses.
type Session struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

type RegisterRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Register(in RegisterRequest) (Session, error) {
	var s Session
	err := c.do(fiber.MethodPost, "/register", in, &s)
	return s, err
}

func (c *Client) Login(in LoginRequest) (Session, error) {
	var s Session
	err := c.do(fiber.MethodPost, "/login", in, &s)
	return s, err
}

func (c *Client) Logout() error {
	return c.do(fiber.MethodPost, "/logout", nil, nil)
}

func (c *Client) CurrentUser() (models.User, error) {
	var u models.User
	err := c.do(fiber.MethodGet, "/user", nil, &u)
	return u, err
}

func (c *Client) DeleteAccount() error {
	return c.do(fiber.MethodDelete, "/user", nil, nil)
}

// TodoQuery mirrors the list filters; empty fields are not sent.
type TodoQuery struct {
	Search     string
	CategoryID int64
	Status     string
	SortBy     string
	SortOrder  string
}

func (q TodoQuery) encode() string {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.CategoryID != 0 {
		v.Set("category_id", strconv.FormatInt(q.CategoryID, 10))
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.SortBy != "" {
		v.Set("sort_by", q.SortBy)
	}
	if q.SortOrder != "" {
		v.Set("sort_order", q.SortOrder)
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

type TodoInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	CategoryID  *int64  `json:"category_id,omitempty"`
}

// TodoUpdate sends only the fields that are set; use models.Null to clear one.
type TodoUpdate struct {
	Title       models.Optional[string] `json:"title,omitzero"`
	Description models.Optional[string] `json:"description,omitzero"`
	DueDate     models.Optional[string] `json:"due_date,omitzero"`
	CategoryID  models.Optional[int64]  `json:"category_id,omitzero"`
	IsCompleted models.Optional[bool]   `json:"is_completed,omitzero"`
}

func (c *Client) ListTodos(q TodoQuery) ([]models.Todo, error) {
	todos := []models.Todo{}
	err := c.do(fiber.MethodGet, "/todos"+q.encode(), nil, &todos)
	return todos, err
}

func (c *Client) GetTodo(id int64) (models.Todo, error) {
	var t models.Todo
	err := c.do(fiber.MethodGet, todoPath(id), nil, &t)
	return t, err
}

func (c *Client) CreateTodo(in TodoInput) (models.Todo, error) {
	var t models.Todo
	err := c.do(fiber.MethodPost, "/todos", in, &t)
	return t, err
}

func (c *Client) UpdateTodo(id int64, in TodoUpdate) (models.Todo, error) {
	var t models.Todo
	err := c.do(fiber.MethodPut, todoPath(id), in, &t)
	return t, err
}

func (c *Client) ToggleTodo(id int64) (models.Todo, error) {
	var t models.Todo
	err := c.do(fiber.MethodPost, todoPath(id)+"/toggle", nil, &t)
	return t, err
}

func (c *Client) DeleteTodo(id int64) error {
	return c.do(fiber.MethodDelete, todoPath(id), nil, nil)
}

type CategoryInput struct {
	Name  string  `json:"name"`
	Color *string `json:"color,omitempty"`
}

type CategoryUpdate struct {
	Name  models.Optional[string] `json:"name,omitzero"`
	Color models.Optional[string] `json:"color,omitzero"`
}

func (c *Client) ListCategories() ([]models.Category, error) {
	categories := []models.Category{}
	err := c.do(fiber.MethodGet, "/categories", nil, &categories)
	return categories, err
}

func (c *Client) CreateCategory(in CategoryInput) (models.Category, error) {
	var cat models.Category
	err := c.do(fiber.MethodPost, "/categories", in, &cat)
	return cat, err
}

func (c *Client) UpdateCategory(id int64, in CategoryUpdate) (models.Category, error) {
	var cat models.Category
	err := c.do(fiber.MethodPut, categoryPath(id), in, &cat)
	return cat, err
}

func (c *Client) DeleteCategory(id int64) error {
	return c.do(fiber.MethodDelete, categoryPath(id), nil, nil)
}

func todoPath(id int64) string {
	return "/todos/" + strconv.FormatInt(id, 10)
}

func categoryPath(id int64) string {
	return "/categories/" + strconv.FormatInt(id, 10)
}
