package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"todo-api/configs"
	"todo-api/internal/auth"
	"todo-api/internal/config"
	"todo-api/internal/models"
	"todo-api/internal/repository"
	"todo-api/internal/service"
	"todo-api/pkg/database"
)

type testAPI struct {
	t    *testing.T
	app  *fiber.App
	deps *config.Dependencies
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	return newTestAPIWith(t, nil)
}

// newTestAPIWith lets a test adjust the config before the app is built.
func newTestAPIWith(t *testing.T, adjust func(*configs.Config)) *testAPI {
	t.Helper()
	db, err := database.ConnectSQLite(":memory:")
	require.NoError(t, err)
	store := repository.NewGormStore(db)

	cfg := configs.Config{
		AppEnv:       "test",
		DBDriver:     "sqlite",
		JWTSecret:    "test-secret",
		TokenTTL:     time.Hour,
		CORSOrigins:  "*",
		RateLimitMax: 0,
	}
	if adjust != nil {
		adjust(&cfg)
	}
	deps := config.NewDependenciesWithStore(cfg, store, auth.NewMemoryRevocationStore(),
		service.WithBcryptCost(bcrypt.MinCost))
	t.Cleanup(func() { deps.Close() })
	return &testAPI{t: t, app: NewApp(deps), deps: deps}
}

// do sends a request and decodes the JSON response into out when non-nil.
func (a *testAPI) do(method, path, token string, body any, out any) *http.Response {
	a.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	if out != nil {
		defer resp.Body.Close()
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out), "%s %s", method, path)
	}
	return resp
}

func (a *testAPI) register(name, email string) (string, int64) {
	a.t.Helper()
	var out struct {
		Token string `json:"token"`
		User  struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	resp := a.do("POST", "/api/register", "", map[string]string{
		"name":                  name,
		"email":                 email,
		"password":              "password123",
		"password_confirmation": "password123",
	}, &out)
	require.Equal(a.t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(a.t, out.Token)
	return out.Token, out.User.ID
}

type todoJSON struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	DueDate     *time.Time     `json:"due_date"`
	IsCompleted bool           `json:"is_completed"`
	CompletedAt *time.Time     `json:"completed_at"`
	UserID      int64          `json:"user_id"`
	CategoryID  *int64         `json:"category_id"`
	Category    map[string]any `json:"category"`
}

func (a *testAPI) createTodo(token string, body map[string]any) todoJSON {
	a.t.Helper()
	var todo todoJSON
	resp := a.do("POST", "/api/todos", token, body, &todo)
	require.Equal(a.t, http.StatusCreated, resp.StatusCode)
	return todo
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	var out map[string]any
	resp := api.do("GET", "/api", "", nil, &out)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", out["status"])
	assert.Contains(t, out, "endpoints")
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	api := newTestAPI(t)
	req := httptest.NewRequest("GET", "/api", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}

func TestUnknownRoute(t *testing.T) {
	api := newTestAPI(t)
	var out map[string]any
	resp := api.do("GET", "/nope", "", nil, &out)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Not found", out["message"])
}

func TestGuestCannotAccessTodos(t *testing.T) {
	api := newTestAPI(t)
	var out map[string]any
	resp := api.do("GET", "/api/todos", "", nil, &out)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthenticated.", out["message"])

	resp = api.do("GET", "/api/todos", "garbage", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t)
	token, userID := api.register("Ana", "ana@example.com")

	var me map[string]any
	resp := api.do("GET", "/api/user", token, nil, &me)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(userID), me["id"])
	assert.Equal(t, "ana@example.com", me["email"])
	assert.NotContains(t, me, "password")
	assert.NotContains(t, me, "PasswordHash")

	var login struct {
		Token string `json:"token"`
	}
	resp = api.do("POST", "/api/login", "", map[string]string{"email": "ana@example.com", "password": "password123"}, &login)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, login.Token)

	var out map[string]any
	resp = api.do("POST", "/api/login", "", map[string]string{"email": "ana@example.com", "password": "nope-nope"}, &out)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", out["message"])

	resp = api.do("POST", "/api/logout", token, nil, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = api.do("GET", "/api/user", token, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "logged-out token is revoked")

	resp = api.do("GET", "/api/user", login.Token, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterValidation(t *testing.T) {
	api := newTestAPI(t)
	var out struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	resp := api.do("POST", "/api/register", "", map[string]string{
		"name":                  "Ana",
		"email":                 "ana@example.com",
		"password":              "password123",
		"password_confirmation": "password321",
	}, &out)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "The password field confirmation does not match.", out.Message)
	assert.Contains(t, out.Errors, "password")
}

func TestMalformedJSON(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("Ana", "ana@example.com")
	var out map[string]any
	resp := api.do("POST", "/api/todos", token, `{"title": `, &out)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Bad request", out["message"])
}

func TestCreateTodo(t *testing.T) {
	api := newTestAPI(t)
	token, userID := api.register("Ana", "ana@example.com")

	todo := api.createTodo(token, map[string]any{
		"title":       "Test Todo",
		"description": "Test Description",
		"due_date":    "2030-01-15",
	})
	assert.Equal(t, "Test Todo", todo.Title)
	require.NotNil(t, todo.Description)
	assert.Equal(t, "Test Description", *todo.Description)
	require.NotNil(t, todo.DueDate)
	assert.True(t, time.Date(2030, 1, 15, 0, 0, 0, 0, time.UTC).Equal(*todo.DueDate))
	assert.False(t, todo.IsCompleted)
	assert.Nil(t, todo.CompletedAt)
	assert.Equal(t, userID, todo.UserID)
	assert.Nil(t, todo.Category)

	var out struct {
		Errors map[string][]string `json:"errors"`
	}
	resp := api.do("POST", "/api/todos", token, map[string]any{"description": "no title", "due_date": "soon"}, &out)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, []string{"The title field is required."}, out.Errors["title"])
	assert.Contains(t, out.Errors, "due_date")
}

func TestUserCanGetOnlyTheirTodos(t *testing.T) {
	api := newTestAPI(t)
	ana, _ := api.register("Ana", "ana@example.com")
	bob, _ := api.register("Bob", "bob@example.com")
	for i := 0; i < 3; i++ {
		api.createTodo(ana, map[string]any{"title": fmt.Sprintf("ana %d", i)})
	}
	for i := 0; i < 2; i++ {
		api.createTodo(bob, map[string]any{"title": fmt.Sprintf("bob %d", i)})
	}

	var todos []todoJSON
	resp := api.do("GET", "/api/todos", ana, nil, &todos)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, todos, 3)
	assert.Equal(t, "ana 2", todos[0].Title, "newest first")
}

func TestCrossUserAccessIsForbidden(t *testing.T) {
	api := newTestAPI(t)
	ana, _ := api.register("Ana", "ana@example.com")
	bob, _ := api.register("Bob", "bob@example.com")
	todo := api.createTodo(ana, map[string]any{"title": "private"})
	path := fmt.Sprintf("/api/todos/%d", todo.ID)

	for _, tc := range []struct {
		method, path string
		body         any
	}{
		{"GET", path, nil},
		{"PUT", path, map[string]any{"title": "hijacked"}},
		{"DELETE", path, nil},
		{"POST", path + "/toggle", nil},
	} {
		var out map[string]any
		resp := api.do(tc.method, tc.path, bob, tc.body, &out)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, tc.method+" "+tc.path)
		assert.Equal(t, "Forbidden", out["message"])
	}

	var got todoJSON
	resp := api.do("GET", path, ana, nil, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "private", got.Title)
	assert.False(t, got.IsCompleted)
}

func TestCreateTodoWithOtherUsersCategory(t *testing.T) {
	api := newTestAPI(t)
	ana, _ := api.register("Ana", "ana@example.com")
	bob, _ := api.register("Bob", "bob@example.com")

	var bobs map[string]any
	resp := api.do("POST", "/api/categories", bob, map[string]any{"name": "Work"}, &bobs)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out map[string]any
	resp = api.do("POST", "/api/todos", ana, map[string]any{"title": "x", "category_id": bobs["id"]}, &out)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Category not found", out["message"])

	var todos []todoJSON
	api.do("GET", "/api/todos", ana, nil, &todos)
	assert.Empty(t, todos)
}

func TestCreateTodoWithCategory(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("Ana", "ana@example.com")
	var category map[string]any
	api.do("POST", "/api/categories", token, map[string]any{"name": "Work", "color": "#3B82F6"}, &category)

	todo := api.createTodo(token, map[string]any{"title": "Test Todo", "category_id": category["id"]})
	require.NotNil(t, todo.CategoryID)
	assert.Equal(t, int64(category["id"].(float64)), *todo.CategoryID)
	assert.Equal(t, "Work", todo.Category["name"])
	assert.Equal(t, "#3B82F6", todo.Category["color"])
}

func TestSearchTodos(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("Ana", "ana@example.com")
	api.createTodo(token, map[string]any{"title": "Buy groceries"})
	api.createTodo(token, map[string]any{"title": "Call dentist"})
	api.createTodo(token, map[string]any{"title": "Errands", "description": "pick up GROCERIES bag"})

	var todos []todoJSON
	resp := api.do("GET", "/api/todos?search=groceries&sort_by=id&sort_order=asc", token, nil, &todos)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, todos, 2)
	assert.Equal(t, "Buy groceries", todos[0].Title)
	assert.Equal(t, "Errands", todos[1].Title)

	resp = api.do("GET", "/api/todos?search=dentist", token, nil, &todos)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, todos, 1)
	assert.Equal(t, "Call dentist", todos[0].Title)
}

func TestToggleScenario(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("Ana", "ana@example.com")
	todo := api.createTodo(token, map[string]any{"title": "flip"})
	assert.False(t, todo.IsCompleted)
	assert.Nil(t, todo.CompletedAt)
	path := fmt.Sprintf("/api/todos/%d/toggle", todo.ID)

	var on todoJSON
	resp := api.do("POST", path, token, nil, &on)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, on.IsCompleted)
	assert.NotNil(t, on.CompletedAt)

	var off todoJSON
	resp = api.do("POST", path, token, nil, &off)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, off.IsCompleted)
	assert.Nil(t, off.CompletedAt)
}

func TestFilterByStatus(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("Ana", "ana@example.com")
	late := api.createTodo(token, map[string]any{"title": "late", "due_date": "2001-01-01"})
	api.createTodo(token, map[string]any{"title": "future", "due_date": "2999-01-01"})
	api.createTodo(token, map[string]any{"title": "undated"})
	done := api.createTodo(token, map[string]any{"title": "done", "due_date": "2001-01-01"})
	api.do("POST", fmt.Sprintf("/api/todos/%d/toggle", done.ID), token, nil, nil)

	var todos []todoJSON
	api.do("GET", "/api/todos?status=overdue", token, nil, &todos)
	require.Len(t, todos, 1)
	assert.Equal(t, late.ID, todos[0].ID)

	api.do("GET", "/api/todos?status=completed", token, nil, &todos)
	require.Len(t, todos, 1)
	assert.Equal(t, done.ID, todos[0].ID)

	api.do("GET", "/api/todos?status=incomplete", token, nil, &todos)
	assert.Len(t, todos, 3)

	api.do("GET", "/api/todos?status=whatever", token, nil, &todos)
	assert.Len(t, todos, 4, "unknown status means no filter")
}

func TestListQueryValidation(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("Ana", "ana@example.com")

	var out struct {
		Errors map[string][]string `json:"errors"`
	}
	resp := api.do("GET", "/api/todos?sort_by=password", token, nil, &out)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, out.Errors, "sort_by")

	resp = api.do("GET", "/api/todos?category_id=abc", token, nil, &out)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, out.Errors, "category_id")
}

func TestUpdateTodo(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("Ana", "ana@example.com")
	todo := api.createTodo(token, map[string]any{"title": "draft", "description": "notes", "due_date": "2030-01-01"})
	path := fmt.Sprintf("/api/todos/%d", todo.ID)

	var updated todoJSON
	resp := api.do("PUT", path, token, map[string]any{
		"title":        "Updated Title",
		"is_completed": true,
		"completed_at": "1999-01-01T00:00:00Z",
	}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Updated Title", updated.Title)
	assert.True(t, updated.IsCompleted)
	require.NotNil(t, updated.CompletedAt)
	assert.True(t, updated.CompletedAt.After(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)), "completed_at follows is_completed")
	require.NotNil(t, updated.Description)

	resp = api.do("PUT", path, token, map[string]any{"description": nil, "due_date": nil, "is_completed": false}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, updated.Description)
	assert.Nil(t, updated.DueDate)
	assert.False(t, updated.IsCompleted)
	assert.Nil(t, updated.CompletedAt)
	assert.Equal(t, "Updated Title", updated.Title)

	var out map[string]any
	resp = api.do("PUT", "/api/todos/999999", token, map[string]any{"title": "ghost"}, &out)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Todo not found", out["message"])
}

func TestDeleteTodo(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("Ana", "ana@example.com")
	todo := api.createTodo(token, map[string]any{"title": "bye"})
	path := fmt.Sprintf("/api/todos/%d", todo.ID)

	var out map[string]any
	resp := api.do("DELETE", path, token, nil, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Todo deleted successfully", out["message"])

	resp = api.do("DELETE", path, token, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = api.do("GET", "/api/todos/not-a-number", token, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCategoryLifecycle(t *testing.T) {
	api := newTestAPI(t)
	ana, _ := api.register("Ana", "ana@example.com")
	bob, _ := api.register("Bob", "bob@example.com")

	var work map[string]any
	resp := api.do("POST", "/api/categories", ana, map[string]any{"name": "Work", "color": "#ef4444"}, &work)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "#EF4444", work["color"])
	workPath := fmt.Sprintf("/api/categories/%v", work["id"])

	var verr struct {
		Errors map[string][]string `json:"errors"`
	}
	resp = api.do("POST", "/api/categories", ana, map[string]any{"name": "Work"}, &verr)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, []string{"The name has already been taken."}, verr.Errors["name"])

	var list []map[string]any
	api.do("GET", "/api/categories", ana, nil, &list)
	assert.Len(t, list, 1)
	api.do("GET", "/api/categories", bob, nil, &list)
	assert.Empty(t, list)

	resp = api.do("GET", workPath, bob, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var renamed map[string]any
	resp = api.do("PUT", workPath, ana, map[string]any{"name": "Office"}, &renamed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Office", renamed["name"])
	assert.Equal(t, "#EF4444", renamed["color"])

	todo := api.createTodo(ana, map[string]any{"title": "report", "category_id": work["id"]})

	resp = api.do("DELETE", workPath, bob, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	var out map[string]any
	resp = api.do("DELETE", workPath, ana, nil, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Category deleted successfully", out["message"])

	var detached todoJSON
	api.do("GET", fmt.Sprintf("/api/todos/%d", todo.ID), ana, nil, &detached)
	assert.Nil(t, detached.CategoryID)
	assert.Nil(t, detached.Category)

	resp = api.do("GET", workPath, ana, nil, &out)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Category not found", out["message"])
}

func TestDeleteAccount(t *testing.T) {
	api := newTestAPI(t)
	ana, anaID := api.register("Ana", "ana@example.com")
	bob, _ := api.register("Bob", "bob@example.com")
	api.createTodo(ana, map[string]any{"title": "mine"})
	bobTodo := api.createTodo(bob, map[string]any{"title": "bob's"})

	var out map[string]any
	resp := api.do("DELETE", "/api/user", ana, nil, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Account deleted successfully", out["message"])

	resp = api.do("GET", "/api/todos", ana, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, err := api.deps.Store.Users.FindByID(context.Background(), anaID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	var got todoJSON
	resp = api.do("GET", fmt.Sprintf("/api/todos/%d", bobTodo.ID), bob, nil, &got)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = api.do("POST", "/api/register", "", map[string]string{
		"name": "Ana", "email": "ana@example.com",
		"password": "password123", "password_confirmation": "password123",
	}, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode, "email is free again")
}

func TestOtherTokensDieWithAccount(t *testing.T) {
	api := newTestAPI(t)
	first, userID := api.register("Ana", "ana@example.com")

	var login struct {
		Token string `json:"token"`
	}
	resp := api.do("POST", "/api/login", "", map[string]string{"email": "ana@example.com", "password": "password123"}, &login)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second := login.Token

	resp = api.do("DELETE", "/api/user", first, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]any
	resp = api.do("POST", "/api/todos", second, map[string]any{"title": "orphan"}, &out)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthenticated.", out["message"])

	resp = api.do("GET", "/api/categories", second, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	todos, err := api.deps.Store.Todos.List(context.Background(), userID, models.TodoFilter{}, time.Now().UTC())
	require.NoError(t, err)
	assert.Empty(t, todos)
}

func TestWebsocketRequiresUpgrade(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("Ana", "ana@example.com")

	resp := api.do("GET", "/api/ws", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = api.do("GET", "/api/ws", token, nil, nil)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	api := newTestAPIWith(t, func(cfg *configs.Config) { cfg.RateLimitMax = 2 })
	for i := 0; i < 2; i++ {
		resp := api.do("GET", "/api", "", nil, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
	var out map[string]any
	resp := api.do("GET", "/api", "", nil, &out)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "Too Many Attempts.", out["message"])
}
