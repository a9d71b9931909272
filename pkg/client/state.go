package client

import (
	"errors"
	"sync"

	"github.com/gofiber/fiber/v2"

	"todo-api/internal/models"
)

// Status is the request bookkeeping shared by every store.
type Status struct {
	Loading bool
	Error   string
}

type TodoState struct {
	Status
	Items []models.Todo
}

type CategoryState struct {
	Status
	Items []models.Category
}

// The reducers below never modify their input; each returns a new state.

func started(Status) Status {
	return Status{Loading: true}
}

func failed(_ Status, err error) Status {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return Status{Error: apiErr.Message}
	}
	return Status{Error: err.Error()}
}

func done(Status) Status {
	return Status{}
}

func TodosLoaded(s TodoState, items []models.Todo) TodoState {
	return TodoState{Items: append([]models.Todo{}, items...)}
}

// TodoCreated puts t first, the newest todo leads the list.
func TodoCreated(s TodoState, t models.Todo) TodoState {
	return TodoState{Items: prepend(s.Items, t)}
}

func TodoReplaced(s TodoState, t models.Todo) TodoState {
	return TodoState{Items: replaceByID(s.Items, t, todoID)}
}

func TodoRemoved(s TodoState, id int64) TodoState {
	return TodoState{Items: removeByID(s.Items, id, todoID)}
}

func CategoriesLoaded(s CategoryState, items []models.Category) CategoryState {
	return CategoryState{Items: append([]models.Category{}, items...)}
}

// CategoryCreated appends c; categories keep insertion order until reloaded.
func CategoryCreated(s CategoryState, c models.Category) CategoryState {
	items := make([]models.Category, 0, len(s.Items)+1)
	items = append(items, s.Items...)
	return CategoryState{Items: append(items, c)}
}

func CategoryReplaced(s CategoryState, c models.Category) CategoryState {
	return CategoryState{Items: replaceByID(s.Items, c, categoryID)}
}

func CategoryRemoved(s CategoryState, id int64) CategoryState {
	return CategoryState{Items: removeByID(s.Items, id, categoryID)}
}

func todoID(t models.Todo) int64         { return t.ID }
func categoryID(c models.Category) int64 { return c.ID }

func prepend[T any](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, item)
	return append(out, items...)
}

// replaceByID swaps the element with item's id; unknown ids leave items as they are.
func replaceByID[T any](items []T, item T, id func(T) int64) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := range out {
		if id(out[i]) == id(item) {
			out[i] = item
		}
	}
	return out
}

func removeByID[T any](items []T, target int64, id func(T) int64) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if id(item) != target {
			out = append(out, item)
		}
	}
	return out
}

// TodoStore holds the user's todos. Every operation waits for the server and
// then applies the matching reducer; a failure only updates Status.
type TodoStore struct {
	api   *Client
	mu    sync.Mutex
	state TodoState
}

func NewTodoStore(api *Client) *TodoStore {
	return &TodoStore{api: api, state: TodoState{Items: []models.Todo{}}}
}

// State returns a snapshot; callers may keep it.
func (s *TodoStore) State() TodoState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TodoState{Status: s.state.Status, Items: append([]models.Todo{}, s.state.Items...)}
}

func (s *TodoStore) setStatus(f func(Status) Status) {
	s.mu.Lock()
	s.state.Status = f(s.state.Status)
	s.mu.Unlock()
}

func (s *TodoStore) apply(err error, reduce func(TodoState) TodoState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state.Status = failed(s.state.Status, err)
		return err
	}
	s.state = reduce(s.state)
	s.state.Status = done(s.state.Status)
	return nil
}

func (s *TodoStore) Fetch(q TodoQuery) error {
	s.setStatus(started)
	items, err := s.api.ListTodos(q)
	return s.apply(err, func(st TodoState) TodoState { return TodosLoaded(st, items) })
}

func (s *TodoStore) Create(in TodoInput) (models.Todo, error) {
	s.setStatus(started)
	t, err := s.api.CreateTodo(in)
	return t, s.apply(err, func(st TodoState) TodoState { return TodoCreated(st, t) })
}

func (s *TodoStore) Update(id int64, in TodoUpdate) (models.Todo, error) {
	s.setStatus(started)
	t, err := s.api.UpdateTodo(id, in)
	return t, s.apply(err, func(st TodoState) TodoState { return TodoReplaced(st, t) })
}

func (s *TodoStore) Toggle(id int64) (models.Todo, error) {
	s.setStatus(started)
	t, err := s.api.ToggleTodo(id)
	return t, s.apply(err, func(st TodoState) TodoState { return TodoReplaced(st, t) })
}

func (s *TodoStore) Delete(id int64) error {
	s.setStatus(started)
	err := s.api.DeleteTodo(id)
	return s.apply(err, func(st TodoState) TodoState { return TodoRemoved(st, id) })
}

type CategoryStore struct {
	api   *Client
	mu    sync.Mutex
	state CategoryState
}

func NewCategoryStore(api *Client) *CategoryStore {
	return &CategoryStore{api: api, state: CategoryState{Items: []models.Category{}}}
}

func (s *CategoryStore) State() CategoryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CategoryState{Status: s.state.Status, Items: append([]models.Category{}, s.state.Items...)}
}

func (s *CategoryStore) setStatus(f func(Status) Status) {
	s.mu.Lock()
	s.state.Status = f(s.state.Status)
	s.mu.Unlock()
}

func (s *CategoryStore) apply(err error, reduce func(CategoryState) CategoryState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state.Status = failed(s.state.Status, err)
		return err
	}
	s.state = reduce(s.state)
	s.state.Status = done(s.state.Status)
	return nil
}

func (s *CategoryStore) Fetch() error {
	s.setStatus(started)
	items, err := s.api.ListCategories()
	return s.apply(err, func(st CategoryState) CategoryState { return CategoriesLoaded(st, items) })
}

func (s *CategoryStore) Create(in CategoryInput) (models.Category, error) {
	s.setStatus(started)
	c, err := s.api.CreateCategory(in)
	return c, s.apply(err, func(st CategoryState) CategoryState { return CategoryCreated(st, c) })
}

func (s *CategoryStore) Update(id int64, in CategoryUpdate) (models.Category, error) {
	s.setStatus(started)
	c, err := s.api.UpdateCategory(id, in)
	return c, s.apply(err, func(st CategoryState) CategoryState { return CategoryReplaced(st, c) })
}

func (s *CategoryStore) Delete(id int64) error {
	s.setStatus(started)
	err := s.api.DeleteCategory(id)
	return s.apply(err, func(st CategoryState) CategoryState { return CategoryRemoved(st, id) })
}

// AuthSession keeps the bearer token and signed-in user, and hands the
// token to the client it wraps.
type AuthSession struct {
	api  *Client
	User *models.User
}

func NewAuthSession(api *Client) *AuthSession {
	return &AuthSession{api: api}
}

func (a *AuthSession) Authenticated() bool {
	return a.api.Token() != ""
}

func (a *AuthSession) Register(in RegisterRequest) error {
	s, err := a.api.Register(in)
	if err != nil {
		return err
	}
	a.signIn(s)
	return nil
}

func (a *AuthSession) Login(in LoginRequest) error {
	s, err := a.api.Login(in)
	if err != nil {
		return err
	}
	a.signIn(s)
	return nil
}

// Refresh reloads the current user; a 401 signs the session out.
func (a *AuthSession) Refresh() error {
	u, err := a.api.CurrentUser()
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == fiber.StatusUnauthorized {
		a.signOut()
	}
	if err != nil {
		return err
	}
	a.User = &u
	return nil
}

// Logout always clears the local session, even if the server call fails.
func (a *AuthSession) Logout() error {
	err := a.api.Logout()
	a.signOut()
	return err
}

func (a *AuthSession) DeleteAccount() error {
	if err := a.api.DeleteAccount(); err != nil {
		return err
	}
	a.signOut()
	return nil
}

func (a *AuthSession) signIn(s Session) {
	a.api.SetToken(s.Token)
	user := s.User
	a.User = &user
}

func (a *AuthSession) signOut() {
	a.api.SetToken("")
	a.User = nil
}
