package main

import (
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vitalvas/kestrel/mux"
	"github.com/vitalvas/kestrel/validator"
)

type user struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Age       float64   `json:"age,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

var userRules = validator.Rules{
	"email": validator.Field().Required().Email(),
	"name":  validator.Field().NotBlank().Type(validator.String).MaxLength(64),
	"age":   validator.Field().Nullable().Type(validator.Number).Min(13).Max(130),
	"tags":  validator.Field().Nullable().Each(validator.Field().Type(validator.String).MinLength(2)),
	"role":  validator.Field().Nullable().In([]any{"admin", "member"}),
}

type userStore struct {
	mu    sync.RWMutex
	users map[string]user
}

func newUserStore() *userStore {
	return &userStore{users: make(map[string]user)}
}

func (s *userStore) list(_ *mux.Request) (mux.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]user, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b user) int { return strings.Compare(a.ID, b.ID) })

	return mux.OK(out), nil
}

func (s *userStore) get(req *mux.Request) (mux.Response, error) {
	s.mu.RLock()
	u, ok := s.users[req.Var("id")]
	s.mu.RUnlock()

	if !ok {
		return mux.Fail(http.StatusNotFound, "user not found"), nil
	}
	return mux.OK(u), nil
}

func (s *userStore) create(req *mux.Request) (mux.Response, error) {
	errs, err := req.Validate(userRules)
	if err != nil {
		return mux.Response{}, mux.WithStack(err)
	}
	if len(errs) > 0 {
		return mux.Invalid(errs), nil
	}

	u := user{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Email:     req.Fields["email"].(string),
		Name:      req.Fields["name"].(string),
		CreatedAt: time.Now().UTC(),
	}
	if age, ok := req.Fields["age"].(float64); ok {
		u.Age = age
	}
	if tags, ok := req.Fields["tags"].([]any); ok {
		for _, t := range tags {
			u.Tags = append(u.Tags, t.(string))
		}
	}

	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()

	return mux.JSON(http.StatusCreated, u).WithHeader("Location", "/api/v1/users/"+u.ID), nil
}

func (s *userStore) delete(req *mux.Request) (mux.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := req.Var("id")
	if _, ok := s.users[id]; !ok {
		return mux.Fail(http.StatusNotFound, "user not found"), nil
	}
	delete(s.users, id)

	return mux.Response{StatusCode: http.StatusNoContent}, nil
}
