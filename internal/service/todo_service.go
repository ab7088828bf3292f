package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "homesite/internal/errors"
	"homesite/internal/model"
	"homesite/internal/repository"
)

// TodoService handles the shared todo board.
type TodoService interface {
	CreateTodo(ctx context.Context, title, description string) (*model.Todo, error)
	ListTodos(ctx context.Context) ([]model.Todo, error)
	// ToggleTodo flips the completion flag and returns the updated entry.
	ToggleTodo(ctx context.Context, id uint) (*model.Todo, error)
	DeleteTodo(ctx context.Context, id uint) error
}

type todoService struct {
	repo repository.TodoRepository
}

// NewTodoService creates a new todo service.
func NewTodoService(repo repository.TodoRepository) TodoService {
	return &todoService{repo: repo}
}

func (s *todoService) CreateTodo(ctx context.Context, title, description string) (*model.Todo, error) {
	todo := &model.Todo{
		Title:       title,
		Description: description,
		Complete:    false,
	}
	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("%w: create todo: %v", ErrStoreUnavailable, err)
	}
	return todo, nil
}

func (s *todoService) ListTodos(ctx context.Context) ([]model.Todo, error) {
	todos, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list todos: %v", ErrStoreUnavailable, err)
	}
	return todos, nil
}

func (s *todoService) ToggleTodo(ctx context.Context, id uint) (*model.Todo, error) {
	todo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTodoNotFound
		}
		return nil, fmt.Errorf("%w: find todo: %v", ErrStoreUnavailable, err)
	}

	todo.Complete = !todo.Complete
	if err := s.repo.Update(ctx, todo); err != nil {
		return nil, fmt.Errorf("%w: update todo: %v", ErrStoreUnavailable, err)
	}
	return todo, nil
}

func (s *todoService) DeleteTodo(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTodoNotFound
		}
		return fmt.Errorf("%w: find todo: %v", ErrStoreUnavailable, err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: delete todo: %v", ErrStoreUnavailable, err)
	}
	return nil
}
