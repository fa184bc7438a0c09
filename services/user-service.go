package services

import (
	"context"

	"taskboard-service/models"

	"github.com/sony/gobreaker"
)

// UserService serves the employee directory managers pick assignees
// from. Account creation and credential flows live outside this
// service.
type UserService struct {
	users   UserRepository
	breaker *gobreaker.CircuitBreaker
}

func NewUserService(users UserRepository, breaker *gobreaker.CircuitBreaker) *UserService {
	return &UserService{users: users, breaker: breaker}
}

func (s *UserService) Employees(ctx context.Context) ([]*models.User, error) {
	return execute(s.breaker, func() ([]*models.User, error) {
		return s.users.Employees(ctx)
	})
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return execute(s.breaker, func() (*models.User, error) {
		return s.users.GetByID(ctx, id)
	})
}
