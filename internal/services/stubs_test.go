package services

import (
	"context"
	"errors"

	"github.com/peachwood/api/internal/domain"
	"github.com/peachwood/api/internal/platform/events"
	"github.com/peachwood/api/internal/repositories"
)

type stubRepoError struct {
	notFound    bool
	conflict    bool
	unavailable bool
}

func (e *stubRepoError) Error() string       { return "repository error" }
func (e *stubRepoError) IsNotFound() bool    { return e.notFound }
func (e *stubRepoError) IsConflict() bool    { return e.conflict }
func (e *stubRepoError) IsUnavailable() bool { return e.unavailable }

var (
	errStubNotFound = error(&stubRepoError{notFound: true})
	errStubConflict = error(&stubRepoError{conflict: true})
)

type stubProductRepository struct {
	insertFn func(ctx context.Context, product domain.Product) error
	updateFn func(ctx context.Context, product domain.Product) error
	deleteFn func(ctx context.Context, productID string) error
	findFn   func(ctx context.Context, productID string) (domain.Product, error)
	listFn   func(ctx context.Context, filter repositories.ProductListFilter) ([]domain.Product, error)
}

func (s *stubProductRepository) Insert(ctx context.Context, product domain.Product) error {
	if s.insertFn == nil {
		return errors.New("unexpected Insert call")
	}
	return s.insertFn(ctx, product)
}

func (s *stubProductRepository) Update(ctx context.Context, product domain.Product) error {
	if s.updateFn == nil {
		return errors.New("unexpected Update call")
	}
	return s.updateFn(ctx, product)
}

func (s *stubProductRepository) Delete(ctx context.Context, productID string) error {
	if s.deleteFn == nil {
		return errors.New("unexpected Delete call")
	}
	return s.deleteFn(ctx, productID)
}

func (s *stubProductRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	if s.findFn == nil {
		return domain.Product{}, errors.New("unexpected FindByID call")
	}
	return s.findFn(ctx, productID)
}

func (s *stubProductRepository) List(ctx context.Context, filter repositories.ProductListFilter) ([]domain.Product, error) {
	if s.listFn == nil {
		return nil, errors.New("unexpected List call")
	}
	return s.listFn(ctx, filter)
}

type stubOrderRepository struct {
	insertFn       func(ctx context.Context, order domain.Order) error
	updateFn       func(ctx context.Context, order domain.Order) error
	findFn         func(ctx context.Context, orderID string) (domain.Order, error)
	findByNumberFn func(ctx context.Context, orderNumber string) (domain.Order, error)
	listFn         func(ctx context.Context, filter repositories.OrderListFilter) (domain.Page[domain.Order], error)
}

func (s *stubOrderRepository) Insert(ctx context.Context, order domain.Order) error {
	if s.insertFn == nil {
		return errors.New("unexpected Insert call")
	}
	return s.insertFn(ctx, order)
}

func (s *stubOrderRepository) Update(ctx context.Context, order domain.Order) error {
	if s.updateFn == nil {
		return errors.New("unexpected Update call")
	}
	return s.updateFn(ctx, order)
}

func (s *stubOrderRepository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	if s.findFn == nil {
		return domain.Order{}, errors.New("unexpected FindByID call")
	}
	return s.findFn(ctx, orderID)
}

func (s *stubOrderRepository) FindByNumber(ctx context.Context, orderNumber string) (domain.Order, error) {
	if s.findByNumberFn == nil {
		return domain.Order{}, errors.New("unexpected FindByNumber call")
	}
	return s.findByNumberFn(ctx, orderNumber)
}

func (s *stubOrderRepository) List(ctx context.Context, filter repositories.OrderListFilter) (domain.Page[domain.Order], error) {
	if s.listFn == nil {
		return domain.Page[domain.Order]{}, errors.New("unexpected List call")
	}
	return s.listFn(ctx, filter)
}

type stubEventPublisher struct {
	published []events.OrderEvent
	err       error
}

func (s *stubEventPublisher) PublishOrderEvent(ctx context.Context, event events.OrderEvent) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.published = append(s.published, event)
	return "msg-1", nil
}
