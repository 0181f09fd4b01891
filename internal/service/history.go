package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/domain"
	"gorm.io/gorm"
)

// customerHistory is a resolved customer with their qualifying orders
type customerHistory struct {
	customer *domain.CustomerProfile
	orders   []domain.Order
}

// historyLoader resolves a customer to its linkage key and loads qualifying orders
type historyLoader struct {
	customers CustomerStore
	orders    OrderStore
}

func (l historyLoader) resolveCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*domain.CustomerProfile, error) {
	customer, err := l.customers.GetByID(ctx, tenantID, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

func (l historyLoader) load(ctx context.Context, tenantID, customerID uuid.UUID) (*customerHistory, error) {
	customer, err := l.resolveCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	orders, err := l.ordersFor(ctx, customer)
	if err != nil {
		return nil, err
	}
	return &customerHistory{customer: customer, orders: orders}, nil
}

func (l historyLoader) ordersFor(ctx context.Context, customer *domain.CustomerProfile) ([]domain.Order, error) {
	orders, err := l.orders.ListQualifyingByPhone(ctx, customer.TenantID, customer.Phone)
	if err != nil {
		return nil, fmt.Errorf("failed to list qualifying orders: %w", err)
	}
	return orders, nil
}
