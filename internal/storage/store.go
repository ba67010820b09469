// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitpartner/internal/models"
)

var (
	// ErrNotFound is returned (wrapped) when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned (wrapped) when a unique field is already taken.
	ErrDuplicate = errors.New("duplicate entry")
)

// ExpenseStore persists expense entries with their splits.
type ExpenseStore interface {
	// CreateExpense persists a new expense.
	// The ID, CreatedAt and UpdatedAt fields are populated by the store when empty.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with its splits by ID.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// UpdateExpense replaces an existing expense, splits included.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes an expense permanently.
	DeleteExpense(ctx context.Context, expenseID string) error

	// ListExpensesByOwner returns the owner's expenses, newest first.
	// An empty status returns every expense.
	ListExpensesByOwner(ctx context.Context, ownerUserID string, status models.ExpenseStatus) ([]*models.Expense, error)
}

// PartnerStore persists partner relationships.
type PartnerStore interface {
	CreatePartner(ctx context.Context, partner *models.Partner) error
	GetPartner(ctx context.Context, partnerID string) (*models.Partner, error)
	UpdatePartner(ctx context.Context, partner *models.Partner) error
	DeletePartner(ctx context.Context, partnerID string) error

	// ListPartnersByOwner returns the owner's partners in invitation order.
	// An empty status returns every partner.
	ListPartnersByOwner(ctx context.Context, ownerUserID string, status models.PartnerStatus) ([]*models.Partner, error)
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns nil, nil when no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns nil, nil when no user has the ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Store defines the interface for all storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	ExpenseStore
	PartnerStore
	UserStore

	// Close releases any resources held by the store.
	Close() error
}
