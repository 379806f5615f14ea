package repository

import (
	"context"

	"cashtrackr/internal/domain"
)

// BudgetRepository exposes persistence operations for budgets.
type BudgetRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, budget *domain.Budget) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Budget, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Budget, error)
	// Update stores the name and amount of budget.
	Update(ctx context.Context, budget *domain.Budget) error
	// Delete removes the budget together with its expenses.
	Delete(ctx context.Context, id int64) error
}

// ExpenseRepository exposes persistence operations for expenses.
type ExpenseRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, expense *domain.Expense) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Expense, error)
	ListByBudget(ctx context.Context, budgetID int64) ([]domain.Expense, error)
	// Update stores the name and amount of expense.
	Update(ctx context.Context, expense *domain.Expense) error
	Delete(ctx context.Context, id int64) error
}
