package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"cashtrackr/internal/apperr"
	"cashtrackr/internal/domain"
	"cashtrackr/internal/repository"
)

// BudgetService coordinates budget and expense creation and listing. Access
// to a specific budget or expense is enforced by the access pipeline before
// these methods are reached.
type BudgetService interface {
	List(ctx context.Context, userID int64) ([]domain.Budget, error)
	Create(ctx context.Context, userID int64, name string, amount decimal.Decimal) (*domain.Budget, error)
	Update(ctx context.Context, budget *domain.Budget, name string, amount decimal.Decimal) (*domain.Budget, error)
	Delete(ctx context.Context, budget *domain.Budget) error

	Expenses(ctx context.Context, budget *domain.Budget) ([]domain.Expense, error)
	AddExpense(ctx context.Context, budget *domain.Budget, name string, amount decimal.Decimal) (*domain.Expense, error)
	UpdateExpense(ctx context.Context, expense *domain.Expense, name string, amount decimal.Decimal) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, expense *domain.Expense) error
}

type budgetService struct {
	budgets  repository.BudgetRepository
	expenses repository.ExpenseRepository
}

func NewBudgetService(budgets repository.BudgetRepository, expenses repository.ExpenseRepository) BudgetService {
	return &budgetService{
		budgets:  budgets,
		expenses: expenses,
	}
}

func (s *budgetService) List(ctx context.Context, userID int64) ([]domain.Budget, error) {
	budgets, err := s.budgets.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return budgets, nil
}

func (s *budgetService) Create(ctx context.Context, userID int64, name string, amount decimal.Decimal) (*domain.Budget, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	budget := &domain.Budget{
		UserID: userID,
		Name:   strings.TrimSpace(name),
		Amount: amount,
	}
	if _, err := s.budgets.Create(ctx, budget); err != nil {
		return nil, apperr.Internal(err)
	}
	return budget, nil
}

func (s *budgetService) Update(ctx context.Context, budget *domain.Budget, name string, amount decimal.Decimal) (*domain.Budget, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	updated := *budget
	updated.Name = strings.TrimSpace(name)
	updated.Amount = amount
	if err := s.budgets.Update(ctx, &updated); err != nil {
		return nil, mapMissing(err, ErrBudgetNotFound)
	}
	return &updated, nil
}

func (s *budgetService) Delete(ctx context.Context, budget *domain.Budget) error {
	if err := s.budgets.Delete(ctx, budget.ID); err != nil {
		return mapMissing(err, ErrBudgetNotFound)
	}
	return nil
}

func (s *budgetService) Expenses(ctx context.Context, budget *domain.Budget) ([]domain.Expense, error) {
	expenses, err := s.expenses.ListByBudget(ctx, budget.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return expenses, nil
}

func (s *budgetService) AddExpense(ctx context.Context, budget *domain.Budget, name string, amount decimal.Decimal) (*domain.Expense, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	expense := &domain.Expense{
		BudgetID: budget.ID,
		Name:     strings.TrimSpace(name),
		Amount:   amount,
	}
	if _, err := s.expenses.Create(ctx, expense); err != nil {
		return nil, apperr.Internal(err)
	}
	return expense, nil
}

func (s *budgetService) UpdateExpense(ctx context.Context, expense *domain.Expense, name string, amount decimal.Decimal) (*domain.Expense, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	updated := *expense
	updated.Name = strings.TrimSpace(name)
	updated.Amount = amount
	if err := s.expenses.Update(ctx, &updated); err != nil {
		return nil, mapMissing(err, ErrExpenseNotFound)
	}
	return &updated, nil
}

func (s *budgetService) DeleteExpense(ctx context.Context, expense *domain.Expense) error {
	if err := s.expenses.Delete(ctx, expense.ID); err != nil {
		return mapMissing(err, ErrExpenseNotFound)
	}
	return nil
}

// mapMissing reports a row that vanished between the access check and the
// write as missing.
func mapMissing(err, missing error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return missing
	}
	return apperr.Internal(err)
}
