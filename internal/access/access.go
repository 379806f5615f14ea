// Package access runs the per-request authorization pipeline for protected
// routes: authenticate the caller, resolve the addressed budget and expense,
// and check that they belong together.
package access

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"cashtrackr/internal/apperr"
	"cashtrackr/internal/domain"
	"cashtrackr/internal/repository"
)

var (
	ErrNoCredentials  = apperr.Unauthorized("No autorizado")
	ErrInvalidSession = apperr.Unauthorized("Token no válido")
	ErrBudgetID       = apperr.Validation("Id no válido")
	ErrBudgetNotFound = apperr.NotFound("Presupuesto no encontrado")
	ErrBudgetOwner    = apperr.Unauthorized("Accion no válida")
	ErrExpenseID      = apperr.Validation("ID no válido")
	ErrExpenseMissing = apperr.NotFound("Gasto no encontrado")
	ErrExpenseParent  = apperr.Forbidden("Acción no válida")
)

// Scope accumulates what earlier stages established about the request.
type Scope struct {
	UserID  int64
	Budget  *domain.Budget
	Expense *domain.Expense
}

// Request is the slice of an inbound HTTP request the stages read.
type Request interface {
	GetHeader(key string) string
	Param(key string) string
}

// Stage inspects req and returns scope extended with what it established.
type Stage func(ctx context.Context, req Request, scope Scope) (Scope, error)

// Run threads an empty scope through stages in order and stops at the first
// failure.
func Run(ctx context.Context, req Request, stages ...Stage) (Scope, error) {
	var scope Scope
	for _, stage := range stages {
		next, err := stage(ctx, req, scope)
		if err != nil {
			return Scope{}, err
		}
		scope = next
	}
	return scope, nil
}

type Verifier interface {
	Verify(token string) (int64, error)
}

type BudgetFinder interface {
	GetByID(ctx context.Context, id int64) (*domain.Budget, error)
}

type ExpenseFinder interface {
	GetByID(ctx context.Context, id int64) (*domain.Expense, error)
}

// Authenticate reads a bearer token from the Authorization header and sets
// the caller's id.
func Authenticate(tokens Verifier) Stage {
	return func(_ context.Context, req Request, scope Scope) (Scope, error) {
		token, ok := bearer(req.GetHeader("Authorization"))
		if !ok {
			return scope, ErrNoCredentials
		}
		userID, err := tokens.Verify(token)
		if err != nil {
			return scope, ErrInvalidSession
		}
		scope.UserID = userID
		return scope, nil
	}
}

// ResolveBudget loads the budget named by the budgetId path parameter.
func ResolveBudget(budgets BudgetFinder) Stage {
	return func(ctx context.Context, req Request, scope Scope) (Scope, error) {
		id, ok := pathID(req.Param("budgetId"))
		if !ok {
			return scope, ErrBudgetID
		}
		budget, err := budgets.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return scope, ErrBudgetNotFound
			}
			return scope, apperr.Internal(err)
		}
		scope.Budget = budget
		return scope, nil
	}
}

// AuthorizeBudget requires the resolved budget to belong to the caller.
func AuthorizeBudget() Stage {
	return func(_ context.Context, _ Request, scope Scope) (Scope, error) {
		if scope.Budget == nil || scope.Budget.UserID != scope.UserID {
			return scope, ErrBudgetOwner
		}
		return scope, nil
	}
}

// ResolveExpense loads the expense named by the expenseId path parameter.
func ResolveExpense(expenses ExpenseFinder) Stage {
	return func(ctx context.Context, req Request, scope Scope) (Scope, error) {
		id, ok := pathID(req.Param("expenseId"))
		if !ok {
			return scope, ErrExpenseID
		}
		expense, err := expenses.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return scope, ErrExpenseMissing
			}
			return scope, apperr.Internal(err)
		}
		scope.Expense = expense
		return scope, nil
	}
}

// AuthorizeExpense requires the resolved expense to sit under the resolved budget.
func AuthorizeExpense() Stage {
	return func(_ context.Context, _ Request, scope Scope) (Scope, error) {
		if scope.Budget == nil || scope.Expense == nil || scope.Expense.BudgetID != scope.Budget.ID {
			return scope, ErrExpenseParent
		}
		return scope, nil
	}
}

func bearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func pathID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
