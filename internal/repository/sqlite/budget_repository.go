package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cashtrackr/internal/domain"
	"cashtrackr/internal/repository"
)

const (
	createBudgetsTable = `
CREATE TABLE IF NOT EXISTS budgets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	amount TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_budgets_user_id ON budgets(user_id);
`
	createExpensesTable = `
CREATE TABLE IF NOT EXISTS expenses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	budget_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	amount TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY(budget_id) REFERENCES budgets(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_expenses_budget_id ON expenses(budget_id);
`
)

type BudgetRepository struct {
	db *sql.DB
}

func NewBudgetRepository(db *sql.DB) repository.BudgetRepository {
	return &BudgetRepository{db: db}
}

func (r *BudgetRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createBudgetsTable); err != nil {
		return fmt.Errorf("create budgets table: %w", err)
	}
	return nil
}

func (r *BudgetRepository) Create(ctx context.Context, budget *domain.Budget) (int64, error) {
	now := time.Now().UTC()
	budget.CreatedAt = now
	budget.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO budgets (user_id, name, amount, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`,
		budget.UserID,
		budget.Name,
		budget.Amount.String(),
		budget.CreatedAt,
		budget.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert budget: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("budget last insert id: %w", err)
	}
	budget.ID = id
	return id, nil
}

func (r *BudgetRepository) GetByID(ctx context.Context, id int64) (*domain.Budget, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, name, amount, created_at, updated_at
FROM budgets
WHERE id = ?`, id)

	var b domain.Budget
	if err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.Amount, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan budget: %w", err)
	}
	return &b, nil
}

func (r *BudgetRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, name, amount, created_at, updated_at
FROM budgets
WHERE user_id = ?
ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	budgets := []domain.Budget{}
	for rows.Next() {
		var b domain.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.Amount, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (r *BudgetRepository) Update(ctx context.Context, budget *domain.Budget) error {
	budget.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE budgets SET name=?, amount=?, updated_at=?
WHERE id=?`, budget.Name, budget.Amount.String(), budget.UpdatedAt, budget.ID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return requireRow(res)
}

func (r *BudgetRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireRow(res)
}

type ExpenseRepository struct {
	db *sql.DB
}

func NewExpenseRepository(db *sql.DB) repository.ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createExpensesTable); err != nil {
		return fmt.Errorf("create expenses table: %w", err)
	}
	return nil
}

func (r *ExpenseRepository) Create(ctx context.Context, expense *domain.Expense) (int64, error) {
	now := time.Now().UTC()
	expense.CreatedAt = now
	expense.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO expenses (budget_id, name, amount, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`,
		expense.BudgetID,
		expense.Name,
		expense.Amount.String(),
		expense.CreatedAt,
		expense.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense last insert id: %w", err)
	}
	expense.ID = id
	return id, nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*domain.Expense, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, budget_id, name, amount, created_at, updated_at
FROM expenses
WHERE id = ?`, id)

	var e domain.Expense
	if err := row.Scan(&e.ID, &e.BudgetID, &e.Name, &e.Amount, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan expense: %w", err)
	}
	return &e, nil
}

func (r *ExpenseRepository) ListByBudget(ctx context.Context, budgetID int64) ([]domain.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, budget_id, name, amount, created_at, updated_at
FROM expenses
WHERE budget_id = ?
ORDER BY id`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []domain.Expense{}
	for rows.Next() {
		var e domain.Expense
		if err := rows.Scan(&e.ID, &e.BudgetID, &e.Name, &e.Amount, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *ExpenseRepository) Update(ctx context.Context, expense *domain.Expense) error {
	expense.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE expenses SET name=?, amount=?, updated_at=?
WHERE id=?`, expense.Name, expense.Amount.String(), expense.UpdatedAt, expense.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireRow(res)
}

func (r *ExpenseRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(res)
}
