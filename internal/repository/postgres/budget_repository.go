package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"cashtrackr/internal/domain"
	"cashtrackr/internal/repository"
)

const (
	createBudgetsTable = `
create table if not exists budgets (
	id bigserial primary key,
	user_id bigint not null references users(id) on delete cascade,
	name text not null,
	amount numeric(12, 2) not null,
	created_at timestamptz not null,
	updated_at timestamptz not null
);
create index if not exists idx_budgets_user_id on budgets (user_id);
`
	createExpensesTable = `
create table if not exists expenses (
	id bigserial primary key,
	budget_id bigint not null references budgets(id) on delete cascade,
	name text not null,
	amount numeric(12, 2) not null,
	created_at timestamptz not null,
	updated_at timestamptz not null
);
create index if not exists idx_expenses_budget_id on expenses (budget_id);
`
)

type BudgetRepository struct {
	pool *pgxpool.Pool
}

func NewBudgetRepository(pool *pgxpool.Pool) repository.BudgetRepository {
	return &BudgetRepository{pool: pool}
}

func (r *BudgetRepository) Init(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createBudgetsTable); err != nil {
		return fmt.Errorf("create budgets table: %w", err)
	}
	return nil
}

func (r *BudgetRepository) Create(ctx context.Context, budget *domain.Budget) (int64, error) {
	now := time.Now().UTC()
	budget.CreatedAt = now
	budget.UpdatedAt = now

	err := r.pool.QueryRow(ctx, `
		insert into budgets (user_id, name, amount, created_at, updated_at)
		values ($1, $2, $3::numeric, $4, $5)
		returning id
	`, budget.UserID, budget.Name, budget.Amount.String(), budget.CreatedAt, budget.UpdatedAt).Scan(&budget.ID)
	if err != nil {
		return 0, fmt.Errorf("insert budget: %w", err)
	}
	return budget.ID, nil
}

func (r *BudgetRepository) GetByID(ctx context.Context, id int64) (*domain.Budget, error) {
	b, err := scanBudget(r.pool.QueryRow(ctx, `
		select id, user_id, name, amount::text, created_at, updated_at
		from budgets
		where id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *BudgetRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Budget, error) {
	rows, err := r.pool.Query(ctx, `
		select id, user_id, name, amount::text, created_at, updated_at
		from budgets
		where user_id = $1
		order by created_at desc, id desc
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	budgets := []domain.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

func (r *BudgetRepository) Update(ctx context.Context, budget *domain.Budget) error {
	budget.UpdatedAt = time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
		update budgets set name = $1, amount = $2::numeric, updated_at = $3
		where id = $4
	`, budget.Name, budget.Amount.String(), budget.UpdatedAt, budget.ID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return requireRow(tag)
}

func (r *BudgetRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `delete from budgets where id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireRow(tag)
}

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var (
		b      domain.Budget
		amount string
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.Name, &amount, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan budget: %w", err)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse budget amount: %w", err)
	}
	b.Amount = d
	return &b, nil
}

type ExpenseRepository struct {
	pool *pgxpool.Pool
}

func NewExpenseRepository(pool *pgxpool.Pool) repository.ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

func (r *ExpenseRepository) Init(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createExpensesTable); err != nil {
		return fmt.Errorf("create expenses table: %w", err)
	}
	return nil
}

func (r *ExpenseRepository) Create(ctx context.Context, expense *domain.Expense) (int64, error) {
	now := time.Now().UTC()
	expense.CreatedAt = now
	expense.UpdatedAt = now

	err := r.pool.QueryRow(ctx, `
		insert into expenses (budget_id, name, amount, created_at, updated_at)
		values ($1, $2, $3::numeric, $4, $5)
		returning id
	`, expense.BudgetID, expense.Name, expense.Amount.String(), expense.CreatedAt, expense.UpdatedAt).Scan(&expense.ID)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	return expense.ID, nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*domain.Expense, error) {
	e, err := scanExpense(r.pool.QueryRow(ctx, `
		select id, budget_id, name, amount::text, created_at, updated_at
		from expenses
		where id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *ExpenseRepository) ListByBudget(ctx context.Context, budgetID int64) ([]domain.Expense, error) {
	rows, err := r.pool.Query(ctx, `
		select id, budget_id, name, amount::text, created_at, updated_at
		from expenses
		where budget_id = $1
		order by id
	`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []domain.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

func (r *ExpenseRepository) Update(ctx context.Context, expense *domain.Expense) error {
	expense.UpdatedAt = time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
		update expenses set name = $1, amount = $2::numeric, updated_at = $3
		where id = $4
	`, expense.Name, expense.Amount.String(), expense.UpdatedAt, expense.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireRow(tag)
}

func (r *ExpenseRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `delete from expenses where id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(tag)
}

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var (
		e      domain.Expense
		amount string
	)
	if err := row.Scan(&e.ID, &e.BudgetID, &e.Name, &amount, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan expense: %w", err)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse expense amount: %w", err)
	}
	e.Amount = d
	return &e, nil
}
