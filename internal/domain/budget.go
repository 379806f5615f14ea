package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a spending envelope owned by a single user.
type Budget struct {
	ID        int64
	UserID    int64
	Name      string
	Amount    decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expense is a charge recorded against a budget.
type Expense struct {
	ID        int64
	BudgetID  int64
	Name      string
	Amount    decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
