package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"cashtrackr/internal/domain"
)

type budgetRequest struct {
	Name   string          `json:"name" binding:"required,notblank" msg:"El nombre del presupuesto no puede ir vacio"`
	Amount json.RawMessage `json:"amount"`
}

type expenseRequest struct {
	Name   string          `json:"name" binding:"required,notblank" msg:"El nombre gasto no puede ir vacio"`
	Amount json.RawMessage `json:"amount"`
}

type BudgetResponse struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"userId"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt string          `json:"createdAt"`
	UpdatedAt string          `json:"updatedAt"`
}

type ExpenseResponse struct {
	ID        int64           `json:"id"`
	BudgetID  int64           `json:"budgetId"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt string          `json:"createdAt"`
	UpdatedAt string          `json:"updatedAt"`
}

// amountMessages names the failures of one amount field.
type amountMessages struct {
	missing     string
	invalid     string
	notPositive string
}

var (
	budgetAmount = amountMessages{
		missing:     "La cantidad del presupuesto no puede ir vacia",
		invalid:     "La cantidad no válida",
		notPositive: "El presupuesto debe ser mayor a 0",
	}
	expenseAmount = amountMessages{
		missing:     "La cantidad del gasto no puede ir vacia",
		invalid:     "La cantidad no válida",
		notPositive: "El gasto debe ser mayor a 0",
	}
)

// parseAmount accepts a JSON number or a numeric string.
func parseAmount(raw json.RawMessage, msgs amountMessages) (decimal.Decimal, *fieldError) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" || text == `""` {
		return decimal.Zero, &fieldError{Field: "amount", Msg: msgs.missing}
	}
	text = strings.Trim(text, `"`)

	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, &fieldError{Field: "amount", Msg: msgs.invalid}
	}
	if !amount.IsPositive() {
		return decimal.Zero, &fieldError{Field: "amount", Msg: msgs.notPositive}
	}
	return amount, nil
}

func (h *Handler) listBudgets(c *gin.Context) {
	budgets, err := h.budgets.List(c.Request.Context(), scopeOf(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]BudgetResponse, len(budgets))
	for i := range budgets {
		resp[i] = budgetToResponse(&budgets[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createBudget(c *gin.Context) {
	var req budgetRequest
	if !h.bindJSON(c, &req) {
		return
	}
	amount, ferr := parseAmount(req.Amount, budgetAmount)
	if ferr != nil {
		respondInvalid(c, []fieldError{*ferr})
		return
	}

	if _, err := h.budgets.Create(c.Request.Context(), scopeOf(c).UserID, req.Name, amount); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, "Presupuesto creado correctamente")
}

func (h *Handler) getBudget(c *gin.Context) {
	c.JSON(http.StatusOK, budgetToResponse(scopeOf(c).Budget))
}

func (h *Handler) updateBudget(c *gin.Context) {
	var req budgetRequest
	if !h.bindJSON(c, &req) {
		return
	}
	amount, ferr := parseAmount(req.Amount, budgetAmount)
	if ferr != nil {
		respondInvalid(c, []fieldError{*ferr})
		return
	}

	if _, err := h.budgets.Update(c.Request.Context(), scopeOf(c).Budget, req.Name, amount); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, "Presupuesto actualizado correctamente")
}

func (h *Handler) deleteBudget(c *gin.Context) {
	if err := h.budgets.Delete(c.Request.Context(), scopeOf(c).Budget); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, "Presupuesto eliminado correctamente")
}

func (h *Handler) listExpenses(c *gin.Context) {
	expenses, err := h.budgets.Expenses(c.Request.Context(), scopeOf(c).Budget)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		resp[i] = expenseToResponse(&expenses[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createExpense(c *gin.Context) {
	var req expenseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	amount, ferr := parseAmount(req.Amount, expenseAmount)
	if ferr != nil {
		respondInvalid(c, []fieldError{*ferr})
		return
	}

	if _, err := h.budgets.AddExpense(c.Request.Context(), scopeOf(c).Budget, req.Name, amount); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, "Gasto agregado correctamente")
}

func (h *Handler) getExpense(c *gin.Context) {
	c.JSON(http.StatusOK, expenseToResponse(scopeOf(c).Expense))
}

func (h *Handler) updateExpense(c *gin.Context) {
	var req expenseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	amount, ferr := parseAmount(req.Amount, expenseAmount)
	if ferr != nil {
		respondInvalid(c, []fieldError{*ferr})
		return
	}

	if _, err := h.budgets.UpdateExpense(c.Request.Context(), scopeOf(c).Expense, req.Name, amount); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, "Gasto actualizado correctamente")
}

func (h *Handler) deleteExpense(c *gin.Context) {
	if err := h.budgets.DeleteExpense(c.Request.Context(), scopeOf(c).Expense); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, "Gasto eliminado correctamente")
}

func budgetToResponse(b *domain.Budget) BudgetResponse {
	return BudgetResponse{
		ID:        b.ID,
		UserID:    b.UserID,
		Name:      b.Name,
		Amount:    b.Amount,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
		UpdatedAt: b.UpdatedAt.Format(time.RFC3339),
	}
}

func expenseToResponse(e *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:        e.ID,
		BudgetID:  e.BudgetID,
		Name:      e.Name,
		Amount:    e.Amount,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
		UpdatedAt: e.UpdatedAt.Format(time.RFC3339),
	}
}
