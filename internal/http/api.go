package http

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/sirupsen/logrus"

	"cashtrackr/internal/access"
	"cashtrackr/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	accounts service.AccountService
	budgets  service.BudgetService
	tokens   access.Verifier
	budgetDB access.BudgetFinder
	expenses access.ExpenseFinder
	logger   *logrus.Logger
}

func NewHandler(accounts service.AccountService, budgets service.BudgetService, tokens access.Verifier, budgetDB access.BudgetFinder, expenses access.ExpenseFinder, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if err := registerValidations(); err != nil {
		logger.WithError(err).Error("register binding validations")
	}
	return &Handler{
		accounts: accounts,
		budgets:  budgets,
		tokens:   tokens,
		budgetDB: budgetDB,
		expenses: expenses,
		logger:   logger,
	}
}

var (
	validationsOnce sync.Once
	validationsErr  error
)

// registerValidations adds the tags gin's validator lacks by default.
func registerValidations() error {
	validationsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		validationsErr = v.RegisterValidation("notblank", validators.NotBlank)
	})
	return validationsErr
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestID(), h.requestLogger(), corsMiddleware())

	authenticated := h.guard(access.Authenticate(h.tokens))
	ownBudget := h.guard(
		access.Authenticate(h.tokens),
		access.ResolveBudget(h.budgetDB),
		access.AuthorizeBudget(),
	)
	ownExpense := h.guard(
		access.Authenticate(h.tokens),
		access.ResolveBudget(h.budgetDB),
		access.AuthorizeBudget(),
		access.ResolveExpense(h.expenses),
		access.AuthorizeExpense(),
	)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/create-account", h.createAccount)
		auth.POST("/confirm-account", h.confirmAccount)
		auth.POST("/resend-confirmation", h.resendConfirmation)
		auth.POST("/login", h.login)
		auth.POST("/forgot-password", h.forgotPassword)
		auth.POST("/validate-token", h.validateToken)
		auth.POST("/reset-password/:token", h.resetPassword)
		auth.GET("/user", authenticated, h.currentUser)
		auth.PUT("/user", authenticated, h.updateProfile)
		auth.POST("/update-password", authenticated, h.updatePassword)

		budgets := api.Group("/budgets")
		budgets.GET("", authenticated, h.listBudgets)
		budgets.POST("", authenticated, h.createBudget)
		budgets.GET("/:budgetId", ownBudget, h.getBudget)
		budgets.PATCH("/:budgetId", ownBudget, h.updateBudget)
		budgets.DELETE("/:budgetId", ownBudget, h.deleteBudget)

		budgets.GET("/:budgetId/expenses", ownBudget, h.listExpenses)
		budgets.POST("/:budgetId/expenses", ownBudget, h.createExpense)
		budgets.GET("/:budgetId/expenses/:expenseId", ownExpense, h.getExpense)
		budgets.PATCH("/:budgetId/expenses/:expenseId", ownExpense, h.updateExpense)
		budgets.DELETE("/:budgetId/expenses/:expenseId", ownExpense, h.deleteExpense)

		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", requestIDHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
