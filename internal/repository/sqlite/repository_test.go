package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"cashtrackr/internal/domain"
	"cashtrackr/internal/repository"
)

type RepositoryTestSuite struct {
	suite.Suite
	db       *sql.DB
	users    repository.UserRepository
	budgets  repository.BudgetRepository
	expenses repository.ExpenseRepository
}

func (s *RepositoryTestSuite) SetupTest() {
	db, err := Open(":memory:")
	require.NoError(s.T(), err, "failed to open test database")
	s.db = db

	ctx := context.Background()
	s.users = NewUserRepository(db)
	s.budgets = NewBudgetRepository(db)
	s.expenses = NewExpenseRepository(db)
	require.NoError(s.T(), s.users.Init(ctx))
	require.NoError(s.T(), s.budgets.Init(ctx))
	require.NoError(s.T(), s.expenses.Init(ctx))
}

func (s *RepositoryTestSuite) TearDownTest() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *RepositoryTestSuite) newUser(email, code string) *domain.User {
	u := &domain.User{Name: "Juan", Email: email, PasswordHash: "hash"}
	if code != "" {
		u.SetToken(code, time.Now().Add(time.Hour))
	}
	_, err := s.users.Create(context.Background(), u)
	require.NoError(s.T(), err)
	return u
}

func (s *RepositoryTestSuite) TestCreateAndLookupUser() {
	ctx := context.Background()
	created := s.newUser("test@test.com", "123456")
	assert.NotZero(s.T(), created.ID)

	byEmail, err := s.users.GetByEmail(ctx, "test@test.com")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), created.ID, byEmail.ID)
	assert.False(s.T(), byEmail.Confirmed)
	require.NotNil(s.T(), byEmail.Token)
	assert.Equal(s.T(), "123456", *byEmail.Token)
	assert.NotNil(s.T(), byEmail.TokenExpiresAt)

	byToken, err := s.users.GetByToken(ctx, "123456")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), created.ID, byToken.ID)

	byID, err := s.users.GetByID(ctx, created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Juan", byID.Name)

	_, err = s.users.GetByEmail(ctx, "missing@test.com")
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
	_, err = s.users.GetByToken(ctx, "000000")
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *RepositoryTestSuite) TestCreateUserUniqueness() {
	s.newUser("test@test.com", "111111")

	_, err := s.users.Create(context.Background(), &domain.User{Name: "Ana", Email: "test@test.com", PasswordHash: "x"})
	assert.ErrorIs(s.T(), err, repository.ErrDuplicateEmail)

	dup := &domain.User{Name: "Ana", Email: "ana@test.com", PasswordHash: "x"}
	dup.SetToken("111111", time.Now().Add(time.Hour))
	_, err = s.users.Create(context.Background(), dup)
	assert.ErrorIs(s.T(), err, repository.ErrDuplicateToken)

	// users without a pending code do not collide with each other
	s.newUser("a@test.com", "")
	s.newUser("b@test.com", "")
}

func (s *RepositoryTestSuite) TestConfirmSpendsTokenOnce() {
	ctx := context.Background()
	u := s.newUser("test@test.com", "654321")

	require.NoError(s.T(), s.users.Confirm(ctx, u.ID, "654321"))
	assert.ErrorIs(s.T(), s.users.Confirm(ctx, u.ID, "654321"), repository.ErrNotFound)
	assert.ErrorIs(s.T(), s.users.ResetPassword(ctx, u.ID, "654321", "other"), repository.ErrNotFound)

	stored, err := s.users.GetByID(ctx, u.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), stored.Confirmed)
	assert.Nil(s.T(), stored.Token)
	assert.Nil(s.T(), stored.TokenExpiresAt)
	assert.Equal(s.T(), "hash", stored.PasswordHash, "losing writer must not apply")
}

func (s *RepositoryTestSuite) TestResetPasswordLeavesOtherColumns() {
	ctx := context.Background()
	u := s.newUser("test@test.com", "111111")
	require.NoError(s.T(), s.users.Confirm(ctx, u.ID, "111111"))
	require.NoError(s.T(), s.users.SetToken(ctx, u.ID, "222222", time.Now().Add(time.Hour)))

	require.NoError(s.T(), s.users.ResetPassword(ctx, u.ID, "222222", "new-hash"))

	stored, err := s.users.GetByID(ctx, u.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "new-hash", stored.PasswordHash)
	assert.True(s.T(), stored.Confirmed, "setting a reset code keeps the account confirmed")
	assert.Nil(s.T(), stored.Token)
	assert.Equal(s.T(), "Juan", stored.Name)
}

func (s *RepositoryTestSuite) TestSetToken() {
	ctx := context.Background()
	u := s.newUser("test@test.com", "")
	s.newUser("other@test.com", "333333")

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	require.NoError(s.T(), s.users.SetToken(ctx, u.ID, "444444", expires))
	assert.ErrorIs(s.T(), s.users.SetToken(ctx, u.ID, "333333", expires), repository.ErrDuplicateToken)
	assert.ErrorIs(s.T(), s.users.SetToken(ctx, 999, "555555", expires), repository.ErrNotFound)

	stored, err := s.users.GetByToken(ctx, "444444")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), u.ID, stored.ID)
	require.NotNil(s.T(), stored.TokenExpiresAt)
	assert.True(s.T(), expires.Equal(*stored.TokenExpiresAt))
}

func (s *RepositoryTestSuite) TestUpdatePasswordRequiresCurrentHash() {
	ctx := context.Background()
	u := s.newUser("test@test.com", "")

	assert.ErrorIs(s.T(), s.users.UpdatePassword(ctx, u.ID, "stale", "new-hash"), repository.ErrNotFound)
	require.NoError(s.T(), s.users.UpdatePassword(ctx, u.ID, "hash", "new-hash"))

	stored, err := s.users.GetByID(ctx, u.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "new-hash", stored.PasswordHash)
}

func (s *RepositoryTestSuite) TestUpdateProfile() {
	ctx := context.Background()
	u := s.newUser("test@test.com", "777777")
	other := s.newUser("other@test.com", "")

	require.NoError(s.T(), s.users.UpdateProfile(ctx, u.ID, "Juan Pablo", "new@test.com"))
	assert.ErrorIs(s.T(), s.users.UpdateProfile(ctx, other.ID, "Ana", "new@test.com"), repository.ErrDuplicateEmail)
	assert.ErrorIs(s.T(), s.users.UpdateProfile(ctx, 999, "x", "x@test.com"), repository.ErrNotFound)

	stored, err := s.users.GetByID(ctx, u.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Juan Pablo", stored.Name)
	assert.Equal(s.T(), "new@test.com", stored.Email)
	require.NotNil(s.T(), stored.Token, "profile changes keep the pending code")
	assert.Equal(s.T(), "777777", *stored.Token)
	assert.Equal(s.T(), "hash", stored.PasswordHash)
}

func (s *RepositoryTestSuite) TestBudgetsAndExpenses() {
	ctx := context.Background()
	owner := s.newUser("owner@test.com", "")
	stranger := s.newUser("stranger@test.com", "")

	budget := &domain.Budget{UserID: owner.ID, Name: "Vacaciones", Amount: decimal.RequireFromString("1500.50")}
	_, err := s.budgets.Create(ctx, budget)
	require.NoError(s.T(), err)

	got, err := s.budgets.GetByID(ctx, budget.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), owner.ID, got.UserID)
	assert.True(s.T(), budget.Amount.Equal(got.Amount))

	own, err := s.budgets.ListByUser(ctx, owner.ID)
	require.NoError(s.T(), err)
	assert.Len(s.T(), own, 1)
	none, err := s.budgets.ListByUser(ctx, stranger.ID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), none)

	expense := &domain.Expense{BudgetID: budget.ID, Name: "Hotel", Amount: decimal.NewFromInt(300)}
	_, err = s.expenses.Create(ctx, expense)
	require.NoError(s.T(), err)

	gotExpense, err := s.expenses.GetByID(ctx, expense.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), budget.ID, gotExpense.BudgetID)
	assert.True(s.T(), decimal.NewFromInt(300).Equal(gotExpense.Amount))

	_, err = s.budgets.GetByID(ctx, 999)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
	_, err = s.expenses.GetByID(ctx, 999)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *RepositoryTestSuite) TestBudgetAndExpenseChanges() {
	ctx := context.Background()
	owner := s.newUser("owner@test.com", "")

	budget := &domain.Budget{UserID: owner.ID, Name: "Casa", Amount: decimal.NewFromInt(2000)}
	_, err := s.budgets.Create(ctx, budget)
	require.NoError(s.T(), err)

	budget.Name = "Casa nueva"
	budget.Amount = decimal.RequireFromString("2500.75")
	require.NoError(s.T(), s.budgets.Update(ctx, budget))
	got, err := s.budgets.GetByID(ctx, budget.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Casa nueva", got.Name)
	assert.True(s.T(), budget.Amount.Equal(got.Amount))

	first := &domain.Expense{BudgetID: budget.ID, Name: "Renta", Amount: decimal.NewFromInt(800)}
	second := &domain.Expense{BudgetID: budget.ID, Name: "Luz", Amount: decimal.NewFromInt(100)}
	_, err = s.expenses.Create(ctx, first)
	require.NoError(s.T(), err)
	_, err = s.expenses.Create(ctx, second)
	require.NoError(s.T(), err)

	second.Amount = decimal.NewFromInt(120)
	require.NoError(s.T(), s.expenses.Update(ctx, second))

	list, err := s.expenses.ListByBudget(ctx, budget.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 2)
	assert.Equal(s.T(), first.ID, list[0].ID)
	assert.True(s.T(), decimal.NewFromInt(120).Equal(list[1].Amount))

	require.NoError(s.T(), s.expenses.Delete(ctx, first.ID))
	assert.ErrorIs(s.T(), s.expenses.Delete(ctx, first.ID), repository.ErrNotFound)

	// deleting the budget takes its expenses with it
	require.NoError(s.T(), s.budgets.Delete(ctx, budget.ID))
	_, err = s.expenses.GetByID(ctx, second.ID)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
	assert.ErrorIs(s.T(), s.budgets.Update(ctx, budget), repository.ErrNotFound)

	empty, err := s.expenses.ListByBudget(ctx, budget.ID)
	require.NoError(s.T(), err)
	assert.NotNil(s.T(), empty)
	assert.Empty(s.T(), empty)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
