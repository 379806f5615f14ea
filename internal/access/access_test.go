package access

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashtrackr/internal/apperr"
	"cashtrackr/internal/domain"
	"cashtrackr/internal/repository"
	"cashtrackr/internal/session"
)

type fakeRequest struct {
	headers map[string]string
	params  map[string]string
}

func (r fakeRequest) GetHeader(key string) string { return r.headers[key] }
func (r fakeRequest) Param(key string) string     { return r.params[key] }

type budgetMap map[int64]*domain.Budget

func (m budgetMap) GetByID(_ context.Context, id int64) (*domain.Budget, error) {
	if b, ok := m[id]; ok {
		return b, nil
	}
	return nil, repository.ErrNotFound
}

type expenseMap map[int64]*domain.Expense

func (m expenseMap) GetByID(_ context.Context, id int64) (*domain.Expense, error) {
	if e, ok := m[id]; ok {
		return e, nil
	}
	return nil, repository.ErrNotFound
}

type brokenFinder struct{}

func (brokenFinder) GetByID(context.Context, int64) (*domain.Budget, error) {
	return nil, errors.New("connection reset")
}

type fixture struct {
	codec    *session.Codec
	budgets  budgetMap
	expenses expenseMap
}

func newFixture(t *testing.T) fixture {
	codec, err := session.NewCodec("access-secret", time.Hour)
	require.NoError(t, err)
	return fixture{
		codec: codec,
		budgets: budgetMap{
			1: {ID: 1, UserID: 10, Name: "Vacaciones"},
			2: {ID: 2, UserID: 20, Name: "Casa"},
		},
		expenses: expenseMap{
			5: {ID: 5, BudgetID: 1, Name: "Hotel"},
			6: {ID: 6, BudgetID: 2, Name: "Renta"},
		},
	}
}

func (f fixture) stages() []Stage {
	return []Stage{
		Authenticate(f.codec),
		ResolveBudget(f.budgets),
		AuthorizeBudget(),
		ResolveExpense(f.expenses),
		AuthorizeExpense(),
	}
}

func (f fixture) request(t *testing.T, userID int64, budgetID, expenseID string) fakeRequest {
	token, err := f.codec.Issue(userID)
	require.NoError(t, err)
	return fakeRequest{
		headers: map[string]string{"Authorization": "Bearer " + token},
		params:  map[string]string{"budgetId": budgetID, "expenseId": expenseID},
	}
}

func TestRunAccumulatesScope(t *testing.T) {
	f := newFixture(t)

	scope, err := Run(context.Background(), f.request(t, 10, "1", "5"), f.stages()...)
	require.NoError(t, err)
	assert.Equal(t, int64(10), scope.UserID)
	require.NotNil(t, scope.Budget)
	assert.Equal(t, int64(1), scope.Budget.ID)
	require.NotNil(t, scope.Expense)
	assert.Equal(t, int64(5), scope.Expense.ID)
}

func TestRunWithoutStages(t *testing.T) {
	scope, err := Run(context.Background(), fakeRequest{})
	require.NoError(t, err)
	assert.Equal(t, Scope{}, scope)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	stage := Authenticate(f.codec)
	token, err := f.codec.Issue(42)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		want   error
	}{
		{name: "missing header", header: "", want: ErrNoCredentials},
		{name: "wrong scheme", header: "Basic " + token, want: ErrNoCredentials},
		{name: "scheme only", header: "Bearer", want: ErrNoCredentials},
		{name: "garbage token", header: "Bearer not-a-token", want: ErrInvalidSession},
		{name: "valid", header: "Bearer " + token},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := fakeRequest{headers: map[string]string{"Authorization": tc.header}}
			scope, err := stage(context.Background(), req, Scope{})
			if tc.want != nil {
				assert.ErrorIs(t, err, tc.want)
				assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(42), scope.UserID)
		})
	}
}

func TestAuthenticateRejectsForeignKey(t *testing.T) {
	f := newFixture(t)
	other, err := session.NewCodec("rotated-secret", time.Hour)
	require.NoError(t, err)
	token, err := other.Issue(10)
	require.NoError(t, err)

	req := fakeRequest{headers: map[string]string{"Authorization": "Bearer " + token}}
	_, err = Authenticate(f.codec)(context.Background(), req, Scope{})
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestPipelineFailures(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name      string
		userID    int64
		budgetID  string
		expenseID string
		want      error
		kind      apperr.Kind
	}{
		{name: "budget id not numeric", userID: 10, budgetID: "abc", expenseID: "5", want: ErrBudgetID, kind: apperr.KindValidation},
		{name: "budget id not positive", userID: 10, budgetID: "0", expenseID: "5", want: ErrBudgetID, kind: apperr.KindValidation},
		{name: "budget missing", userID: 10, budgetID: "99", expenseID: "5", want: ErrBudgetNotFound, kind: apperr.KindNotFound},
		{name: "budget of another user", userID: 10, budgetID: "2", expenseID: "6", want: ErrBudgetOwner, kind: apperr.KindUnauthorized},
		{name: "expense id invalid", userID: 10, budgetID: "1", expenseID: "-1", want: ErrExpenseID, kind: apperr.KindValidation},
		{name: "expense missing", userID: 10, budgetID: "1", expenseID: "77", want: ErrExpenseMissing, kind: apperr.KindNotFound},
		{name: "expense under another budget", userID: 10, budgetID: "1", expenseID: "6", want: ErrExpenseParent, kind: apperr.KindForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Run(context.Background(), f.request(t, tc.userID, tc.budgetID, tc.expenseID), f.stages()...)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, tc.kind, apperr.KindOf(err))
		})
	}
}

func TestOwnershipCheckedBeforeExpense(t *testing.T) {
	f := newFixture(t)

	// the expense is valid for budget 2, but budget 2 is not the caller's
	_, err := Run(context.Background(), f.request(t, 10, "2", "6"), f.stages()...)
	assert.ErrorIs(t, err, ErrBudgetOwner)
}

func TestResolveBudgetRepositoryFailure(t *testing.T) {
	req := fakeRequest{params: map[string]string{"budgetId": "1"}}
	_, err := ResolveBudget(brokenFinder{})(context.Background(), req, Scope{UserID: 1})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Equal(t, apperr.GenericMessage, apperr.From(err).Message)
}
