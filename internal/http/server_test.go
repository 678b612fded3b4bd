package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parliyanto/Cash-Tracker/internal/auth"
	"github.com/parliyanto/Cash-Tracker/internal/core"
	"github.com/parliyanto/Cash-Tracker/internal/finance/memory"
	"github.com/parliyanto/Cash-Tracker/internal/log"
	"github.com/parliyanto/Cash-Tracker/internal/services"
)

type testEnv struct {
	srv     *Server
	store   *memory.TransactionStore
	cookie  *http.Cookie
	userID  string
	cleanup func()
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewTransactionStore()
	users := memory.NewUserStore()
	settings := memory.NewSettingsStore()

	tokens := auth.NewTokenManager(strings.Repeat("s", 32), time.Hour)
	authSvc := auth.NewService(users, tokens)

	user, err := authSvc.CreateUser(context.Background(), "budget@example.com", "correcthorse")
	require.NoError(t, err)

	svc := services.NewTransactionService(store, nil)
	srv := NewServer(":0", svc, settings, authSvc, log.New(log.DefaultConfig()))

	token, _, err := authSvc.Login(context.Background(), "budget@example.com", "correcthorse")
	require.NoError(t, err)

	env := &testEnv{
		srv:    srv,
		store:  store,
		userID: user.ID,
		cookie: &http.Cookie{Name: sessionCookie, Value: token},
	}
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	return env
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.AddCookie(e.cookie)
	e.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(e.cookie)
	e.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func transactionForm(typ, category, amount string) url.Values {
	return url.Values{"type": {typ}, "category": {category}, "amount": {amount}}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		env.srv.Handler.ServeHTTP(rr, req)
		assert.Equalf(t, http.StatusOK, rr.Code, "%s", path)
	}
}

func TestUnauthenticatedRedirects(t *testing.T) {
	env := newTestEnv(t)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	env.srv.Handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	// htmx requests navigate via HX-Redirect instead of a fragment swap.
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ui/transactions", nil)
	req.Header.Set("HX-Request", "true")
	env.srv.Handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("HX-Redirect"))
}

func TestIndexServesLoginWhenLoggedOut(t *testing.T) {
	env := newTestEnv(t)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	env.srv.Handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Sign in")

	// Already authenticated: straight to the dashboard.
	rr = env.get("/")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/dashboard", rr.Header().Get("Location"))
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	rr := httptest.NewRecorder()
	form := url.Values{"email": {"budget@example.com"}, "password": {"correcthorse"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	env.srv.Handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/dashboard", rr.Header().Get("Location"))

	var session *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookie {
			session = c
		}
	}
	require.NotNil(t, session, "session cookie not set")
	assert.True(t, session.HttpOnly)
	assert.NotEmpty(t, session.Value)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	for _, form := range []url.Values{
		{"email": {"budget@example.com"}, "password": {"wrong-password"}},
		{"email": {"nobody@example.com"}, "password": {"correcthorse"}},
	} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		env.srv.Handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid credentials")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	env := newTestEnv(t)

	rr := env.postForm("/logout", url.Values{})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookie {
			assert.Empty(t, c.Value)
			assert.Negative(t, c.MaxAge)
		}
	}
}

func TestCreateTransaction(t *testing.T) {
	env := newTestEnv(t)

	rr := env.postForm("/transactions", transactionForm("income", "Salary", "5000000"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Transaction added")
	assert.Contains(t, rr.Header().Get("HX-Trigger"), "transactions:changed")

	rows, err := env.store.List(context.Background(), env.userID, core.TransactionFilter{}, core.SortDateDesc)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(500000000), rows[0].Amount.Cents)
}

func TestCreateTransactionValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing category", transactionForm("income", "", "100"), "Please fill all fields"},
		{"missing amount", transactionForm("income", "Salary", ""), "Please fill all fields"},
		{"bad type", transactionForm("transfer", "Salary", "100"), "Invalid transaction type"},
		{"negative amount", transactionForm("expense", "Food", "-5"), "Amount must be a positive number"},
		{"zero amount", transactionForm("expense", "Food", "0"), "Amount must be a positive number"},
		{"non-numeric amount", transactionForm("expense", "Food", "abc"), "Amount must be a positive number"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := env.postForm("/transactions", tc.form)
			assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.want)
			assert.Empty(t, rr.Header().Get("HX-Trigger"))
		})
	}
}

func TestUpdateAndDeleteTransaction(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.store.Create(context.Background(), core.Transaction{
		UserID: env.userID, Type: core.Expense, Category: "Food", Amount: core.Money{Cents: 1000},
	})
	require.NoError(t, err)

	rr := env.postForm("/transactions/"+created.ID, transactionForm("expense", "Groceries", "25.50"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Transaction updated")

	got, err := env.store.Get(context.Background(), env.userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Category)
	assert.Equal(t, int64(2550), got.Amount.Cents)

	rr = env.postForm("/transactions/"+created.ID+"/delete", url.Values{})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Transaction deleted")

	rr = env.postForm("/transactions/"+created.ID+"/delete", url.Values{})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateMissingTransaction(t *testing.T) {
	env := newTestEnv(t)
	rr := env.postForm("/transactions/does-not-exist", transactionForm("expense", "Food", "10"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Transaction not found")
}

func TestDashboardAggregates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, row := range []struct {
		typ   core.TransactionType
		cents int64
	}{
		{core.Income, 500000000},
		{core.Expense, 200000000},
		{core.Expense, 150000000},
	} {
		_, err := env.store.Create(ctx, core.Transaction{
			UserID: env.userID, Type: row.typ, Category: "x", Amount: core.Money{Cents: row.cents},
		})
		require.NoError(t, err)
	}

	rr := env.get("/dashboard")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Rp 5.000.000")
	assert.Contains(t, body, "Rp 3.500.000")
	assert.Contains(t, body, "Rp 1.500.000")
	assert.Contains(t, body, "30.0%")
	assert.Contains(t, body, "band-high")
}

func TestDashboardSummaryCacheInvalidation(t *testing.T) {
	env := newTestEnv(t)

	rr := env.get("/dashboard")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Rp 0")

	rr = env.postForm("/transactions", transactionForm("income", "Salary", "1000000"))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.get("/dashboard")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Rp 1.000.000")
}

func TestTransactionListFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, row := range []struct {
		typ      core.TransactionType
		category string
	}{
		{core.Income, "Salary"},
		{core.Expense, "Food"},
	} {
		_, err := env.store.Create(ctx, core.Transaction{
			UserID: env.userID, Type: row.typ, Category: row.category, Amount: core.Money{Cents: 100},
		})
		require.NoError(t, err)
	}

	rr := env.get("/ui/transactions?type=income")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Salary")
	assert.NotContains(t, rr.Body.String(), "Food")

	rr = env.get("/ui/transactions")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Salary")
	assert.Contains(t, rr.Body.String(), "Food")
}

func TestSaveSettings(t *testing.T) {
	env := newTestEnv(t)

	rr := env.postForm("/settings", url.Values{"currency": {"USD"}, "monthly_budget": {"1500"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Settings saved")

	// Amounts now render in the saved currency.
	_, err := env.store.Create(context.Background(), core.Transaction{
		UserID: env.userID, Type: core.Income, Category: "Salary", Amount: core.Money{Cents: 123456},
	})
	require.NoError(t, err)
	rr = env.get("/dashboard")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "$1,234.56")
}

func TestSaveSettingsValidation(t *testing.T) {
	env := newTestEnv(t)

	rr := env.postForm("/settings", url.Values{"currency": {"GBP"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "Unsupported currency")

	rr = env.postForm("/settings", url.Values{"currency": {"USD"}, "monthly_budget": {"-10"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "Budget must be a positive number")
}

func TestFormsDisableSubmitWhileInFlight(t *testing.T) {
	env := newTestEnv(t)

	// Submit buttons stay disabled for the duration of the request so a
	// double click cannot post twice.
	rr := env.get("/settings")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `hx-disabled-elt="find button[type='submit']"`)

	rr = env.get("/transactions")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `hx-disabled-elt="find button[type='submit']"`)
}

func TestEditFormPrefillsAmount(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.store.Create(context.Background(), core.Transaction{
		UserID: env.userID, Type: core.Expense, Category: "Groceries", Amount: core.Money{Cents: 2550},
	})
	require.NoError(t, err)

	rr := env.get("/ui/transactions")
	require.Equal(t, http.StatusOK, rr.Code)
	// The edit row carries the current amount so changing only the category
	// does not force the user to retype it.
	assert.Contains(t, rr.Body.String(), `name="amount" type="text" inputmode="decimal" value="25.5"`)
}

func TestClearTransactions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.store.Create(ctx, core.Transaction{
		UserID: env.userID, Type: core.Expense, Category: "Food", Amount: core.Money{Cents: 100},
	})
	require.NoError(t, err)

	rr := env.postForm("/settings/clear-transactions", url.Values{})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "All transactions deleted")

	rows, err := env.store.List(ctx, env.userID, core.TransactionFilter{}, core.SortDateDesc)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
