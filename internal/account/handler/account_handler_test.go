package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mahsa-meymari/FinancialTracker/internal/shared/models"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/ownership"
)

// ---- mock implementations ----

type mockAccountManager struct {
	createFn   func(userID int64, name, accountType string, balance float64) (*models.Account, error)
	listFn     func(userID int64) ([]models.Account, error)
	validateFn func(accountID, userID int64) (bool, error)
}

func (m *mockAccountManager) CreateAccount(_ context.Context, userID int64, name, accountType string, balance float64) (*models.Account, error) {
	if m.createFn != nil {
		return m.createFn(userID, name, accountType, balance)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockAccountManager) ListAccounts(_ context.Context, userID int64) ([]models.Account, error) {
	if m.listFn != nil {
		return m.listFn(userID)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockAccountManager) ValidateOwnership(_ context.Context, accountID, userID int64) (bool, error) {
	if m.validateFn != nil {
		return m.validateFn(accountID, userID)
	}
	return false, fmt.Errorf("not configured")
}

// ---- helpers ----

func fakeAuth(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userId", userID)
		c.Set("subject", "test-user")
		c.Next()
	}
}

func newAccountTestRouter(accounts AccountManager, authUserID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAccountHandler(accounts)
	api := r.Group("/api/accounts")
	if authUserID != 0 {
		api.Use(fakeAuth(authUserID))
	}
	api.POST("", h.CreateAccount)
	api.GET("", h.ListAccounts)
	api.GET("/validate/:accountId", h.ValidateAccount)
	return r
}

func accountDoRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, strings.NewReader(string(b)))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

var testAccount = &models.Account{
	ID: 7, Name: "savings", Type: "savings", Balance: 100, UserID: 1, CreatedAt: time.Now(),
}

func accountBody() map[string]interface{} {
	return map[string]interface{}{"name": "savings", "type": "savings", "balance": 100.0}
}

// ---- tests ----

func TestCreateAccount(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		createFn       func(userID int64, name, accountType string, balance float64) (*models.Account, error)
		expectedStatus int
	}{
		{
			name: "success",
			body: accountBody(),
			createFn: func(int64, string, string, float64) (*models.Account, error) {
				return testAccount, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "bad request - acting user does not exist",
			body: accountBody(),
			createFn: func(int64, string, string, float64) (*models.Account, error) {
				return nil, ownership.ErrUserNotFound
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "bad gateway - identity service unreachable",
			body: accountBody(),
			createFn: func(int64, string, string, float64) (*models.Account, error) {
				return nil, &ownership.DependencyError{Service: "identity-service", Err: fmt.Errorf("timeout")}
			},
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "bad request - missing name",
			body:           map[string]interface{}{"type": "savings", "balance": 100.0},
			createFn:       nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - unknown account type",
			body:           map[string]interface{}{"name": "x", "type": "offshore", "balance": 100.0},
			createFn:       nil,
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAccountTestRouter(&mockAccountManager{createFn: tt.createFn}, 1)
			w := accountDoRequest(router, http.MethodPost, "/api/accounts", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestCreateAccount_Unauthenticated(t *testing.T) {
	router := newAccountTestRouter(&mockAccountManager{}, 0)
	w := accountDoRequest(router, http.MethodPost, "/api/accounts", accountBody())
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestListAccounts(t *testing.T) {
	router := newAccountTestRouter(&mockAccountManager{
		listFn: func(userID int64) ([]models.Account, error) {
			return []models.Account{*testAccount}, nil
		},
	}, 1)
	w := accountDoRequest(router, http.MethodGet, "/api/accounts", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", w.Code, w.Body.String())
	}
	var resp ListAccountsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Accounts) != 1 || resp.Accounts[0].ID != testAccount.ID {
		t.Errorf("unexpected accounts: %+v", resp.Accounts)
	}
}

func TestValidateAccount(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		validateFn     func(accountID, userID int64) (bool, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "owned",
			url:            "/api/accounts/validate/7?userId=1",
			validateFn:     func(int64, int64) (bool, error) { return true, nil },
			expectedStatus: http.StatusOK,
			expectedBody:   "true",
		},
		{
			name:           "missing account - same body as foreign account",
			url:            "/api/accounts/validate/999?userId=1",
			validateFn:     func(int64, int64) (bool, error) { return false, nil },
			expectedStatus: http.StatusOK,
			expectedBody:   "false",
		},
		{
			name:           "foreign account - same body as missing account",
			url:            "/api/accounts/validate/7?userId=2",
			validateFn:     func(int64, int64) (bool, error) { return false, nil },
			expectedStatus: http.StatusOK,
			expectedBody:   "false",
		},
		{
			name:           "bad request - missing userId",
			url:            "/api/accounts/validate/7",
			validateFn:     nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - non-numeric accountId",
			url:            "/api/accounts/validate/abc?userId=1",
			validateFn:     nil,
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAccountTestRouter(&mockAccountManager{validateFn: tt.validateFn}, 1)
			w := accountDoRequest(router, http.MethodGet, tt.url, nil)
			if w.Code != tt.expectedStatus {
				t.Fatalf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedBody != "" && strings.TrimSpace(w.Body.String()) != tt.expectedBody {
				t.Errorf("expected body %q, got %q", tt.expectedBody, w.Body.String())
			}
		})
	}
}
