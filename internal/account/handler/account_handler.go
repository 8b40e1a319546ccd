package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mahsa-meymari/FinancialTracker/internal/shared/middleware"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/models"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/ownership"
)

// AccountManager defines the operations used by AccountHandler.
type AccountManager interface {
	CreateAccount(ctx context.Context, userID int64, name, accountType string, balance float64) (*models.Account, error)
	ListAccounts(ctx context.Context, userID int64) ([]models.Account, error)
	ValidateOwnership(ctx context.Context, accountID, userID int64) (bool, error)
}

type AccountHandler struct {
	accounts AccountManager
}

type CreateAccountRequest struct {
	Name    string  `json:"name" validate:"required,max=100"`
	Type    string  `json:"type" validate:"required,oneof=checking savings"`
	Balance float64 `json:"balance" validate:"gte=0"`
}

type ListAccountsResponse struct {
	Accounts []models.Account `json:"accounts"`
}

func NewAccountHandler(accounts AccountManager) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	account, err := h.accounts.CreateAccount(c.Request.Context(), userID, req.Name, req.Type, req.Balance)
	if err != nil {
		var depErr *ownership.DependencyError
		switch {
		case errors.Is(err, ownership.ErrUserNotFound):
			middleware.RespondWithError(c, http.StatusBadRequest,
				fmt.Sprintf("User with ID %d does not exist", userID))
		case errors.As(err, &depErr):
			middleware.RespondWithError(c, http.StatusBadGateway,
				"Could not reach the identity service for validation")
		default:
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to create account")
		}
		return
	}

	c.JSON(http.StatusCreated, account)
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	accounts, err := h.accounts.ListAccounts(c.Request.Context(), userID)
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to list accounts")
		return
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	c.JSON(http.StatusOK, ListAccountsResponse{Accounts: accounts})
}

// ValidateAccount answers GET /api/accounts/validate/:accountId?userId= with
// a bare boolean. The body is identical for a missing account and for an
// account owned by a different user.
func (h *AccountHandler) ValidateAccount(c *gin.Context) {
	accountID, err := strconv.ParseInt(c.Param("accountId"), 10, 64)
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "accountId must be numeric")
		return
	}
	userID, err := strconv.ParseInt(c.Query("userId"), 10, 64)
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "userId query parameter is required and must be numeric")
		return
	}

	ok, err := h.accounts.ValidateOwnership(c.Request.Context(), accountID, userID)
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to check account ownership")
		return
	}

	c.JSON(http.StatusOK, ok)
}
