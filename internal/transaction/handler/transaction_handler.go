package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mahsa-meymari/FinancialTracker/internal/shared/middleware"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/models"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/ownership"
	"github.com/mahsa-meymari/FinancialTracker/internal/transaction/service"
)

// TransactionManager defines the operations used by TransactionHandler.
type TransactionManager interface {
	RecordTransaction(ctx context.Context, userID, accountID int64, input service.RecordTransactionInput) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID, accountID int64) ([]models.Transaction, error)
}

type TransactionHandler struct {
	transactions TransactionManager
}

type RecordTransactionRequest struct {
	Description string  `json:"description" validate:"max=200"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Type        string  `json:"type" validate:"required,oneof=deposit withdrawal"`
	Date        string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type ListTransactionsResponse struct {
	Transactions []models.Transaction `json:"transactions"`
}

func NewTransactionHandler(transactions TransactionManager) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

// accountIDFromHeader reads the target account from X-Account-Id. Both
// transaction endpoints require it; the handler replies itself and returns
// false when the header is absent or not numeric.
func accountIDFromHeader(c *gin.Context) (int64, bool) {
	raw := c.GetHeader(middleware.HeaderAccountID)
	if raw == "" {
		middleware.RespondWithError(c, http.StatusBadRequest, "X-Account-Id header is required")
		return 0, false
	}
	accountID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "X-Account-Id header must be numeric")
		return 0, false
	}
	return accountID, true
}

func (h *TransactionHandler) RecordTransaction(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	accountID, ok := accountIDFromHeader(c)
	if !ok {
		return
	}

	var req RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	transaction, err := h.transactions.RecordTransaction(c.Request.Context(), userID, accountID, service.RecordTransactionInput{
		Description: req.Description,
		Amount:      req.Amount,
		Type:        req.Type,
		Date:        req.Date,
	})
	if err != nil {
		var depErr *ownership.DependencyError
		switch {
		case errors.Is(err, ownership.ErrUserNotFound):
			middleware.RespondWithError(c, http.StatusBadRequest, "Authorization failed: user does not exist")
		case errors.Is(err, ownership.ErrAccountDenied):
			middleware.RespondWithError(c, http.StatusBadRequest, "Authorization failed: account does not belong to user")
		case errors.As(err, &depErr):
			middleware.RespondWithError(c, http.StatusBadGateway, "Could not reach a validation service")
		default:
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to record transaction")
		}
		return
	}

	c.JSON(http.StatusCreated, transaction)
}

func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	accountID, ok := accountIDFromHeader(c)
	if !ok {
		return
	}

	transactions, err := h.transactions.ListTransactions(c.Request.Context(), userID, accountID)
	if err != nil {
		var depErr *ownership.DependencyError
		switch {
		case errors.Is(err, ownership.ErrAccountDenied):
			middleware.RespondWithError(c, http.StatusForbidden, "Account does not belong to user")
		case errors.As(err, &depErr):
			middleware.RespondWithError(c, http.StatusBadGateway, "Could not reach a validation service")
		default:
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to list transactions")
		}
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	c.JSON(http.StatusOK, ListTransactionsResponse{Transactions: transactions})
}
