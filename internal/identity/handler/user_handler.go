package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mahsa-meymari/FinancialTracker/internal/identity/service"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/middleware"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/models"
)

// IdentityManager defines the operations used by UserHandler.
type IdentityManager interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, *models.User, error)
	UserExists(ctx context.Context, userID int64) (bool, error)
}

type UserHandler struct {
	identity IdentityManager
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

type RegisterResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token    string `json:"token,omitempty"`
	UserID   int64  `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message"`
}

func NewUserHandler(identity IdentityManager) *UserHandler {
	return &UserHandler{identity: identity}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	user, err := h.identity.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			middleware.RespondWithError(c, http.StatusBadRequest, "Username is already taken")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to register user")
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{ID: user.ID, Username: user.Username})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	token, user, err := h.identity.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		// Unknown user and wrong password produce the same response.
		c.JSON(http.StatusUnauthorized, LoginResponse{Message: "Invalid username or password"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Message:  "Successful login",
	})
}

// ValidateUser answers GET /api/users/validate/:userId with a bare boolean.
func (h *UserHandler) ValidateUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "userId must be numeric")
		return
	}

	exists, err := h.identity.UserExists(c.Request.Context(), userID)
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to check user existence")
		return
	}

	c.JSON(http.StatusOK, exists)
}
