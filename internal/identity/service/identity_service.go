package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/mahsa-meymari/FinancialTracker/internal/identity/repository"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/events"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/models"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/utils"
)

// ErrInvalidCredentials is returned for both an unknown username and a wrong
// password, so the two cases cannot be told apart by a caller.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrUsernameTaken mirrors the repository sentinel for handler mapping.
var ErrUsernameTaken = repository.ErrUsernameTaken

// UserStore is the persistence surface IdentityService depends on.
type UserStore interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	ExistsByID(id int64) (bool, error)
}

// TokenIssuer signs a credential for an authenticated user.
type TokenIssuer interface {
	Issue(userID int64, username string) (string, error)
}

// EventPublisher publishes domain events to a stream.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// IdentityService owns user identities: registration, login (credential
// issuance) and the existence check other services delegate to.
type IdentityService struct {
	users     UserStore
	tokens    TokenIssuer
	publisher EventPublisher
}

func NewIdentityService(users UserStore, tokens TokenIssuer, publisher EventPublisher) *IdentityService {
	return &IdentityService{users: users, tokens: tokens, publisher: publisher}
}

func (s *IdentityService) Register(ctx context.Context, username, password string) (*models.User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, events.UserEventsStream, events.UserRegistered, events.UserRegisteredEvent{
		UserID:   user.ID,
		Username: user.Username,
	}); err != nil {
		log.Printf("Failed to publish user.registered event: %v", err)
	}
	return user, nil
}

// Login verifies the password and issues a signed credential.
func (s *IdentityService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !utils.CheckPassword(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// UserExists answers the ownership-chain existence check.
func (s *IdentityService) UserExists(ctx context.Context, userID int64) (bool, error) {
	return s.users.ExistsByID(userID)
}
