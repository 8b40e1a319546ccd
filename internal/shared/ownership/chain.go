// Package ownership resolves whether a claimed resource exists and belongs to
// the acting user by asking the service that owns it. Each check is a pure
// read over HTTP; nothing is cached between requests.
package ownership

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// Authorization verdicts. A failed check is a client problem; a
// DependencyError means no verdict could be obtained at all.
var (
	ErrUserNotFound = errors.New("user does not exist")

	// ErrAccountDenied covers both a missing account and an account owned by
	// someone else. The two cases are deliberately indistinguishable so that
	// account existence is not leaked to non-owners.
	ErrAccountDenied = errors.New("account does not exist or does not belong to the user")
)

// DependencyError reports that an owning service could not deliver a verdict.
type DependencyError struct {
	Service string
	Err     error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

// Chain performs the network checks behind a multi-hop authorization:
// transaction -> account -> user.
type Chain struct {
	identityURL string
	registryURL string
	client      *http.Client
	maxRetries  uint64
	backoff     time.Duration
}

// NewChain builds a Chain against the given service base URLs. Every check
// is bounded by timeout; transport failures and 5xx responses are retried up
// to maxRetries times with exponential backoff.
func NewChain(identityURL, registryURL string, timeout time.Duration, maxRetries uint64) *Chain {
	return &Chain{
		identityURL: identityURL,
		registryURL: registryURL,
		client:      &http.Client{Timeout: timeout},
		maxRetries:  maxRetries,
		backoff:     100 * time.Millisecond,
	}
}

// UserExists asks the identity service whether the user exists.
// Returns nil, ErrUserNotFound, or a *DependencyError.
func (c *Chain) UserExists(ctx context.Context, userID int64) error {
	url := fmt.Sprintf("%s/api/users/validate/%d", c.identityURL, userID)
	ok, err := c.verdict(ctx, url)
	if err != nil {
		return &DependencyError{Service: "identity-service", Err: err}
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

// AccountOwnedBy asks the account service whether the account exists and is
// owned by the user. Returns nil, ErrAccountDenied, or a *DependencyError.
func (c *Chain) AccountOwnedBy(ctx context.Context, accountID, userID int64) error {
	url := fmt.Sprintf("%s/api/accounts/validate/%d?userId=%d", c.registryURL, accountID, userID)
	ok, err := c.verdict(ctx, url)
	if err != nil {
		return &DependencyError{Service: "account-service", Err: err}
	}
	if !ok {
		return ErrAccountDenied
	}
	return nil
}

// AuthorizeTransaction runs the full two-hop check for a transaction
// mutation: the user must exist and the account must be owned by that user,
// evaluated in that order. The account check is never issued when the user
// check fails.
func (c *Chain) AuthorizeTransaction(ctx context.Context, userID, accountID int64) error {
	if err := c.UserExists(ctx, userID); err != nil {
		return err
	}
	return c.AccountOwnedBy(ctx, accountID, userID)
}

// verdict performs one boolean validation GET. A decoded verdict is final;
// only transport errors and 5xx responses are retried.
func (c *Chain) verdict(ctx context.Context, url string) (bool, error) {
	var result bool
	b := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(fmt.Errorf("unexpected status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("undecodable verdict: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return result, nil
}
