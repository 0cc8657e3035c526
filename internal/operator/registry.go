// ABOUTME: Registry tracks which users are authorized to receive routed visitor messages.
// ABOUTME: Registration is gated by a shared secret; membership is add-only for the process lifetime.

package operator

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"sync"
)

// ErrWrongSecret indicates the supplied registration secret did not match.
var ErrWrongSecret = errors.New("registration secret does not match")

// Registry holds the set of registered operator user IDs.
// Membership only grows: there is no unregister path.
type Registry struct {
	mu        sync.RWMutex
	operators map[int64]struct{}
	secret    []byte
	logger    *slog.Logger
}

// NewRegistry creates a Registry gated by the given secret.
// Pass nil logger for default.
func NewRegistry(secret string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		operators: make(map[int64]struct{}),
		secret:    []byte(secret),
		logger:    logger.With("component", "operator"),
	}
}

// Register adds userID to the registry if suppliedSecret matches exactly.
// Returns ErrWrongSecret on mismatch. Registering an already-registered
// id is a no-op success.
func (r *Registry) Register(userID int64, suppliedSecret string) error {
	if subtle.ConstantTimeCompare([]byte(suppliedSecret), r.secret) != 1 {
		r.logger.Warn("registration rejected", "user_id", userID)
		return ErrWrongSecret
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.operators[userID]; exists {
		return nil
	}

	r.operators[userID] = struct{}{}
	r.logger.Info("operator registered",
		"user_id", userID,
		"total_operators", len(r.operators),
	)
	return nil
}

// IsOperator reports whether userID has successfully registered.
func (r *Registry) IsOperator(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.operators[userID]
	return ok
}

// Snapshot returns the current member ids. Callers that fan out to
// operators use the snapshot, so registrations that land mid-broadcast
// do not receive that broadcast.
func (r *Registry) Snapshot() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.operators))
	for id := range r.operators {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of registered operators.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.operators)
}
