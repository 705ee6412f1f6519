package store

import (
	"context"
	"errors"
)

// Keys used for persisted session state. The three values are written
// separately with no cross-key transaction; the session manager treats any
// missing key as "not signed in" on hydration.
const (
	KeyAuthToken = "authToken"
	KeyUser      = "user"
	KeyUserType  = "userType"
)

// ErrNotFound is returned by Get when a key has no stored value.
var ErrNotFound = errors.New("key not found")

// Store is device-local key-value persistence for session state. Calls fail
// only on underlying I/O errors, which are surfaced to the caller and never
// retried. Removing an absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
