// Package refreshtokens declares the server-side contract for the single
// refresh token slot kept on every user record.
package refreshtokens

import "context"

// Repository stores token fingerprints, never raw tokens.
type Repository interface {
	// Set replaces the stored fingerprint for userID.
	Set(ctx context.Context, userID string, fingerprint string) error

	// Get returns the stored fingerprint. A missing user or an empty slot
	// yields common.ErrorNotFound.
	Get(ctx context.Context, userID string) (string, error)

	// Rotate swaps current for next only when current is still stored.
	// It reports false when another request already rotated or cleared the slot.
	Rotate(ctx context.Context, userID string, current, next string) (bool, error)

	// Clear empties the slot. Clearing an empty slot is not an error.
	Clear(ctx context.Context, userID string) error
}
