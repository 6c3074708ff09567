package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/codetyper/codetyper-api/internal/core/domain"
)

// isUnavailable reports whether err means the deployment could not be reached,
// as opposed to a problem with the request itself.
func isUnavailable(err error) bool {
	return mongo.IsTimeout(err) ||
		mongo.IsNetworkError(err) ||
		errors.Is(err, mongo.ErrClientDisconnected) ||
		errors.Is(err, context.DeadlineExceeded)
}

// wrap annotates err with op and tags connectivity failures with
// domain.ErrStoreUnavailable.
func wrap(op string, err error) error {
	if isUnavailable(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// findErr maps ErrNoDocuments to notFound and everything else through wrap.
func findErr(op string, err error, notFound error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound
	}
	return wrap(op, err)
}

// createErr maps a duplicate key violation to conflict.
func createErr(op string, err error, conflict error) error {
	if mongo.IsDuplicateKeyError(err) {
		return conflict
	}
	return wrap(op, err)
}
