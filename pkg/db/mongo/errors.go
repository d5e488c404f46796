package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	codeWriteConflict      = 112
	codeDocumentValidation = 121
)

func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// IsWriteConflict reports whether err came from two transactions touching
// the same document. Only the WriteConflict code counts: the transient
// transaction label is also set on network and election failures.
func IsWriteConflict(err error) bool {
	return err != nil && hasCode(err, codeWriteConflict)
}

// IsDocumentValidation reports a $jsonSchema validator rejection.
func IsDocumentValidation(err error) bool {
	return hasCode(err, codeDocumentValidation)
}

func IsTimeout(err error) bool {
	return mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded)
}

func hasCode(err error, code int) bool {
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorCode(code)
}

// WithTimeout bounds a single store call. Inside a transaction the session
// context is returned unchanged so the call stays in the session.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
