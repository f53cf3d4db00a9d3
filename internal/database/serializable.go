package database

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSerializationRetriesExceeded is returned when a serializable transaction
// keeps conflicting after all retry attempts.
var ErrSerializationRetriesExceeded = errors.New("serialization retries exceeded")

const (
	// serializableMaxRetries bounds retries after the first attempt.
	serializableMaxRetries = 2

	serializableInitialInterval = 10 * time.Millisecond
	serializableMaxInterval     = 100 * time.Millisecond
)

// SQLSTATE codes Postgres raises when concurrent serializable transactions
// cannot both be honored. Both are safe to retry.
const (
	sqlstateSerializationFailure = "40001"
	sqlstateDeadlockDetected     = "40P01"
)

// IsSerializationConflict reports whether err is a retryable
// serialization-level conflict.
func IsSerializationConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == sqlstateSerializationFailure || pgErr.Code == sqlstateDeadlockDetected
}

// TxBeginner begins transactions. *pgxpool.Pool satisfies it.
type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

var _ TxBeginner = (*pgxpool.Pool)(nil)

// RunSerializable executes fn inside a SERIALIZABLE transaction, committing on
// success and rolling back on error. Serialization conflicts are retried with
// backoff up to 3 total attempts; any other error aborts immediately.
func RunSerializable(ctx context.Context, db TxBeginner, fn func(ctx context.Context, tx pgx.Tx) error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = serializableInitialInterval
	bo.MaxInterval = serializableMaxInterval
	bo.MaxElapsedTime = 0

	operation := func() error {
		err := runOnce(ctx, db, fn)
		if err == nil {
			return nil
		}
		if IsSerializationConflict(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, serializableMaxRetries), ctx))
	if err != nil && IsSerializationConflict(err) {
		return ErrSerializationRetriesExceeded
	}
	return err
}

func runOnce(ctx context.Context, db TxBeginner, fn func(ctx context.Context, tx pgx.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		err = tx.Commit(ctx)
	}()

	err = fn(ctx, tx)
	return err
}
