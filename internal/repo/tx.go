package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
)

// Repos bundles every repository rebound to a single db handle. Inside
// WithinTx all repos share one transaction, so a validation read and the
// write it guards are indivisible with respect to concurrent submissions.
type Repos struct {
	Choices    ChoiceRepo
	Items      ItemRepo
	Selections SelectionRepo
	Trips      TripRepo
	Spends     SpendRepo
	Activities ActivityRepo
	Audits     AuditRepo
}

// NewRepos builds the full repo set on one db handle (pool or transaction).
func NewRepos(db db) Repos {
	return Repos{
		Choices:    NewChoiceRepo(db),
		Items:      NewItemRepo(db),
		Selections: NewSelectionRepo(db),
		Trips:      NewTripRepo(db),
		Spends:     NewSpendRepo(db),
		Activities: NewActivityRepo(db),
		Audits:     NewAuditRepo(db),
	}
}

// TxManager runs a function inside one database transaction. The function
// receives repos bound to that transaction; any error rolls everything back,
// leaving zero side effects.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}

type pgTxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager constructs a TxManager on the given pool.
func NewTxManager(pool *pgxpool.Pool) TxManager {
	return &pgTxManager{pool: pool}
}

// WithinTx begins a transaction, calls fn with repos bound to it, and commits
// on success. Transient failures (deadlock between two submissions locking
// overlapping item sets, serialization failure) are retried a bounded number
// of times with fibonacci backoff; fn must therefore be safe to re-run.
func (m *pgTxManager) WithinTx(ctx context.Context, fn func(r Repos) error) error {
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(10*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := m.runOnce(ctx, fn)
		if err != nil && isRetryableTxError(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("repo.TxManager.WithinTx: %w", err)
	}
	return nil
}

func (m *pgTxManager) runOnce(ctx context.Context, fn func(r Repos) error) error {
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		// No-op after a successful commit.
		_ = tx.Rollback(ctx)
	}()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// TxManagerFunc adapts a function to the TxManager interface.
// Tests use it to run fn against mock repos without a database.
type TxManagerFunc func(ctx context.Context, fn func(r Repos) error) error

func (f TxManagerFunc) WithinTx(ctx context.Context, fn func(r Repos) error) error {
	return f(ctx, fn)
}
